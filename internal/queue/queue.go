package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	TopicCampaignTriggers = "campaign_triggers"
	TopicWebhookEvents    = "webhook_events"
	TopicTeamEmails       = "team_emails"
)

// TriggerJob asks a worker to run one campaign.
type TriggerJob struct {
	CampaignID int `json:"campaign_id"`
}

// WebhookEvent is the handoff payload for automation webhook actions. The
// actual delivery (with its own retry policy) happens downstream.
type WebhookEvent struct {
	URL     string         `json:"url"`
	Payload map[string]any `json:"payload"`
}

// TeamEmail is the handoff payload for send_email_to_team actions.
type TeamEmail struct {
	TeamID         int    `json:"team_id"`
	ConversationID int    `json:"conversation_id"`
	Message        string `json:"message"`
}

// Queue interface
type Queue interface {
	Publish(topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

// InMemoryQueue dispatches published bodies to subscribers in-process, with
// the same bounded retry the AMQP consumer applies. Used by tests and
// single-process runs.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(body []byte) error
	log      *zap.Logger
}

func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryQueue{
		handlers: make(map[string][]func(body []byte) error),
		log:      log,
	}
}

func (q *InMemoryQueue) Publish(topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		go q.processJob(topic, handler, body)
	}
	return nil
}

func (q *InMemoryQueue) processJob(topic string, handler func(body []byte) error, body []byte) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := handler(body)
		if err == nil {
			return
		}
		q.log.Warn("job failed",
			zap.String("topic", topic),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt == maxRetries {
			q.log.Error("job permanently failed", zap.String("topic", topic))
			return
		}
		// first retry fires immediately; later ones back off linearly
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
