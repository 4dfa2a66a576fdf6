package queue

import "encoding/json"

// NotificationDispatcher hands automation side effects off to the broker.
// Delivery transport and retry live with the consumers, not here.
type NotificationDispatcher struct {
	Queue Queue
}

func (d *NotificationDispatcher) PublishWebhookEvent(url string, payload map[string]any) error {
	body, err := json.Marshal(WebhookEvent{URL: url, Payload: payload})
	if err != nil {
		return err
	}
	return d.Queue.Publish(TopicWebhookEvents, body)
}

func (d *NotificationDispatcher) SendEmailToTeam(teamID, conversationID int, message string) error {
	body, err := json.Marshal(TeamEmail{TeamID: teamID, ConversationID: conversationID, Message: message})
	if err != nil {
		return err
	}
	return d.Queue.Publish(TopicTeamEmails, body)
}
