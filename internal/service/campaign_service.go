// internal/service/campaign_service.go
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/queue"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	InboxRepo    repository.InboxRepositoryInterface
	MessageRepo  repository.MessageRepositoryInterface
	Resolver     *AudienceResolver
	Queue        queue.Queue
	Log          *zap.Logger
}

type CreateCampaignInput struct {
	AccountID      int                   `json:"account_id"`
	InboxID        int                   `json:"inbox_id"`
	Title          string                `json:"title"`
	Message        string                `json:"message"`
	Audience       []model.AudienceEntry `json:"audience"`
	TemplateParams json.RawMessage       `json:"template_params"`
	SenderID       *int                  `json:"sender_id"`
	ScheduledAt    *string               `json:"scheduled_at"`
	Enabled        *bool                 `json:"enabled"`
}

type CampaignDetails struct {
	*model.Campaign
	Channel string         `json:"channel"`
	Stats   map[string]int `json:"stats"`
}

func (s *CampaignService) CreateCampaign(input CreateCampaignInput) (*model.Campaign, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.AccountID == 0 || input.InboxID == 0 {
		return nil, fmt.Errorf("account_id and inbox_id are required")
	}

	inbox, err := s.InboxRepo.GetByID(input.InboxID)
	if err != nil {
		return nil, err
	}
	if inbox == nil || inbox.AccountID != input.AccountID {
		return nil, fmt.Errorf("inbox %d not found for account %d", input.InboxID, input.AccountID)
	}

	c := &model.Campaign{
		AccountID:      input.AccountID,
		InboxID:        input.InboxID,
		Title:          input.Title,
		Message:        input.Message,
		Audience:       input.Audience,
		TemplateParams: input.TemplateParams,
		Status:         model.CampaignStatusActive,
		Enabled:        true,
		SenderID:       input.SenderID,
	}
	if input.Enabled != nil {
		c.Enabled = *input.Enabled
	}

	if !c.HasMessage() && !c.HasTemplate() {
		return nil, appErrors.NewMissingContent(0)
	}
	// reject malformed template payloads at the door rather than at dispatch
	if c.HasTemplate() {
		if _, err := ParseTemplateParams(c.TemplateParams); err != nil {
			return nil, err
		}
	}

	if input.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *input.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("scheduled_at: %w", err)
		}
		c.ScheduledAt = &t
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, channel, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, channel, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetails(id int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	inbox, err := s.InboxRepo.GetByID(campaign.InboxID)
	if err != nil {
		return nil, err
	}
	channel := "unknown"
	if inbox != nil {
		channel = inbox.Channel.String()
	}

	messages, err := s.MessageRepo.CountForCampaign(campaign.ID)
	if err != nil {
		return nil, err
	}

	return &CampaignDetails{
		Campaign: campaign,
		Channel:  channel,
		Stats: map[string]int{
			"sent":     campaign.SentCount,
			"failed":   campaign.FailedCount,
			"messages": messages,
		},
	}, nil
}

// TriggerCampaign enqueues a run for the worker. The runner's claim keeps a
// double trigger harmless.
func (s *CampaignService) TriggerCampaign(id int) error {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if campaign.Completed() {
		return fmt.Errorf("campaign %d is already completed", id)
	}

	body, err := json.Marshal(queue.TriggerJob{CampaignID: campaign.ID})
	if err != nil {
		return err
	}
	if err := s.Queue.Publish(queue.TopicCampaignTriggers, body); err != nil {
		return err
	}
	s.Log.Info("campaign trigger enqueued", zap.Int("campaign_id", campaign.ID))
	return nil
}

// PreviewAudience resolves the campaign's audience read-only and returns the
// matched contact ids.
func (s *CampaignService) PreviewAudience(id int) ([]int, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.Resolver.Resolve(campaign)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	return ids, nil
}
