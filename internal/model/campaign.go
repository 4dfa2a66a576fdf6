// internal/model/campaign.go
package model

import (
	"encoding/json"
	"strings"
	"time"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// AudienceEntry is one reference in a campaign's stored audience definition.
// Only entries with Type == "Label" are interpreted by the pipeline; anything
// else is skipped during resolution.
type AudienceEntry struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

type Campaign struct {
	ID             int             `db:"id" json:"id"`
	AccountID      int             `db:"account_id" json:"account_id"`
	InboxID        int             `db:"inbox_id" json:"inbox_id"`
	Title          string          `db:"title" json:"title"`
	Message        string          `db:"message" json:"message"`
	Audience       []AudienceEntry `db:"audience" json:"audience"`
	TemplateParams json.RawMessage `db:"template_params" json:"template_params,omitempty"`
	Status         CampaignStatus  `db:"campaign_status" json:"status"`
	Enabled        bool            `db:"enabled" json:"enabled"`
	ScheduledAt    *time.Time      `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SenderID       *int            `db:"sender_id" json:"sender_id,omitempty"`
	SentCount      int             `db:"sent_count" json:"sent_count"`
	FailedCount    int             `db:"failed_count" json:"failed_count"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

func (c *Campaign) Completed() bool {
	return c.Status == CampaignStatusCompleted
}

func (c *Campaign) HasMessage() bool {
	return strings.TrimSpace(c.Message) != ""
}

// HasTemplate reports whether a template payload is stored on the campaign.
// The payload stays raw here; parsing happens at dispatch time.
func (c *Campaign) HasTemplate() bool {
	raw := strings.TrimSpace(string(c.TemplateParams))
	return raw != "" && raw != "null" && raw != "{}" && raw != `""`
}
