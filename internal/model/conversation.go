// internal/model/conversation.go
package model

import "time"

const (
	ConversationStatusOpen     = "open"
	ConversationStatusResolved = "resolved"
	ConversationStatusSnoozed  = "snoozed"
)

type Conversation struct {
	ID             int        `db:"id" json:"id"`
	AccountID      int        `db:"account_id" json:"account_id"`
	InboxID        int        `db:"inbox_id" json:"inbox_id"`
	ContactID      int        `db:"contact_id" json:"contact_id"`
	ContactInboxID int        `db:"contact_inbox_id" json:"contact_inbox_id"`
	CampaignID     *int       `db:"campaign_id" json:"campaign_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	AssigneeID     *int       `db:"assignee_id" json:"assignee_id,omitempty"`
	TeamID         *int       `db:"team_id" json:"team_id,omitempty"`
	Priority       string     `db:"priority" json:"priority,omitempty"`
	Muted          bool       `db:"muted" json:"muted"`
	SnoozedUntil   *time.Time `db:"snoozed_until" json:"snoozed_until,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
