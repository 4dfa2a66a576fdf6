package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type ConversationRepositoryInterface interface {
	LatestForContactInbox(contactInboxID int) (*model.Conversation, error)
	Create(c *model.Conversation) error

	// Automation action mutations
	AssignAgent(conversationID, agentID int) error
	AssignTeam(conversationID, teamID int) error
	AddLabels(conversationID int, labels []string) error
	RemoveLabels(conversationID int, labels []string) error
	MuteConversation(conversationID int) error
	SnoozeConversation(conversationID int, snoozedUntil *time.Time) error
	ResolveConversation(conversationID int) error
	ReopenConversation(conversationID int) error
	ChangePriority(conversationID int, priority string) error
}

type ConversationRepository struct {
	DB *sql.DB
}

const conversationColumns = `id, account_id, inbox_id, contact_id, contact_inbox_id, campaign_id,
       status, assignee_id, team_id, priority, muted, snoozed_until, created_at`

// LatestForContactInbox returns the most recently created conversation on the
// binding, or nil when none exists yet.
func (r *ConversationRepository) LatestForContactInbox(contactInboxID int) (*model.Conversation, error) {
	query := `SELECT ` + conversationColumns + `
              FROM conversations
              WHERE contact_inbox_id = $1
              ORDER BY created_at DESC, id DESC
              LIMIT 1`
	var c model.Conversation
	var priority sql.NullString
	err := r.DB.QueryRow(query, contactInboxID).Scan(
		&c.ID, &c.AccountID, &c.InboxID, &c.ContactID, &c.ContactInboxID, &c.CampaignID,
		&c.Status, &c.AssigneeID, &c.TeamID, &priority, &c.Muted, &c.SnoozedUntil, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.Priority = priority.String
	return &c, nil
}

func (r *ConversationRepository) Create(c *model.Conversation) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.ConversationStatusOpen
	}
	query := `
        INSERT INTO conversations (account_id, inbox_id, contact_id, contact_inbox_id, campaign_id, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.AccountID, c.InboxID, c.ContactID, c.ContactInboxID, c.CampaignID, c.Status, c.CreatedAt,
	).Scan(&c.ID)
}

// ====================== Automation mutations ======================

func (r *ConversationRepository) AssignAgent(conversationID, agentID int) error {
	_, err := r.DB.Exec(`UPDATE conversations SET assignee_id=$1 WHERE id=$2`, agentID, conversationID)
	return err
}

func (r *ConversationRepository) AssignTeam(conversationID, teamID int) error {
	_, err := r.DB.Exec(`UPDATE conversations SET team_id=$1 WHERE id=$2`, teamID, conversationID)
	return err
}

func (r *ConversationRepository) AddLabels(conversationID int, labels []string) error {
	for _, label := range labels {
		_, err := r.DB.Exec(
			`INSERT INTO conversation_labels (conversation_id, label_title) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			conversationID, label,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ConversationRepository) RemoveLabels(conversationID int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, err := r.DB.Exec(
		`DELETE FROM conversation_labels WHERE conversation_id=$1 AND label_title = ANY($2)`,
		conversationID, pq.Array(labels),
	)
	return err
}

func (r *ConversationRepository) MuteConversation(conversationID int) error {
	_, err := r.DB.Exec(`UPDATE conversations SET muted=TRUE WHERE id=$1`, conversationID)
	return err
}

func (r *ConversationRepository) SnoozeConversation(conversationID int, snoozedUntil *time.Time) error {
	_, err := r.DB.Exec(
		`UPDATE conversations SET status=$1, snoozed_until=$2 WHERE id=$3`,
		model.ConversationStatusSnoozed, snoozedUntil, conversationID,
	)
	return err
}

func (r *ConversationRepository) ResolveConversation(conversationID int) error {
	_, err := r.DB.Exec(`UPDATE conversations SET status=$1, snoozed_until=NULL WHERE id=$2`,
		model.ConversationStatusResolved, conversationID)
	return err
}

func (r *ConversationRepository) ReopenConversation(conversationID int) error {
	_, err := r.DB.Exec(`UPDATE conversations SET status=$1, snoozed_until=NULL WHERE id=$2`,
		model.ConversationStatusOpen, conversationID)
	return err
}

func (r *ConversationRepository) ChangePriority(conversationID int, priority string) error {
	_, err := r.DB.Exec(`UPDATE conversations SET priority=$1 WHERE id=$2`, priority, conversationID)
	return err
}

var _ ConversationRepositoryInterface = (*ConversationRepository)(nil)
