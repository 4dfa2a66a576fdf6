package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type MessageRepositoryInterface interface {
	Create(m *model.Message) error
	CountForCampaign(campaignID int) (int, error)
}

type MessageRepository struct {
	DB *sql.DB
}

// Create inserts a new message and fills in its generated id.
func (r *MessageRepository) Create(m *model.Message) error {
	m.CreatedAt = time.Now()
	if m.MessageType == "" {
		m.MessageType = model.MessageTypeOutgoing
	}
	attrs := []byte("{}")
	if m.ContentAttributes != nil {
		encoded, err := json.Marshal(m.ContentAttributes)
		if err != nil {
			return err
		}
		attrs = encoded
	}
	query := `
        INSERT INTO messages (conversation_id, account_id, inbox_id, message_type, private, content, sender_id, content_attributes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		m.ConversationID, m.AccountID, m.InboxID, m.MessageType, m.Private,
		m.Content, m.SenderID, attrs, m.CreatedAt,
	).Scan(&m.ID)
}

// CountForCampaign counts messages attributed to the campaign via their
// content attributes. Backs the details endpoint's run stats.
func (r *MessageRepository) CountForCampaign(campaignID int) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE (content_attributes->>'campaign_id')::int = $1`
	var count int
	if err := r.DB.QueryRow(query, campaignID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
