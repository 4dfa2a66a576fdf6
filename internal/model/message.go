// internal/model/message.go
package model

import "time"

const MessageTypeOutgoing = "outgoing"

// Message is one outbound record on a conversation. ContentAttributes carries
// structured metadata (campaign id, template payload, automation rule id,
// attachment blob ids) and is persisted as jsonb.
type Message struct {
	ID                int            `db:"id" json:"id"`
	ConversationID    int            `db:"conversation_id" json:"conversation_id"`
	AccountID         int            `db:"account_id" json:"account_id"`
	InboxID           int            `db:"inbox_id" json:"inbox_id"`
	MessageType       string         `db:"message_type" json:"message_type"`
	Private           bool           `db:"private" json:"private"`
	Content           string         `db:"content" json:"content"`
	SenderID          *int           `db:"sender_id" json:"sender_id,omitempty"`
	ContentAttributes map[string]any `db:"content_attributes" json:"content_attributes,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}
