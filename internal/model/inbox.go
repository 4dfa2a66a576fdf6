// internal/model/inbox.go
package model

type Inbox struct {
	ID        int         `db:"id" json:"id"`
	AccountID int         `db:"account_id" json:"account_id"`
	Name      string      `db:"name" json:"name"`
	Channel   ChannelKind `db:"channel" json:"channel"`
}

// ContactInbox binds a contact to an inbox with a channel-specific address.
// At most one binding exists per (contact, inbox) pair; the pipeline creates
// them lazily and they persist for reuse by later conversations.
type ContactInbox struct {
	ID        int    `db:"id" json:"id"`
	ContactID int    `db:"contact_id" json:"contact_id"`
	InboxID   int    `db:"inbox_id" json:"inbox_id"`
	SourceID  string `db:"source_id" json:"source_id"`
}
