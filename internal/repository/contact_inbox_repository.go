package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type ContactInboxRepositoryInterface interface {
	FindByContactAndInbox(contactID, inboxID int) (*model.ContactInbox, error)
	Create(binding *model.ContactInbox) error
}

type ContactInboxRepository struct {
	DB *sql.DB
}

func (r *ContactInboxRepository) FindByContactAndInbox(contactID, inboxID int) (*model.ContactInbox, error) {
	query := `
        SELECT id, contact_id, inbox_id, source_id
        FROM contact_inboxes
        WHERE contact_id = $1 AND inbox_id = $2
    `
	var binding model.ContactInbox
	err := r.DB.QueryRow(query, contactID, inboxID).Scan(
		&binding.ID, &binding.ContactID, &binding.InboxID, &binding.SourceID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &binding, nil
}

// Create inserts the binding. The table carries a unique constraint on
// (contact_id, inbox_id); a violation surfaces as a pq error that callers
// detect via IsUniqueViolation and resolve by re-fetching.
func (r *ContactInboxRepository) Create(binding *model.ContactInbox) error {
	query := `
        INSERT INTO contact_inboxes (contact_id, inbox_id, source_id)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	return r.DB.QueryRow(query, binding.ContactID, binding.InboxID, binding.SourceID).Scan(&binding.ID)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation
// (23505). Concurrent binding attempts for the same (contact, inbox) pair
// land here; the row that won the race is the binding to use.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

var _ ContactInboxRepositoryInterface = (*ContactInboxRepository)(nil)
