package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

// ContactRepositoryInterface defines the read surface the dispatch pipeline
// needs; contact ownership lives in the contact-management subsystem.
type ContactRepositoryInterface interface {
	GetByID(id int) (*model.Contact, error)
	TaggedWithAny(accountID int, labelTitles []string) ([]model.Contact, error)
	ListByInbox(inboxID int) ([]model.Contact, error)
}

type ContactRepository struct {
	DB *sql.DB
}

func (r *ContactRepository) GetByID(id int) (*model.Contact, error) {
	query := `
        SELECT id, account_id, name, email, phone_number
        FROM contacts
        WHERE id = $1
    `
	row := r.DB.QueryRow(query, id)

	var c model.Contact
	if err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.PhoneNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &c, nil
}

// TaggedWithAny returns the account's contacts tagged with at least one of
// the given label titles, deduplicated.
func (r *ContactRepository) TaggedWithAny(accountID int, labelTitles []string) ([]model.Contact, error) {
	if len(labelTitles) == 0 {
		return []model.Contact{}, nil
	}
	query := `
        SELECT DISTINCT c.id, c.account_id, c.name, c.email, c.phone_number
        FROM contacts c
        JOIN contact_labels cl ON cl.contact_id = c.id
        JOIN labels l ON l.id = cl.label_id
        WHERE c.account_id = $1 AND l.title = ANY($2)
        ORDER BY c.id
    `
	rows, err := r.DB.Query(query, accountID, pq.Array(labelTitles))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContacts(rows)
}

// ListByInbox returns every contact already bound to the inbox. Used by the
// runner's fallback-to-all-contacts option when the audience resolves empty.
func (r *ContactRepository) ListByInbox(inboxID int) ([]model.Contact, error) {
	query := `
        SELECT DISTINCT c.id, c.account_id, c.name, c.email, c.phone_number
        FROM contacts c
        JOIN contact_inboxes ci ON ci.contact_id = c.id
        WHERE ci.inbox_id = $1
        ORDER BY c.id
    `
	rows, err := r.DB.Query(query, inboxID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContacts(rows)
}

func scanContacts(rows *sql.Rows) ([]model.Contact, error) {
	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Email, &c.PhoneNumber); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

var _ ContactRepositoryInterface = (*ContactRepository)(nil)
