package repository

import (
	"database/sql"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type InboxRepositoryInterface interface {
	GetByID(id int) (*model.Inbox, error)
}

type InboxRepository struct {
	DB *sql.DB
}

func (r *InboxRepository) GetByID(id int) (*model.Inbox, error) {
	query := `SELECT id, account_id, name, channel FROM inboxes WHERE id = $1`
	var inbox model.Inbox
	var channel string
	err := r.DB.QueryRow(query, id).Scan(&inbox.ID, &inbox.AccountID, &inbox.Name, &channel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	inbox.Channel = model.ParseChannelKind(channel)
	return &inbox, nil
}

var _ InboxRepositoryInterface = (*InboxRepository)(nil)
