package repository

import (
	"database/sql"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type AgentRepositoryInterface interface {
	FirstForAccount(accountID int) (*model.Agent, error)
}

type AgentRepository struct {
	DB *sql.DB
}

// FirstForAccount returns the account's first agent (lowest id), the fallback
// sender for campaign messages when the campaign has none configured.
func (r *AgentRepository) FirstForAccount(accountID int) (*model.Agent, error) {
	query := `SELECT id, account_id, name FROM agents WHERE account_id = $1 ORDER BY id LIMIT 1`
	var a model.Agent
	err := r.DB.QueryRow(query, accountID).Scan(&a.ID, &a.AccountID, &a.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

var _ AgentRepositoryInterface = (*AgentRepository)(nil)
