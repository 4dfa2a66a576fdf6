package repository

import (
	"database/sql"

	"github.com/lib/pq"
)

type LabelRepositoryInterface interface {
	TitlesByIDs(accountID int, ids []int) ([]string, error)
}

type LabelRepository struct {
	DB *sql.DB
}

// TitlesByIDs resolves label ids to titles scoped to the account. Ids that do
// not belong to the account are silently dropped, not an error.
func (r *LabelRepository) TitlesByIDs(accountID int, ids []int) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	idArgs := make([]int64, len(ids))
	for i, id := range ids {
		idArgs[i] = int64(id)
	}
	query := `SELECT title FROM labels WHERE account_id = $1 AND id = ANY($2) ORDER BY id`
	rows, err := r.DB.Query(query, accountID, pq.Array(idArgs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

var _ LabelRepositoryInterface = (*LabelRepository)(nil)
