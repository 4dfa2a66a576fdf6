package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/chatdesk-backend/internal/errors"
	"github.com/unclebandit/chatdesk-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error)
	GetByID(id int) (*model.Campaign, error)
	Create(c *model.Campaign) error
	Update(c *model.Campaign) error

	// Dispatch pipeline
	ClaimCompletion(campaignID int) (bool, error)
	UpdateRunCounts(campaignID, sent, failed int) error
	ListDue(now time.Time) ([]*model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, account_id, inbox_id, title, message, audience, template_params,
       campaign_status, enabled, scheduled_at, sender_id, sent_count, failed_count, created_at, updated_at`

func scanCampaign(row interface{ Scan(dest ...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	var audience []byte
	var templateParams []byte
	err := row.Scan(
		&c.ID, &c.AccountID, &c.InboxID, &c.Title, &c.Message, &audience, &templateParams,
		&c.Status, &c.Enabled, &c.ScheduledAt, &c.SenderID, &c.SentCount, &c.FailedCount,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(audience) > 0 {
		if err := json.Unmarshal(audience, &c.Audience); err != nil {
			return nil, fmt.Errorf("campaign %d: decode audience: %w", c.ID, err)
		}
	}
	c.TemplateParams = json.RawMessage(templateParams)
	return &c, nil
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignStatusActive
	}
	audience, err := json.Marshal(c.Audience)
	if err != nil {
		return err
	}
	templateParams := []byte("null")
	if len(c.TemplateParams) > 0 {
		templateParams = c.TemplateParams
	}
	query := `
        INSERT INTO campaigns (account_id, inbox_id, title, message, audience, template_params,
                               campaign_status, enabled, scheduled_at, sender_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.AccountID, c.InboxID, c.Title, c.Message, audience, templateParams,
		c.Status, c.Enabled, c.ScheduledAt, c.SenderID, c.CreatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	audience, err := json.Marshal(c.Audience)
	if err != nil {
		return err
	}
	query := `
        UPDATE campaigns
        SET title=$1, message=$2, audience=$3, template_params=$4, enabled=$5, scheduled_at=$6, updated_at=NOW()
        WHERE id=$7
    `
	_, err = r.DB.Exec(query, c.Title, c.Message, audience, []byte(c.TemplateParams), c.Enabled, c.ScheduledAt, c.ID)
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + qualifiedCampaignColumns() + `
              FROM campaigns c JOIN inboxes i ON i.id = c.inbox_id WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if channel != "" {
		query += fmt.Sprintf(" AND i.channel=$%d", argPos)
		args = append(args, channel)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND c.campaign_status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY c.id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	// Count total
	countQuery := `SELECT COUNT(*) FROM campaigns c JOIN inboxes i ON i.id = c.inbox_id WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if channel != "" {
		countQuery += fmt.Sprintf(" AND i.channel=$%d", argPosCount)
		argsCount = append(argsCount, channel)
		argPosCount++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND c.campaign_status=$%d", argPosCount)
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ClaimCompletion flips the campaign from active to completed in a single
// conditional UPDATE. Exactly one concurrent caller observes true; everyone
// else sees the row already completed and must treat the run as a no-op.
func (r *CampaignRepository) ClaimCompletion(campaignID int) (bool, error) {
	res, err := r.DB.Exec(
		`UPDATE campaigns SET campaign_status=$1, updated_at=NOW() WHERE id=$2 AND campaign_status=$3`,
		model.CampaignStatusCompleted, campaignID, model.CampaignStatusActive,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *CampaignRepository) UpdateRunCounts(campaignID, sent, failed int) error {
	query := `UPDATE campaigns SET sent_count=$1, failed_count=$2, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, sent, failed, campaignID)
	return err
}

// ListDue returns active, enabled campaigns whose scheduled_at has passed.
func (r *CampaignRepository) ListDue(now time.Time) ([]*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + `
              FROM campaigns
              WHERE campaign_status=$1 AND enabled=TRUE AND scheduled_at IS NOT NULL AND scheduled_at <= $2
              ORDER BY scheduled_at`
	rows, err := r.DB.Query(query, model.CampaignStatusActive, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func qualifiedCampaignColumns() string {
	return `c.id, c.account_id, c.inbox_id, c.title, c.message, c.audience, c.template_params,
            c.campaign_status, c.enabled, c.scheduled_at, c.sender_id, c.sent_count, c.failed_count,
            c.created_at, c.updated_at`
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
