package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-reports/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresCampaignRepo creates a new PostgreSQL-backed campaign repository.
func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

// GetByID retrieves a campaign by ID. Returns (nil, nil) when no campaign
// with the given ID exists.
func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	var c models.Campaign
	var status string

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, budget, status, created_at, updated_at
		FROM campaigns WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Budget, &status, &c.CreatedAt, &c.UpdatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	c.Status = models.CampaignStatus(status)
	return &c, nil
}

// ListAll returns all campaigns.
func (r *PostgresCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, budget, status, created_at, updated_at
		FROM campaigns ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		var status string
		if err := rows.Scan(&c.ID, &c.Name, &c.Budget, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign row: %w", err)
		}
		c.Status = models.CampaignStatus(status)
		campaigns = append(campaigns, &c)
	}

	return campaigns, rows.Err()
}

// Upsert inserts or updates a campaign.
func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (id, name, budget, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			budget = EXCLUDED.budget,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.Name, c.Budget, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}
