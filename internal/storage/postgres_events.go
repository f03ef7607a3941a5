package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-reports/internal/models"
)

// PostgresEventSource implements EventSource using PostgreSQL.
type PostgresEventSource struct {
	pool *pgxpool.Pool
}

// NewPostgresEventSource creates a new PostgreSQL-backed event source.
func NewPostgresEventSource(pool *pgxpool.Pool) *PostgresEventSource {
	return &PostgresEventSource{pool: pool}
}

// FetchEvents returns all events of one kind for the campaign and the
// inclusive date range, in one query.
func (s *PostgresEventSource) FetchEvents(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT campaign_id, user_id, platform, event_date, event_kind
		FROM campaign_events
		WHERE campaign_id = $1 AND event_kind = $2 AND event_date BETWEEN $3 AND $4
		ORDER BY event_date
	`, campaignID, string(kind), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s events: %w", kind, err)
	}
	defer rows.Close()

	var events []models.EventRecord
	for rows.Next() {
		var e models.EventRecord
		var k string
		if err := rows.Scan(&e.CampaignID, &e.UserID, &e.Platform, &e.Date, &k); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Kind = models.EventKind(k)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}

	return events, nil
}

// SaveEvent stores a single event record.
func (s *PostgresEventSource) SaveEvent(ctx context.Context, e models.EventRecord) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO campaign_events (campaign_id, user_id, platform, event_date, event_kind)
		VALUES ($1, $2, $3, $4, $5)
	`, e.CampaignID, e.UserID, e.Platform, e.Date, string(e.Kind))
	if err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}
