package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radiusdt/vector-reports/internal/models"
)

// ClickHouseEventSource implements EventSource against a ClickHouse events
// table. At volume the raw event log lives in the warehouse; Postgres
// remains the default backend for smaller deployments.
type ClickHouseEventSource struct {
	db *sql.DB
}

// NewClickHouseEventSource creates a ClickHouse-backed event source.
func NewClickHouseEventSource(db *sql.DB) *ClickHouseEventSource {
	return &ClickHouseEventSource{db: db}
}

// FetchEvents returns all events of one kind for the campaign and the
// inclusive date range, in one query.
func (s *ClickHouseEventSource) FetchEvents(ctx context.Context, campaignID string, kind models.EventKind, start, end time.Time) ([]models.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, user_id, platform, event_date
		FROM campaign_events
		WHERE campaign_id = ? AND event_kind = ? AND event_date >= ? AND event_date <= ?
		ORDER BY event_date
	`, campaignID, string(kind), start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s events: %w", kind, err)
	}
	defer rows.Close()

	var events []models.EventRecord
	for rows.Next() {
		var e models.EventRecord
		if err := rows.Scan(&e.CampaignID, &e.UserID, &e.Platform, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Kind = kind
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event rows: %w", err)
	}

	return events, nil
}
