package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-reports/internal/models"
)

// PostgresProfileStore implements ProfileStore using PostgreSQL.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileStore creates a new PostgreSQL-backed profile store.
func NewPostgresProfileStore(pool *pgxpool.Pool) *PostgresProfileStore {
	return &PostgresProfileStore{pool: pool}
}

// ResolveBatch resolves all given user IDs with a single query. Unknown
// IDs are absent from the result.
func (s *PostgresProfileStore) ResolveBatch(ctx context.Context, userIDs []string) (map[string]models.UserProfile, error) {
	result := make(map[string]models.UserProfile, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT user_id, country, COALESCE(last_seen_ip, '')
		FROM user_profiles
		WHERE user_id = ANY($1)
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.UserID, &p.Country, &p.LastSeenIP); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		result[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profile rows: %w", err)
	}

	return result, nil
}
