package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
)

// PostgresSpendStore reads spend-dimension rollups from PostgreSQL.
type PostgresSpendStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSpendStore creates a spend store over the given pool.
func NewPostgresSpendStore(pool *pgxpool.Pool) *PostgresSpendStore {
	return &PostgresSpendStore{pool: pool}
}

// QuerySpend executes the prepared fetch query. The date range is already
// encoded in the query parameters; rng is unused here.
func (s *PostgresSpendStore) QuerySpend(ctx context.Context, q query.Query, _ models.DateRange) ([]models.SpendDimensionRow, error) {
	rows, err := s.pool.Query(ctx, q.Text, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("spend query failed: %w", err)
	}
	defer rows.Close()

	var result []models.SpendDimensionRow
	for rows.Next() {
		var r models.SpendDimensionRow
		if err := rows.Scan(
			&r.Attribute,
			&r.CampaignIDs,
			&r.AdsetIDs,
			&r.AdIDs,
			&r.Networks,
			&r.Country,
			&r.Date,
			&r.Cost,
			&r.Clicks,
			&r.Impressions,
		); err != nil {
			return nil, fmt.Errorf("spend row scan failed: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("spend rows iteration failed: %w", err)
	}
	return result, nil
}
