package storage

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
)

// ClickHouseConversionStore reads conversion rows from ClickHouse.
type ClickHouseConversionStore struct {
	conn driver.Conn
}

// NewClickHouseConversionStore creates a conversion store over the given
// connection.
func NewClickHouseConversionStore(conn driver.Conn) *ClickHouseConversionStore {
	return &ClickHouseConversionStore{conn: conn}
}

// QueryConversions executes the prepared fetch query. The date range is
// already encoded in the query parameters; rng is unused here.
func (s *ClickHouseConversionStore) QueryConversions(ctx context.Context, q query.Query, _ models.DateRange) ([]models.ConversionRow, error) {
	rows, err := s.conn.Query(ctx, q.Text, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("conversion query failed: %w", err)
	}
	defer rows.Close()

	var result []models.ConversionRow
	for rows.Next() {
		var (
			r          models.ConversionRow
			recordType string
		)
		if err := rows.Scan(
			&r.Source,
			&r.CampaignID,
			&r.AdsetID,
			&r.AdID,
			&r.Country,
			&r.IP,
			&recordType,
			&r.Date,
			&r.Total,
			&r.Approved,
			&r.Customers,
			&r.OTSTotal,
			&r.OTSApproved,
			&r.UpsellTotal,
			&r.UpsellApproved,
		); err != nil {
			return nil, fmt.Errorf("conversion row scan failed: %w", err)
		}
		r.RecordType = models.RecordType(recordType)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversion rows iteration failed: %w", err)
	}
	return result, nil
}
