package storage

import (
	"context"
	"sync"
	"time"

	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
)

// InMemorySpendStore holds spend rows in memory. Used in tests and as the
// fallback when PostgreSQL is unavailable at startup.
type InMemorySpendStore struct {
	mu   sync.RWMutex
	rows []models.SpendDimensionRow
}

// NewInMemorySpendStore creates an empty in-memory spend store.
func NewInMemorySpendStore() *InMemorySpendStore {
	return &InMemorySpendStore{}
}

// Seed replaces the stored rows.
func (s *InMemorySpendStore) Seed(rows []models.SpendDimensionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]models.SpendDimensionRow(nil), rows...)
}

// QuerySpend ignores the query text and filters seeded rows by date range.
func (s *InMemorySpendStore) QuerySpend(_ context.Context, _ query.Query, rng models.DateRange) ([]models.SpendDimensionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.SpendDimensionRow, 0, len(s.rows))
	for _, r := range s.rows {
		if inRange(r.Date, rng) {
			result = append(result, r)
		}
	}
	return result, nil
}

// InMemoryConversionStore holds conversion rows in memory. Used in tests and
// as the fallback when ClickHouse is unavailable at startup.
type InMemoryConversionStore struct {
	mu   sync.RWMutex
	rows []models.ConversionRow
}

// NewInMemoryConversionStore creates an empty in-memory conversion store.
func NewInMemoryConversionStore() *InMemoryConversionStore {
	return &InMemoryConversionStore{}
}

// Seed replaces the stored rows.
func (s *InMemoryConversionStore) Seed(rows []models.ConversionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append([]models.ConversionRow(nil), rows...)
}

// QueryConversions ignores the query text and filters seeded rows by date
// range.
func (s *InMemoryConversionStore) QueryConversions(_ context.Context, _ query.Query, rng models.DateRange) ([]models.ConversionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.ConversionRow, 0, len(s.rows))
	for _, r := range s.rows {
		if inRange(r.Date, rng) {
			result = append(result, r)
		}
	}
	return result, nil
}

// inRange checks t against the inclusive date range at date precision.
func inRange(t time.Time, rng models.DateRange) bool {
	return !t.Before(rng.Start) && t.Before(rng.End.AddDate(0, 0, 1))
}
