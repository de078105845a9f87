// Package storage provides access to the two independent tabular backing
// stores: the ad-spend side (PostgreSQL) and the conversion/order side
// (ClickHouse). Each store executes a parameterized query built elsewhere;
// placeholder conventions belong to the store, never to the engine. Every
// store also has an in-memory sibling used in tests and as a startup
// fallback when a backend is unreachable.
package storage

import (
	"context"

	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
)

// SpendStore fetches spend-dimension rows. SQL-backed stores execute q; the
// in-memory fallback filters its seeded rows by rng instead.
type SpendStore interface {
	QuerySpend(ctx context.Context, q query.Query, rng models.DateRange) ([]models.SpendDimensionRow, error)
}

// ConversionStore fetches conversion rows. SQL-backed stores execute q; the
// in-memory fallback filters its seeded rows by rng instead.
type ConversionStore interface {
	QueryConversions(ctx context.Context, q query.Query, rng models.DateRange) ([]models.ConversionRow, error)
}
