package pivot

import (
	"errors"
	"fmt"

	"github.com/radiusdt/vector-attrib/internal/attribution"
	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
)

// Validation failures. These are returned to the caller inside the response
// body, never thrown past the component boundary.
var (
	ErrNoDimensions    = errors.New("no dimensions provided")
	ErrDepthOutOfRange = errors.New("depth out of range")
	ErrEmptyDateRange  = errors.New("date range produced no periods")
	ErrUnknownRateMode = errors.New("unknown rate mode")
)

// RateModeConfig centralizes everything a rate mode decides: which date field
// buckets rows and which status condition constitutes "matched". The
// conversion fetch and the paired detail listing both read this one value and
// never redefine any of it locally.
type RateModeConfig struct {
	Mode             models.RateMode
	DateField        string
	MatchedCondition string
}

var rateModeConfigs = map[models.RateMode]RateModeConfig{
	models.RateModeApproval: {
		Mode:             models.RateModeApproval,
		DateField:        "created_at",
		MatchedCondition: "status = 'approved'",
	},
	models.RateModePay: {
		Mode:             models.RateModePay,
		DateField:        "paid_at",
		MatchedCondition: "paid_at IS NOT NULL",
	},
	models.RateModeBuy: {
		Mode:             models.RateModeBuy,
		DateField:        "purchased_at",
		MatchedCondition: "status = 'purchased'",
	},
}

// ModeConfig returns the configuration for a rate mode.
func ModeConfig(mode models.RateMode) (RateModeConfig, error) {
	cfg, ok := rateModeConfigs[mode]
	if !ok {
		return RateModeConfig{}, fmt.Errorf("%w: %q", ErrUnknownRateMode, mode)
	}
	return cfg, nil
}

// ValidateSpec checks the structural invariants of a dimension query spec.
func ValidateSpec(spec models.DimensionQuerySpec) error {
	if len(spec.Dimensions) == 0 {
		return ErrNoDimensions
	}
	if spec.Depth < 0 || spec.Depth >= len(spec.Dimensions) {
		return fmt.Errorf("%w: depth %d with %d dimensions", ErrDepthOutOfRange, spec.Depth, len(spec.Dimensions))
	}
	return nil
}

// UnknownSentinel is the ancestor-filter value that stands for a missing
// dimension value. It compiles to the dimension's null-check expression,
// never to a literal equality.
const UnknownSentinel = "Unknown"

// appendAncestorFilters writes one condition per ancestor dimension above the
// current depth. The "Unknown" sentinel becomes the dimension's null-check
// expression. A network ancestor expands through the alias table into the CRM
// source labels it stands for, so SQL filtering accepts exactly the rows the
// in-memory matcher accepts; pass nil aliases for tables keyed by network
// label directly.
func appendAncestorFilters(b *query.Builder, spec models.DimensionQuerySpec, reg DimensionRegistry, aliases attribution.SourceAliases) error {
	for i := 0; i < spec.Depth; i++ {
		dim := spec.Dimensions[i]
		col, ok := reg.Resolve(dim)
		if !ok {
			return fmt.Errorf("unknown dimension %q", dim)
		}
		value, ok := spec.AncestorFilters[dim]
		if !ok {
			continue
		}
		if value == UnknownSentinel {
			b.Write(" AND ").Write(col.NullCheck)
			continue
		}
		if dim == "network" && aliases != nil {
			if sources := aliases.SourcesFor(value); len(sources) > 0 {
				b.Write(" AND ").Write(col.Column).Write(" IN (")
				for j, src := range sources {
					if j > 0 {
						b.Write(", ")
					}
					b.WriteParam(src)
				}
				b.Write(")")
				continue
			}
		}
		b.Write(" AND ").Write(col.Column).Write(" = ").WriteParam(value)
	}
	return nil
}

// BuildDetailQuery builds the paired "show underlying records" listing for a
// pivot cell. It reads the same RateModeConfig and the same ancestor-filter
// compilation as the conversion fetch feeding the aggregate path: same date
// field, same matched condition, same sentinel and alias semantics. The fetch
// keeps zero-matched values because conversion_daily carries matched counts
// as columns; the listing joins orders directly because it enumerates actual
// matched records. The projection matches the conversion store's scan column
// for column.
func BuildDetailQuery(spec models.DimensionQuerySpec, rng models.DateRange, reg DimensionRegistry, aliases attribution.SourceAliases, style query.PlaceholderStyle, rowCap int) (query.Query, error) {
	if err := ValidateSpec(spec); err != nil {
		return query.Query{}, err
	}
	mode, err := ModeConfig(spec.RateMode)
	if err != nil {
		return query.Query{}, err
	}

	b := query.NewBuilder(style)
	b.Write("SELECT c.source, c.campaign_id, c.adset_id, c.ad_id, c.country, c.ip, c.record_type, c.")
	b.Write(mode.DateField).Write(" AS event_date")
	b.Write(", c.total, c.approved, c.customers, c.ots_total, c.ots_approved, c.upsell_total, c.upsell_approved")
	b.Write(" FROM conversions c")
	b.Write(" JOIN orders o ON o.conversion_id = c.id")
	b.Write(" WHERE c.").Write(mode.DateField).Write(" >= ").WriteParam(rng.Start)
	b.Write(" AND c.").Write(mode.DateField).Write(" <= ").WriteParam(rng.End)
	b.Write(" AND o.").Write(mode.MatchedCondition)
	if err := appendAncestorFilters(b, spec, reg, aliases); err != nil {
		return query.Query{}, err
	}
	b.Write(" ORDER BY event_date DESC")
	b.Write(" LIMIT ").WriteParam(rowCap)
	return b.Query(), nil
}

// BuildConversionFetchQuery fetches the raw conversion rows the in-memory
// tiered join runs over. Bucketing uses the rate mode's date field and
// ancestor filters compile exactly as in the paired detail query, so the
// aggregate and its listing always agree on the row population.
func BuildConversionFetchQuery(spec models.DimensionQuerySpec, rng models.DateRange, reg DimensionRegistry, aliases attribution.SourceAliases, style query.PlaceholderStyle, rowCap int) (query.Query, error) {
	if err := ValidateSpec(spec); err != nil {
		return query.Query{}, err
	}
	mode, err := ModeConfig(spec.RateMode)
	if err != nil {
		return query.Query{}, err
	}

	b := query.NewBuilder(style)
	b.Write("SELECT source, campaign_id, adset_id, ad_id, country, ip, record_type, ")
	b.Write(mode.DateField).Write(" AS event_date")
	b.Write(", total, approved, customers, ots_total, ots_approved, upsell_total, upsell_approved")
	b.Write(" FROM conversion_daily")
	b.Write(" WHERE ").Write(mode.DateField).Write(" >= ").WriteParam(rng.Start)
	b.Write(" AND ").Write(mode.DateField).Write(" <= ").WriteParam(rng.End)
	if err := appendAncestorFilters(b, spec, reg, aliases); err != nil {
		return query.Query{}, err
	}
	b.Write(" LIMIT ").WriteParam(rowCap)
	return b.Query(), nil
}

// BuildSpendFetchQuery fetches the spend-dimension rows for the current
// drill-down level. Spend rows carry network labels directly, so ancestor
// filters run against spend_rollup's label columns with no alias translation.
func BuildSpendFetchQuery(spec models.DimensionQuerySpec, rng models.DateRange, style query.PlaceholderStyle, rowCap int) (query.Query, error) {
	if err := ValidateSpec(spec); err != nil {
		return query.Query{}, err
	}
	reg := spendRegistry()
	col, ok := reg.Resolve(spec.Dimensions[spec.Depth])
	if !ok {
		return query.Query{}, fmt.Errorf("unknown dimension %q", spec.Dimensions[spec.Depth])
	}

	b := query.NewBuilder(style)
	b.Write("SELECT ").Write(col.Column).Write(" AS attribute")
	b.Write(", campaign_ids, adset_ids, ad_ids, networks, country, spend_date, cost, clicks, impressions")
	b.Write(" FROM spend_rollup")
	b.Write(" WHERE spend_date >= ").WriteParam(rng.Start)
	b.Write(" AND spend_date <= ").WriteParam(rng.End)
	if err := appendAncestorFilters(b, spec, reg, nil); err != nil {
		return query.Query{}, err
	}
	b.Write(" LIMIT ").WriteParam(rowCap)
	return b.Query(), nil
}
