package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PeriodType selects the calendar bucketing for pivot columns.
type PeriodType string

const (
	PeriodWeekly   PeriodType = "weekly"
	PeriodBiweekly PeriodType = "biweekly" // calendar half-month (1-14, 15-EOM)
	PeriodMonthly  PeriodType = "monthly"
)

// Valid reports whether the period type is one of the supported values.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly:
		return true
	}
	return false
}

// RateMode selects which definition of "successful outcome" drives the
// numerator, and which date field and join direction the queries use.
type RateMode string

const (
	RateModeApproval RateMode = "approval"
	RateModePay      RateMode = "pay"
	RateModeBuy      RateMode = "buy"
)

// Valid reports whether the rate mode is one of the supported values.
func (m RateMode) Valid() bool {
	switch m {
	case RateModeApproval, RateModePay, RateModeBuy:
		return true
	}
	return false
}

// TimePeriodColumn is one calendar-aligned bucket of the pivot table.
// Start and End are both inclusive.
type TimePeriodColumn struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period (date precision).
func (c TimePeriodColumn) Contains(t time.Time) bool {
	return !t.Before(c.Start) && t.Before(c.End.AddDate(0, 0, 1))
}

// PeriodMetric is one cell of the pivot table.
type PeriodMetric struct {
	Rate        float64 `json:"rate"`
	Numerator   int64   `json:"numerator"`
	Denominator int64   `json:"denominator"`
}

// PivotRow is one row of the drill-down table at a given depth. Key is the
// ancestor path joined by a fixed separator, Attribute the display label of
// the current dimension value ("Unknown" when the value is missing).
type PivotRow struct {
	Key         string                  `json:"key"`
	Attribute   string                  `json:"attribute"`
	Depth       int                     `json:"depth"`
	HasChildren bool                    `json:"has_children"`
	Metrics     map[string]PeriodMetric `json:"metrics"` // period key -> cell
}

// DateRange is an inclusive calendar-date range. It unmarshals from
// "2006-01-02" strings as well as RFC3339 timestamps.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type dateRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UnmarshalJSON accepts date-only or RFC3339 values for both bounds.
func (d *DateRange) UnmarshalJSON(b []byte) error {
	var raw dateRangeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	start, err := parseFlexibleDate(raw.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", raw.Start, err)
	}
	end, err := parseFlexibleDate(raw.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", raw.End, err)
	}
	d.Start = start
	d.End = end
	return nil
}

func parseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// DimensionQuerySpec encodes the drill-down contract shared between the
// aggregate-count query and its paired detail-listing query. Built fresh per
// request, never mutated after construction.
type DimensionQuerySpec struct {
	Dimensions      []string          `json:"dimensions"`
	Depth           int               `json:"depth"`
	AncestorFilters map[string]string `json:"ancestor_filters,omitempty"`
	RateMode        RateMode          `json:"rate_mode"`
}

// PivotRequest is the conceptual pivot contract from the outside world.
type PivotRequest struct {
	DateRange         DateRange         `json:"date_range"`
	Dimensions        []string          `json:"dimensions"`
	Depth             int               `json:"depth"`
	AncestorFilters   map[string]string `json:"ancestor_filters,omitempty"`
	RateMode          RateMode          `json:"rate_mode"`
	PeriodGranularity PeriodType        `json:"period_granularity"`
}

// Spec extracts the dimension query spec from the request.
func (r PivotRequest) Spec() DimensionQuerySpec {
	return DimensionQuerySpec{
		Dimensions:      r.Dimensions,
		Depth:           r.Depth,
		AncestorFilters: r.AncestorFilters,
		RateMode:        r.RateMode,
	}
}

// PivotResponse is what the engine hands back. Failures are carried in the
// body, never thrown past the component boundary.
type PivotResponse struct {
	Success       bool               `json:"success"`
	Data          []PivotRow         `json:"data"`
	PeriodColumns []TimePeriodColumn `json:"period_columns"`
	Error         string             `json:"error,omitempty"`
}

// RecordsRequest asks for the underlying conversion records behind one pivot
// cell. It must resolve through the same rate-mode configuration as the
// aggregate count it is paired with.
type RecordsRequest struct {
	DateRange       DateRange         `json:"date_range"`
	Dimensions      []string          `json:"dimensions"`
	Depth           int               `json:"depth"`
	AncestorFilters map[string]string `json:"ancestor_filters,omitempty"`
	RateMode        RateMode          `json:"rate_mode"`
}

// RecordsResponse lists matched conversion records for a cell.
type RecordsResponse struct {
	Success bool            `json:"success"`
	Data    []ConversionRow `json:"data"`
	Error   string          `json:"error,omitempty"`
}
