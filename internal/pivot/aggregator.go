package pivot

import (
	"sort"
	"strings"
	"time"

	"github.com/radiusdt/vector-attrib/internal/attribution"
	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/timeperiod"
)

// KeySeparator joins ancestor display values into the hierarchical row key.
const KeySeparator = " / "

type cell struct {
	numerator   int64
	denominator int64
}

type rowAccum struct {
	label    string
	byPeriod map[string]*cell
}

// Accumulator folds per-period numerator/denominator counts into display
// rows. Built fresh per request and discarded after.
type Accumulator struct {
	periods   []models.TimePeriodColumn
	threshold int64
	rows      map[string]*rowAccum
}

// NewAccumulator creates an accumulator over the given period columns.
// threshold is the minimum-sample display guard: a dimension value is
// suppressed unless at least one period's denominator reaches it.
func NewAccumulator(periods []models.TimePeriodColumn, threshold int64) *Accumulator {
	return &Accumulator{
		periods:   periods,
		threshold: threshold,
		rows:      make(map[string]*rowAccum),
	}
}

// Add buckets the counts into the period containing date. Dates outside
// every period are dropped.
func (a *Accumulator) Add(label string, date time.Time, numerator, denominator int64) {
	key := timeperiod.PeriodKeyFor(a.periods, date)
	if key == "" {
		return
	}
	a.AddByKey(label, key, numerator, denominator)
}

// AddByKey adds counts directly into a period bucket.
func (a *Accumulator) AddByKey(label, periodKey string, numerator, denominator int64) {
	r, ok := a.rows[label]
	if !ok {
		r = &rowAccum{label: label, byPeriod: make(map[string]*cell)}
		a.rows[label] = r
	}
	c, ok := r.byPeriod[periodKey]
	if !ok {
		c = &cell{}
		r.byPeriod[periodKey] = c
	}
	c.numerator += numerator
	c.denominator += denominator
}

// Rows materializes the pivot rows for the given spec. Blank labels are
// discarded, sub-threshold values suppressed, and rows sorted by label for
// stable output. Rates are zero-safe.
func (a *Accumulator) Rows(spec models.DimensionQuerySpec) []models.PivotRow {
	ancestors := ancestorPath(spec)
	hasChildren := spec.Depth < len(spec.Dimensions)-1

	out := make([]models.PivotRow, 0, len(a.rows))
	for _, r := range a.rows {
		if strings.TrimSpace(r.label) == "" {
			continue
		}
		if !a.meetsThreshold(r) {
			continue
		}

		metrics := make(map[string]models.PeriodMetric, len(r.byPeriod))
		for _, p := range a.periods {
			c, ok := r.byPeriod[p.Key]
			if !ok {
				metrics[p.Key] = models.PeriodMetric{}
				continue
			}
			metrics[p.Key] = models.PeriodMetric{
				Rate:        attribution.SafeRate(c.numerator, c.denominator),
				Numerator:   c.numerator,
				Denominator: c.denominator,
			}
		}

		out = append(out, models.PivotRow{
			Key:         strings.Join(append(ancestors, r.label), KeySeparator),
			Attribute:   r.label,
			Depth:       spec.Depth,
			HasChildren: hasChildren,
			Metrics:     metrics,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Attribute < out[j].Attribute })
	return out
}

// meetsThreshold checks the minimum-sample guard against the row's best
// period. This is display-layer noise suppression, not data filtering.
func (a *Accumulator) meetsThreshold(r *rowAccum) bool {
	if a.threshold <= 0 {
		return true
	}
	for _, c := range r.byPeriod {
		if c.denominator >= a.threshold {
			return true
		}
	}
	return false
}

func ancestorPath(spec models.DimensionQuerySpec) []string {
	path := make([]string, 0, spec.Depth)
	for i := 0; i < spec.Depth; i++ {
		if v, ok := spec.AncestorFilters[spec.Dimensions[i]]; ok {
			path = append(path, v)
		}
	}
	return path
}
