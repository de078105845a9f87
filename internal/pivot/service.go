// Package pivot contains the attribution pivot engine: query planning over
// dimension registries, the per-request orchestration of the two backing
// fetches, and the rate aggregation into display rows. Everything here is
// request-scoped; no state survives between calls.
package pivot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/radiusdt/vector-attrib/internal/attribution"
	"github.com/radiusdt/vector-attrib/internal/geo"
	"github.com/radiusdt/vector-attrib/internal/metrics"
	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
	"github.com/radiusdt/vector-attrib/internal/storage"
	"github.com/radiusdt/vector-attrib/internal/timeperiod"
)

// queryLogLimit caps how much query text a failure log line carries.
const queryLogLimit = 200

// Config holds the engine's resource and display settings.
type Config struct {
	// FetchRowCap bounds each backing fetch to keep the in-memory join
	// tractable. Resource protection, not correctness.
	FetchRowCap int
	// MinSampleDenominator is the display threshold for validation-rate
	// views (pay/buy). The legacy approval view always uses 0.
	MinSampleDenominator int64
}

// Service runs pivot computations against the two backing stores.
type Service struct {
	spend       storage.SpendStore
	conversions storage.ConversionStore
	matcher     *attribution.Matcher
	aliases     attribution.SourceAliases
	resolver    geo.Resolver
	cache       *Cache
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         Config
}

// NewService wires the engine. resolver, cache and metrics may be nil.
func NewService(
	spend storage.SpendStore,
	conversions storage.ConversionStore,
	aliases attribution.SourceAliases,
	resolver geo.Resolver,
	cache *Cache,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg Config,
) *Service {
	if cfg.FetchRowCap <= 0 {
		cfg.FetchRowCap = 10000
	}
	if cfg.MinSampleDenominator <= 0 {
		cfg.MinSampleDenominator = 3
	}
	return &Service{
		spend:       spend,
		conversions: conversions,
		matcher:     attribution.NewMatcher(aliases),
		aliases:     aliases,
		resolver:    resolver,
		cache:       cache,
		metrics:     m,
		logger:      logger,
		cfg:         cfg,
	}
}

// Pivot answers one pivot request. Failures come back in the response body:
// validation errors with empty data, execution errors after logging a
// truncated form of the failed query. The two fetches run concurrently and
// are never partially merged; a rate with only one side is meaningless.
func (s *Service) Pivot(ctx context.Context, req models.PivotRequest) models.PivotResponse {
	start := time.Now()
	if req.PeriodGranularity == "" {
		req.PeriodGranularity = models.PeriodWeekly
	}
	if req.RateMode == "" {
		req.RateMode = models.RateModeApproval
	}

	spec := req.Spec()
	if err := ValidateSpec(spec); err != nil {
		return s.fail(err.Error(), "validation")
	}
	if !req.PeriodGranularity.Valid() {
		return s.fail("unknown period granularity", "validation")
	}
	if _, err := ModeConfig(spec.RateMode); err != nil {
		return s.fail(err.Error(), "validation")
	}

	periods := timeperiod.Generate(req.DateRange.Start, req.DateRange.End, req.PeriodGranularity)
	if len(periods) == 0 {
		return s.fail(ErrEmptyDateRange.Error(), "validation")
	}

	if s.cache != nil {
		if resp, ok := s.cache.Get(ctx, req); ok {
			s.recordCacheHit(true)
			return *resp
		}
		s.recordCacheHit(false)
	}

	reg := RegistryFor(spec.Dimensions)
	spendQ, err := BuildSpendFetchQuery(spec, req.DateRange, query.DollarStyle{}, s.cfg.FetchRowCap)
	if err != nil {
		return s.fail(err.Error(), "validation")
	}
	convQ, err := BuildConversionFetchQuery(spec, req.DateRange, reg, s.aliases, query.QuestionStyle{}, s.cfg.FetchRowCap)
	if err != nil {
		return s.fail(err.Error(), "validation")
	}

	spendRows, convRows, err := s.fetchBoth(ctx, spendQ, convQ, req.DateRange)
	if err != nil {
		return s.fail(err.Error(), "execution")
	}

	geo.EnrichConversions(convRows, s.resolver)

	acc := NewAccumulator(periods, s.threshold(spec.RateMode))
	currentDim := spec.Dimensions[spec.Depth]
	if currentDim == "country" {
		s.aggregateByCountry(acc, convRows, spec)
	} else {
		s.aggregateTracked(acc, periods, spendRows, convRows, spec)
	}

	resp := models.PivotResponse{
		Success:       true,
		Data:          acc.Rows(spec),
		PeriodColumns: periods,
	}
	if s.cache != nil {
		s.cache.Set(ctx, req, resp)
	}
	if s.metrics != nil {
		s.metrics.RecordPivot("ok", string(spec.RateMode), time.Since(start))
	}
	return resp
}

// fetchBoth issues the two backing fetches in parallel and joins on both.
// Either failure abandons the computation; no retry happens at this level.
func (s *Service) fetchBoth(ctx context.Context, spendQ, convQ query.Query, rng models.DateRange) ([]models.SpendDimensionRow, []models.ConversionRow, error) {
	var (
		spendRows []models.SpendDimensionRow
		convRows  []models.ConversionRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.spend.QuerySpend(gctx, spendQ, rng)
		if err != nil {
			s.logFetchFailure("spend", spendQ, err)
			return err
		}
		spendRows = rows
		s.recordFetch("spend", len(rows))
		return nil
	})
	g.Go(func() error {
		rows, err := s.conversions.QueryConversions(gctx, convQ, rng)
		if err != nil {
			s.logFetchFailure("conversions", convQ, err)
			return err
		}
		convRows = rows
		s.recordFetch("conversions", len(rows))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return spendRows, convRows, nil
}

// aggregateTracked runs the tiered attribution walk: build the index once,
// match every spend row against it, bucket accepted conversion rows by the
// period containing their event date. At the top of the network drill-down it
// also emits the synthetic "Unknown" residual row so cross-dimension totals
// reconcile.
func (s *Service) aggregateTracked(acc *Accumulator, periods []models.TimePeriodColumn, spendRows []models.SpendDimensionRow, convRows []models.ConversionRow, spec models.DimensionQuerySpec) {
	idx := attribution.BuildIndex(convRows)

	attributed := make(map[string]*attribution.MatchTotals)

	for _, srow := range spendRows {
		label := srow.Attribute
		if label == "" {
			label = UnknownSentinel
		}
		res := s.matcher.Match(srow, idx)
		for _, crow := range res.Rows {
			acc.Add(label, crow.Date, numeratorFor(spec.RateMode, crow), crow.Total)

			key := timeperiod.PeriodKeyFor(periods, crow.Date)
			if key == "" {
				continue
			}
			t, ok := attributed[key]
			if !ok {
				t = &attribution.MatchTotals{}
				attributed[key] = t
			}
			t.AddRow(crow)
		}
	}

	if spec.Dimensions[spec.Depth] != "network" || spec.Depth != 0 {
		return
	}

	// Residual: total source-level activity for the spend networks minus
	// everything already attributed through the tracking-id path.
	srcIdx := attribution.BuildSourceLevelIndex(convRows)
	networkRows := srcIdx.NetworkRows(allNetworks(spendRows), s.aliases)
	for _, p := range periods {
		var network attribution.MatchTotals
		for _, crow := range networkRows {
			if p.Contains(crow.Date) {
				network.AddRow(crow)
			}
		}
		var attr attribution.MatchTotals
		if t, ok := attributed[p.Key]; ok {
			attr = *t
		}
		res := attribution.Residual(network, attr)
		num := totalsNumerator(spec.RateMode, res)
		if res.Total > 0 || num > 0 {
			acc.AddByKey(UnknownSentinel, p.Key, num, res.Total)
		}
	}
}

// aggregateByCountry is the coarse path: country needs no tracking ids, so
// conversion rows map straight onto display labels. A network ancestor
// restricts the rows through the source-level index, with the same alias
// semantics as the tracked path.
func (s *Service) aggregateByCountry(acc *Accumulator, convRows []models.ConversionRow, spec models.DimensionQuerySpec) {
	rows := convRows
	if network, ok := networkAncestor(spec); ok {
		srcIdx := attribution.BuildSourceLevelIndex(convRows)
		if network == UnknownSentinel {
			rows = srcIdx.UnsourcedRows()
		} else {
			rows = srcIdx.NetworkRows([]string{network}, s.aliases)
		}
	}
	for _, crow := range rows {
		label := geo.DisplayName(crow.Country)
		acc.Add(label, crow.Date, numeratorFor(spec.RateMode, crow), crow.Total)
	}
}

// Records returns the underlying conversion records for one pivot cell. The
// detail query reads the same rate-mode configuration and ancestor-filter
// compilation as the conversion fetch feeding the aggregate, so the listing
// always agrees with the cell it explains.
func (s *Service) Records(ctx context.Context, req models.RecordsRequest) models.RecordsResponse {
	spec := models.DimensionQuerySpec{
		Dimensions:      req.Dimensions,
		Depth:           req.Depth,
		AncestorFilters: req.AncestorFilters,
		RateMode:        req.RateMode,
	}
	if spec.RateMode == "" {
		spec.RateMode = models.RateModeApproval
	}
	if err := ValidateSpec(spec); err != nil {
		return models.RecordsResponse{Success: false, Error: err.Error()}
	}

	reg := RegistryFor(spec.Dimensions)
	detailQ, err := BuildDetailQuery(spec, req.DateRange, reg, s.aliases, query.QuestionStyle{}, s.cfg.FetchRowCap)
	if err != nil {
		return models.RecordsResponse{Success: false, Error: err.Error()}
	}

	rows, err := s.conversions.QueryConversions(ctx, detailQ, req.DateRange)
	if err != nil {
		s.logFetchFailure("conversions", detailQ, err)
		return models.RecordsResponse{Success: false, Error: err.Error()}
	}
	return models.RecordsResponse{Success: true, Data: rows}
}

func (s *Service) threshold(mode models.RateMode) int64 {
	if mode == models.RateModeApproval {
		return 0
	}
	return s.cfg.MinSampleDenominator
}

// numeratorFor selects the count that constitutes a successful outcome under
// the rate mode. The denominator is always the row's total.
func numeratorFor(mode models.RateMode, row models.ConversionRow) int64 {
	switch mode {
	case models.RateModePay:
		return row.Customers
	case models.RateModeBuy:
		return row.OTSApproved
	default:
		return row.Approved
	}
}

// totalsNumerator is numeratorFor over summed totals instead of a single row.
func totalsNumerator(mode models.RateMode, t attribution.MatchTotals) int64 {
	switch mode {
	case models.RateModePay:
		return t.Customers
	case models.RateModeBuy:
		return t.OTSApproved
	default:
		return t.Approved
	}
}

// networkAncestor reports the network ancestor-filter value when network sits
// above the current drill-down depth.
func networkAncestor(spec models.DimensionQuerySpec) (string, bool) {
	for i := 0; i < spec.Depth; i++ {
		if spec.Dimensions[i] == "network" {
			value, ok := spec.AncestorFilters["network"]
			return value, ok
		}
	}
	return "", false
}

func allNetworks(spendRows []models.SpendDimensionRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range spendRows {
		for _, n := range r.Networks {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func (s *Service) fail(msg, kind string) models.PivotResponse {
	if s.metrics != nil {
		s.metrics.RecordPivot(kind+"_error", "", 0)
	}
	return models.PivotResponse{
		Success:       false,
		Data:          []models.PivotRow{},
		PeriodColumns: []models.TimePeriodColumn{},
		Error:         msg,
	}
}

func (s *Service) logFetchFailure(store string, q query.Query, err error) {
	if s.logger != nil {
		s.logger.Error("backing fetch failed",
			zap.String("store", store),
			zap.String("query", q.Truncated(queryLogLimit)),
			zap.Int("param_count", len(q.Params)),
			zap.Error(err),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordFetchError(store)
	}
}

func (s *Service) recordFetch(store string, rows int) {
	if s.metrics != nil {
		s.metrics.RecordRowsFetched(store, rows)
	}
}

func (s *Service) recordCacheHit(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCache(hit)
	}
}
