package pivot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-attrib/internal/attribution"
	"github.com/radiusdt/vector-attrib/internal/models"
	"github.com/radiusdt/vector-attrib/internal/query"
	"github.com/radiusdt/vector-attrib/internal/storage"
)

type failingSpendStore struct{}

func (failingSpendStore) QuerySpend(context.Context, query.Query, models.DateRange) ([]models.SpendDimensionRow, error) {
	return nil, errors.New("spend backend down")
}

type failingConversionStore struct{}

func (failingConversionStore) QueryConversions(context.Context, query.Query, models.DateRange) ([]models.ConversionRow, error) {
	return nil, errors.New("conversion backend down")
}

func newTestService(spend storage.SpendStore, conv storage.ConversionStore) *Service {
	return NewService(spend, conv, attribution.DefaultSourceAliases(), nil, nil, nil, zap.NewNop(), Config{})
}

func seededStores() (*storage.InMemorySpendStore, *storage.InMemoryConversionStore) {
	spend := storage.NewInMemorySpendStore()
	spend.Seed([]models.SpendDimensionRow{
		{
			Attribute:   "Google Ads",
			CampaignIDs: []string{"c1"},
			AdsetIDs:    []string{"as1"},
			AdIDs:       []string{"a1"},
			Networks:    []string{"Google Ads"},
			Date:        day(2026, 1, 10),
			Cost:        100,
		},
	})

	conv := storage.NewInMemoryConversionStore()
	conv.Seed([]models.ConversionRow{
		{Source: "adwords", CampaignID: "c1", AdsetID: "as1", AdID: "a1", Country: "US", Date: day(2026, 1, 12), Total: 10, Approved: 7},
		// Tracked under a campaign the spend side does not know: stays
		// unattributed and feeds the residual row.
		{Source: "adwords", CampaignID: "c9", Country: "DE", Date: day(2026, 1, 15), Total: 4, Approved: 1},
		// Different network entirely; must never leak into Google Ads views.
		{Source: "facebook", Country: "FR", Date: day(2026, 2, 3), Total: 20, Approved: 5},
	})
	return spend, conv
}

func pivotRequest() models.PivotRequest {
	return models.PivotRequest{
		DateRange:         models.DateRange{Start: day(2026, 1, 1), End: day(2026, 2, 28)},
		Dimensions:        []string{"network", "campaign", "adset", "ad"},
		Depth:             0,
		RateMode:          models.RateModeApproval,
		PeriodGranularity: models.PeriodMonthly,
	}
}

func rowByAttribute(rows []models.PivotRow, attr string) (models.PivotRow, bool) {
	for _, r := range rows {
		if r.Attribute == attr {
			return r, true
		}
	}
	return models.PivotRow{}, false
}

func TestPivotEndToEnd(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	resp := svc.Pivot(context.Background(), pivotRequest())

	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.PeriodColumns, 2)

	network, ok := rowByAttribute(resp.Data, "Google Ads")
	require.True(t, ok, "network row missing")
	assert.Equal(t, 0, network.Depth)
	assert.True(t, network.HasChildren)

	jan := network.Metrics[resp.PeriodColumns[0].Key]
	assert.Equal(t, int64(7), jan.Numerator)
	assert.Equal(t, int64(10), jan.Denominator)
	assert.InDelta(t, 0.7, jan.Rate, 1e-9)

	feb := network.Metrics[resp.PeriodColumns[1].Key]
	assert.Equal(t, models.PeriodMetric{}, feb)
}

func TestPivotEmitsResidualUnknownRow(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	resp := svc.Pivot(context.Background(), pivotRequest())
	require.True(t, resp.Success, resp.Error)

	unknown, ok := rowByAttribute(resp.Data, UnknownSentinel)
	require.True(t, ok, "residual row missing")

	jan := unknown.Metrics[resp.PeriodColumns[0].Key]
	assert.Equal(t, int64(1), jan.Numerator)
	assert.Equal(t, int64(4), jan.Denominator)
	assert.InDelta(t, 0.25, jan.Rate, 1e-9)
}

// The residual row reconciles totals only at the top of the network
// drill-down. Deeper levels never get one.
func TestPivotNoResidualBelowNetworkLevel(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.Depth = 1
	req.AncestorFilters = map[string]string{"network": "Google Ads"}

	resp := svc.Pivot(context.Background(), req)
	require.True(t, resp.Success, resp.Error)

	_, ok := rowByAttribute(resp.Data, UnknownSentinel)
	assert.False(t, ok)
}

func TestPivotCountryDimension(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.Dimensions = []string{"country"}
	req.Depth = 0

	resp := svc.Pivot(context.Background(), req)
	require.True(t, resp.Success, resp.Error)

	us, ok := rowByAttribute(resp.Data, "United States")
	require.True(t, ok)
	jan := us.Metrics[resp.PeriodColumns[0].Key]
	assert.Equal(t, int64(10), jan.Denominator)

	_, ok = rowByAttribute(resp.Data, "Germany")
	assert.True(t, ok)
}

// Drilling into countries under a network ancestor keeps only the rows whose
// source aliases to that network, matching what the network cell counted.
func TestPivotCountryUnderNetworkAncestor(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.Dimensions = []string{"network", "country"}
	req.Depth = 1
	req.AncestorFilters = map[string]string{"network": "Google Ads"}

	resp := svc.Pivot(context.Background(), req)
	require.True(t, resp.Success, resp.Error)

	_, ok := rowByAttribute(resp.Data, "United States")
	assert.True(t, ok)
	_, ok = rowByAttribute(resp.Data, "Germany")
	assert.True(t, ok)
	_, ok = rowByAttribute(resp.Data, "France")
	assert.False(t, ok, "facebook traffic must not appear under Google Ads")
}

func TestPivotValidationFailure(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.Dimensions = nil

	resp := svc.Pivot(context.Background(), req)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrNoDimensions.Error(), resp.Error)
	assert.Empty(t, resp.Data)
	assert.Empty(t, resp.PeriodColumns)
}

func TestPivotEmptyDateRange(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.DateRange = models.DateRange{Start: day(2026, 2, 1), End: day(2026, 1, 1)}

	resp := svc.Pivot(context.Background(), req)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrEmptyDateRange.Error(), resp.Error)
}

func TestPivotDefaultsGranularityAndMode(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	req := pivotRequest()
	req.PeriodGranularity = ""
	req.RateMode = ""
	req.DateRange = models.DateRange{Start: day(2026, 1, 1), End: day(2026, 1, 14)}

	resp := svc.Pivot(context.Background(), req)
	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.PeriodColumns, 2, "weekly default over 14 days")
}

// Either backing fetch failing abandons the whole computation; a one-sided
// rate is never served.
func TestPivotFetchFailureNoPartialMerge(t *testing.T) {
	_, conv := seededStores()
	svc := newTestService(failingSpendStore{}, conv)

	resp := svc.Pivot(context.Background(), pivotRequest())
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "spend backend down")
	assert.Empty(t, resp.Data)

	spend, _ := seededStores()
	svc = newTestService(spend, failingConversionStore{})

	resp = svc.Pivot(context.Background(), pivotRequest())
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "conversion backend down")
	assert.Empty(t, resp.Data)
}

func TestRecords(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	resp := svc.Records(context.Background(), models.RecordsRequest{
		DateRange:  models.DateRange{Start: day(2026, 1, 1), End: day(2026, 1, 31)},
		Dimensions: []string{"network", "campaign"},
		Depth:      0,
	})

	require.True(t, resp.Success, resp.Error)
	assert.Len(t, resp.Data, 2)
}

func TestRecordsValidationFailure(t *testing.T) {
	spend, conv := seededStores()
	svc := newTestService(spend, conv)

	resp := svc.Records(context.Background(), models.RecordsRequest{
		DateRange: models.DateRange{Start: day(2026, 1, 1), End: day(2026, 1, 31)},
		Depth:     2,
	})

	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
