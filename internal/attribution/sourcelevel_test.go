package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiusdt/vector-attrib/internal/models"
)

func TestNetworkRows(t *testing.T) {
	idx := BuildSourceLevelIndex([]models.ConversionRow{
		{Source: "adwords", Country: "US", Total: 10, Approved: 6},
		{Source: "google", Country: "DE", Total: 5, Approved: 5},
		{Source: "facebook", Country: "US", Total: 100, Approved: 1},
		{Source: "", Total: 999},
	})
	aliases := DefaultSourceAliases()

	rows := idx.NetworkRows([]string{"Google Ads"}, aliases)

	require.Len(t, rows, 2)
	var total int64
	for _, r := range rows {
		total += r.Total
	}
	assert.Equal(t, int64(15), total)

	assert.Empty(t, idx.NetworkRows([]string{"bing"}, aliases))
}

func TestNetworkRowsCaseInsensitive(t *testing.T) {
	idx := BuildSourceLevelIndex([]models.ConversionRow{
		{Source: "AdWords", Total: 3},
	})

	rows := idx.NetworkRows([]string{"GOOGLE ADS"}, DefaultSourceAliases())
	assert.Len(t, rows, 1)
}

func TestUnsourcedRows(t *testing.T) {
	idx := BuildSourceLevelIndex([]models.ConversionRow{
		{Source: "adwords", Total: 1},
		{Source: "   ", Total: 2},
		{Source: "", Total: 3},
	})

	rows := idx.UnsourcedRows()
	require.Len(t, rows, 2)
	assert.Empty(t, idx.NetworkRows(nil, DefaultSourceAliases()))
}

func TestResidualClampsAtZero(t *testing.T) {
	network := MatchTotals{Total: 10, Approved: 4}
	attributed := MatchTotals{Total: 7, Approved: 6}

	res := Residual(network, attributed)

	assert.Equal(t, int64(3), res.Total)
	// Over-attribution never produces a negative residual.
	assert.Zero(t, res.Approved)
	assert.Zero(t, res.ApprovalRate)
}

func TestResidualRates(t *testing.T) {
	network := MatchTotals{Total: 20, Approved: 10}
	attributed := MatchTotals{Total: 10, Approved: 8}

	res := Residual(network, attributed)

	assert.Equal(t, int64(10), res.Total)
	assert.Equal(t, int64(2), res.Approved)
	assert.InDelta(t, 0.2, res.ApprovalRate, 1e-9)
}
