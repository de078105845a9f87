package attribution

import (
	"github.com/radiusdt/vector-attrib/internal/models"
)

// SourceLevelIndex maps conversion rows by normalized source for the coarse
// matching paths that need no tracking ids: the synthetic "Unknown" residual
// row at the top of the network drill-down, and the country breakdown under a
// network. It skips the tiered walk entirely.
type SourceLevelIndex struct {
	bySource  map[string][]models.ConversionRow
	unsourced []models.ConversionRow
}

// BuildSourceLevelIndex indexes rows by source. Rows with no source label are
// kept separately; they can never alias to a network.
func BuildSourceLevelIndex(rows []models.ConversionRow) *SourceLevelIndex {
	idx := &SourceLevelIndex{bySource: make(map[string][]models.ConversionRow)}
	for _, row := range rows {
		src := normalizeSource(row.Source)
		if src == "" {
			idx.unsourced = append(idx.unsourced, row)
			continue
		}
		idx.bySource[src] = append(idx.bySource[src], row)
	}
	return idx
}

// NetworkRows returns every row whose source aliases to one of the networks.
func (idx *SourceLevelIndex) NetworkRows(networks []string, aliases SourceAliases) []models.ConversionRow {
	var out []models.ConversionRow
	for src := range sourceSet(networks, aliases) {
		out = append(out, idx.bySource[src]...)
	}
	return out
}

// UnsourcedRows returns the rows carrying no source label.
func (idx *SourceLevelIndex) UnsourcedRows() []models.ConversionRow {
	return idx.unsourced
}

func sourceSet(networks []string, aliases SourceAliases) map[string]struct{} {
	set := make(map[string]struct{})
	for _, network := range networks {
		for _, src := range aliases.SourcesFor(network) {
			set[normalizeSource(src)] = struct{}{}
		}
	}
	return set
}

// Residual subtracts already-attributed totals from network-level totals,
// clamping at zero. The result feeds the synthetic "Unknown" row that makes
// cross-dimension totals reconcile.
func Residual(network, attributed MatchTotals) MatchTotals {
	res := MatchTotals{
		Total:          clampNonNegative(network.Total - attributed.Total),
		Approved:       clampNonNegative(network.Approved - attributed.Approved),
		Customers:      clampNonNegative(network.Customers - attributed.Customers),
		OTSTotal:       clampNonNegative(network.OTSTotal - attributed.OTSTotal),
		OTSApproved:    clampNonNegative(network.OTSApproved - attributed.OTSApproved),
		UpsellTotal:    clampNonNegative(network.UpsellTotal - attributed.UpsellTotal),
		UpsellApproved: clampNonNegative(network.UpsellApproved - attributed.UpsellApproved),
	}
	res.Finalize(0)
	return res
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
