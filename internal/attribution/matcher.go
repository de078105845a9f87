package attribution

import (
	"github.com/radiusdt/vector-attrib/internal/models"
)

// MatchTotals accumulates counts over the conversion rows accepted for one
// spend row, plus the derived rates. Accumulators are fresh per Match call;
// nothing is shared across spend rows.
type MatchTotals struct {
	Total          int64 `json:"total"`
	Approved       int64 `json:"approved"`
	Customers      int64 `json:"customers"`
	OTSTotal       int64 `json:"ots_total"`
	OTSApproved    int64 `json:"ots_approved"`
	UpsellTotal    int64 `json:"upsell_total"`
	UpsellApproved int64 `json:"upsell_approved"`

	ApprovalRate       float64 `json:"approval_rate"`
	OTSApprovalRate    float64 `json:"ots_approval_rate"`
	UpsellApprovalRate float64 `json:"upsell_approval_rate"`
	RealCPA            float64 `json:"real_cpa"`
}

// AddRow folds one conversion row's counts into the totals.
func (t *MatchTotals) AddRow(row models.ConversionRow) {
	t.Total += row.Total
	t.Approved += row.Approved
	t.Customers += row.Customers
	t.OTSTotal += row.OTSTotal
	t.OTSApproved += row.OTSApproved
	t.UpsellTotal += row.UpsellTotal
	t.UpsellApproved += row.UpsellApproved
}

// Finalize computes the derived rates. A zero denominator yields a zero rate,
// never NaN or Inf.
func (t *MatchTotals) Finalize(cost float64) {
	t.ApprovalRate = SafeRate(t.Approved, t.Total)
	t.OTSApprovalRate = SafeRate(t.OTSApproved, t.OTSTotal)
	t.UpsellApprovalRate = SafeRate(t.UpsellApproved, t.UpsellTotal)
	if t.Approved > 0 {
		t.RealCPA = cost / float64(t.Approved)
	} else {
		t.RealCPA = 0
	}
}

// SafeRate divides numerator by denominator, returning 0 when the
// denominator is 0.
func SafeRate(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// MatchResult carries both the summed totals and the individual accepted
// rows, so callers can re-bucket the same match by time period without
// running the walk twice.
type MatchResult struct {
	Rows   []models.ConversionRow
	Totals MatchTotals
}

// Matcher walks a tiered index for one spend row at a time.
type Matcher struct {
	aliases SourceAliases
}

// NewMatcher creates a matcher over the given alias table.
func NewMatcher(aliases SourceAliases) *Matcher {
	return &Matcher{aliases: aliases}
}

// Match finds every conversion row attributable to the spend row and sums
// its counts. Candidate rows come from the cross product of the spend row's
// id sets against each tier, plus every source-only row; a candidate is
// accepted only when one of the spend row's networks aliases to its source.
// Each conversion row lives in exactly one tier, so no row is counted twice
// within a single call. A coarse-tier row may be summed into several distinct
// spend rows that roll up under the same campaign; that is the accepted
// approximation for ambiguous tracking, not a defect.
func (m *Matcher) Match(spend models.SpendDimensionRow, idx *TieredIndex[models.ConversionRow]) MatchResult {
	var res MatchResult

	accept := func(rows []models.ConversionRow) {
		for _, row := range rows {
			if !m.aliases.Matches(spend.Networks, row.Source) {
				continue
			}
			res.Rows = append(res.Rows, row)
			res.Totals.AddRow(row)
		}
	}

	for _, key := range fullTierKeys(spend) {
		accept(idx.Full[key])
	}
	for _, key := range adsetTierKeys(spend) {
		accept(idx.CampaignAdset[key])
	}
	for _, campaign := range dedupe(spend.CampaignIDs) {
		accept(idx.CampaignOnly[campaign])
	}
	accept(idx.SourceOnly)

	res.Totals.Finalize(spend.Cost)
	return res
}

// fullTierKeys forms campaign x adset x ad keys, deduplicated so repeated ids
// in the spend row's sets cannot pull the same bucket twice.
func fullTierKeys(spend models.SpendDimensionRow) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(spend.CampaignIDs)*len(spend.AdsetIDs)*len(spend.AdIDs))
	for _, c := range spend.CampaignIDs {
		for _, as := range spend.AdsetIDs {
			for _, ad := range spend.AdIDs {
				k := TierKey(c, as, ad)
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func adsetTierKeys(spend models.SpendDimensionRow) []string {
	seen := make(map[string]struct{})
	keys := make([]string, 0, len(spend.CampaignIDs)*len(spend.AdsetIDs))
	for _, c := range spend.CampaignIDs {
		for _, as := range spend.AdsetIDs {
			k := TierKey(c, as)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
