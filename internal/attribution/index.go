// Package attribution implements the cross-source matching engine between
// ad-spend rows and conversion rows. The two sides share no foreign key, only
// loosely populated tracking ids and a source/network label, so matching
// degrades through progressively coarser tiers instead of a single join.
package attribution

import (
	"strings"
)

// Tracked is any row carrying the optional tracking-id tuple and a source
// label. Conversion, one-time-sale and trial rows all satisfy it.
type Tracked interface {
	TrackingIDs() (campaign, adset, ad string)
	SourceName() string
}

// Present reports whether a tracking field actually carries a value. Upstream
// systems emit empty strings and the literal string "null" for missing ids.
func Present(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "null")
}

// TierKey joins id parts into a composite lookup key.
func TierKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// TieredIndex partitions rows into four disjoint buckets by how much of the
// tracking tuple is populated. Every input row lands in exactly one bucket,
// which is what prevents double counting within a single match walk.
type TieredIndex[T Tracked] struct {
	// Full is keyed by campaign|adset|ad.
	Full map[string][]T
	// CampaignAdset is keyed by campaign|adset for rows missing the ad id.
	CampaignAdset map[string][]T
	// CampaignOnly is keyed by campaign for rows with nothing else usable.
	CampaignOnly map[string][]T
	// SourceOnly holds rows with no usable tracking ids at all.
	SourceOnly []T

	size int
}

// BuildIndex classifies rows into tiers. The classification is total and
// mutually exclusive: a row with campaign and ad but no adset still falls
// into the campaign-only tier, because the adset gap breaks the tuple.
func BuildIndex[T Tracked](rows []T) *TieredIndex[T] {
	idx := &TieredIndex[T]{
		Full:          make(map[string][]T),
		CampaignAdset: make(map[string][]T),
		CampaignOnly:  make(map[string][]T),
	}
	for _, row := range rows {
		idx.add(row)
	}
	return idx
}

func (idx *TieredIndex[T]) add(row T) {
	campaign, adset, ad := row.TrackingIDs()
	idx.size++

	switch {
	case Present(campaign) && Present(adset) && Present(ad):
		k := TierKey(campaign, adset, ad)
		idx.Full[k] = append(idx.Full[k], row)
	case Present(campaign) && Present(adset):
		k := TierKey(campaign, adset)
		idx.CampaignAdset[k] = append(idx.CampaignAdset[k], row)
	case Present(campaign):
		idx.CampaignOnly[campaign] = append(idx.CampaignOnly[campaign], row)
	default:
		idx.SourceOnly = append(idx.SourceOnly, row)
	}
}

// Size returns the number of indexed rows across all tiers.
func (idx *TieredIndex[T]) Size() int {
	return idx.size
}
