package pivot

// DimensionColumn is the tagged variant a registry produces for a dimension:
// the column/expression to select and group by, and the null-check expression
// used when an ancestor filter carries the "Unknown" sentinel. Call sites
// never branch on runtime shape.
type DimensionColumn struct {
	Column    string
	NullCheck string
}

// DimensionRegistry resolves dimension ids to columns. One registry exists
// per query mode (tracking-oriented, geography-oriented); the planner only
// relies on this contract, not on any concrete table.
type DimensionRegistry interface {
	// Resolve returns the column mapping for a dimension id.
	Resolve(dimension string) (DimensionColumn, bool)
	// Dimensions lists the ids the registry knows, in drill-down order.
	Dimensions() []string
}

type mapRegistry struct {
	order   []string
	columns map[string]DimensionColumn
}

func (r *mapRegistry) Resolve(dimension string) (DimensionColumn, bool) {
	col, ok := r.columns[dimension]
	return col, ok
}

func (r *mapRegistry) Dimensions() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// TrackingRegistry maps the tracking-id drill-down hierarchy.
func TrackingRegistry() DimensionRegistry {
	return &mapRegistry{
		order: []string{"network", "campaign", "adset", "ad"},
		columns: map[string]DimensionColumn{
			"network":  {Column: "source", NullCheck: "(source IS NULL OR source = '' OR source = 'null')"},
			"campaign": {Column: "campaign_id", NullCheck: "(campaign_id IS NULL OR campaign_id = '' OR campaign_id = 'null')"},
			"adset":    {Column: "adset_id", NullCheck: "(adset_id IS NULL OR adset_id = '' OR adset_id = 'null')"},
			"ad":       {Column: "ad_id", NullCheck: "(ad_id IS NULL OR ad_id = '' OR ad_id = 'null')"},
		},
	}
}

// GeoRegistry maps the geography drill-down hierarchy.
func GeoRegistry() DimensionRegistry {
	return &mapRegistry{
		order: []string{"network", "country"},
		columns: map[string]DimensionColumn{
			"network": {Column: "source", NullCheck: "(source IS NULL OR source = '' OR source = 'null')"},
			"country": {Column: "country", NullCheck: "(country IS NULL OR country = '')"},
		},
	}
}

// spendRegistry maps dimension ids onto spend_rollup's label columns. Spend
// rows are keyed by display label, network included, so ancestor values
// compare directly with no alias translation.
func spendRegistry() DimensionRegistry {
	return &mapRegistry{
		order: []string{"network", "campaign", "adset", "ad", "country"},
		columns: map[string]DimensionColumn{
			"network":  {Column: "network", NullCheck: "(network IS NULL OR network = '')"},
			"campaign": {Column: "campaign", NullCheck: "(campaign IS NULL OR campaign = '')"},
			"adset":    {Column: "adset", NullCheck: "(adset IS NULL OR adset = '')"},
			"ad":       {Column: "ad", NullCheck: "(ad IS NULL OR ad = '')"},
			"country":  {Column: "country", NullCheck: "(country IS NULL OR country = '')"},
		},
	}
}

// RegistryFor picks the registry whose hierarchy covers every requested
// dimension, preferring the tracking hierarchy.
func RegistryFor(dimensions []string) DimensionRegistry {
	tracking := TrackingRegistry()
	if registryCovers(tracking, dimensions) {
		return tracking
	}
	return GeoRegistry()
}

func registryCovers(reg DimensionRegistry, dimensions []string) bool {
	for _, d := range dimensions {
		if _, ok := reg.Resolve(d); !ok {
			return false
		}
	}
	return true
}
