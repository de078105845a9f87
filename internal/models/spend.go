package models

import (
	"time"
)

// SpendDimensionRow is one pivot-table row from the ad-spend side at a given
// drill depth. A single dimension value can roll up many raw tracking-id
// combinations, so campaign/adset/ad ids and networks are sets.
type SpendDimensionRow struct {
	Attribute   string    `json:"attribute"` // display label of the dimension value
	CampaignIDs []string  `json:"campaign_ids"`
	AdsetIDs    []string  `json:"adset_ids"`
	AdIDs       []string  `json:"ad_ids"`
	Networks    []string  `json:"networks"`
	Country     string    `json:"country,omitempty"`
	Date        time.Time `json:"date"`

	Cost        float64 `json:"cost"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
}
