package models

import (
	"time"
)

// RecordType distinguishes the conversion variants. They share one row shape.
type RecordType string

const (
	RecordSubscription RecordType = "subscription"
	RecordOneTimeSale  RecordType = "one_time_sale"
	RecordTrial        RecordType = "trial"
)

// ConversionRow is one conversion/order record from the CRM side. Tracking
// fields are loosely structured: any of them may be empty or the literal
// string "null", which both count as absent.
type ConversionRow struct {
	Source     string     `json:"source"`
	CampaignID string     `json:"campaign_id"`
	AdsetID    string     `json:"adset_id"`
	AdID       string     `json:"ad_id"`
	Country    string     `json:"country,omitempty"`
	IP         string     `json:"ip,omitempty"`
	RecordType RecordType `json:"record_type"`
	Date       time.Time  `json:"date"`

	// Pre-aggregated counts. Total is the rate denominator.
	Total          int64 `json:"total"`
	Approved       int64 `json:"approved"`
	Customers      int64 `json:"customers"`
	OTSTotal       int64 `json:"ots_total"`
	OTSApproved    int64 `json:"ots_approved"`
	UpsellTotal    int64 `json:"upsell_total"`
	UpsellApproved int64 `json:"upsell_approved"`
}

// TrackingIDs returns the raw (campaign, adset, ad) tuple.
func (r ConversionRow) TrackingIDs() (campaign, adset, ad string) {
	return r.CampaignID, r.AdsetID, r.AdID
}

// SourceName returns the raw source/network label of the record.
func (r ConversionRow) SourceName() string {
	return r.Source
}

// EventDate returns the date that assigns the row to a period bucket.
func (r ConversionRow) EventDate() time.Time {
	return r.Date
}
