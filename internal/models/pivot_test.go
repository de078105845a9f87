package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRangeUnmarshalDateOnly(t *testing.T) {
	var r DateRange
	err := json.Unmarshal([]byte(`{"start":"2026-01-01","end":"2026-01-31"}`), &r)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), r.End)
}

func TestDateRangeUnmarshalRFC3339(t *testing.T) {
	var r DateRange
	err := json.Unmarshal([]byte(`{"start":"2026-01-01T10:30:00Z","end":"2026-01-31T23:59:59Z"}`), &r)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Start.Hour())
}

func TestDateRangeUnmarshalInvalid(t *testing.T) {
	var r DateRange
	err := json.Unmarshal([]byte(`{"start":"yesterday","end":"2026-01-31"}`), &r)
	assert.Error(t, err)
}

func TestPeriodTypeValid(t *testing.T) {
	assert.True(t, PeriodWeekly.Valid())
	assert.True(t, PeriodBiweekly.Valid())
	assert.True(t, PeriodMonthly.Valid())
	assert.False(t, PeriodType("daily").Valid())
}

func TestRateModeValid(t *testing.T) {
	assert.True(t, RateModeApproval.Valid())
	assert.True(t, RateModePay.Valid())
	assert.True(t, RateModeBuy.Valid())
	assert.False(t, RateMode("refund").Valid())
}

func TestTimePeriodColumnContains(t *testing.T) {
	col := TimePeriodColumn{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, col.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, col.Contains(time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)), "end day is inclusive")
	assert.False(t, col.Contains(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, col.Contains(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
