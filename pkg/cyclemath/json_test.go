package cyclemath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsUnmarshalBackendShape(t *testing.T) {
	payload := []byte(`{"average_cycle_length":29.5,"average_period_length":null,"latest_period_start":"2024-03-05","total_logs":7}`)

	var stats Stats
	require.NoError(t, json.Unmarshal(payload, &stats))

	require.NotNil(t, stats.AverageCycleLength)
	assert.Equal(t, 29.5, *stats.AverageCycleLength)
	assert.Nil(t, stats.AveragePeriodLength)
	require.NotNil(t, stats.LatestPeriodStart)
	assert.Equal(t, date(2024, 3, 5), *stats.LatestPeriodStart)
	assert.Equal(t, 7, stats.TotalLogs)
}

func TestStatsMarshalUsesNullForMissingData(t *testing.T) {
	raw, err := json.Marshal(Stats{TotalLogs: 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"average_cycle_length":null,"average_period_length":null,"latest_period_start":null,"total_logs":0}`, string(raw))
}

func TestPeriodLogUnmarshal(t *testing.T) {
	var log PeriodLog
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-03-05T08:00:00+07:00","end_date":"2024-03-10","flow_intensity":"heavy","symptoms":["cramps"]}`), &log))

	assert.Equal(t, date(2024, 3, 5), log.StartDate)
	require.NotNil(t, log.EndDate)
	assert.Equal(t, date(2024, 3, 10), *log.EndDate)
	assert.Equal(t, FlowHeavy, log.FlowIntensity)
	assert.Equal(t, []string{"cramps"}, log.Symptoms)

	assert.Error(t, json.Unmarshal([]byte(`{"end_date":"2024-03-10"}`), &log))
	assert.Error(t, json.Unmarshal([]byte(`{"start_date":"05/03/2024"}`), &log))
}

func TestCalendarDayMarshal(t *testing.T) {
	raw, err := json.Marshal(CalendarDay{Date: date(2024, 3, 4), DayOfMonth: 4, FertilityLevel: FertilityLow})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2024-03-04", decoded["date"])
	assert.Nil(t, decoded["cycle_day"])
	assert.Nil(t, decoded["phase"])
	assert.Equal(t, "low", decoded["fertility_level"])
}
