package cyclemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCalendarMonthGridWithoutLogs(t *testing.T) {
	engine := New(time.UTC)
	month := engine.BuildCalendarMonth(2024, time.March, nil, date(2024, 3, 15))

	require.Len(t, month.Days, 42)
	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, time.March, month.Month)
	assert.Equal(t, date(2024, 2, 25), month.Days[0].Date)
	assert.Equal(t, time.Sunday, month.Days[0].Date.Weekday())
	assert.Equal(t, date(2024, 4, 6), month.Days[len(month.Days)-1].Date)
	assert.Equal(t, time.Saturday, month.Days[len(month.Days)-1].Date.Weekday())

	inMonth := 0
	for i, day := range month.Days {
		if i > 0 {
			assert.Equal(t, month.Days[i-1].Date.AddDate(0, 0, 1), day.Date)
		}
		if day.IsCurrentMonth {
			inMonth++
		}
		assert.Equal(t, NoCycleDay, day.CycleDay)
		assert.Equal(t, PhaseNone, day.Phase)
		assert.Equal(t, FertilityLow, day.FertilityLevel)
		assert.False(t, day.IsPeriodDay)
		assert.Equal(t, day.Date.Equal(date(2024, 3, 15)), day.IsToday)
	}
	assert.Equal(t, 31, inMonth)

	weeks := month.Weeks()
	require.Len(t, weeks, 6)
	for _, week := range weeks {
		assert.Len(t, week, 7)
	}
}

func TestBuildCalendarMonthPeriodMembership(t *testing.T) {
	engine := New(time.UTC)
	logs := []PeriodLog{{StartDate: date(2024, 3, 5), EndDate: datePtr(2024, 3, 10), FlowIntensity: FlowMedium}}
	month := engine.BuildCalendarMonth(2024, time.March, logs, date(2024, 3, 1))

	byDate := make(map[string]CalendarDay, len(month.Days))
	for _, day := range month.Days {
		byDate[FormatDate(day.Date)] = day
	}

	for d := 5; d <= 10; d++ {
		assert.True(t, byDate[FormatDate(date(2024, 3, d))].IsPeriodDay, "march %d", d)
	}
	assert.True(t, byDate["2024-03-05"].IsPeriodStart)
	assert.False(t, byDate["2024-03-06"].IsPeriodStart)
	assert.True(t, byDate["2024-03-10"].IsPeriodEnd)
	assert.False(t, byDate["2024-03-09"].IsPeriodEnd)
	assert.False(t, byDate["2024-03-04"].IsPeriodDay)
	assert.False(t, byDate["2024-03-11"].IsPeriodDay)

	assert.Equal(t, NoCycleDay, byDate["2024-03-04"].CycleDay)
	assert.Equal(t, 1, byDate["2024-03-05"].CycleDay)
	assert.Equal(t, PhaseMenstrual, byDate["2024-03-05"].Phase)

	ovulation := byDate["2024-03-18"]
	assert.Equal(t, 14, ovulation.CycleDay)
	assert.True(t, ovulation.IsOvulationDay)
	assert.Equal(t, PhaseOvulation, ovulation.Phase)
	assert.Equal(t, FertilityHigh, ovulation.FertilityLevel)

	assert.Equal(t, FertilityMedium, byDate["2024-03-12"].FertilityLevel)
	assert.True(t, byDate["2024-03-01"].IsToday)
}

func TestBuildCalendarMonthDegradesInvalidRange(t *testing.T) {
	engine := New(time.UTC)
	logs := []PeriodLog{{StartDate: date(2024, 3, 5), EndDate: datePtr(2024, 3, 2)}}
	month := engine.BuildCalendarMonth(2024, time.March, logs, date(2024, 3, 1))

	periodDays := 0
	for _, day := range month.Days {
		if day.IsPeriodDay {
			periodDays++
			assert.Equal(t, date(2024, 3, 5), day.Date)
			assert.True(t, day.IsPeriodStart)
			assert.True(t, day.IsPeriodEnd)
		}
	}
	assert.Equal(t, 1, periodDays)
}

func TestBuildCalendarMonthOpenEndedLogUsesFallback(t *testing.T) {
	engine := New(time.UTC, WithFallbackPeriodLength(3))
	logs := []PeriodLog{{StartDate: date(2024, 3, 5)}}
	month := engine.BuildCalendarMonth(2024, time.March, logs, date(2024, 3, 1))

	var marked []string
	for _, day := range month.Days {
		if day.IsPeriodDay {
			marked = append(marked, FormatDate(day.Date))
		}
		if day.IsPeriodEnd {
			assert.Equal(t, date(2024, 3, 7), day.Date)
		}
	}
	assert.Equal(t, []string{"2024-03-05", "2024-03-06", "2024-03-07"}, marked)
}

func TestBuildCalendarMonthOverlappingLogs(t *testing.T) {
	engine := New(time.UTC)
	logs := []PeriodLog{
		{StartDate: date(2024, 3, 5), EndDate: datePtr(2024, 3, 9)},
		{StartDate: date(2024, 3, 7), EndDate: datePtr(2024, 3, 12)},
	}
	month := engine.BuildCalendarMonth(2024, time.March, logs, date(2024, 3, 1))

	for _, day := range month.Days {
		if day.Date.Equal(date(2024, 3, 8)) {
			assert.True(t, day.IsPeriodDay)
			assert.Equal(t, 2, day.CycleDay)
		}
		if day.Date.Equal(date(2024, 3, 12)) {
			assert.True(t, day.IsPeriodEnd)
		}
	}
}

func TestBuildCalendarMonthTodayInZone(t *testing.T) {
	engine := New(time.FixedZone("WIB", 7*3600))
	now := time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)
	month := engine.BuildCalendarMonth(2024, time.March, nil, now)

	for _, day := range month.Days {
		assert.Equal(t, day.Date.Equal(date(2024, 3, 15)), day.IsToday, FormatDate(day.Date))
	}
}

func TestBuildCalendarMonthNormalisesMonthOverflow(t *testing.T) {
	engine := New(time.UTC)
	month := engine.BuildCalendarMonth(2023, 13, nil, date(2024, 1, 1))

	assert.Equal(t, 2024, month.Year)
	assert.Equal(t, time.January, month.Month)
}
