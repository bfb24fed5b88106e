package cyclemath

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertyEpoch = date(2020, 1, 1)

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// TestCycleDayProperties checks determinism and day-to-day monotonicity for a
// single anchor.
func TestCycleDayProperties(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("cycle day is deterministic", prop.ForAll(
		func(startOffset, targetOffset int) bool {
			logs := []PeriodLog{{StartDate: propertyEpoch.AddDate(0, 0, startOffset)}}
			target := propertyEpoch.AddDate(0, 0, targetOffset)
			return CycleDayFor(target, logs) == CycleDayFor(target, logs)
		},
		gen.IntRange(0, 2000),
		gen.IntRange(0, 2000),
	))

	properties.Property("cycle day advances by one per day after the anchor", prop.ForAll(
		func(startOffset, elapsed int) bool {
			start := propertyEpoch.AddDate(0, 0, startOffset)
			logs := []PeriodLog{{StartDate: start}}
			day := start.AddDate(0, 0, elapsed)
			return CycleDayFor(day.AddDate(0, 0, 1), logs) == CycleDayFor(day, logs)+1
		},
		gen.IntRange(0, 2000),
		gen.IntRange(0, 400),
	))

	properties.Property("cycle day is at least one once history exists", prop.ForAll(
		func(startOffset, elapsed int) bool {
			start := propertyEpoch.AddDate(0, 0, startOffset)
			return CycleDayFor(start.AddDate(0, 0, elapsed), []PeriodLog{{StartDate: start}}) >= 1
		},
		gen.IntRange(0, 2000),
		gen.IntRange(0, 400),
	))

	properties.TestingRun(t)
}

// TestPhaseAndFertilityProperties checks phase coverage and that fertility is
// always one of the three levels.
func TestPhaseAndFertilityProperties(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("every positive cycle day has a phase", prop.ForAll(
		func(cycleDay int) bool {
			return PhaseFor(cycleDay) != PhaseNone
		},
		gen.IntRange(1, 10000),
	))

	properties.Property("phase repeats every reference cycle", prop.ForAll(
		func(cycleDay int) bool {
			return PhaseFor(cycleDay) == PhaseFor(cycleDay+ReferenceCycleLength)
		},
		gen.IntRange(1, 10000),
	))

	properties.Property("fertility level is always classified", prop.ForAll(
		func(cycleDay int) bool {
			switch FertilityLevelFor(cycleDay) {
			case FertilityHigh, FertilityMedium, FertilityLow:
				return true
			default:
				return false
			}
		},
		gen.IntRange(-10, 200),
	))

	properties.TestingRun(t)
}

// TestPredictionProperties checks shape and spacing of predictions.
func TestPredictionProperties(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())
	engine := New(time.UTC)

	properties.Property("predictions are chained by the rounded cycle length", prop.ForAll(
		func(n int, cycleLength float64, startOffset int) bool {
			start := propertyEpoch.AddDate(0, 0, startOffset)
			stats := Stats{AverageCycleLength: &cycleLength}
			predictions := engine.PredictNextCycles(n, stats, &start, start)
			if len(predictions) != n {
				return false
			}
			step := roundDays(cycleLength, DefaultCycleLength)
			previous := start
			for i, p := range predictions {
				if p.CycleNumber != i+1 {
					return false
				}
				if daysBetween(previous, p.PredictedStart) != step {
					return false
				}
				if daysBetween(p.PredictedStart, p.OvulationDate) != OvulationCycleDay-1 {
					return false
				}
				if daysBetween(p.FertileWindowStart, p.FertileWindowEnd) != 5 {
					return false
				}
				previous = p.PredictedStart
			}
			return true
		},
		gen.IntRange(1, 24),
		gen.Float64Range(18, 45),
		gen.IntRange(0, 2000),
	))

	properties.TestingRun(t)
}

// TestCalendarProperties checks the grid is whole weeks and contiguous for
// any month.
func TestCalendarProperties(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())
	engine := New(time.UTC)

	properties.Property("calendar grid is contiguous whole weeks covering the month", prop.ForAll(
		func(year, month int) bool {
			grid := engine.BuildCalendarMonth(year, time.Month(month), nil, propertyEpoch)
			if len(grid.Days)%7 != 0 || grid.Days[0].Date.Weekday() != time.Sunday {
				return false
			}
			inMonth := 0
			for i, day := range grid.Days {
				if i > 0 && daysBetween(grid.Days[i-1].Date, day.Date) != 1 {
					return false
				}
				if day.IsCurrentMonth {
					inMonth++
				}
			}
			daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
			return inMonth == daysInMonth
		},
		gen.IntRange(1990, 2100),
		gen.IntRange(1, 12),
	))

	properties.TestingRun(t)
}
