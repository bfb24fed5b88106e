package cyclemath

import (
	"math"
	"sort"
	"time"
)

// PredictNextCycles forecasts n cycles after lastPeriodStart. Each start is
// chained from the previous one so rounding accumulates exactly as applied.
// It returns nil when lastPeriodStart is nil or n is not positive.
func (e Engine) PredictNextCycles(n int, stats Stats, lastPeriodStart *time.Time, today time.Time) []Prediction {
	if lastPeriodStart == nil || n <= 0 {
		return nil
	}

	cycleLength := positiveOr(stats.AverageCycleLength, DefaultCycleLength)
	periodLength := positiveOr(stats.AveragePeriodLength, DefaultPeriodLength)
	cycleStep := roundDays(cycleLength, DefaultCycleLength)
	periodDays := roundDays(periodLength, DefaultPeriodLength)
	confidence := ConfidenceFor(stats.TotalLogs)
	todayDate := e.Today(today)

	predictions := make([]Prediction, 0, n)
	start := civil(*lastPeriodStart)
	for i := 0; i < n; i++ {
		start = start.AddDate(0, 0, cycleStep)
		ovulation := start.AddDate(0, 0, OvulationCycleDay-1)
		predictions = append(predictions, Prediction{
			CycleNumber:           i + 1,
			PredictedStart:        start,
			PredictedEnd:          start.AddDate(0, 0, periodDays-1),
			OvulationDate:         ovulation,
			FertileWindowStart:    ovulation.AddDate(0, 0, -4),
			FertileWindowEnd:      ovulation.AddDate(0, 0, 1),
			PredictedCycleLength:  cycleLength,
			PredictedPeriodLength: periodLength,
			Confidence:            confidence,
			DaysUntilStart:        daysBetween(todayDate, start),
		})
	}
	return predictions
}

// ComputeStats aggregates a log history. Cycle lengths are the gaps between
// consecutive distinct start dates within [MinCycleLength, MaxCycleLength];
// period lengths come from logs with a valid end date.
func ComputeStats(logs []PeriodLog) Stats {
	stats := Stats{TotalLogs: len(logs)}
	if len(logs) == 0 {
		return stats
	}

	seen := make(map[time.Time]struct{}, len(logs))
	starts := make([]time.Time, 0, len(logs))
	var periodTotal, periodCount int
	for _, log := range logs {
		start := civil(log.StartDate)
		if _, ok := seen[start]; !ok {
			seen[start] = struct{}{}
			starts = append(starts, start)
		}
		if log.EndDate != nil {
			end := civil(*log.EndDate)
			if !end.Before(start) {
				periodTotal += daysBetween(start, end) + 1
				periodCount++
			}
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	var cycleTotal, cycleCount int
	for i := 1; i < len(starts); i++ {
		gap := daysBetween(starts[i-1], starts[i])
		if gap < MinCycleLength || gap > MaxCycleLength {
			continue
		}
		cycleTotal += gap
		cycleCount++
	}

	if cycleCount > 0 {
		avg := float64(cycleTotal) / float64(cycleCount)
		stats.AverageCycleLength = &avg
	}
	if periodCount > 0 {
		avg := float64(periodTotal) / float64(periodCount)
		stats.AveragePeriodLength = &avg
	}
	latest := starts[len(starts)-1]
	stats.LatestPeriodStart = &latest
	return stats
}

// StatusFor describes today's position in the cycle and the distance to the
// next predicted period. The anchor is the latest logged start on or before
// today, the same one CycleDayFor uses, falling back to
// stats.LatestPeriodStart when no logs are supplied.
func (e Engine) StatusFor(today time.Time, logs []PeriodLog, stats Stats) Status {
	date := e.Today(today)
	cycleDay := CycleDayFor(date, logs)
	status := Status{
		Date:           date,
		CycleDay:       cycleDay,
		Phase:          PhaseFor(cycleDay),
		FertilityLevel: FertilityLevelFor(cycleDay),
		IsOvulationDay: cycleDay == OvulationCycleDay,
	}

	var anchor *time.Time
	if len(logs) > 0 {
		if start, ok := anchorFor(date, logs); ok {
			anchor = &start
		}
	} else if stats.LatestPeriodStart != nil {
		if start := civil(*stats.LatestPeriodStart); !start.After(date) {
			anchor = &start
		}
	}

	next := e.PredictNextCycles(1, stats, anchor, today)
	if len(next) == 0 {
		return status
	}
	start := next[0].PredictedStart
	days := next[0].DaysUntilStart
	status.NextPeriodStart = &start
	status.DaysUntilNextPeriod = &days
	return status
}

func positiveOr(value *float64, fallback float64) float64 {
	if value == nil || *value <= 0 || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return fallback
	}
	return *value
}

func roundDays(value float64, fallback int) int {
	days := int(math.Round(value))
	if days <= 0 {
		return fallback
	}
	return days
}
