package cyclemath

import "time"

// Engine carries the configuration shared by the calendar and prediction
// computations. The zero value is not usable; construct with New.
type Engine struct {
	location             *time.Location
	fallbackPeriodLength int
}

// Option customises an Engine.
type Option func(*Engine)

// WithFallbackPeriodLength sets the period length assumed for logs without an
// end date.
func WithFallbackPeriodLength(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.fallbackPeriodLength = days
		}
	}
}

// New builds an Engine that evaluates "today" in the given location.
func New(location *time.Location, opts ...Option) Engine {
	if location == nil {
		location = time.UTC
	}
	e := Engine{location: location, fallbackPeriodLength: DefaultPeriodLength}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Location returns the zone used to project instants onto calendar dates.
func (e Engine) Location() *time.Location {
	if e.location == nil {
		return time.UTC
	}
	return e.location
}

// Today projects an instant onto its calendar date in the engine's zone.
func (e Engine) Today(now time.Time) time.Time {
	return civil(now.In(e.Location()))
}

// CycleDayFor returns the 1-indexed day of the cycle containing date, or
// NoCycleDay when no log starts on or before it.
func CycleDayFor(date time.Time, logs []PeriodLog) int {
	target := civil(date)
	anchor, ok := anchorFor(target, logs)
	if !ok {
		return NoCycleDay
	}
	return daysBetween(anchor, target) + 1
}

// PhaseFor maps a cycle day onto the 28-day reference bands. Days beyond the
// reference length wrap around.
func PhaseFor(cycleDay int) Phase {
	if cycleDay < 1 {
		return PhaseNone
	}
	day := ((cycleDay - 1) % ReferenceCycleLength) + 1
	switch {
	case day <= 5:
		return PhaseMenstrual
	case day <= 13:
		return PhaseFollicular
	case day == OvulationCycleDay:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// FertilityLevelFor classifies a raw cycle day. Unknown days are low.
func FertilityLevelFor(cycleDay int) FertilityLevel {
	switch {
	case cycleDay >= 12 && cycleDay <= 16:
		return FertilityHigh
	case cycleDay >= 8 && cycleDay <= 18:
		return FertilityMedium
	default:
		return FertilityLow
	}
}

// ConfidenceFor grades the amount of logged history.
func ConfidenceFor(totalLogs int) Confidence {
	switch {
	case totalLogs >= 12:
		return ConfidenceHigh
	case totalLogs >= 6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// anchorFor finds the latest start on or before target. On equal starts the
// later slice element wins, which keeps the choice stable across calls.
func anchorFor(target time.Time, logs []PeriodLog) (time.Time, bool) {
	var anchor time.Time
	found := false
	for _, log := range logs {
		start := civil(log.StartDate)
		if start.After(target) {
			continue
		}
		if !found || !start.Before(anchor) {
			anchor = start
			found = true
		}
	}
	return anchor, found
}

// effectiveRange returns the inclusive day range a log covers. A missing end
// uses the fallback length; an end before the start collapses to the start.
func (e Engine) effectiveRange(log PeriodLog) (time.Time, time.Time) {
	start := civil(log.StartDate)
	if log.EndDate == nil {
		length := e.fallbackPeriodLength
		if length <= 0 {
			length = DefaultPeriodLength
		}
		return start, start.AddDate(0, 0, length-1)
	}
	end := civil(*log.EndDate)
	if end.Before(start) {
		return start, start
	}
	return start, end
}

// civil strips the clock from t, keeping its own year, month and day.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)).Hours() / 24)
}
