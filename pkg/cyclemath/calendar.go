package cyclemath

import "time"

type dayRange struct {
	start time.Time
	end   time.Time
}

// BuildCalendarMonth annotates every day of the month grid, padded with the
// neighbouring months' days so that the grid starts on a Sunday and ends on a
// Saturday. today is projected onto the engine's zone before comparison.
func (e Engine) BuildCalendarMonth(year int, month time.Month, logs []PeriodLog, today time.Time) CalendarMonth {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	gridEnd := monthEnd.AddDate(0, 0, 6-int(monthEnd.Weekday()))

	ranges := make([]dayRange, 0, len(logs))
	for _, log := range logs {
		start, end := e.effectiveRange(log)
		ranges = append(ranges, dayRange{start: start, end: end})
	}

	todayDate := e.Today(today)
	days := make([]CalendarDay, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		cycleDay := CycleDayFor(day, logs)
		entry := CalendarDay{
			Date:           day,
			DayOfMonth:     day.Day(),
			IsCurrentMonth: day.Month() == monthStart.Month() && day.Year() == monthStart.Year(),
			IsToday:        day.Equal(todayDate),
			CycleDay:       cycleDay,
			Phase:          PhaseFor(cycleDay),
			IsOvulationDay: cycleDay == OvulationCycleDay,
			FertilityLevel: FertilityLevelFor(cycleDay),
		}
		for _, r := range ranges {
			if day.Before(r.start) || day.After(r.end) {
				continue
			}
			entry.IsPeriodDay = true
			if day.Equal(r.start) {
				entry.IsPeriodStart = true
			}
			if day.Equal(r.end) {
				entry.IsPeriodEnd = true
			}
		}
		days = append(days, entry)
	}

	return CalendarMonth{Year: monthStart.Year(), Month: monthStart.Month(), Days: days}
}
