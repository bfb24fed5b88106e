// Package cyclemath derives cycle days, phases, fertility levels, calendar
// grids and forward predictions from a history of period logs.
package cyclemath

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

const (
	// NoCycleDay marks a date with no period start at or before it.
	NoCycleDay = 0
	// ReferenceCycleLength is the fixed cycle the phase bands are defined on.
	ReferenceCycleLength = 28
	// OvulationCycleDay is the cycle day assumed to be ovulation.
	OvulationCycleDay = 14
	// DefaultCycleLength is used when no average cycle length is known.
	DefaultCycleLength = 28
	// DefaultPeriodLength is used when no average period length is known.
	DefaultPeriodLength = 5
	// MinCycleLength and MaxCycleLength bound the start-to-start gaps that
	// count towards the average cycle length.
	MinCycleLength = 15
	MaxCycleLength = 60
)

// Phase is a fixed-band classification of a cycle day.
type Phase string

const (
	PhaseNone       Phase = ""
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
)

// FertilityLevel is the coarse likelihood of conception on a cycle day.
type FertilityLevel string

const (
	FertilityHigh   FertilityLevel = "high"
	FertilityMedium FertilityLevel = "medium"
	FertilityLow    FertilityLevel = "low"
)

// Confidence reflects how much logged history backs a prediction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FlowIntensity describes logged menstrual flow.
type FlowIntensity string

const (
	FlowLight  FlowIntensity = "light"
	FlowMedium FlowIntensity = "medium"
	FlowHeavy  FlowIntensity = "heavy"
)

// PeriodLog is one recorded period. Dates are calendar dates: only their
// year, month and day (in their own location) are significant.
type PeriodLog struct {
	StartDate     time.Time
	EndDate       *time.Time
	FlowIntensity FlowIntensity
	Symptoms      []string
	Notes         string
}

// Stats is the aggregate derived from a period log history.
type Stats struct {
	AverageCycleLength  *float64
	AveragePeriodLength *float64
	LatestPeriodStart   *time.Time
	TotalLogs           int
}

// CalendarDay is a single annotated cell of a month grid.
type CalendarDay struct {
	Date           time.Time
	DayOfMonth     int
	IsCurrentMonth bool
	IsToday        bool
	IsPeriodDay    bool
	IsPeriodStart  bool
	IsPeriodEnd    bool
	CycleDay       int
	Phase          Phase
	IsOvulationDay bool
	FertilityLevel FertilityLevel
}

// CalendarMonth is a Sunday-first grid covering a whole month.
type CalendarMonth struct {
	Year  int
	Month time.Month
	Days  []CalendarDay
}

// Weeks splits the grid into rows of seven days.
func (m CalendarMonth) Weeks() [][]CalendarDay {
	weeks := make([][]CalendarDay, 0, len(m.Days)/7)
	for i := 0; i+7 <= len(m.Days); i += 7 {
		weeks = append(weeks, m.Days[i:i+7])
	}
	return weeks
}

// Prediction is one forecast future cycle.
type Prediction struct {
	CycleNumber           int
	PredictedStart        time.Time
	PredictedEnd          time.Time
	OvulationDate         time.Time
	FertileWindowStart    time.Time
	FertileWindowEnd      time.Time
	PredictedCycleLength  float64
	PredictedPeriodLength float64
	Confidence            Confidence
	DaysUntilStart        int
}

// Status summarises where a given day sits in the current cycle.
type Status struct {
	Date                time.Time
	CycleDay            int
	Phase               Phase
	FertilityLevel      FertilityLevel
	IsOvulationDay      bool
	NextPeriodStart     *time.Time
	DaysUntilNextPeriod *int
}
