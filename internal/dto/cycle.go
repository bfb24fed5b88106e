package dto

import (
	"time"

	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
)

// PeriodLogPayload is the create/update body for /cycle-logs. Dates are
// YYYY-MM-DD strings.
type PeriodLogPayload struct {
	StartDate     string   `json:"start_date" validate:"required"`
	EndDate       *string  `json:"end_date"`
	FlowIntensity *string  `json:"flow_intensity" validate:"omitempty,flow"`
	Symptoms      []string `json:"symptoms" validate:"omitempty,max=20,dive,symptom"`
	Notes         *string  `json:"notes" validate:"omitempty,max=1000"`
}

// PeriodLogResponse is the API shape of a stored period log.
type PeriodLogResponse struct {
	ID            string    `json:"id"`
	StartDate     string    `json:"start_date"`
	EndDate       *string   `json:"end_date"`
	FlowIntensity *string   `json:"flow_intensity"`
	Symptoms      []string  `json:"symptoms"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewPeriodLogResponse renders a stored log.
func NewPeriodLogResponse(log models.PeriodLog) PeriodLogResponse {
	symptoms := []string(log.Symptoms)
	if symptoms == nil {
		symptoms = []string{}
	}
	return PeriodLogResponse{
		ID:            log.ID,
		StartDate:     cyclemath.FormatDate(log.StartDate),
		EndDate:       optionalDate(log.EndDate),
		FlowIntensity: log.FlowIntensity,
		Symptoms:      symptoms,
		Notes:         log.Notes,
		CreatedAt:     log.CreatedAt,
		UpdatedAt:     log.UpdatedAt,
	}
}

// NewPeriodLogResponses renders a list of stored logs.
func NewPeriodLogResponses(logs []models.PeriodLog) []PeriodLogResponse {
	out := make([]PeriodLogResponse, len(logs))
	for i, log := range logs {
		out[i] = NewPeriodLogResponse(log)
	}
	return out
}

// CalendarDayResponse mirrors cyclemath.CalendarDay on the wire. Nil cycle
// day and phase mean no period has been logged on or before the date.
type CalendarDayResponse struct {
	Date           string  `json:"date"`
	DayOfMonth     int     `json:"day_of_month"`
	IsCurrentMonth bool    `json:"is_current_month"`
	IsToday        bool    `json:"is_today"`
	IsPeriodDay    bool    `json:"is_period_day"`
	IsPeriodStart  bool    `json:"is_period_start"`
	IsPeriodEnd    bool    `json:"is_period_end"`
	CycleDay       *int    `json:"cycle_day"`
	Phase          *string `json:"phase"`
	IsOvulationDay bool    `json:"is_ovulation_day"`
	FertilityLevel string  `json:"fertility_level"`
}

// CalendarResponse is a month grid split into Sunday-first weeks.
type CalendarResponse struct {
	Year  int                     `json:"year"`
	Month int                     `json:"month"`
	Weeks [][]CalendarDayResponse `json:"weeks"`
}

// NewCalendarResponse renders a computed month.
func NewCalendarResponse(month cyclemath.CalendarMonth) CalendarResponse {
	weeks := month.Weeks()
	resp := CalendarResponse{Year: month.Year, Month: int(month.Month), Weeks: make([][]CalendarDayResponse, len(weeks))}
	for i, week := range weeks {
		row := make([]CalendarDayResponse, len(week))
		for j, day := range week {
			row[j] = CalendarDayResponse{
				Date:           cyclemath.FormatDate(day.Date),
				DayOfMonth:     day.DayOfMonth,
				IsCurrentMonth: day.IsCurrentMonth,
				IsToday:        day.IsToday,
				IsPeriodDay:    day.IsPeriodDay,
				IsPeriodStart:  day.IsPeriodStart,
				IsPeriodEnd:    day.IsPeriodEnd,
				CycleDay:       optionalCycleDay(day.CycleDay),
				Phase:          optionalPhase(day.Phase),
				IsOvulationDay: day.IsOvulationDay,
				FertilityLevel: string(day.FertilityLevel),
			}
		}
		resp.Weeks[i] = row
	}
	return resp
}

type PredictionResponse struct {
	CycleNumber           int     `json:"cycle_number"`
	PredictedStart        string  `json:"predicted_start"`
	PredictedEnd          string  `json:"predicted_end"`
	OvulationDate         string  `json:"ovulation_date"`
	FertileWindowStart    string  `json:"fertile_window_start"`
	FertileWindowEnd      string  `json:"fertile_window_end"`
	PredictedCycleLength  float64 `json:"predicted_cycle_length"`
	PredictedPeriodLength float64 `json:"predicted_period_length"`
	Confidence            string  `json:"confidence"`
	DaysUntilStart        int     `json:"days_until_start"`
}

// NewPredictionResponses renders forecasts; the result is never nil.
func NewPredictionResponses(predictions []cyclemath.Prediction) []PredictionResponse {
	out := make([]PredictionResponse, len(predictions))
	for i, p := range predictions {
		out[i] = PredictionResponse{
			CycleNumber:           p.CycleNumber,
			PredictedStart:        cyclemath.FormatDate(p.PredictedStart),
			PredictedEnd:          cyclemath.FormatDate(p.PredictedEnd),
			OvulationDate:         cyclemath.FormatDate(p.OvulationDate),
			FertileWindowStart:    cyclemath.FormatDate(p.FertileWindowStart),
			FertileWindowEnd:      cyclemath.FormatDate(p.FertileWindowEnd),
			PredictedCycleLength:  p.PredictedCycleLength,
			PredictedPeriodLength: p.PredictedPeriodLength,
			Confidence:            string(p.Confidence),
			DaysUntilStart:        p.DaysUntilStart,
		}
	}
	return out
}

// StatusResponse backs the dashboard phase banner.
type StatusResponse struct {
	Date                string  `json:"date"`
	CycleDay            *int    `json:"cycle_day"`
	Phase               *string `json:"phase"`
	FertilityLevel      string  `json:"fertility_level"`
	IsOvulationDay      bool    `json:"is_ovulation_day"`
	NextPeriodStart     *string `json:"next_period_start"`
	DaysUntilNextPeriod *int    `json:"days_until_next_period"`
}

func NewStatusResponse(status cyclemath.Status) StatusResponse {
	return StatusResponse{
		Date:                cyclemath.FormatDate(status.Date),
		CycleDay:            optionalCycleDay(status.CycleDay),
		Phase:               optionalPhase(status.Phase),
		FertilityLevel:      string(status.FertilityLevel),
		IsOvulationDay:      status.IsOvulationDay,
		NextPeriodStart:     optionalDate(status.NextPeriodStart),
		DaysUntilNextPeriod: status.DaysUntilNextPeriod,
	}
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := cyclemath.FormatDate(*t)
	return &s
}

func optionalCycleDay(day int) *int {
	if day == cyclemath.NoCycleDay {
		return nil
	}
	return &day
}

func optionalPhase(phase cyclemath.Phase) *string {
	if phase == cyclemath.PhaseNone {
		return nil
	}
	s := string(phase)
	return &s
}
