package cyclemath

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ParseDate reads a calendar date written as YYYY-MM-DD or RFC3339. For
// RFC3339 input the date is taken as written, ignoring the offset.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return civil(t), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return civil(t).Format(DateLayout)
}

type statsJSON struct {
	AverageCycleLength  *float64 `json:"average_cycle_length"`
	AveragePeriodLength *float64 `json:"average_period_length"`
	LatestPeriodStart   *string  `json:"latest_period_start"`
	TotalLogs           int      `json:"total_logs"`
}

// MarshalJSON writes the backend stats shape.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		AverageCycleLength:  s.AverageCycleLength,
		AveragePeriodLength: s.AveragePeriodLength,
		LatestPeriodStart:   formatOptionalDate(s.LatestPeriodStart),
		TotalLogs:           s.TotalLogs,
	})
}

// UnmarshalJSON reads the backend stats shape.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	latest, err := parseOptionalDate(raw.LatestPeriodStart)
	if err != nil {
		return fmt.Errorf("latest_period_start: %w", err)
	}
	*s = Stats{
		AverageCycleLength:  raw.AverageCycleLength,
		AveragePeriodLength: raw.AveragePeriodLength,
		LatestPeriodStart:   latest,
		TotalLogs:           raw.TotalLogs,
	}
	return nil
}

type periodLogJSON struct {
	StartDate     string        `json:"start_date"`
	EndDate       *string       `json:"end_date"`
	FlowIntensity FlowIntensity `json:"flow_intensity,omitempty"`
	Symptoms      []string      `json:"symptoms,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// MarshalJSON writes the backend period log shape.
func (l PeriodLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(periodLogJSON{
		StartDate:     FormatDate(l.StartDate),
		EndDate:       formatOptionalDate(l.EndDate),
		FlowIntensity: l.FlowIntensity,
		Symptoms:      l.Symptoms,
		Notes:         l.Notes,
	})
}

// UnmarshalJSON reads the backend period log shape. start_date is required.
func (l *PeriodLog) UnmarshalJSON(data []byte) error {
	var raw periodLogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.StartDate == "" {
		return fmt.Errorf("start_date is required")
	}
	start, err := ParseDate(raw.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := parseOptionalDate(raw.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	*l = PeriodLog{
		StartDate:     start,
		EndDate:       end,
		FlowIntensity: raw.FlowIntensity,
		Symptoms:      raw.Symptoms,
		Notes:         raw.Notes,
	}
	return nil
}

// MarshalJSON writes a calendar cell, using null for unknown cycle days.
func (d CalendarDay) MarshalJSON() ([]byte, error) {
	var cycleDay *int
	if d.CycleDay != NoCycleDay {
		value := d.CycleDay
		cycleDay = &value
	}
	var phase *Phase
	if d.Phase != PhaseNone {
		value := d.Phase
		phase = &value
	}
	return json.Marshal(struct {
		Date           string         `json:"date"`
		DayOfMonth     int            `json:"day_of_month"`
		IsCurrentMonth bool           `json:"is_current_month"`
		IsToday        bool           `json:"is_today"`
		IsPeriodDay    bool           `json:"is_period_day"`
		IsPeriodStart  bool           `json:"is_period_start"`
		IsPeriodEnd    bool           `json:"is_period_end"`
		CycleDay       *int           `json:"cycle_day"`
		Phase          *Phase         `json:"phase"`
		IsOvulationDay bool           `json:"is_ovulation_day"`
		FertilityLevel FertilityLevel `json:"fertility_level"`
	}{
		Date:           FormatDate(d.Date),
		DayOfMonth:     d.DayOfMonth,
		IsCurrentMonth: d.IsCurrentMonth,
		IsToday:        d.IsToday,
		IsPeriodDay:    d.IsPeriodDay,
		IsPeriodStart:  d.IsPeriodStart,
		IsPeriodEnd:    d.IsPeriodEnd,
		CycleDay:       cycleDay,
		Phase:          phase,
		IsOvulationDay: d.IsOvulationDay,
		FertilityLevel: d.FertilityLevel,
	})
}

// MarshalJSON writes a prediction with calendar dates.
func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CycleNumber           int        `json:"cycle_number"`
		PredictedStart        string     `json:"predicted_start"`
		PredictedEnd          string     `json:"predicted_end"`
		OvulationDate         string     `json:"ovulation_date"`
		FertileWindowStart    string     `json:"fertile_window_start"`
		FertileWindowEnd      string     `json:"fertile_window_end"`
		PredictedCycleLength  float64    `json:"predicted_cycle_length"`
		PredictedPeriodLength float64    `json:"predicted_period_length"`
		Confidence            Confidence `json:"confidence"`
		DaysUntilStart        int        `json:"days_until_start"`
	}{
		CycleNumber:           p.CycleNumber,
		PredictedStart:        FormatDate(p.PredictedStart),
		PredictedEnd:          FormatDate(p.PredictedEnd),
		OvulationDate:         FormatDate(p.OvulationDate),
		FertileWindowStart:    FormatDate(p.FertileWindowStart),
		FertileWindowEnd:      FormatDate(p.FertileWindowEnd),
		PredictedCycleLength:  p.PredictedCycleLength,
		PredictedPeriodLength: p.PredictedPeriodLength,
		Confidence:            p.Confidence,
		DaysUntilStart:        p.DaysUntilStart,
	})
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := FormatDate(*t)
	return &value
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
