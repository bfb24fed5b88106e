package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
)

// PeriodLog is a stored period record. StartDate and EndDate are DATE
// columns and carry no meaningful time of day.
type PeriodLog struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	StartDate     time.Time      `db:"start_date" json:"start_date"`
	EndDate       *time.Time     `db:"end_date" json:"end_date,omitempty"`
	FlowIntensity *string        `db:"flow_intensity" json:"flow_intensity,omitempty"`
	Symptoms      pq.StringArray `db:"symptoms" json:"symptoms"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// PeriodLogFilter narrows a user's log listing.
type PeriodLogFilter struct {
	UserID   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// CycleLog converts the stored record into the calculation input.
func (l PeriodLog) CycleLog() cyclemath.PeriodLog {
	log := cyclemath.PeriodLog{
		StartDate: l.StartDate,
		EndDate:   l.EndDate,
		Symptoms:  []string(l.Symptoms),
	}
	if l.FlowIntensity != nil {
		log.FlowIntensity = cyclemath.FlowIntensity(*l.FlowIntensity)
	}
	if l.Notes != nil {
		log.Notes = *l.Notes
	}
	return log
}

// CycleLogs converts a history, keeping its order.
func CycleLogs(logs []PeriodLog) []cyclemath.PeriodLog {
	out := make([]cyclemath.PeriodLog, len(logs))
	for i, l := range logs {
		out[i] = l.CycleLog()
	}
	return out
}
