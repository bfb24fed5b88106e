package models

import "time"

const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionTokenRefresh    = "TOKEN_REFRESH"
	AuditActionPeriodLogCreate = "PERIOD_LOG_CREATE"
	AuditActionPeriodLogUpdate = "PERIOD_LOG_UPDATE"
	AuditActionPeriodLogDelete = "PERIOD_LOG_DELETE"
	AuditActionCycleExport     = "CYCLE_EXPORT"
	AuditActionMealCreate      = "MEAL_CREATE"
	AuditActionMealDelete      = "MEAL_DELETE"
)

// AuditLog is an access trail record. Values never contain log contents,
// only request metadata.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
