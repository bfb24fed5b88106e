package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/cycle-care-api/internal/models"
)

const periodLogColumns = "id, user_id, start_date, end_date, flow_intensity, symptoms, notes, created_at, updated_at"

// PeriodLogRepository persists period logs in the period_logs table.
type PeriodLogRepository struct {
	db *sqlx.DB
}

func NewPeriodLogRepository(db *sqlx.DB) *PeriodLogRepository {
	return &PeriodLogRepository{db: db}
}

// ListByUser returns one page of a user's logs, newest first, with the total
// number of matching rows.
func (r *PeriodLogRepository) ListByUser(ctx context.Context, filter models.PeriodLogFilter) ([]models.PeriodLog, int, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s FROM period_logs%s ORDER BY start_date DESC, created_at DESC LIMIT %d OFFSET %d", periodLogColumns, where, pageSize, offset)
	var logs []models.PeriodLog
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list period logs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM period_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count period logs: %w", err)
	}

	return logs, total, nil
}

// ListAllByUser returns the full history in ascending start order. Logs that
// share a start date keep insertion order, so the most recent one is last.
func (r *PeriodLogRepository) ListAllByUser(ctx context.Context, userID string) ([]models.PeriodLog, error) {
	query := fmt.Sprintf("SELECT %s FROM period_logs WHERE user_id = $1 ORDER BY start_date ASC, created_at ASC", periodLogColumns)
	var logs []models.PeriodLog
	if err := r.db.SelectContext(ctx, &logs, query, userID); err != nil {
		return nil, fmt.Errorf("list period history: %w", err)
	}
	return logs, nil
}

// GetByID returns sql.ErrNoRows when the log does not exist.
func (r *PeriodLogRepository) GetByID(ctx context.Context, id string) (*models.PeriodLog, error) {
	query := fmt.Sprintf("SELECT %s FROM period_logs WHERE id = $1", periodLogColumns)
	var log models.PeriodLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get period log: %w", err)
	}
	return &log, nil
}

func (r *PeriodLogRepository) Create(ctx context.Context, log *models.PeriodLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	const query = `INSERT INTO period_logs (id, user_id, start_date, end_date, flow_intensity, symptoms, notes, created_at, updated_at) VALUES (:id, :user_id, :start_date, :end_date, :flow_intensity, :symptoms, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create period log: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields. It returns sql.ErrNoRows when no row
// matched.
func (r *PeriodLogRepository) Update(ctx context.Context, log *models.PeriodLog) error {
	log.UpdatedAt = time.Now().UTC()
	const query = `UPDATE period_logs SET start_date = :start_date, end_date = :end_date, flow_intensity = :flow_intensity, symptoms = :symptoms, notes = :notes, updated_at = :updated_at WHERE id = :id AND user_id = :user_id`
	res, err := r.db.NamedExecContext(ctx, query, log)
	if err != nil {
		return fmt.Errorf("update period log: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a log owned by userID.
func (r *PeriodLogRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM period_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete period log: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
