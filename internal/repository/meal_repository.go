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

const mealColumns = "id, user_id, meal_type, description, eaten_at, calories, notes, created_at, updated_at"

// MealRepository persists meal logs.
type MealRepository struct {
	db *sqlx.DB
}

func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

func (r *MealRepository) List(ctx context.Context, filter models.MealLogFilter) ([]models.MealLog, int, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("eaten_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("eaten_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.MealType != nil {
		conditions = append(conditions, fmt.Sprintf("meal_type = $%d", len(args)+1))
		args = append(args, *filter.MealType)
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

	listQuery := fmt.Sprintf("SELECT %s FROM meal_logs%s ORDER BY eaten_at DESC LIMIT %d OFFSET %d", mealColumns, where, pageSize, (page-1)*pageSize)
	var meals []models.MealLog
	if err := r.db.SelectContext(ctx, &meals, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list meals: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM meal_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count meals: %w", err)
	}
	return meals, total, nil
}

func (r *MealRepository) GetByID(ctx context.Context, id string) (*models.MealLog, error) {
	query := fmt.Sprintf("SELECT %s FROM meal_logs WHERE id = $1", mealColumns)
	var meal models.MealLog
	if err := r.db.GetContext(ctx, &meal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}
	return &meal, nil
}

func (r *MealRepository) Create(ctx context.Context, meal *models.MealLog) error {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	const query = `INSERT INTO meal_logs (id, user_id, meal_type, description, eaten_at, calories, notes, created_at, updated_at) VALUES (:id, :user_id, :meal_type, :description, :eaten_at, :calories, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, meal); err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

func (r *MealRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meal_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return expectAffected(res)
}
