package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/dto"
	"github.com/noah-isme/cycle-care-api/internal/models"
	appErrors "github.com/noah-isme/cycle-care-api/pkg/errors"
)

type mealRepository interface {
	List(ctx context.Context, filter models.MealLogFilter) ([]models.MealLog, int, error)
	GetByID(ctx context.Context, id string) (*models.MealLog, error)
	Create(ctx context.Context, meal *models.MealLog) error
	Delete(ctx context.Context, id, userID string) error
}

// CreateMealRequest is a meal payload after timestamp normalization.
type CreateMealRequest struct {
	MealType    string    `validate:"required,mealtype"`
	Description string    `validate:"required,max=500"`
	EatenAt     time.Time `validate:"required"`
	Calories    *int      `validate:"omitempty,min=0,max=10000"`
	Notes       *string   `validate:"omitempty,max=1000"`
}

// MealListRequest filters meals to one calendar day and/or meal type.
type MealListRequest struct {
	Date     *time.Time
	MealType string
	Page     int
	PageSize int
}

// MealService manages meal logs.
type MealService struct {
	repo      mealRepository
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
}

func NewMealService(repo mealRepository, validate *validator.Validate, logger *zap.Logger, location *time.Location) *MealService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	svc := &MealService{repo: repo, validator: validate, logger: logger, location: location}
	svc.validator.RegisterValidation("mealtype", func(fl validator.FieldLevel) bool {
		return validMealType(fl.Field().String())
	})
	return svc
}

// NormalizeMealPayload derives the canonical eaten_at from the variant
// timestamp fields. eaten_at wins over meal_time, which wins over date. A
// clock-only meal_time such as "08:30" is combined with date. Values without
// an offset are read in loc.
func NormalizeMealPayload(payload dto.MealPayload, loc *time.Location) (CreateMealRequest, error) {
	if loc == nil {
		loc = time.UTC
	}
	req := CreateMealRequest{
		MealType:    strings.ToLower(strings.TrimSpace(payload.MealType)),
		Description: strings.TrimSpace(payload.Description),
		Calories:    payload.Calories,
		Notes:       payload.Notes,
	}

	eatenAt := trimmed(payload.EatenAt)
	mealTime := trimmed(payload.MealTime)
	date := trimmed(payload.Date)

	var (
		ts  time.Time
		err error
	)
	switch {
	case eatenAt != "":
		ts, err = parseMealTimestamp(eatenAt, loc)
	case mealTime != "" && date != "" && isClock(mealTime):
		ts, err = parseMealTimestamp(date+"T"+mealTime, loc)
	case mealTime != "":
		ts, err = parseMealTimestamp(mealTime, loc)
	case date != "":
		ts, err = parseMealTimestamp(date, loc)
	default:
		return req, appErrors.Clone(appErrors.ErrValidation, "eaten_at is required")
	}
	if err != nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "invalid meal timestamp, expected RFC3339 or YYYY-MM-DD")
	}
	req.EatenAt = ts.UTC()
	return req, nil
}

// List returns the actor's meals, newest first.
func (s *MealService) List(ctx context.Context, req MealListRequest, actor *models.JWTClaims) ([]models.MealLog, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.MealLogFilter{UserID: actor.UserID, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	if req.Date != nil {
		from := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, s.location)
		to := from.AddDate(0, 0, 1)
		filter.From = &from
		filter.To = &to
	}
	if req.MealType != "" {
		if !validMealType(req.MealType) {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid meal_type")
		}
		mealType := models.MealType(req.MealType)
		filter.MealType = &mealType
	}

	meals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meals")
	}
	if meals == nil {
		meals = []models.MealLog{}
	}
	return meals, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *MealService) Create(ctx context.Context, payload dto.MealPayload, actor *models.JWTClaims) (*models.MealLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req, err := NormalizeMealPayload(payload, s.location)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meal payload")
	}

	meal := &models.MealLog{
		UserID:      actor.UserID,
		MealType:    models.MealType(req.MealType),
		Description: req.Description,
		EatenAt:     req.EatenAt,
		Calories:    req.Calories,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, meal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meal")
	}
	return meal, nil
}

func (s *MealService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	meal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meal")
	}
	if meal.UserID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "meal belongs to another user")
	}
	if err := s.repo.Delete(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meal not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meal")
	}
	return nil
}

var mealTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseMealTimestamp(raw string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range mealTimestampLayouts {
		ts, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func isClock(raw string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, raw); err == nil {
			return true
		}
	}
	return false
}

func validMealType(raw string) bool {
	switch models.MealType(raw) {
	case models.MealBreakfast, models.MealLunch, models.MealDinner, models.MealSnack:
		return true
	default:
		return false
	}
}

func trimmed(raw *string) string {
	if raw == nil {
		return ""
	}
	return strings.TrimSpace(*raw)
}
