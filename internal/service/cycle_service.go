package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/dto"
	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
	appErrors "github.com/noah-isme/cycle-care-api/pkg/errors"
	"github.com/noah-isme/cycle-care-api/pkg/export"
)

// Symptoms accepted on period logs.
var symptomVocabulary = map[string]struct{}{
	"cramps":            {},
	"bloating":          {},
	"headache":          {},
	"fatigue":           {},
	"mood_swings":       {},
	"acne":              {},
	"back_pain":         {},
	"breast_tenderness": {},
	"nausea":            {},
	"cravings":          {},
	"insomnia":          {},
	"spotting":          {},
}

type periodLogRepository interface {
	ListByUser(ctx context.Context, filter models.PeriodLogFilter) ([]models.PeriodLog, int, error)
	ListAllByUser(ctx context.Context, userID string) ([]models.PeriodLog, error)
	GetByID(ctx context.Context, id string) (*models.PeriodLog, error)
	Create(ctx context.Context, log *models.PeriodLog) error
	Update(ctx context.Context, log *models.PeriodLog) error
	Delete(ctx context.Context, id, userID string) error
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// CycleConfig tunes CycleService.
type CycleConfig struct {
	DefaultPredictions int
	MaxPredictions     int
	CacheTTL           time.Duration
}

// CycleListRequest filters the period log listing.
type CycleListRequest struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ExportFile is a rendered cycle history document.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CycleService owns period log persistence and serves every derived cycle
// view through cyclemath.
type CycleService struct {
	repo      periodLogRepository
	cache     *CacheService
	metrics   *MetricsService
	engine    cyclemath.Engine
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CycleConfig
	renderers map[string]datasetRenderer
	now       func() time.Time
}

func NewCycleService(repo periodLogRepository, cache *CacheService, metrics *MetricsService, engine cyclemath.Engine, validate *validator.Validate, logger *zap.Logger, cfg CycleConfig) *CycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPredictions <= 0 {
		cfg.MaxPredictions = 12
	}
	if cfg.DefaultPredictions <= 0 {
		cfg.DefaultPredictions = 3
	}
	if cfg.DefaultPredictions > cfg.MaxPredictions {
		cfg.DefaultPredictions = cfg.MaxPredictions
	}
	svc := &CycleService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		engine:    engine,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		now: time.Now,
	}
	svc.validator.RegisterValidation("flow", func(fl validator.FieldLevel) bool {
		switch cyclemath.FlowIntensity(fl.Field().String()) {
		case cyclemath.FlowLight, cyclemath.FlowMedium, cyclemath.FlowHeavy:
			return true
		default:
			return false
		}
	})
	svc.validator.RegisterValidation("symptom", func(fl validator.FieldLevel) bool {
		_, ok := symptomVocabulary[fl.Field().String()]
		return ok
	})
	return svc
}

// ListLogs returns one page of the actor's logs, newest first.
func (s *CycleService) ListLogs(ctx context.Context, req CycleListRequest, actor *models.JWTClaims) ([]dto.PeriodLogResponse, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.PeriodLogFilter{UserID: actor.UserID, From: req.From, To: req.To, Page: req.Page, PageSize: req.PageSize}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	logs, total, err := s.repo.ListByUser(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list period logs")
	}
	return dto.NewPeriodLogResponses(logs), &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// GetLog returns a single log. Admins may read any log.
func (s *CycleService) GetLog(ctx context.Context, id string, actor *models.JWTClaims) (*dto.PeriodLogResponse, error) {
	log, err := s.loadOwned(ctx, id, actor, true)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPeriodLogResponse(*log)
	return &resp, nil
}

func (s *CycleService) CreateLog(ctx context.Context, req dto.PeriodLogPayload, actor *models.JWTClaims) (*dto.PeriodLogResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	log := &models.PeriodLog{UserID: actor.UserID}
	if err := s.applyPayload(log, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period log")
	}
	s.invalidate(ctx, actor.UserID)
	resp := dto.NewPeriodLogResponse(*log)
	return &resp, nil
}

func (s *CycleService) UpdateLog(ctx context.Context, id string, req dto.PeriodLogPayload, actor *models.JWTClaims) (*dto.PeriodLogResponse, error) {
	log, err := s.loadOwned(ctx, id, actor, false)
	if err != nil {
		return nil, err
	}
	if err := s.applyPayload(log, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, log); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period log")
	}
	s.invalidate(ctx, actor.UserID)
	resp := dto.NewPeriodLogResponse(*log)
	return &resp, nil
}

func (s *CycleService) DeleteLog(ctx context.Context, id string, actor *models.JWTClaims) error {
	if _, err := s.loadOwned(ctx, id, actor, false); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period log not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete period log")
	}
	s.invalidate(ctx, actor.UserID)
	return nil
}

// Stats aggregates the actor's full history.
func (s *CycleService) Stats(ctx context.Context, actor *models.JWTClaims) (cyclemath.Stats, error) {
	logs, err := s.history(ctx, actor)
	if err != nil {
		return cyclemath.Stats{}, err
	}
	start := time.Now()
	stats := cyclemath.ComputeStats(logs)
	s.metrics.ObserveCycleComputation("stats", time.Since(start))
	return stats, nil
}

// Status reports where date sits in the actor's cycle. A nil date means today
// in the configured zone.
func (s *CycleService) Status(ctx context.Context, date *time.Time, actor *models.JWTClaims) (*dto.StatusResponse, error) {
	logs, err := s.history(ctx, actor)
	if err != nil {
		return nil, err
	}
	day := s.now()
	if date != nil {
		day = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.engine.Location())
	}
	start := time.Now()
	status := s.engine.StatusFor(day, logs, cyclemath.ComputeStats(logs))
	s.metrics.ObserveCycleComputation("status", time.Since(start))
	resp := dto.NewStatusResponse(status)
	return &resp, nil
}

// Calendar builds the month grid. The second return value reports a cache hit.
func (s *CycleService) Calendar(ctx context.Context, year, month int, actor *models.JWTClaims) (*dto.CalendarResponse, bool, error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if month < 1 || month > 12 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 1900 || year > 2200 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year must be between 1900 and 2200")
	}

	now := s.now()
	key := fmt.Sprintf("cycle:%s:calendar:%04d-%02d:%s", actor.UserID, year, month, cyclemath.FormatDate(s.engine.Today(now)))
	var cached dto.CalendarResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	logs, err := s.history(ctx, actor)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	grid := s.engine.BuildCalendarMonth(year, time.Month(month), logs, now)
	s.metrics.ObserveCycleComputation("calendar", time.Since(start))

	resp := dto.NewCalendarResponse(grid)
	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	return &resp, false, nil
}

// Predictions forecasts the next count cycles; nil count uses the default.
func (s *CycleService) Predictions(ctx context.Context, count *int, actor *models.JWTClaims) ([]dto.PredictionResponse, bool, error) {
	if actor == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	n := s.cfg.DefaultPredictions
	if count != nil {
		n = *count
	}
	if n < 1 || n > s.cfg.MaxPredictions {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxPredictions))
	}

	now := s.now()
	key := fmt.Sprintf("cycle:%s:predictions:%d:%s", actor.UserID, n, cyclemath.FormatDate(s.engine.Today(now)))
	var cached []dto.PredictionResponse
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	logs, err := s.history(ctx, actor)
	if err != nil {
		return nil, false, err
	}
	resp := dto.NewPredictionResponses(s.predict(n, logs, now))
	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

// Export renders the actor's history followed by the default forecast.
func (s *CycleService) Export(ctx context.Context, format string, actor *models.JWTClaims) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	logs, err := s.history(ctx, actor)
	if err != nil {
		return nil, err
	}
	now := s.now()
	data := cycleDataset(logs, s.predict(s.cfg.DefaultPredictions, logs, now))
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("cycle history exported", zap.String("user_id", actor.UserID), zap.String("format", format), zap.Int("logs", len(logs)))
	return &ExportFile{
		Filename:    fmt.Sprintf("cycle-history-%s.%s", cyclemath.FormatDate(s.engine.Today(now)), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *CycleService) predict(n int, logs []cyclemath.PeriodLog, now time.Time) []cyclemath.Prediction {
	start := time.Now()
	stats := cyclemath.ComputeStats(logs)
	predictions := s.engine.PredictNextCycles(n, stats, stats.LatestPeriodStart, now)
	s.metrics.ObserveCycleComputation("predictions", time.Since(start))
	return predictions
}

func (s *CycleService) history(ctx context.Context, actor *models.JWTClaims) ([]cyclemath.PeriodLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	start := time.Now()
	logs, err := s.repo.ListAllByUser(ctx, actor.UserID)
	s.metrics.ObserveDBQuery("period_logs_history", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period history")
	}
	return models.CycleLogs(logs), nil
}

func (s *CycleService) loadOwned(ctx context.Context, id string, actor *models.JWTClaims, allowAdmin bool) (*models.PeriodLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period log")
	}
	if log.UserID != actor.UserID && !(allowAdmin && actor.Role == models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "period log belongs to another user")
	}
	return log, nil
}

func (s *CycleService) applyPayload(log *models.PeriodLog, req dto.PeriodLogPayload) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period log payload")
	}
	start, err := cyclemath.ParseDate(req.StartDate)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid start_date, expected YYYY-MM-DD")
	}
	if start.After(s.engine.Today(s.now())) {
		return appErrors.Clone(appErrors.ErrValidation, "start_date cannot be in the future")
	}
	var end *time.Time
	if req.EndDate != nil && strings.TrimSpace(*req.EndDate) != "" {
		parsed, err := cyclemath.ParseDate(*req.EndDate)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid end_date, expected YYYY-MM-DD")
		}
		if parsed.Before(start) {
			return appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
		}
		end = &parsed
	}

	log.StartDate = start
	log.EndDate = end
	log.FlowIntensity = req.FlowIntensity
	log.Symptoms = pq.StringArray(dedupe(req.Symptoms))
	log.Notes = req.Notes
	return nil
}

func (s *CycleService) invalidate(ctx context.Context, userID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("cycle:%s:*", userID))
}

func cycleDataset(logs []cyclemath.PeriodLog, predictions []cyclemath.Prediction) export.Dataset {
	data := export.Dataset{
		Title:   "Cycle history",
		Headers: []string{"type", "start_date", "end_date", "flow_intensity", "symptoms", "details"},
	}
	for _, log := range logs {
		row := map[string]string{
			"type":           "logged",
			"start_date":     cyclemath.FormatDate(log.StartDate),
			"flow_intensity": string(log.FlowIntensity),
			"symptoms":       strings.Join(log.Symptoms, ", "),
			"details":        log.Notes,
		}
		if log.EndDate != nil {
			row["end_date"] = cyclemath.FormatDate(*log.EndDate)
		}
		data.Rows = append(data.Rows, row)
	}
	for _, p := range predictions {
		data.Rows = append(data.Rows, map[string]string{
			"type":       "predicted",
			"start_date": cyclemath.FormatDate(p.PredictedStart),
			"end_date":   cyclemath.FormatDate(p.PredictedEnd),
			"details": fmt.Sprintf("ovulation %s, fertile %s to %s, %s confidence",
				cyclemath.FormatDate(p.OvulationDate),
				cyclemath.FormatDate(p.FertileWindowStart),
				cyclemath.FormatDate(p.FertileWindowEnd),
				p.Confidence),
		})
	}
	return data
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
