package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/dto"
	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
	appErrors "github.com/noah-isme/cycle-care-api/pkg/errors"
)

type periodLogRepoStub struct {
	logs         map[string]*models.PeriodLog
	historyCalls int
	created      []*models.PeriodLog
	updated      []*models.PeriodLog
	deleted      []string
	listErr      error
}

func newPeriodLogRepoStub(logs ...models.PeriodLog) *periodLogRepoStub {
	stub := &periodLogRepoStub{logs: make(map[string]*models.PeriodLog)}
	for i := range logs {
		log := logs[i]
		stub.logs[log.ID] = &log
	}
	return stub
}

func (s *periodLogRepoStub) ListByUser(ctx context.Context, filter models.PeriodLogFilter) ([]models.PeriodLog, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	var out []models.PeriodLog
	for _, log := range s.logs {
		if log.UserID == filter.UserID {
			out = append(out, *log)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, len(out), nil
}

func (s *periodLogRepoStub) ListAllByUser(ctx context.Context, userID string) ([]models.PeriodLog, error) {
	s.historyCalls++
	out, _, err := s.ListByUser(ctx, models.PeriodLogFilter{UserID: userID})
	return out, err
}

func (s *periodLogRepoStub) GetByID(ctx context.Context, id string) (*models.PeriodLog, error) {
	log, ok := s.logs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *log
	return &copied, nil
}

func (s *periodLogRepoStub) Create(ctx context.Context, log *models.PeriodLog) error {
	log.ID = "new-log"
	s.logs[log.ID] = log
	s.created = append(s.created, log)
	return nil
}

func (s *periodLogRepoStub) Update(ctx context.Context, log *models.PeriodLog) error {
	s.logs[log.ID] = log
	s.updated = append(s.updated, log)
	return nil
}

func (s *periodLogRepoStub) Delete(ctx context.Context, id, userID string) error {
	delete(s.logs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type memoryCacheRepo struct {
	items    map[string][]byte
	patterns []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func calDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func storedLog(id, userID string, start time.Time, periodDays int) models.PeriodLog {
	end := start.AddDate(0, 0, periodDays-1)
	return models.PeriodLog{ID: id, UserID: userID, StartDate: start, EndDate: &end}
}

func newTestCycleService(repo *periodLogRepoStub, cacheRepo *memoryCacheRepo) *CycleService {
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, zap.NewNop(), cacheRepo != nil)
	svc := NewCycleService(repo, cache, metrics, cyclemath.New(time.UTC), nil, zap.NewNop(), CycleConfig{DefaultPredictions: 3, MaxPredictions: 6})
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return svc
}

func historyRepo() *periodLogRepoStub {
	return newPeriodLogRepoStub(
		storedLog("log-1", "user-1", calDay(2024, 1, 1), 5),
		storedLog("log-2", "user-1", calDay(2024, 1, 29), 5),
		storedLog("log-3", "user-1", calDay(2024, 2, 26), 5),
		storedLog("other", "user-2", calDay(2024, 3, 1), 4),
	)
}

var owner = &models.JWTClaims{UserID: "user-1", Role: models.RoleAdolescent}

func TestCycleServiceCreateLogValidatesPayload(t *testing.T) {
	repo := newPeriodLogRepoStub()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestCycleService(repo, cacheRepo)
	ctx := context.Background()

	flow := "heavy"
	end := "2024-03-14"
	resp, err := svc.CreateLog(ctx, dto.PeriodLogPayload{
		StartDate:     "2024-03-10",
		EndDate:       &end,
		FlowIntensity: &flow,
		Symptoms:      []string{"cramps", "cramps", "fatigue"},
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", resp.StartDate)
	require.NotNil(t, resp.EndDate)
	assert.Equal(t, "2024-03-14", *resp.EndDate)
	assert.Equal(t, []string{"cramps", "fatigue"}, resp.Symptoms)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "user-1", repo.created[0].UserID)
	assert.Equal(t, []string{"cycle:user-1:*"}, cacheRepo.patterns)

	cases := map[string]dto.PeriodLogPayload{
		"missing start":   {},
		"bad date":        {StartDate: "10/03/2024"},
		"future start":    {StartDate: "2024-03-21"},
		"end before":      {StartDate: "2024-03-10", EndDate: strPtr("2024-03-09")},
		"unknown flow":    {StartDate: "2024-03-10", FlowIntensity: strPtr("torrential")},
		"unknown symptom": {StartDate: "2024-03-10", Symptoms: []string{"sneezing"}},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateLog(ctx, payload, owner)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestCycleServiceOwnership(t *testing.T) {
	repo := historyRepo()
	svc := newTestCycleService(repo, nil)
	ctx := context.Background()

	_, err := svc.GetLog(ctx, "other", owner)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	resp, err := svc.GetLog(ctx, "other", admin)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", resp.StartDate)

	_, err = svc.UpdateLog(ctx, "other", dto.PeriodLogPayload{StartDate: "2024-03-02"}, admin)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.DeleteLog(ctx, "missing", owner)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.DeleteLog(ctx, "log-1", owner))
	assert.Equal(t, []string{"log-1"}, repo.deleted)
	assert.Empty(t, repo.updated)

	_, _, err = svc.ListLogs(ctx, CycleListRequest{}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCycleServiceUpdateLogReplacesFields(t *testing.T) {
	repo := historyRepo()
	svc := newTestCycleService(repo, nil)

	resp, err := svc.UpdateLog(context.Background(), "log-3", dto.PeriodLogPayload{StartDate: "2024-02-27", Notes: strPtr("late")}, owner)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-27", resp.StartDate)
	assert.Nil(t, resp.EndDate)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, "late", *resp.Notes)
	assert.Empty(t, resp.Symptoms)
}

func TestCycleServiceStatsAndStatus(t *testing.T) {
	svc := newTestCycleService(historyRepo(), nil)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, stats.AverageCycleLength)
	assert.Equal(t, 28.0, *stats.AverageCycleLength)
	require.NotNil(t, stats.AveragePeriodLength)
	assert.Equal(t, 5.0, *stats.AveragePeriodLength)
	assert.Equal(t, 3, stats.TotalLogs)

	status, err := svc.Status(ctx, nil, owner)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-20", status.Date)
	require.NotNil(t, status.CycleDay)
	assert.Equal(t, 24, *status.CycleDay)
	require.NotNil(t, status.Phase)
	assert.Equal(t, "luteal", *status.Phase)
	require.NotNil(t, status.NextPeriodStart)
	assert.Equal(t, "2024-03-25", *status.NextPeriodStart)
	assert.Equal(t, 5, *status.DaysUntilNextPeriod)

	past := calDay(2024, 2, 28)
	status, err = svc.Status(ctx, &past, owner)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28", status.Date)
	assert.Equal(t, 3, *status.CycleDay)
	assert.Equal(t, "menstrual", *status.Phase)

	january := calDay(2024, 1, 10)
	status, err = svc.Status(ctx, &january, owner)
	require.NoError(t, err)
	assert.Equal(t, 10, *status.CycleDay)
	require.NotNil(t, status.NextPeriodStart)
	assert.Equal(t, "2024-01-29", *status.NextPeriodStart)
	assert.Equal(t, 19, *status.DaysUntilNextPeriod)
}

func TestCycleServiceStatusWithoutHistory(t *testing.T) {
	svc := newTestCycleService(newPeriodLogRepoStub(), nil)

	status, err := svc.Status(context.Background(), nil, owner)
	require.NoError(t, err)
	assert.Nil(t, status.CycleDay)
	assert.Nil(t, status.Phase)
	assert.Equal(t, "low", status.FertilityLevel)
	assert.Nil(t, status.NextPeriodStart)
	assert.Nil(t, status.DaysUntilNextPeriod)
}

func TestCycleServiceCalendarCachesPerDay(t *testing.T) {
	repo := historyRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestCycleService(repo, cacheRepo)
	ctx := context.Background()

	grid, hit, err := svc.Calendar(ctx, 2024, 3, owner)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2024, grid.Year)
	assert.Equal(t, 3, grid.Month)
	require.NotEmpty(t, grid.Weeks)
	assert.Equal(t, "2024-02-25", grid.Weeks[0][0].Date)
	assert.Contains(t, cacheRepo.items, "cycle:user-1:calendar:2024-03:2024-03-20")

	cached, hit, err := svc.Calendar(ctx, 2024, 3, owner)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, grid, cached)
	assert.Equal(t, 1, repo.historyCalls)

	_, err = svc.CreateLog(ctx, dto.PeriodLogPayload{StartDate: "2024-03-19"}, owner)
	require.NoError(t, err)
	_, hit, err = svc.Calendar(ctx, 2024, 3, owner)
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, err = svc.Calendar(ctx, 2024, 13, owner)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	_, _, err = svc.Calendar(ctx, 1800, 1, owner)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCycleServicePredictions(t *testing.T) {
	svc := newTestCycleService(historyRepo(), newMemoryCacheRepo())
	ctx := context.Background()

	predictions, hit, err := svc.Predictions(ctx, nil, owner)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, predictions, 3)
	assert.Equal(t, "2024-03-25", predictions[0].PredictedStart)
	assert.Equal(t, "2024-03-29", predictions[0].PredictedEnd)
	assert.Equal(t, "2024-04-07", predictions[0].OvulationDate)
	assert.Equal(t, "2024-04-22", predictions[1].PredictedStart)
	assert.Equal(t, 5, predictions[0].DaysUntilStart)
	assert.Equal(t, "low", predictions[0].Confidence)

	_, hit, err = svc.Predictions(ctx, nil, owner)
	require.NoError(t, err)
	assert.True(t, hit)

	for _, count := range []int{0, 7} {
		count := count
		_, _, err := svc.Predictions(ctx, &count, owner)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	empty := newTestCycleService(newPeriodLogRepoStub(), nil)
	none, _, err := empty.Predictions(ctx, nil, owner)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCycleServiceExportCSV(t *testing.T) {
	svc := newTestCycleService(historyRepo(), nil)
	ctx := context.Background()

	file, err := svc.Export(ctx, "", owner)
	require.NoError(t, err)
	assert.Equal(t, "cycle-history-2024-03-20.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 1+3+3)
	assert.Equal(t, "type,start_date,end_date,flow_intensity,symptoms,details", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "logged,2024-01-01,2024-01-05"))
	assert.True(t, strings.HasPrefix(lines[4], "predicted,2024-03-25,2024-03-29"))

	pdf, err := svc.Export(ctx, "PDF", owner)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Body), "%PDF"))

	_, err = svc.Export(ctx, "xlsx", owner)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func strPtr(s string) *string { return &s }
