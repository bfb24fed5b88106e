package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cycle-care-api/internal/dto"
	"github.com/noah-isme/cycle-care-api/internal/middleware"
	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/internal/service"
	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
	appErrors "github.com/noah-isme/cycle-care-api/pkg/errors"
	"github.com/noah-isme/cycle-care-api/pkg/response"
)

type cycleService interface {
	ListLogs(ctx context.Context, req service.CycleListRequest, actor *models.JWTClaims) ([]dto.PeriodLogResponse, *models.Pagination, error)
	GetLog(ctx context.Context, id string, actor *models.JWTClaims) (*dto.PeriodLogResponse, error)
	CreateLog(ctx context.Context, req dto.PeriodLogPayload, actor *models.JWTClaims) (*dto.PeriodLogResponse, error)
	UpdateLog(ctx context.Context, id string, req dto.PeriodLogPayload, actor *models.JWTClaims) (*dto.PeriodLogResponse, error)
	DeleteLog(ctx context.Context, id string, actor *models.JWTClaims) error
	Stats(ctx context.Context, actor *models.JWTClaims) (cyclemath.Stats, error)
	Status(ctx context.Context, date *time.Time, actor *models.JWTClaims) (*dto.StatusResponse, error)
	Calendar(ctx context.Context, year, month int, actor *models.JWTClaims) (*dto.CalendarResponse, bool, error)
	Predictions(ctx context.Context, count *int, actor *models.JWTClaims) ([]dto.PredictionResponse, bool, error)
	Export(ctx context.Context, format string, actor *models.JWTClaims) (*service.ExportFile, error)
}

// CycleHandler serves period logs and the derived cycle views.
type CycleHandler struct {
	service  cycleService
	location *time.Location
	now      func() time.Time
}

// NewCycleHandler builds the handler. location picks the default calendar
// month when the query omits it.
func NewCycleHandler(svc cycleService, location *time.Location) *CycleHandler {
	if location == nil {
		location = time.UTC
	}
	return &CycleHandler{service: svc, location: location, now: time.Now}
}

// ListLogs godoc
// @Summary List period logs
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Param from query string false "Earliest start date (YYYY-MM-DD)"
// @Param to query string false "Latest start date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycle-logs [get]
func (h *CycleHandler) ListLogs(c *gin.Context) {
	from, err := dateQuery(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, pagination, err := h.service.ListLogs(c.Request.Context(), service.CycleListRequest{From: from, To: to, Page: page, PageSize: size}, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// GetLog godoc
// @Summary Get a period log
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cycle-logs/{id} [get]
func (h *CycleHandler) GetLog(c *gin.Context) {
	log, err := h.service.GetLog(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// CreateLog godoc
// @Summary Record a period
// @Tags Cycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PeriodLogPayload true "Period log"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycle-logs [post]
func (h *CycleHandler) CreateLog(c *gin.Context) {
	var req dto.PeriodLogPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid period log payload"))
		return
	}
	log, err := h.service.CreateLog(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, log)
}

// UpdateLog godoc
// @Summary Replace a period log
// @Tags Cycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Param payload body dto.PeriodLogPayload true "Period log"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cycle-logs/{id} [put]
func (h *CycleHandler) UpdateLog(c *gin.Context) {
	var req dto.PeriodLogPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid period log payload"))
		return
	}
	log, err := h.service.UpdateLog(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, log, nil)
}

// DeleteLog godoc
// @Summary Delete a period log
// @Tags Cycle
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cycle-logs/{id} [delete]
func (h *CycleHandler) DeleteLog(c *gin.Context) {
	if err := h.service.DeleteLog(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Aggregate cycle statistics
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /cycle-logs/stats [get]
func (h *CycleHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Status godoc
// @Summary Current cycle status
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycle/status [get]
func (h *CycleHandler) Status(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.Status(c.Request.Context(), date, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Calendar godoc
// @Summary Month calendar with cycle annotations
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year. Defaults to the current year"
// @Param month query int false "Month 1-12. Defaults to the current month"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycle/calendar [get]
func (h *CycleHandler) Calendar(c *gin.Context) {
	now := h.now().In(h.location)
	year, month := now.Year(), int(now.Month())
	if v, err := intQuery(c, "year"); err != nil {
		response.Error(c, err)
		return
	} else if v != nil {
		year = *v
	}
	if v, err := intQuery(c, "month"); err != nil {
		response.Error(c, err)
		return
	} else if v != nil {
		month = *v
	}

	start := time.Now()
	grid, hit, err := h.service.Calendar(c.Request.Context(), year, month, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, grid, nil, middleware.ResponseMeta(c, start))
}

// Predictions godoc
// @Summary Forecast upcoming cycles
// @Tags Cycle
// @Produce json
// @Security BearerAuth
// @Param count query int false "Number of cycles"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycle/predictions [get]
func (h *CycleHandler) Predictions(c *gin.Context) {
	count, err := intQuery(c, "count")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	predictions, hit, err := h.service.Predictions(c.Request.Context(), count, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, predictions, nil, middleware.ResponseMeta(c, start))
}

// Export godoc
// @Summary Download cycle history
// @Tags Cycle
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /cycle/export [get]
func (h *CycleHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), strings.TrimSpace(c.Query("format")), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
