package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cycle-care-api/internal/dto"
	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/internal/service"
	appErrors "github.com/noah-isme/cycle-care-api/pkg/errors"
	"github.com/noah-isme/cycle-care-api/pkg/response"
)

type mealService interface {
	List(ctx context.Context, req service.MealListRequest, actor *models.JWTClaims) ([]models.MealLog, *models.Pagination, error)
	Create(ctx context.Context, payload dto.MealPayload, actor *models.JWTClaims) (*models.MealLog, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// MealHandler exposes meal logging endpoints.
type MealHandler struct {
	service mealService
}

func NewMealHandler(svc mealService) *MealHandler {
	return &MealHandler{service: svc}
}

// List godoc
// @Summary List meals
// @Tags Meals
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param meal_type query string false "breakfast, lunch, dinner or snack"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /meals [get]
func (h *MealHandler) List(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.MealListRequest{
		Date:     date,
		MealType: strings.ToLower(strings.TrimSpace(c.Query("meal_type"))),
		Page:     page,
		PageSize: size,
	}
	meals, pagination, err := h.service.List(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meals, pagination)
}

// Create godoc
// @Summary Log a meal
// @Description eaten_at is preferred; meal_time and date are accepted from older clients.
// @Tags Meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MealPayload true "Meal"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /meals [post]
func (h *MealHandler) Create(c *gin.Context) {
	var payload dto.MealPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid meal payload"))
		return
	}
	meal, err := h.service.Create(c.Request.Context(), payload, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meal)
}

// Delete godoc
// @Summary Delete a meal
// @Tags Meals
// @Security BearerAuth
// @Param id path string true "Meal ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /meals/{id} [delete]
func (h *MealHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
