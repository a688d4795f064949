package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/envelope-budget/backend/internal/auth"
	"example.com/envelope-budget/backend/internal/models"
	"example.com/envelope-budget/backend/internal/repository"
)

type IncomeHandler struct {
	Incomes *repository.IncomeRepository
}

// NewIncomeHandler создает обработчик источников дохода.
func NewIncomeHandler(incomes *repository.IncomeRepository) *IncomeHandler {
	return &IncomeHandler{Incomes: incomes}
}

type IncomeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Frequency   string `json:"frequency" validate:"required,frequency"`
	AnchorDate  string `json:"anchor_date" validate:"required"`
	IsActive    *bool  `json:"is_active"`
}

type IncomeResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	AmountCents int64            `json:"amount_cents"`
	Frequency   models.Frequency `json:"frequency"`
	AnchorDate  string           `json:"anchor_date"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// List возвращает источники дохода пользователя.
func (h *IncomeHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomes, err := h.Incomes.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]IncomeResponse, 0, len(incomes))
	for _, income := range incomes {
		response = append(response, toIncomeResponse(income))
	}

	return c.JSON(http.StatusOK, map[string][]IncomeResponse{"incomes": response})
}

// Create создает источник дохода.
func (h *IncomeHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	income, err := h.bindIncome(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Incomes.Create(c.Request().Context(), income)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toIncomeResponse(created))
}

// Update обновляет источник дохода.
func (h *IncomeHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	income, err := h.bindIncome(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	income.ID = incomeID

	updated, err := h.Incomes.Update(c.Request().Context(), income)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toIncomeResponse(updated))
}

// Delete удаляет источник дохода.
func (h *IncomeHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	if err := h.Incomes.Delete(c.Request().Context(), userID, incomeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *IncomeHandler) bindIncome(c echo.Context, userID uuid.UUID) (models.IncomeSource, error) {
	var income models.IncomeSource

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return income, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return income, errors.New("validation failed")
	}

	anchorDate, err := time.Parse(dateLayout, strings.TrimSpace(req.AnchorDate))
	if err != nil {
		return income, errors.New("invalid anchor_date, expected YYYY-MM-DD")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return models.IncomeSource{
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		AmountCents: req.AmountCents,
		Frequency:   models.Frequency(req.Frequency),
		AnchorDate:  anchorDate,
		IsActive:    isActive,
	}, nil
}

func toIncomeResponse(income models.IncomeSource) IncomeResponse {
	return IncomeResponse{
		ID:          income.ID,
		Name:        income.Name,
		AmountCents: income.AmountCents,
		Frequency:   income.Frequency,
		AnchorDate:  income.AnchorDate.Format(dateLayout),
		IsActive:    income.IsActive,
		CreatedAt:   income.CreatedAt,
		UpdatedAt:   income.UpdatedAt,
	}
}
