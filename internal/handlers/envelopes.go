package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/envelope-budget/backend/internal/auth"
	"example.com/envelope-budget/backend/internal/config"
	"example.com/envelope-budget/backend/internal/engine"
	"example.com/envelope-budget/backend/internal/models"
	"example.com/envelope-budget/backend/internal/repository"
)

const dateLayout = "2006-01-02"

type EnvelopeHandler struct {
	Envelopes   *repository.EnvelopeRepository
	Allocations *repository.AllocationRepository
	Incomes     *repository.IncomeRepository
	Engine      config.EngineConfig
}

// NewEnvelopeHandler создает обработчик конвертов.
func NewEnvelopeHandler(
	envelopes *repository.EnvelopeRepository,
	allocations *repository.AllocationRepository,
	incomes *repository.IncomeRepository,
	engineCfg config.EngineConfig,
) *EnvelopeHandler {
	return &EnvelopeHandler{
		Envelopes:   envelopes,
		Allocations: allocations,
		Incomes:     incomes,
		Engine:      engineCfg,
	}
}

type EnvelopeRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Subtype      string  `json:"subtype" validate:"required,oneof=bill spending savings goal tracking debt"`
	Priority     string  `json:"priority" validate:"required,oneof=essential important discretionary"`
	TargetCents  int64   `json:"target_cents" validate:"gte=0"`
	Frequency    string  `json:"frequency" validate:"required,frequency_or_none"`
	DueDate      *string `json:"due_date"`
	BalanceCents int64   `json:"balance_cents"`
}

type EnvelopeResponse struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Subtype      models.EnvelopeSubtype  `json:"subtype"`
	Priority     models.EnvelopePriority `json:"priority"`
	TargetCents  int64                   `json:"target_cents"`
	Frequency    models.Frequency        `json:"frequency"`
	DueDate      *string                 `json:"due_date,omitempty"`
	BalanceCents int64                   `json:"balance_cents"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// List возвращает конверты пользователя.
func (h *EnvelopeHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopes, err := h.Envelopes.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]EnvelopeResponse, 0, len(envelopes))
	for _, envelope := range envelopes {
		response = append(response, toEnvelopeResponse(envelope))
	}

	return c.JSON(http.StatusOK, map[string][]EnvelopeResponse{"envelopes": response})
}

// Create создает конверт.
func (h *EnvelopeHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelope, err := h.bindEnvelope(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Envelopes.Create(c.Request().Context(), envelope)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "envelope already exists")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toEnvelopeResponse(created))
}

// Get возвращает конверт по идентификатору.
func (h *EnvelopeHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	envelope, err := h.Envelopes.GetByID(c.Request().Context(), userID, envelopeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toEnvelopeResponse(envelope))
}

// Update обновляет конверт.
func (h *EnvelopeHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	envelope, err := h.bindEnvelope(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	envelope.ID = envelopeID

	updated, err := h.Envelopes.Update(c.Request().Context(), envelope)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toEnvelopeResponse(updated))
}

// Delete удаляет конверт.
func (h *EnvelopeHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	if err := h.Envelopes.Delete(c.Request().Context(), userID, envelopeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Prediction строит прогноз баланса конверта до горизонта.
func (h *EnvelopeHandler) Prediction(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	horizonDays := h.Engine.PredictionHorizonDays
	if raw := c.QueryParam("horizon_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid horizon_days")
		}
		if parsed > 366 {
			parsed = 366
		}
		horizonDays = parsed
	}

	ctx := c.Request().Context()

	envelope, err := h.Envelopes.GetByID(ctx, userID, envelopeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope not found")
		}
		return serverError(c)
	}

	allocations, err := h.Allocations.ListByEnvelope(ctx, userID, envelopeID)
	if err != nil {
		return serverError(c)
	}

	incomes, err := h.Incomes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	now := time.Now().UTC()
	prediction, err := engine.Predict(now, now.AddDate(0, 0, horizonDays), envelope, allocations, incomes)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidFrequency) || errors.Is(err, engine.ErrInvalidAmount) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, prediction)
}

// OpeningBalance считает стартовую сумму конверта для выбранного источника.
func (h *EnvelopeHandler) OpeningBalance(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	incomeIDParam := c.QueryParam("income_id")
	if incomeIDParam == "" {
		return badRequest(c, "income_id is required")
	}

	incomeID, err := uuid.Parse(incomeIDParam)
	if err != nil {
		return badRequest(c, "invalid income_id")
	}

	ctx := c.Request().Context()

	envelope, err := h.Envelopes.GetByID(ctx, userID, envelopeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope not found")
		}
		return serverError(c)
	}

	if envelope.DueDate == nil {
		return badRequest(c, "envelope has no due date")
	}

	income, err := h.Incomes.GetByID(ctx, userID, incomeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	allocations, err := h.Allocations.ListByEnvelope(ctx, userID, envelopeID)
	if err != nil {
		return serverError(c)
	}

	var perCycleCents int64
	for _, allocation := range allocations {
		if allocation.IncomeSourceID == incomeID {
			perCycleCents += allocation.AmountCents
		}
	}

	result, err := engine.OpeningBalance(time.Now().UTC(), envelope.TargetCents, income.Frequency, income.AnchorDate, *envelope.DueDate, perCycleCents)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidFrequency) || errors.Is(err, engine.ErrInvalidAmount) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *EnvelopeHandler) bindEnvelope(c echo.Context, userID uuid.UUID) (models.Envelope, error) {
	var envelope models.Envelope

	var req EnvelopeRequest
	if err := c.Bind(&req); err != nil {
		return envelope, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return envelope, errors.New("validation failed")
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return envelope, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return envelope, errors.New("name is required")
	}

	return models.Envelope{
		UserID:       userID,
		Name:         name,
		Subtype:      models.EnvelopeSubtype(req.Subtype),
		Priority:     models.EnvelopePriority(req.Priority),
		TargetCents:  req.TargetCents,
		Frequency:    models.Frequency(req.Frequency),
		DueDate:      dueDate,
		BalanceCents: req.BalanceCents,
	}, nil
}

func toEnvelopeResponse(envelope models.Envelope) EnvelopeResponse {
	var dueDate *string
	if envelope.DueDate != nil {
		formatted := envelope.DueDate.Format(dateLayout)
		dueDate = &formatted
	}

	return EnvelopeResponse{
		ID:           envelope.ID,
		Name:         envelope.Name,
		Subtype:      envelope.Subtype,
		Priority:     envelope.Priority,
		TargetCents:  envelope.TargetCents,
		Frequency:    envelope.Frequency,
		DueDate:      dueDate,
		BalanceCents: envelope.BalanceCents,
		CreatedAt:    envelope.CreatedAt,
		UpdatedAt:    envelope.UpdatedAt,
	}
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *raw)
	}

	return &parsed, nil
}
