package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/envelope-budget/backend/internal/auth"
	"example.com/envelope-budget/backend/internal/config"
	"example.com/envelope-budget/backend/internal/engine"
	"example.com/envelope-budget/backend/internal/models"
	"example.com/envelope-budget/backend/internal/repository"
)

type AllocationHandler struct {
	Allocations *repository.AllocationRepository
	Envelopes   *repository.EnvelopeRepository
	Incomes     *repository.IncomeRepository
	Engine      config.EngineConfig
}

// NewAllocationHandler создает обработчик распределений дохода.
func NewAllocationHandler(
	allocations *repository.AllocationRepository,
	envelopes *repository.EnvelopeRepository,
	incomes *repository.IncomeRepository,
	engineCfg config.EngineConfig,
) *AllocationHandler {
	return &AllocationHandler{
		Allocations: allocations,
		Envelopes:   envelopes,
		Incomes:     incomes,
		Engine:      engineCfg,
	}
}

type AllocationItemRequest struct {
	IncomeSourceID uuid.UUID `json:"income_source_id" validate:"required"`
	AmountCents    int64     `json:"amount_cents" validate:"gte=0"`
}

type ReplaceAllocationsRequest struct {
	Allocations []AllocationItemRequest `json:"allocations" validate:"required,dive"`
}

// List возвращает все распределения пользователя.
func (h *AllocationHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	allocations, err := h.Allocations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.IncomeAllocation{"allocations": allocations})
}

// Replace заменяет распределения конверта новым набором.
//
// Набор проверяется против емкости источников с учетом остальных конвертов:
// суммарные отчисления на одно событие выплаты не могут превысить сумму выплаты.
func (h *AllocationHandler) Replace(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	var req ReplaceAllocationsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	incomes, err := h.Incomes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	current, err := h.Allocations.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	proposed := make([]models.IncomeAllocation, 0, len(req.Allocations))
	for _, item := range req.Allocations {
		proposed = append(proposed, models.IncomeAllocation{
			EnvelopeID:     envelopeID,
			IncomeSourceID: item.IncomeSourceID,
			AmountCents:    item.AmountCents,
		})
	}

	combined := make([]models.IncomeAllocation, 0, len(current)+len(proposed))
	for _, allocation := range current {
		if allocation.EnvelopeID != envelopeID {
			combined = append(combined, allocation)
		}
	}
	combined = append(combined, proposed...)

	if err := engine.ValidateAllocations(incomes, combined); err != nil {
		if errors.Is(err, engine.ErrAllocationOverflow) {
			return badRequest(c, "allocations exceed income capacity")
		}
		return badRequest(c, "invalid allocations")
	}

	if err := h.Allocations.ReplaceForEnvelope(ctx, userID, envelopeID, proposed); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "envelope not found")
		case errors.Is(err, repository.ErrConflict):
			return conflict(c, "envelope allocations are locked")
		}
		return serverError(c)
	}

	saved, err := h.Allocations.ListByEnvelope(ctx, userID, envelopeID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.IncomeAllocation{"allocations": saved})
}

// Suggest рассчитывает идеальное распределение дохода по конвертам.
func (h *AllocationHandler) Suggest(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	incomes, err := h.Incomes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	envelopes, err := h.Envelopes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	existing, err := h.Allocations.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	locked, err := h.Allocations.LockedEnvelopeIDs(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	result, err := engine.Suggest(incomes, envelopes, existing, locked)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAmount) || errors.Is(err, engine.ErrInvalidFrequency) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

// Lock фиксирует распределения конверта.
func (h *AllocationHandler) Lock(c echo.Context) error {
	return h.setLock(c, true)
}

// Unlock снимает фиксацию распределений конверта.
func (h *AllocationHandler) Unlock(c echo.Context) error {
	return h.setLock(c, false)
}

func (h *AllocationHandler) setLock(c echo.Context, locked bool) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	envelopeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid envelope id")
	}

	if err := h.Allocations.SetLock(c.Request().Context(), userID, envelopeID, locked); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "envelope has no allocations")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Gaps сравнивает фактические балансы зафиксированных конвертов с планом.
func (h *AllocationHandler) Gaps(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	envelopes, err := h.Envelopes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	incomes, err := h.Incomes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}
	allocations, err := h.Allocations.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	incomeByID := make(map[uuid.UUID]models.IncomeSource, len(incomes))
	for _, income := range incomes {
		incomeByID[income.ID] = income
	}

	lockedByEnvelope := make(map[uuid.UUID][]models.IncomeAllocation)
	for _, allocation := range allocations {
		if allocation.IsLocked {
			lockedByEnvelope[allocation.EnvelopeID] = append(lockedByEnvelope[allocation.EnvelopeID], allocation)
		}
	}

	now := time.Now().UTC()
	records := make([]engine.GapRecord, 0, len(lockedByEnvelope))
	for _, envelope := range envelopes {
		group, ok := lockedByEnvelope[envelope.ID]
		if !ok {
			continue
		}

		reference, lockedAt, perPayCents := gapReference(group, incomeByID)
		if reference == nil {
			continue
		}

		cycles, err := engine.CyclesBetween(reference.Frequency, reference.AnchorDate, lockedAt, now)
		if err != nil {
			return serverError(c)
		}

		record := engine.AnalyzeGap(
			envelope.ID,
			perPayCents,
			cycles,
			envelope.BalanceCents,
			true,
			h.Engine.GapToleranceCents,
		)
		records = append(records, record)
	}

	return c.JSON(http.StatusOK, map[string][]engine.GapRecord{"gaps": records})
}

// gapReference выбирает опорный источник конверта: самый частый из
// зафиксированных распределений. Время фиксации берется по самому
// раннему распределению, чтобы не терять прошедшие циклы.
func gapReference(
	group []models.IncomeAllocation,
	incomeByID map[uuid.UUID]models.IncomeSource,
) (*models.IncomeSource, time.Time, int64) {
	var (
		reference   *models.IncomeSource
		bestPerYear int
		lockedAt    time.Time
		perPayCents int64
	)

	for _, allocation := range group {
		income, ok := incomeByID[allocation.IncomeSourceID]
		if !ok {
			continue
		}

		perPayCents += allocation.AmountCents
		if lockedAt.IsZero() || allocation.UpdatedAt.Before(lockedAt) {
			lockedAt = allocation.UpdatedAt
		}

		perYear, err := engine.PerYear(income.Frequency)
		if err != nil {
			continue
		}
		if perYear > bestPerYear {
			bestPerYear = perYear
			copied := income
			reference = &copied
		}
	}

	return reference, lockedAt, perPayCents
}
