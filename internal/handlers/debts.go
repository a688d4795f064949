package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/envelope-budget/backend/internal/auth"
	"example.com/envelope-budget/backend/internal/config"
	"example.com/envelope-budget/backend/internal/engine"
	"example.com/envelope-budget/backend/internal/models"
	"example.com/envelope-budget/backend/internal/repository"
)

type DebtHandler struct {
	Debts  *repository.DebtRepository
	Engine config.EngineConfig
}

// NewDebtHandler создает обработчик долговых счетов.
func NewDebtHandler(debts *repository.DebtRepository, engineCfg config.EngineConfig) *DebtHandler {
	return &DebtHandler{Debts: debts, Engine: engineCfg}
}

type DebtRequest struct {
	Name                string  `json:"name" validate:"required,max=100"`
	BalanceCents        int64   `json:"balance_cents" validate:"gte=0"`
	APR                 float64 `json:"apr" validate:"gte=0,lte=2"`
	MinPaymentCents     int64   `json:"min_payment_cents" validate:"gte=0"`
	MonthlyPaymentCents int64   `json:"monthly_payment_cents" validate:"gte=0"`
	ExtraPrincipalCents int64   `json:"extra_principal_cents" validate:"gte=0"`
}

type PayoffPlanRequest struct {
	Strategy string `json:"strategy" validate:"required,oneof=avalanche snowball"`
}

// List возвращает долговые счета пользователя.
func (h *DebtHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accounts, err := h.Debts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.DebtAccount{"debts": accounts})
}

// Create создает долговой счет.
func (h *DebtHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	account, err := bindDebt(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.Debts.Create(c.Request().Context(), account)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, created)
}

// Update обновляет долговой счет.
func (h *DebtHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	account, err := bindDebt(c, userID)
	if err != nil {
		return badRequest(c, err.Error())
	}
	account.ID = accountID

	updated, err := h.Debts.Update(c.Request().Context(), account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt account not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет долговой счет.
func (h *DebtHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	if err := h.Debts.Delete(c.Request().Context(), userID, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt account not found")
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Payoff амортизирует счет по его текущему платежу.
//
// Параметр extra_cents позволяет примерить дополнительный платеж без
// изменения самого счета.
func (h *DebtHandler) Payoff(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid debt id")
	}

	account, err := h.Debts.GetByID(c.Request().Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "debt account not found")
		}
		return serverError(c)
	}

	extraCents := account.ExtraPrincipalCents
	if raw := c.QueryParam("extra_cents"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return badRequest(c, "invalid extra_cents")
		}
		extraCents = parsed
	}

	projection, err := engine.ProjectPayoff(
		account.ID,
		account.BalanceCents,
		account.APR,
		account.MonthlyPaymentCents,
		extraCents,
		time.Now().UTC(),
		h.Engine.MaxPayoffMonths,
	)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAmount) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, projection)
}

// PayoffPlan сравнивает погашение всех счетов по выбранной стратегии.
func (h *DebtHandler) PayoffPlan(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PayoffPlanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	accounts, err := h.Debts.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	result, err := engine.ProjectPortfolio(
		accounts,
		models.PayoffStrategy(req.Strategy),
		time.Now().UTC(),
		h.Engine.MaxPayoffMonths,
	)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidStrategy) || errors.Is(err, engine.ErrInvalidAmount) {
			return badRequest(c, err.Error())
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

func bindDebt(c echo.Context, userID uuid.UUID) (models.DebtAccount, error) {
	var account models.DebtAccount

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return account, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return account, errors.New("validation failed")
	}

	if req.MonthlyPaymentCents < req.MinPaymentCents {
		return account, errors.New("monthly_payment_cents is below the minimum payment")
	}

	return models.DebtAccount{
		UserID:              userID,
		Name:                req.Name,
		BalanceCents:        req.BalanceCents,
		APR:                 req.APR,
		MinPaymentCents:     req.MinPaymentCents,
		MonthlyPaymentCents: req.MonthlyPaymentCents,
		ExtraPrincipalCents: req.ExtraPrincipalCents,
	}, nil
}
