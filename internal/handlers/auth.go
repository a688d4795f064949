package handlers

import (
	"context"
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

type AuthHandler struct {
	Users        *repository.UserRepository
	Tokens       *repository.RefreshTokenRepository
	Envelopes    *repository.EnvelopeRepository
	Incomes      *repository.IncomeRepository
	TokenManager *auth.TokenManager
}

// NewAuthHandler создает обработчик авторизации и профиля бюджета.
func NewAuthHandler(
	users *repository.UserRepository,
	tokens *repository.RefreshTokenRepository,
	envelopes *repository.EnvelopeRepository,
	incomes *repository.IncomeRepository,
	manager *auth.TokenManager,
) *AuthHandler {
	return &AuthHandler{
		Users:        users,
		Tokens:       tokens,
		Envelopes:    envelopes,
		Incomes:      incomes,
		TokenManager: manager,
	}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

type SessionResponse struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token"`
	User            AuthUser  `json:"user"`
}

// ProfileResponse — профиль владельца бюджета со сводкой его данных.
type ProfileResponse struct {
	User              AuthUser `json:"user"`
	EnvelopeCount     int      `json:"envelope_count"`
	ActiveIncomeCount int      `json:"active_income_count"`
}

// Register регистрирует владельца бюджета и открывает сессию.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	passwordHash, err := auth.HashPassword(strings.TrimSpace(req.Password))
	if err != nil {
		return serverError(c)
	}

	user, err := h.Users.Create(c.Request().Context(), email, passwordHash, normalizeName(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return serverError(c)
	}

	session, err := h.startSession(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, session)
}

// Login выполняет вход и открывает сессию.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Users.GetByEmail(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err = auth.ComparePassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		return unauthorized(c)
	}

	session, err := h.startSession(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, session)
}

// Refresh ротирует refresh-токен и выдает новую пару.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	stored, err := h.verifiedRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	user, err := h.Users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(user.ID, refreshID)
	if err != nil {
		return serverError(c)
	}

	rotated := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if err := h.Tokens.Rotate(ctx, stored.ID, rotated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, sessionResponse(pair, user))
}

// Logout отзывает refresh-токен.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), refreshID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.NoContent(http.StatusNoContent)
		}
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает профиль текущего владельца со сводкой конвертов и доходов.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	envelopes, err := h.Envelopes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	incomes, err := h.Incomes.ListByUser(ctx, userID)
	if err != nil {
		return serverError(c)
	}

	activeIncomes := 0
	for _, income := range incomes {
		if income.IsActive {
			activeIncomes++
		}
	}

	return c.JSON(http.StatusOK, ProfileResponse{
		User:              toAuthUser(user),
		EnvelopeCount:     len(envelopes),
		ActiveIncomeCount: activeIncomes,
	})
}

// startSession выпускает пару токенов и сохраняет refresh-запись.
func (h *AuthHandler) startSession(ctx context.Context, user models.User) (SessionResponse, error) {
	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(user.ID, refreshID)
	if err != nil {
		return SessionResponse{}, err
	}

	token := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if err := h.Tokens.Create(ctx, token); err != nil {
		return SessionResponse{}, err
	}

	return sessionResponse(pair, user), nil
}

// verifiedRefreshToken сверяет refresh-токен с сохраненной записью.
// Любое расхождение схлопывается в ErrInvalidToken, детали не раскрываются.
func (h *AuthHandler) verifiedRefreshToken(ctx context.Context, raw string) (models.RefreshToken, error) {
	var stored models.RefreshToken

	claims, err := h.TokenManager.ParseRefreshToken(raw)
	if err != nil {
		return stored, auth.ErrInvalidToken
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return stored, auth.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return stored, auth.ErrInvalidToken
	}

	stored, err = h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return stored, auth.ErrInvalidToken
		}
		return stored, err
	}

	if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) || stored.UserID != userID {
		return stored, auth.ErrInvalidToken
	}

	if !auth.CompareTokenHash(stored.TokenHash, raw) {
		return stored, auth.ErrInvalidToken
	}

	return stored, nil
}

func sessionResponse(pair auth.TokenPair, user models.User) SessionResponse {
	return SessionResponse{
		AccessToken:     pair.AccessToken,
		AccessExpiresAt: pair.AccessExpiresAt,
		RefreshToken:    pair.RefreshToken,
		User:            toAuthUser(user),
	}
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
