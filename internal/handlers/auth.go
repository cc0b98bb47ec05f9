package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/subscription-reaper/backend/internal/auth"
	"example.com/subscription-reaper/backend/internal/models"
	"example.com/subscription-reaper/backend/internal/repository"
)

type AuthHandler struct {
	Users        *repository.UserRepository
	Tokens       *repository.RefreshTokenRepository
	TokenManager *auth.TokenManager
}

func NewAuthHandler(users *repository.UserRepository, tokens *repository.RefreshTokenRepository, manager *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		Users:        users,
		Tokens:       tokens,
		TokenManager: manager,
	}
}

// RegisterRequest creates an account. Currency and country are optional and
// default to the locale of the Accept-Language header.
type RegisterRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
	Name            *string `json:"name" validate:"omitempty,max=100"`
	DefaultCurrency *string `json:"default_currency" validate:"omitempty,default_currency"`
	Country         *string `json:"country" validate:"omitempty,country_code"`
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

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

// MeResponse is the account overview shown after sign-in.
type MeResponse struct {
	User          AuthUser         `json:"user"`
	Settings      SettingsResponse `json:"settings"`
	Subscriptions int              `json:"subscriptions"`
}

// Register creates an account with its settings row and issues a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	if err := auth.ValidatePassword(password); err != nil {
		return badRequest(c, err.Error())
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return serverError(c)
	}

	settings := initialSettings(req, c.Request().Header.Get("Accept-Language"))
	user, err := h.Users.Create(c.Request().Context(), email, passwordHash, normalizeName(req.Name), settings)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return serverError(c)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("country", settings.Country),
		slog.String("currency", settings.DefaultCurrency),
	)

	response, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login checks credentials and issues a token pair.
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

	if err := auth.ComparePassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		return unauthorized(c)
	}

	response, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh rotates a refresh token. The presented token is revoked and the
// new pair picks up the account's current email.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}
	identity, err := claims.Identity()
	if err != nil {
		return unauthorized(c)
	}
	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	stored, err := h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}
	if !refreshUsable(stored, identity.UserID, req.RefreshToken, time.Now()) {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	pair, err := h.TokenManager.NewTokenPair(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return serverError(c)
	}

	if err := h.Tokens.Rotate(ctx, stored.ID, refreshRecord(user.ID, pair)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	})
}

// Logout revokes the refresh token.
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

	if err := h.Tokens.Revoke(c.Request().Context(), refreshID, nil); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me returns the current user with their settings and subscription count.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.Users.Profile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, toMeResponse(profile))
}

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (AuthResponse, error) {
	pair, err := h.TokenManager.NewTokenPair(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return AuthResponse{}, err
	}

	if err := h.Tokens.Create(ctx, refreshRecord(user.ID, pair)); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	}, nil
}

// initialSettings seeds a new account. Explicit fields win; a country alone
// implies its currency; otherwise the browser locale decides.
func initialSettings(req RegisterRequest, acceptLanguage string) models.Settings {
	settings := models.SettingsForLocale(uuid.Nil, acceptLanguage)

	if req.Country != nil {
		if country, err := models.ParseCountry(*req.Country); err == nil {
			settings.Country = country
			settings.DefaultCurrency = models.CurrencyForCountry(country)
		}
	}
	if req.DefaultCurrency != nil {
		if currency, err := models.ParseCurrency(*req.DefaultCurrency); err == nil {
			settings.DefaultCurrency = currency
		}
	}

	return settings
}

func refreshUsable(stored models.RefreshToken, userID uuid.UUID, presented string, now time.Time) bool {
	if stored.RevokedAt != nil || now.After(stored.ExpiresAt) {
		return false
	}
	if stored.UserID != userID {
		return false
	}
	return auth.MatchesRefreshHash(stored.TokenHash, presented)
}

func refreshRecord(userID uuid.UUID, pair auth.TokenPair) models.RefreshToken {
	return models.RefreshToken{
		ID:        pair.RefreshID,
		UserID:    userID,
		TokenHash: pair.RefreshHash(),
		ExpiresAt: pair.RefreshExpiresAt,
	}
}

func toMeResponse(profile repository.UserProfile) MeResponse {
	settings := toSettingsResponse(profile.Settings)
	settings.HasAPIKey = profile.HasAPIKey
	return MeResponse{
		User:          toAuthUser(profile.User),
		Settings:      settings,
		Subscriptions: profile.Subscriptions,
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

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
