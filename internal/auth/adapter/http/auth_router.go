package http

import (
	"errors"
	"strings"
	"time"

	"kbadmin/internal/auth/domain/model"
	"kbadmin/internal/auth/usecase"
	apperrors "kbadmin/internal/shared/errors"
	"kbadmin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps an application error to its HTTP status and a short
// message; internals never reach the wire.
func respondError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"error": appErr.Message,
	})
}

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase        usecase.AuthUsecaseInterface
	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieMaxAge   int
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite string
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(
	uc usecase.AuthUsecaseInterface,
	cookieName, cookiePath, cookieDomain string,
	cookieMaxAge int,
	cookieSecure, cookieHTTPOnly bool,
	cookieSameSite string,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase:        uc,
		cookieName:     cookieName,
		cookiePath:     cookiePath,
		cookieDomain:   cookieDomain,
		cookieMaxAge:   cookieMaxAge,
		cookieSecure:   cookieSecure,
		cookieHTTPOnly: cookieHTTPOnly,
		cookieSameSite: cookieSameSite,
	}
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	// Public routes (no authentication required)
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)

	// Protected routes (authentication required)
	protected := router.Group("/", middleware.Protect())
	protected.Get("/profile", h.Profile)
	protected.Post("/logout", h.Logout)
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	user, token, err := h.usecase.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrUsernameTaken) {
			return respondError(c, apperrors.NewConflictError("Username already registered"))
		}
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}

	h.setCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         user,
		"access_token": token,
	})
}

// Login handles user login. A rejected login always yields an explicit 401,
// never a silent empty success; the message does not reveal whether the
// account exists.
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	user, token, err := h.usecase.Login(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return respondError(c, apperrors.NewAuthenticationError("Invalid username or password"))
		}
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}

	h.setCookie(c, token)

	return c.JSON(fiber.Map{
		"user":         user,
		"access_token": token,
	})
}

// Profile returns the identity claims attached by the token-verification
// middleware.
func (h *AuthHTTPHandler) Profile(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}
	username, err := utils.GetUsernameFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	return c.JSON(model.Identity{
		UserID:   userID,
		Username: username,
	})
}

// Logout revokes the presented token and clears the cookie.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	token := h.tokenFromRequest(c)
	if token == "" {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	if err := h.usecase.Logout(c.Context(), token); err != nil {
		if errors.Is(err, usecase.ErrTokenInvalid) {
			return respondError(c, apperrors.NewAuthenticationError("Invalid token"))
		}
		return respondError(c, apperrors.NewInternalError("Failed to log out"))
	}

	h.clearCookie(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Helper methods

func (h *AuthHTTPHandler) tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Cookies(h.cookieName)
}

func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   h.cookieMaxAge,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(time.Duration(h.cookieMaxAge) * time.Second),
	})
}

func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
