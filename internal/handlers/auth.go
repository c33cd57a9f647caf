package handlers

import (
	domainerr "github.com/taqume/toycell-be/internal/errors"
	"github.com/taqume/toycell-be/internal/middleware"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/services/auth"
	"github.com/taqume/toycell-be/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// extractUserClaims is a helper shared by all authenticated handlers.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "registration successful", fiber.Map{
		"user": user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	result, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "login successful", fiber.Map{
		"user":          result.User,
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
	})
}

// Captcha issues a fresh challenge. Clients call it after a login
// attempt fails with CAPTCHA_REQUIRED.
func (h *AuthHandler) Captcha(c *fiber.Ctx) error {
	captcha, err := h.authService.NewCaptcha(c.UserContext())
	if err != nil {
		return response.ServerError(c, "failed to generate captcha")
	}
	return response.Success(c, "captcha generated", captcha)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.BadRequest(c, "refresh_token is required")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(c.UserContext(), req.RefreshToken)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "logged out", nil)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	if err := h.authService.ChangePassword(c.UserContext(), claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "password changed", nil)
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	user, err := h.authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		return response.FromError(c, err)
	}

	phone, nationalID, err := h.authService.DecryptContact(user)
	if err != nil {
		return response.FromError(c, domainerr.ErrInternal)
	}

	return response.Success(c, "profile", fiber.Map{
		"user":        user,
		"phone":       phone,
		"national_id": nationalID,
	})
}
