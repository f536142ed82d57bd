package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/config"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles login and password recovery routes
type AuthHandler struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
	Cfg    *config.Config
	Mailer *services.Mailer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login handles POST /auth/login
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	token, err := services.Login(h.DB, h.Tokens, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderAuthorization, token)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}

// ForgotPassword handles POST /auth/forgot-password
// @Summary Send a password recovery email
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body forgotPasswordRequest true "Account email"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	if err := services.ForgotPassword(h.DB, h.Cfg, h.Mailer, req.Email); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Recovery email sent")
}

// ValidateResetToken handles GET /auth/reset/:token
// @Summary Check a password reset token
// @Tags Auth
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/reset/{token} [get]
func (h *AuthHandler) ValidateResetToken(c *fiber.Ctx) error {
	if err := services.ValidateResetToken(h.DB, c.Params("token")); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Token is valid")
}

// ResetPassword handles POST /auth/reset/:token
// @Summary Set a new password using a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body resetPasswordRequest true "New password"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /auth/reset/{token} [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	if err := services.ResetPassword(h.DB, c.Params("token"), req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Password has been updated")
}
