package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles the user CRUD routes
type UserHandler struct {
	DB *gorm.DB
}

type createUserRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type updateUserRequest struct {
	Name  *string   `json:"name"`
	Email *string   `json:"email"`
	Roles *[]string `json:"roles"`
}

// ListUsers handles GET /users
// @Summary List all users with roles
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.Preload("Roles").Find(&users).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	var user models.User
	err := h.DB.Preload("Roles").First(&user, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// GetUserByEmail handles GET /users/email/:email
func (h *UserHandler) GetUserByEmail(c *fiber.Ctx) error {
	var user models.User
	err := h.DB.Preload("Roles").First(&user, "email = ?", c.Params("email")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// CreateUser handles POST /users
// @Summary Create a user
// @Description Email must be unique and the password must satisfy the policy
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body createUserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var existing models.User
	err := h.DB.First(&existing, "email = ?", req.Email).Error
	if err == nil {
		return types.Conflict("User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !auth.ValidatePassword(req.Password) {
		return types.Validation("Password must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, one number, and one special character.")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	roles, err := h.resolveRoles(req.Roles)
	if err != nil {
		return err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var user models.User
	err := h.DB.Preload("Roles").First(&user, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if err := h.DB.Save(&user).Error; err != nil {
		return err
	}

	if req.Roles != nil {
		roles, err := h.resolveRoles(*req.Roles)
		if err != nil {
			return err
		}
		if err := h.DB.Model(&user).Association("Roles").Replace(roles); err != nil {
			return err
		}
		user.Roles = roles
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateUserRoles handles PUT /users/:id/roles
func (h *UserHandler) UpdateUserRoles(c *fiber.Ctx) error {
	var req struct {
		Roles []string `json:"roles"`
	}
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var user models.User
	err := h.DB.First(&user, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}

	roles, err := h.resolveRoles(req.Roles)
	if err != nil {
		return err
	}
	if err := h.DB.Model(&user).Association("Roles").Replace(roles); err != nil {
		return err
	}
	user.Roles = roles

	return c.Status(fiber.StatusOK).JSON(user)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	result := h.DB.Select("Roles").Delete(&models.User{ID: c.Params("id")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("User not found")
	}
	return utils.MessageResponse(c, "User deleted")
}

func (h *UserHandler) resolveRoles(ids []string) ([]models.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var roles []models.Role
	if err := h.DB.Find(&roles, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
