package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// RoleHandler handles the role CRUD routes
type RoleHandler struct {
	DB *gorm.DB
}

type roleRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// ListRoles handles GET /roles
// @Summary List all roles with their permissions
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Role
// @Router /roles [get]
func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	var roles []models.Role
	if err := h.DB.Preload("Permissions").Find(&roles).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(roles)
}

// CreateRole handles POST /roles
// @Summary Create a role
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param role body roleRequest true "Role"
// @Success 201 {object} models.Role
// @Router /roles [post]
func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}
	if req.Name == "" {
		return types.Validation("Role name is required")
	}

	permissions, err := h.resolvePermissions(req.Permissions)
	if err != nil {
		return err
	}

	role := models.Role{Name: req.Name, Permissions: permissions}
	if err := h.DB.Create(&role).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// UpdateRole handles PUT /roles/:id
func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var role models.Role
	err := h.DB.First(&role, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Role not found")
		}
		return err
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if err := h.DB.Save(&role).Error; err != nil {
		return err
	}

	permissions, err := h.resolvePermissions(req.Permissions)
	if err != nil {
		return err
	}
	if err := h.DB.Model(&role).Association("Permissions").Replace(permissions); err != nil {
		return err
	}
	role.Permissions = permissions

	return c.Status(fiber.StatusOK).JSON(role)
}

// DeleteRole handles DELETE /roles/:id
func (h *RoleHandler) DeleteRole(c *fiber.Ctx) error {
	result := h.DB.Select("Permissions").Delete(&models.Role{ID: c.Params("id")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Role not found")
	}
	return utils.MessageResponse(c, "Role deleted")
}

func (h *RoleHandler) resolvePermissions(ids []string) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var permissions []models.Permission
	if err := h.DB.Find(&permissions, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}
