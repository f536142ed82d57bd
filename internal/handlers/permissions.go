package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// PermissionHandler handles the permission CRUD routes
type PermissionHandler struct {
	DB *gorm.DB
}

type permissionRequest struct {
	Name string `json:"name"`
}

// ListPermissions handles GET /permissions
// @Summary List all permissions
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Permission
// @Router /permissions [get]
func (h *PermissionHandler) ListPermissions(c *fiber.Ctx) error {
	var permissions []models.Permission
	if err := h.DB.Find(&permissions).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(permissions)
}

// CreatePermission handles POST /permissions
// @Summary Create a permission
// @Tags Permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param permission body permissionRequest true "Permission"
// @Success 201 {object} models.Permission
// @Router /permissions [post]
func (h *PermissionHandler) CreatePermission(c *fiber.Ctx) error {
	var req permissionRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}
	if req.Name == "" {
		return types.Validation("Permission name is required")
	}

	permission := models.Permission{Name: req.Name}
	if err := h.DB.Create(&permission).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(permission)
}

// UpdatePermission handles PUT /permissions/:id
func (h *PermissionHandler) UpdatePermission(c *fiber.Ctx) error {
	var req permissionRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var permission models.Permission
	err := h.DB.First(&permission, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Permission not found")
		}
		return err
	}

	permission.Name = req.Name
	if err := h.DB.Save(&permission).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(permission)
}

// DeletePermission handles DELETE /permissions/:id
func (h *PermissionHandler) DeletePermission(c *fiber.Ctx) error {
	result := h.DB.Delete(&models.Permission{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Permission not found")
	}
	return utils.MessageResponse(c, "Permission deleted")
}
