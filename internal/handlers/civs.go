package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// CIVHandler handles the CIV catalog routes
type CIVHandler struct {
	DB *gorm.DB
}

type civRequest struct {
	Number      string `json:"number"`
	Description string `json:"description"`
}

// ListCIVs handles GET /civs
// @Summary List CIVs ordered by number
// @Tags CIVs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CIV
// @Router /civs [get]
func (h *CIVHandler) ListCIVs(c *fiber.Ctx) error {
	var civs []models.CIV
	if err := h.DB.Order("number ASC").Find(&civs).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(civs)
}

// CreateCIV handles POST /civs
// @Summary Create a CIV
// @Tags CIVs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param civ body civRequest true "CIV"
// @Success 201 {object} models.CIV
// @Router /civs [post]
func (h *CIVHandler) CreateCIV(c *fiber.Ctx) error {
	var req civRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}
	if req.Number == "" {
		return types.Validation("CIV number is required")
	}

	civ := models.CIV{Number: req.Number, Description: req.Description}
	if err := h.DB.Create(&civ).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(civ)
}

// DeleteCIV handles DELETE /civs/:id
// @Summary Delete a CIV
// @Tags CIVs
// @Produce json
// @Security BearerAuth
// @Param id path string true "CIV id"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /civs/{id} [delete]
func (h *CIVHandler) DeleteCIV(c *fiber.Ctx) error {
	result := h.DB.Delete(&models.CIV{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("CIV not found")
	}
	return utils.MessageResponse(c, "CIV deleted")
}
