package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

// PhotoHandler handles the photo routes
type PhotoHandler struct {
	DB *gorm.DB
}

type photoRequest struct {
	CIVID    string `json:"civId"`
	ReportID string `json:"reportId"`
	Photo    string `json:"photo"`
}

// UploadPhoto handles POST /photos
// @Summary Store an independent photo record for a CIV
// @Tags Photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param photo body photoRequest true "Photo"
// @Success 201 {object} models.Photo
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /photos [post]
func (h *PhotoHandler) UploadPhoto(c *fiber.Ctx) error {
	var req photoRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	photo, err := services.UploadPhoto(h.DB, req.CIVID, req.ReportID, req.Photo)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

// GetPhotosByCIV handles GET /photos?civId=&month=&year=
// @Summary List a CIV's activity photos for a month, grouped by date
// @Tags Photos
// @Produce json
// @Security BearerAuth
// @Param civId query string true "CIV id"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} map[string][]services.PhotoEntry
// @Router /photos [get]
func (h *PhotoHandler) GetPhotosByCIV(c *fiber.Ctx) error {
	civID := c.Query("civId")
	month := c.QueryInt("month")
	year := c.QueryInt("year")
	if civID == "" || month < 1 || month > 12 || year == 0 {
		return types.Validation("civId, month and year are required")
	}

	grouped, err := services.PhotosByCIV(h.DB, civID, month, year)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(grouped)
}
