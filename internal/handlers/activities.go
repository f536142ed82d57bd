package handlers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/config"
	"github.com/projectsoft/obras-api/internal/middleware"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// ActivityHandler handles the daily activity routes
type ActivityHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type activityRequest struct {
	CIVID          string  `json:"civId" form:"civId"`
	Activity       string  `json:"activity" form:"activity"`
	StartLocation  string  `json:"startLocation" form:"startLocation"`
	EndLocation    string  `json:"endLocation" form:"endLocation"`
	Item           string  `json:"item" form:"item"`
	Length         float64 `json:"length" form:"length"`
	Width          float64 `json:"width" form:"width"`
	Height         float64 `json:"height" form:"height"`
	DiscountLength float64 `json:"discountLength" form:"discountLength"`
	DiscountWidth  float64 `json:"discountWidth" form:"discountWidth"`
	DiscountHeight float64 `json:"discountHeight" form:"discountHeight"`
	Photo          string  `json:"photo" form:"photo"`
	Notes          string  `json:"notes" form:"notes"`
}

// CreateActivity handles POST /activities
// @Summary Create a daily activity
// @Description Accepts JSON or multipart form with an optional fotografia upload
// @Tags DailyActivities
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param activity body activityRequest true "Activity"
// @Success 201 {object} map[string]string
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /activities [post]
func (h *ActivityHandler) CreateActivity(c *fiber.Ctx) error {
	input, err := h.parseActivity(c)
	if err != nil {
		return err
	}

	activity, err := services.CreateActivity(h.DB, *input, middleware.UserFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": activity.ID})
}

// UpdateActivity handles PUT /activities/:id
// @Summary Update a daily activity
// @Description Full replace, or the flag-only partial update when the body carries just reportGenerated
// @Tags DailyActivities
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity id"
// @Param activity body activityRequest true "Activity"
// @Success 200 {object} models.DailyActivity
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /activities/{id} [put]
func (h *ActivityHandler) UpdateActivity(c *fiber.Ctx) error {
	// The single permitted partial update: a JSON body holding only the
	// report-generated flag. It skips volume and role-label recomputation.
	if flag, ok := reportFlagOnlyBody(c); ok {
		activity, err := services.SetActivityReportFlag(h.DB, c.Params("id"), flag)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(activity)
	}

	input, err := h.parseActivity(c)
	if err != nil {
		return err
	}

	activity, err := services.UpdateActivity(h.DB, c.Params("id"), *input, middleware.UserFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(activity)
}

// ListActivities handles GET /activities
// @Summary List all daily activities
// @Tags DailyActivities
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DailyActivity
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *fiber.Ctx) error {
	activities, err := services.ListActivities(h.DB, true)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(activities)
}

// GetActivity handles GET /activities/:id
// @Summary Get a daily activity by id
// @Tags DailyActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity id"
// @Success 200 {object} models.DailyActivity
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	activity, err := services.GetActivity(h.DB, c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(activity)
}

// DeleteActivity handles DELETE /activities/:id
// @Summary Delete a daily activity
// @Tags DailyActivities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity id"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *fiber.Ctx) error {
	if err := services.DeleteActivity(h.DB, c.Params("id")); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Activity deleted")
}

// parseActivity reads the activity fields and, for multipart requests,
// stores the uploaded photograph under the upload directory.
func (h *ActivityHandler) parseActivity(c *fiber.Ctx) (*services.ActivityInput, error) {
	var req activityRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, types.Validation("Invalid request body")
	}

	photo := req.Photo
	if file, err := c.FormFile("fotografia"); err == nil && file != nil {
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
		path := filepath.Join(h.Cfg.UploadDir, name)
		if err := c.SaveFile(file, path); err != nil {
			return nil, types.Internal(fmt.Sprintf("Error saving upload: %v", err))
		}
		photo = path
	}

	return &services.ActivityInput{
		CIVID:          req.CIVID,
		Activity:       req.Activity,
		StartLocation:  req.StartLocation,
		EndLocation:    req.EndLocation,
		Item:           req.Item,
		Length:         req.Length,
		Width:          req.Width,
		Height:         req.Height,
		DiscountLength: req.DiscountLength,
		DiscountWidth:  req.DiscountWidth,
		DiscountHeight: req.DiscountHeight,
		Photo:          photo,
		Notes:          req.Notes,
	}, nil
}

// reportFlagOnlyBody reports whether the JSON body contains exactly the
// reportGenerated key, and its value.
func reportFlagOnlyBody(c *fiber.Ctx) (bool, bool) {
	if !c.Is("json") {
		return false, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return false, false
	}
	raw, present := fields["reportGenerated"]
	if !present || len(fields) != 1 {
		return false, false
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err != nil {
		return false, false
	}
	return flag, true
}
