package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/middleware"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportHandler handles the daily report workflow routes
type ReportHandler struct {
	DB *gorm.DB
}

type createReportRequest struct {
	Date       string         `json:"date"`
	Summary    string         `json:"summary"`
	Activities []string       `json:"activities"`
	Comments   datatypes.JSON `json:"comments"`
}

type updateReportRequest struct {
	Date       *string        `json:"date"`
	Summary    *string        `json:"summary"`
	Status     *string        `json:"status"`
	Activities *[]string      `json:"activities"`
	Comments   datatypes.JSON `json:"comments"`
}

type rejectReportRequest struct {
	RejectionReason string `json:"rejectionReason"`
}

// CreateReport handles POST /daily-reports
// @Summary Create a daily report
// @Description Creates a report in the pending state for the acting user
// @Tags DailyReports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param report body createReportRequest true "Report"
// @Success 201 {object} models.DailyReport
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /daily-reports [post]
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var req createReportRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return types.Validation("Invalid report date")
	}

	report, err := services.CreateReport(h.DB, services.ReportInput{
		Date:       date,
		Summary:    req.Summary,
		Activities: req.Activities,
		Comments:   req.Comments,
	}, middleware.UserFromContext(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListReports handles GET /daily-reports
// @Summary List all daily reports
// @Tags DailyReports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DailyReport
// @Router /daily-reports [get]
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	reports, err := services.ListReports(h.DB, true)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(reports)
}

// GetReport handles GET /daily-reports/:id
// @Summary Get a daily report by id
// @Tags DailyReports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} models.DailyReport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id} [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	report, err := services.GetReport(h.DB, c.Params("id"), true)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// UpdateReport handles PUT /daily-reports/:id
// @Summary Update a daily report
// @Description A rejected report updated with status pending is a resubmission and notifies the prior reviewer
// @Tags DailyReports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Param report body updateReportRequest true "Fields to update"
// @Success 200 {object} models.DailyReport
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id} [put]
func (h *ReportHandler) UpdateReport(c *fiber.Ctx) error {
	var req updateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	update := services.ReportUpdate{
		Summary:    req.Summary,
		Status:     req.Status,
		Activities: req.Activities,
		Comments:   req.Comments,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return types.Validation("Invalid report date")
		}
		update.Date = &date
	}

	report, err := services.UpdateReport(h.DB, c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// DeleteReport handles DELETE /daily-reports/:id
// @Summary Delete a pending daily report
// @Tags DailyReports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	if err := services.DeleteReport(h.DB, c.Params("id")); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Report deleted successfully")
}

// ApproveReport handles PUT /daily-reports/:id/approve
// @Summary Approve a pending daily report
// @Tags DailyReports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {object} models.DailyReport
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id}/approve [put]
func (h *ReportHandler) ApproveReport(c *fiber.Ctx) error {
	report, err := services.ApproveReport(h.DB, c.Params("id"), middleware.UserFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// RejectReport handles PUT /daily-reports/:id/reject
// @Summary Reject a pending daily report with a reason
// @Tags DailyReports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report id"
// @Param request body rejectReportRequest true "Rejection reason"
// @Success 200 {object} models.DailyReport
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id}/reject [put]
func (h *ReportHandler) RejectReport(c *fiber.Ctx) error {
	var req rejectReportRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	report, err := services.RejectReport(h.DB, c.Params("id"), req.RejectionReason, middleware.UserFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// ReportPDF handles GET /daily-reports/:id/pdf
// @Summary Download a report as PDF
// @Tags DailyReports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Report id"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /daily-reports/{id}/pdf [get]
func (h *ReportHandler) ReportPDF(c *fiber.Ctx) error {
	report, err := services.GetReport(h.DB, c.Params("id"), true)
	if err != nil {
		return err
	}

	document, err := services.RenderReportPDF(report)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("report_%s.pdf", report.Date.Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(document)
}

// parseDate accepts a plain date or a full RFC3339 timestamp
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if date, err := time.Parse("2006-01-02", value); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, value)
}
