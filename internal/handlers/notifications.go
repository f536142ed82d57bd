package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/middleware"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// NotificationHandler serves the per-user notification routes
type NotificationHandler struct {
	DB *gorm.DB
}

// ListNotifications handles GET /notifications
// @Summary List the acting user's notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	var notifications []models.Notification
	err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&notifications).Error
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(notifications)
}

// MarkNotificationsAsRead handles PUT /notifications/mark-as-read
// @Summary Mark all of the acting user's unread notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.MessageResponseStruct
// @Router /notifications/mark-as-read [put]
func (h *NotificationHandler) MarkNotificationsAsRead(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)

	err := h.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Update("read", true).Error
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, "Notifications marked as read")
}
