package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

// MessageHandler handles the /api message and notification routes
type MessageHandler struct {
	DB *gorm.DB
}

type messageRequest struct {
	ReportID    string `json:"reportId"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

type notificationRequest struct {
	Status string `json:"status"`
	UserID string `json:"userId"`
	Text   string `json:"message"`
}

// CreateMessage handles POST /api/messages
// @Summary Create a message
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body messageRequest true "Message"
// @Success 200 {object} models.Message
// @Router /api/messages [post]
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	message := models.Message{
		ReportID:    req.ReportID,
		SenderID:    req.SenderID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Body:        req.Body,
		ScheduledAt: time.Now(),
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(message)
}

// ListMessages handles GET /api/messages, grouped by report id with the
// newest first inside each group.
// @Summary List messages grouped by report
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.Message
// @Router /api/messages [get]
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	var messages []models.Message
	err := h.DB.Preload("Sender").Preload("Recipient").
		Order("scheduled_at DESC").Find(&messages).Error
	if err != nil {
		return err
	}

	grouped := make(map[string][]models.Message)
	for _, message := range messages {
		grouped[message.ReportID] = append(grouped[message.ReportID], message)
	}
	return c.Status(fiber.StatusOK).JSON(grouped)
}

// CreateNotification handles POST /api/notifications
func (h *MessageHandler) CreateNotification(c *fiber.Ctx) error {
	var req notificationRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	notification := models.Notification{
		Status:  req.Status,
		UserID:  req.UserID,
		Message: req.Text,
	}
	if err := h.DB.Create(&notification).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(notification)
}

// ListAllNotifications handles GET /api/notifications
func (h *MessageHandler) ListAllNotifications(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := h.DB.Preload("User").Find(&notifications).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(notifications)
}
