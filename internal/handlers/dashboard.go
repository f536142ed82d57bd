package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/middleware"
	"gorm.io/gorm"
)

// DashboardHandler serves the authenticated user's dashboard data
type DashboardHandler struct {
	DB *gorm.DB
}

// GetDashboard handles GET /dashboard
// @Summary Get the acting user with roles
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	user := middleware.UserFromContext(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "This is the dashboard data",
		"user":    user,
	})
}
