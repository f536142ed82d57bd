package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"github.com/projectsoft/obras-api/internal/utils"
	"gorm.io/gorm"
)

// ProjectHandler handles the project CRUD routes
type ProjectHandler struct {
	DB *gorm.DB
}

type projectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      *string    `json:"status"`
	Budget      *float64   `json:"budget"`
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(c *fiber.Ctx) error {
	var projects []models.Project
	if err := h.DB.Find(&projects).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(projects)
}

// GetProject handles GET /projects/:id
func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	var project models.Project
	err := h.DB.First(&project, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Project not found")
		}
		return err
	}
	return c.Status(fiber.StatusOK).JSON(project)
}

// CreateProject handles POST /projects
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}
	if req.Name == nil || *req.Name == "" {
		return types.Validation("Project name is required")
	}

	project := models.Project{Name: *req.Name}
	applyProject(&project, &req)
	if err := h.DB.Create(&project).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PUT /projects/:id
func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return types.Validation("Invalid request body")
	}

	var project models.Project
	err := h.DB.First(&project, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("Project not found")
		}
		return err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	applyProject(&project, &req)
	if err := h.DB.Save(&project).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(project)
}

// DeleteProject handles DELETE /projects/:id
func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	result := h.DB.Delete(&models.Project{}, "id = ?", c.Params("id"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return types.NotFound("Project not found")
	}
	return utils.MessageResponse(c, "Project deleted")
}

func applyProject(project *models.Project, req *projectRequest) {
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Location != nil {
		project.Location = *req.Location
	}
	if req.StartDate != nil {
		project.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = *req.EndDate
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
}
