package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/database"
	"github.com/projectsoft/obras-api/internal/handlers"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupHandlerTestDB creates an in-memory SQLite database with the full schema
func setupHandlerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// newTestApp mirrors the server's error handler so workflow errors
// resolve to their HTTP status in tests
func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if cerr, ok := err.(*types.CustomError); ok {
				return c.Status(cerr.Code).JSON(fiber.Map{"message": cerr.Message})
			}
			return fiber.DefaultErrorHandler(c, err)
		},
	})
}

// actAs injects the acting user like the authentication guard does
func actAs(user *models.User) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	}
}

func createHandlerTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	user := models.User{Name: "Tester", Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeReport(t *testing.T, resp *http.Response) models.DailyReport {
	t.Helper()
	var report models.DailyReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	return report
}

// mountReportRoutes wires the report workflow routes acting as one user
func mountReportRoutes(db *gorm.DB, user *models.User) *fiber.App {
	app := newTestApp()
	handler := &handlers.ReportHandler{DB: db}
	app.Use(actAs(user))
	app.Post("/daily-reports", handler.CreateReport)
	app.Get("/daily-reports", handler.ListReports)
	app.Get("/daily-reports/:id", handler.GetReport)
	app.Put("/daily-reports/:id", handler.UpdateReport)
	app.Delete("/daily-reports/:id", handler.DeleteReport)
	app.Put("/daily-reports/:id/approve", handler.ApproveReport)
	app.Put("/daily-reports/:id/reject", handler.RejectReport)
	return app
}

func TestCreateReportEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	app := mountReportRoutes(db, creator)

	req := jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":       "2024-01-03",
		"summary":    "Excavation at km 12",
		"activities": []string{},
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}

	report := decodeReport(t, resp)
	if report.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", report.Status, models.StatusPending)
	}
	if report.CreatedByID != creator.ID {
		t.Errorf("CreatedByID = %q, want %q", report.CreatedByID, creator.ID)
	}
}

func TestCreateReportEndpoint_InvalidDate(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	app := mountReportRoutes(db, creator)

	req := jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":    "03/01/2024",
		"summary": "Excavation at km 12",
	})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestRejectReportEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	approver := createHandlerTestUser(t, db, "approver@example.com")

	creatorApp := mountReportRoutes(db, creator)
	approverApp := mountReportRoutes(db, approver)

	resp, err := creatorApp.Test(jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":    "2024-01-03",
		"summary": "Excavation at km 12",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	created := decodeReport(t, resp)

	// Blank reason is refused
	resp, err = approverApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID+"/reject", fiber.Map{
		"rejectionReason": "   ",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Status = %d for blank reason, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}

	resp, err = approverApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID+"/reject", fiber.Map{
		"rejectionReason": "incomplete",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	rejected := decodeReport(t, resp)
	if rejected.Status != models.StatusRejected {
		t.Errorf("Status = %q, want %q", rejected.Status, models.StatusRejected)
	}
	if rejected.RejectionReason != "incomplete" {
		t.Errorf("RejectionReason = %q, want %q", rejected.RejectionReason, "incomplete")
	}
	if rejected.ApprovedByID == nil || *rejected.ApprovedByID != approver.ID {
		t.Errorf("ApprovedByID = %v, want %q", rejected.ApprovedByID, approver.ID)
	}
}

func TestApproveReportEndpoint_Twice(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	approver := createHandlerTestUser(t, db, "approver@example.com")

	creatorApp := mountReportRoutes(db, creator)
	approverApp := mountReportRoutes(db, approver)

	resp, err := creatorApp.Test(jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":    "2024-01-03",
		"summary": "Excavation at km 12",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	created := decodeReport(t, resp)

	resp, err = approverApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID+"/approve", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	approved := decodeReport(t, resp)
	if approved.Status != models.StatusApproved {
		t.Errorf("Status = %q, want %q", approved.Status, models.StatusApproved)
	}
	if approved.ApprovedAt == nil {
		t.Error("ApprovedAt was not set")
	}

	resp, err = approverApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID+"/approve", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Status = %d for repeat approval, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestResubmitReportEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	approver := createHandlerTestUser(t, db, "approver@example.com")

	creatorApp := mountReportRoutes(db, creator)
	approverApp := mountReportRoutes(db, approver)

	resp, err := creatorApp.Test(jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":    "2024-01-03",
		"summary": "Excavation at km 12",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	created := decodeReport(t, resp)

	resp, err = approverApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID+"/reject", fiber.Map{
		"rejectionReason": "missing photos",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	var notificationsAfterReject, messagesAfterReject int64
	db.Model(&models.Notification{}).Count(&notificationsAfterReject)
	db.Model(&models.Message{}).Count(&messagesAfterReject)

	resp, err = creatorApp.Test(jsonRequest(t, "PUT", "/daily-reports/"+created.ID, fiber.Map{
		"status": "pending",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	resubmitted := decodeReport(t, resp)
	if resubmitted.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", resubmitted.Status, models.StatusPending)
	}
	if resubmitted.RejectionReason != "" {
		t.Errorf("RejectionReason = %q, want cleared", resubmitted.RejectionReason)
	}

	// Exactly one more notification and one more message, to the approver
	var notifications, messages int64
	db.Model(&models.Notification{}).Count(&notifications)
	db.Model(&models.Message{}).Count(&messages)
	if notifications != notificationsAfterReject+1 {
		t.Errorf("Got %d notifications, want %d", notifications, notificationsAfterReject+1)
	}
	if messages != messagesAfterReject+1 {
		t.Errorf("Got %d messages, want %d", messages, messagesAfterReject+1)
	}

	var latest models.Notification
	if err := db.Order("created_at DESC").First(&latest).Error; err != nil {
		t.Fatalf("Failed to load notification: %v", err)
	}
	if latest.UserID != approver.ID {
		t.Errorf("Notification recipient = %q, want approver %q", latest.UserID, approver.ID)
	}
}

func TestDeleteReportEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	creator := createHandlerTestUser(t, db, "creator@example.com")
	app := mountReportRoutes(db, creator)

	resp, err := app.Test(jsonRequest(t, "POST", "/daily-reports", fiber.Map{
		"date":    "2024-01-03",
		"summary": "Excavation at km 12",
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	created := decodeReport(t, resp)

	resp, err = app.Test(jsonRequest(t, "DELETE", "/daily-reports/"+created.ID, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	resp, err = app.Test(jsonRequest(t, "GET", "/daily-reports/"+created.ID, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Status = %d for deleted report, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
