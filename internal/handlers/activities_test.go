package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/config"
	"github.com/projectsoft/obras-api/internal/handlers"
	"github.com/projectsoft/obras-api/internal/models"
	"gorm.io/gorm"
)

func mountActivityRoutes(t *testing.T, db *gorm.DB, user *models.User) *fiber.App {
	app := newTestApp()
	handler := &handlers.ActivityHandler{DB: db, Cfg: &config.Config{UploadDir: t.TempDir()}}
	app.Use(actAs(user))
	app.Get("/activities", handler.ListActivities)
	app.Get("/activities/:id", handler.GetActivity)
	app.Post("/activities", handler.CreateActivity)
	app.Put("/activities/:id", handler.UpdateActivity)
	app.Delete("/activities/:id", handler.DeleteActivity)
	return app
}

func decodeActivity(t *testing.T, resp *http.Response) models.DailyActivity {
	t.Helper()
	var activity models.DailyActivity
	if err := json.NewDecoder(resp.Body).Decode(&activity); err != nil {
		t.Fatalf("Failed to decode activity: %v", err)
	}
	return activity
}

func createActivityOverHTTP(t *testing.T, app *fiber.App, civID string) string {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, "POST", "/activities", fiber.Map{
		"civId":    civID,
		"activity": "Excavation",
		"length":   10,
		"width":    2,
		"height":   1,
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode create response: %v", err)
	}
	if body["id"] == "" {
		t.Fatal("Create response has no id")
	}
	return body["id"]
}

func TestCreateActivityEndpoint(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createHandlerTestUser(t, db, "creator@example.com")
	app := mountActivityRoutes(t, db, user)

	civ := models.CIV{Number: "CIV-001"}
	if err := db.Create(&civ).Error; err != nil {
		t.Fatalf("Failed to create CIV: %v", err)
	}

	id := createActivityOverHTTP(t, app, civ.ID)

	resp, err := app.Test(jsonRequest(t, "GET", "/activities/"+id, nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	activity := decodeActivity(t, resp)
	if activity.GrossVolume != 20 || activity.NetVolume != 20 {
		t.Errorf("Volumes gross=%v net=%v, want 20/20", activity.GrossVolume, activity.NetVolume)
	}
	if activity.CreatedByID != user.ID {
		t.Errorf("CreatedByID = %q, want %q", activity.CreatedByID, user.ID)
	}
}

func TestUpdateActivityEndpoint_ReportFlagOnly(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createHandlerTestUser(t, db, "creator@example.com")
	app := mountActivityRoutes(t, db, user)

	civ := models.CIV{Number: "CIV-001"}
	if err := db.Create(&civ).Error; err != nil {
		t.Fatalf("Failed to create CIV: %v", err)
	}
	id := createActivityOverHTTP(t, app, civ.ID)

	// A body with just reportGenerated is the flag-only partial update
	resp, err := app.Test(jsonRequest(t, "PUT", "/activities/"+id, fiber.Map{
		"reportGenerated": true,
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	flagged := decodeActivity(t, resp)
	if !flagged.ReportGenerated {
		t.Error("ReportGenerated was not set")
	}
	// Measurements survive the flag-only update
	if flagged.GrossVolume != 20 {
		t.Errorf("GrossVolume = %v after flag update, want 20", flagged.GrossVolume)
	}
}

func TestUpdateActivityEndpoint_FullReplace(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createHandlerTestUser(t, db, "creator@example.com")
	app := mountActivityRoutes(t, db, user)

	civ := models.CIV{Number: "CIV-001"}
	if err := db.Create(&civ).Error; err != nil {
		t.Fatalf("Failed to create CIV: %v", err)
	}
	id := createActivityOverHTTP(t, app, civ.ID)

	resp, err := app.Test(jsonRequest(t, "PUT", "/activities/"+id, fiber.Map{
		"civId":          civ.ID,
		"activity":       "Backfill",
		"length":         1,
		"width":          1,
		"height":         1,
		"discountLength": 2,
		"discountWidth":  2,
		"discountHeight": 2,
	}))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	updated := decodeActivity(t, resp)
	if updated.Activity != "Backfill" {
		t.Errorf("Activity = %q, want %q", updated.Activity, "Backfill")
	}
	if updated.NetVolume != -7 {
		t.Errorf("NetVolume = %v, want -7", updated.NetVolume)
	}
}

func TestDeleteActivityEndpoint_NotFound(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := createHandlerTestUser(t, db, "creator@example.com")
	app := mountActivityRoutes(t, db, user)

	resp, err := app.Test(jsonRequest(t, "DELETE", "/activities/missing-id", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
}
