package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/database"
	"github.com/projectsoft/obras-api/internal/middleware"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-at-least-32-characters!"

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// newTestApp builds a fiber app that resolves workflow errors into their
// HTTP status, mirroring the server's global error handler
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

func createUserWithPermissions(t *testing.T, db *gorm.DB, email string, permissionNames ...string) *models.User {
	user := models.User{Name: "Tester", Email: email, PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if len(permissionNames) == 0 {
		return &user
	}

	permissions := make([]models.Permission, 0, len(permissionNames))
	for _, name := range permissionNames {
		permissions = append(permissions, models.Permission{Name: name})
	}
	role := models.Role{Name: "role-for-" + email, Permissions: permissions}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("Failed to create role: %v", err)
	}
	if err := db.Model(&user).Association("Roles").Append(&role); err != nil {
		t.Fatalf("Failed to assign role: %v", err)
	}
	return &user
}

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	db := setupAuthTestDB(t)
	guard := &middleware.Auth{DB: db, Tokens: auth.NewTokenManager(testSecret, time.Hour)}

	app := newTestApp()
	app.Get("/protected", guard.Authenticate(), okHandler)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestAuthenticate_BadToken(t *testing.T) {
	db := setupAuthTestDB(t)
	guard := &middleware.Auth{DB: db, Tokens: auth.NewTokenManager(testSecret, time.Hour)}

	app := newTestApp()
	app.Get("/protected", guard.Authenticate(), okHandler)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	// A malformed token answers 400, not 401
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestAuthenticate_UnknownSubject(t *testing.T) {
	db := setupAuthTestDB(t)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	guard := &middleware.Auth{DB: db, Tokens: tokens}

	signed, err := tokens.Generate("no-such-user", nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	app := newTestApp()
	app.Get("/protected", guard.Authenticate(), okHandler)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestAuthenticate_CookieToken(t *testing.T) {
	db := setupAuthTestDB(t)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	guard := &middleware.Auth{DB: db, Tokens: tokens}
	user := createUserWithPermissions(t, db, "cookie@example.com")

	signed, err := tokens.Generate(user.ID, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	app := newTestApp()
	app.Get("/protected", guard.Authenticate(), func(c *fiber.Ctx) error {
		acting := middleware.UserFromContext(c)
		if acting == nil || acting.ID != user.ID {
			t.Errorf("Context user = %v, want %q", acting, user.ID)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signed})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestAuthorize(t *testing.T) {
	db := setupAuthTestDB(t)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	guard := &middleware.Auth{DB: db, Tokens: tokens}

	approver := createUserWithPermissions(t, db, "approver@example.com", "approve_reports")
	viewer := createUserWithPermissions(t, db, "viewer@example.com", "view_reports")
	noRoles := createUserWithPermissions(t, db, "bare@example.com")

	app := newTestApp()
	app.Put("/daily-reports/:id/approve",
		guard.Authenticate(),
		guard.Authorize("approve_reports"),
		okHandler)
	app.Get("/daily-reports",
		guard.Authenticate(),
		// ANY-of: either permission grants access
		guard.Authorize("view_reports", "approve_reports"),
		okHandler)

	tests := []struct {
		name       string
		user       *models.User
		method     string
		path       string
		wantStatus int
	}{
		{"granted", approver, "PUT", "/daily-reports/r1/approve", fiber.StatusOK},
		{"wrong permission", viewer, "PUT", "/daily-reports/r1/approve", fiber.StatusForbidden},
		{"no roles", noRoles, "PUT", "/daily-reports/r1/approve", fiber.StatusForbidden},
		{"any-of first", viewer, "GET", "/daily-reports", fiber.StatusOK},
		{"any-of second", approver, "GET", "/daily-reports", fiber.StatusOK},
		{"any-of none", noRoles, "GET", "/daily-reports", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := tokens.Generate(tt.user.ID, nil)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+signed)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestAuthorize_RoleEditsTakeEffectImmediately(t *testing.T) {
	db := setupAuthTestDB(t)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	guard := &middleware.Auth{DB: db, Tokens: tokens}
	user := createUserWithPermissions(t, db, "editable@example.com", "view_reports")

	app := newTestApp()
	app.Get("/daily-reports", guard.Authenticate(), guard.Authorize("view_reports"), okHandler)

	signed, err := tokens.Generate(user.ID, nil)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	request := func() int {
		req := httptest.NewRequest("GET", "/daily-reports", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		return resp.StatusCode
	}

	if status := request(); status != fiber.StatusOK {
		t.Fatalf("Status = %d, want %d", status, fiber.StatusOK)
	}

	// Strip the role's permissions; the same token loses access
	var role models.Role
	if err := db.First(&role, "name = ?", "role-for-editable@example.com").Error; err != nil {
		t.Fatalf("Failed to load role: %v", err)
	}
	if err := db.Model(&role).Association("Permissions").Clear(); err != nil {
		t.Fatalf("Failed to clear permissions: %v", err)
	}

	if status := request(); status != fiber.StatusForbidden {
		t.Errorf("Status = %d after permission removal, want %d", status, fiber.StatusForbidden)
	}
}
