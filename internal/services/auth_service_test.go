package services_test

import (
	"testing"
	"time"

	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/services"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

const testPassword = "Str0ng!Pass"

func createLoginUser(t *testing.T, db *gorm.DB, email string) *models.User {
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{Name: "Carlos", Email: email, PasswordHash: hash}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	tokens := auth.NewTokenManager("test-secret-at-least-32-characters!", time.Hour)
	user := createLoginUser(t, db, "carlos@example.com")

	token, err := services.Login(db, tokens, user.Email, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	subject, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Issued token does not verify: %v", err)
	}
	if subject != user.ID {
		t.Errorf("Token subject = %q, want %q", subject, user.ID)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := setupTestDB(t)
	tokens := auth.NewTokenManager("test-secret-at-least-32-characters!", time.Hour)
	user := createLoginUser(t, db, "carlos@example.com")

	// Unknown email and wrong password answer identically, so the
	// response does not reveal which accounts exist.
	_, unknownErr := services.Login(db, tokens, "nobody@example.com", testPassword)
	_, wrongErr := services.Login(db, tokens, user.Email, "Wrong!Pass1")

	for _, err := range []error{unknownErr, wrongErr} {
		cerr, ok := err.(*types.CustomError)
		if !ok {
			t.Fatalf("Expected *types.CustomError, got %T: %v", err, err)
		}
		if cerr.Message != "Invalid credentials" {
			t.Errorf("Message = %q, want %q", cerr.Message, "Invalid credentials")
		}
	}
}

func TestResetPasswordFlow(t *testing.T) {
	db := setupTestDB(t)
	user := createLoginUser(t, db, "carlos@example.com")

	// Plant a reset token the way ForgotPassword does
	token, err := auth.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken failed: %v", err)
	}
	expires := time.Now().Add(time.Hour)
	err = db.Model(user).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	}).Error
	if err != nil {
		t.Fatalf("Failed to store reset token: %v", err)
	}

	if err := services.ValidateResetToken(db, token); err != nil {
		t.Fatalf("ValidateResetToken failed: %v", err)
	}

	newPassword := "N3w!Passw0rd"
	if err := services.ResetPassword(db, token, newPassword, newPassword); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	// The token is single use
	if err := services.ValidateResetToken(db, token); err == nil {
		t.Error("Reset token validated after use")
	}

	var stored models.User
	if err := db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("Failed to reload user: %v", err)
	}
	if err := auth.VerifyPassword(stored.PasswordHash, newPassword); err != nil {
		t.Errorf("New password does not verify: %v", err)
	}
}

func TestResetPassword_Validation(t *testing.T) {
	db := setupTestDB(t)
	user := createLoginUser(t, db, "carlos@example.com")

	token, err := auth.NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken failed: %v", err)
	}
	expires := time.Now().Add(time.Hour)
	err = db.Model(user).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	}).Error
	if err != nil {
		t.Fatalf("Failed to store reset token: %v", err)
	}

	// Mismatched confirmation
	err = services.ResetPassword(db, token, "N3w!Passw0rd", "Other!Pass1")
	assertCustomErrorCode(t, err, 400)

	// Policy violation
	err = services.ResetPassword(db, token, "weak", "weak")
	assertCustomErrorCode(t, err, 400)

	// Expired token
	past := time.Now().Add(-time.Minute)
	if err := db.Model(user).Update("reset_password_expires", past).Error; err != nil {
		t.Fatalf("Failed to expire token: %v", err)
	}
	err = services.ResetPassword(db, token, "N3w!Passw0rd", "N3w!Passw0rd")
	assertCustomErrorCode(t, err, 400)
}
