package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/config"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

// Login verifies credentials and returns a signed access token.
// Unknown email and wrong password answer identically.
func Login(db *gorm.DB, tokens *auth.TokenManager, email, password string) (string, error) {
	var user models.User
	err := db.Preload("Roles").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", types.Validation("Invalid credentials")
		}
		return "", err
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", types.Validation("Invalid credentials")
	}

	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}

	token, err := tokens.Generate(user.ID, roleNames)
	if err != nil {
		return "", err
	}
	return token, nil
}

// ForgotPassword stores a reset token on the user and mails the reset
// link. Missing mail credentials degrade only this path.
func ForgotPassword(db *gorm.DB, cfg *config.Config, mailer *Mailer, email string) error {
	if email == "" {
		return types.Validation("Email is required")
	}

	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("User not found")
		}
		return err
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().Add(time.Hour)
	err = db.Model(&user).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	}).Error
	if err != nil {
		return err
	}

	if !cfg.MailConfigured() {
		log.Printf("Missing email configuration")
		return types.Internal("Mail configuration error")
	}

	link := fmt.Sprintf("%s/reset/%s", cfg.FrontendURL, token)
	if err := mailer.SendPasswordReset(user.Email, link); err != nil {
		return types.Internal(fmt.Sprintf("Error sending recovery email: %v", err))
	}

	log.Printf("Recovery email sent to: %s", user.Email)
	return nil
}

// ValidateResetToken checks a reset token is known and unexpired.
func ValidateResetToken(db *gorm.DB, token string) error {
	if _, err := userByResetToken(db, token); err != nil {
		return err
	}
	return nil
}

// ResetPassword sets a new password for the reset token's user and
// clears the token.
func ResetPassword(db *gorm.DB, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return types.Validation("Passwords do not match")
	}
	if !auth.ValidatePassword(password) {
		return types.Validation("Password must be at least 8 characters long and include at least one uppercase letter, one lowercase letter, one number, and one special character.")
	}

	user, err := userByResetToken(db, token)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return db.Model(user).Updates(map[string]interface{}{
		"password_hash":          hash,
		"reset_password_token":   "",
		"reset_password_expires": nil,
	}).Error
}

func userByResetToken(db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, types.Validation("Password reset token is invalid or has expired")
	}
	var user models.User
	err := db.First(&user, "reset_password_token = ? AND reset_password_expires > ?",
		token, time.Now()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.Validation("Password reset token is invalid or has expired")
		}
		return nil, err
	}
	return &user, nil
}
