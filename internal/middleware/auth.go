package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/projectsoft/obras-api/internal/auth"
	"github.com/projectsoft/obras-api/internal/models"
	"github.com/projectsoft/obras-api/internal/types"
	"gorm.io/gorm"
)

const userContextKey = "user"

// Auth bundles the authentication guard and the permission gate
type Auth struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

// Authenticate validates the bearer/cookie token and resolves the acting
// user with roles attached. Nothing downstream runs on failure.
func (a *Auth) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := a.extractToken(c)
		if token == "" {
			return types.Unauthenticated("Access denied. No token provided.")
		}

		userID, err := a.Tokens.Verify(token)
		if err != nil {
			return types.InvalidToken("Invalid token.")
		}

		var user models.User
		err = a.DB.Preload("Roles").First(&user, "id = ?", userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Subject no longer resolves to a user
				return types.InvalidToken("Invalid token.")
			}
			return types.Internal(err.Error())
		}

		c.Locals(userContextKey, &user)
		return c.Next()
	}
}

// Authorize grants access iff the acting user's flattened permission set
// intersects the required set (ANY-of). Permissions are re-resolved from
// the store on every request so role edits take effect immediately.
func (a *Auth) Authorize(requiredPermissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil || len(user.Roles) == 0 {
			return types.Forbidden("Access denied. No roles provided.")
		}

		roleIDs := make([]string, 0, len(user.Roles))
		for _, role := range user.Roles {
			roleIDs = append(roleIDs, role.ID)
		}

		var roles []models.Role
		if err := a.DB.Preload("Permissions").Find(&roles, "id IN ?", roleIDs).Error; err != nil {
			return types.Internal(err.Error())
		}

		userPermissions := make(map[string]struct{})
		for _, role := range roles {
			for _, permission := range role.Permissions {
				userPermissions[permission.Name] = struct{}{}
			}
		}

		for _, required := range requiredPermissions {
			if _, ok := userPermissions[required]; ok {
				return c.Next()
			}
		}

		return types.Forbidden("Access denied. You do not have the required permissions.")
	}
}

// extractToken reads the token from the cookie or the Authorization header
func (a *Auth) extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("token"); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	return strings.TrimPrefix(header, "Bearer ")
}

// UserFromContext returns the authenticated user attached by Authenticate,
// or nil when the request is unauthenticated.
func UserFromContext(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userContextKey).(*models.User)
	return user
}
