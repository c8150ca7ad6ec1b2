package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/config"
	"quizhub/backend/models"
	"quizhub/backend/utils"
)

// CurrentUser is the authenticated identity attached to the request.
// The password hash never leaves the middleware.
type CurrentUser struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

const userLocalKey = "currentUser"

// Authenticate extracts the bearer token, verifies it and resolves the
// user it names. A token for a deleted user is still a 401.
func Authenticate(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.HandleError(c, apperr.New(apperr.AuthRequired, "Authentication required"))
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.VerifyJWTToken(tokenString, cfg)
		if err != nil {
			return utils.HandleError(c, apperr.New(apperr.InvalidToken, "Invalid or expired token"))
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			return utils.HandleError(c, apperr.New(apperr.InvalidToken, "User not found"))
		}

		c.Locals(userLocalKey, &CurrentUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		})
		return c.Next()
	}
}

// RequireRole gates a route on the authenticated user's role. It
// assumes Authenticate already ran.
func RequireRole(roles ...models.Role) fiber.Handler {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	required := strings.Join(names, " or ")

	return func(c *fiber.Ctx) error {
		user := UserFromContext(c)
		if user == nil {
			return utils.HandleError(c, apperr.New(apperr.Forbidden, "Forbidden - Authentication required"))
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return utils.HandleError(c, apperr.New(apperr.Forbidden, "Forbidden - Required role: "+required))
	}
}

// UserFromContext returns the identity set by Authenticate, or nil.
func UserFromContext(c *fiber.Ctx) *CurrentUser {
	user, _ := c.Locals(userLocalKey).(*CurrentUser)
	return user
}
