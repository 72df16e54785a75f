package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const userContextKey = "user_context"

// UserContext is the identity attached to authenticated requests
type UserContext struct {
	UserID string
	Role   string
}

// AuthRequired validates the Bearer token and attaches the user identity.
// Token issuance lives outside this service; only validation happens here.
func AuthRequired(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "missing bearer token",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid token",
			})
		}

		userID, _ := claims["sub"].(string)
		role, _ := claims["role"].(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid token",
			})
		}

		c.Locals(userContextKey, &UserContext{UserID: userID, Role: role})
		return c.Next()
	}
}

// RequireRole rejects authenticated users lacking the given role
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUserContext(c)
		if user == nil || user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "forbidden",
			})
		}
		return c.Next()
	}
}

// GetUserContext returns the identity attached by AuthRequired, or nil
func GetUserContext(c *fiber.Ctx) *UserContext {
	user, _ := c.Locals(userContextKey).(*UserContext)
	return user
}
