package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// NewAuthMiddleware returns a Fiber middleware that validates a
// "Bearer <token>" Authorization header (HS256). On success it sets the
// verified subject user id into c.Locals("userId"). Failures answer 403
// with a single message so callers cannot probe why verification failed.
func NewAuthMiddleware(secret, expectedIssuer string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get("Authorization"))
		if tokenStr == "" {
			return failed(c)
		}
		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrForbidden
			}
			return secretBytes, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return failed(c)
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return failed(c)
		}
		if expectedIssuer != "" && claims.Issuer != expectedIssuer {
			return failed(c)
		}
		c.Locals("userId", claims.Subject)
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func failed(c *fiber.Ctx) error {
	return c.Status(http.StatusForbidden).JSON(fiber.Map{"message": "Authentication failed"})
}
