package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth handles admin authentication
type AdminAuth struct {
	passwordHash []byte
}

// NewAdminAuth creates a new admin auth middleware. The password is kept
// only as a bcrypt hash.
func NewAdminAuth(adminPassword string) (*AdminAuth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AdminAuth{
		passwordHash: hash,
	}, nil
}

// AuthMiddleware returns the admin authentication middleware
func (a *AdminAuth) AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		const prefix = "Basic "
		if !strings.HasPrefix(auth, prefix) {
			return challenge(c)
		}

		decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
		if err != nil {
			return challenge(c)
		}

		_, password, ok := strings.Cut(string(decoded), ":")
		if !ok || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
			return challenge(c)
		}

		return c.Next()
	}
}

func challenge(c *fiber.Ctx) error {
	c.Set("WWW-Authenticate", "Basic realm=Admin")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Admin authentication required",
	})
}
