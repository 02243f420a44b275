package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireJSON rejects mutating requests that do not declare a JSON body
// before any parsing happens.
func RequireJSON(c *fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		contentType := c.Get(fiber.HeaderContentType)
		if !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return JsonResponse(c, fiber.StatusUnsupportedMediaType, false, "Content-Type must be application/json", nil)
		}
	}
	return c.Next()
}
