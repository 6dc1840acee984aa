package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/dryanez/autodirectocrm/internal/application/dto"
)

// APIKeyMiddleware protege las rutas de escritura con una clave estática
// (header X-Api-Key). Con clave vacía el middleware queda abierto: útil en
// desarrollo local, nunca en producción.
func APIKeyMiddleware(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}
		got := c.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "UNAUTHORIZED", Message: "X-Api-Key inválida o ausente",
			})
		}
		return c.Next()
	}
}
