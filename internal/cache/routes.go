package cache

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes serves the last published prices of an asset, by name.
func RegisterRoutes(r fiber.Router, c *Cache) {
	r.Get("/prices/:asset", func(ctx *fiber.Ctx) error {
		asset := ctx.Params("asset")
		out := fiber.Map{"asset": asset}
		for _, side := range []string{"buy", "sell"} {
			price, err := c.Price(ctx.UserContext(), asset, side)
			if errors.Is(err, redis.Nil) {
				return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no published " + side + " price"})
			}
			if err != nil {
				return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
			}
			out[side] = price
		}
		return ctx.JSON(out)
	})
}
