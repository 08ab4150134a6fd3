package security

import (
	"crypto/subtle"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

const callerKey = "caller"

func APIKeyGuard(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !equal(c.Get("X-API-Key"), apiKey) {
			return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

func AdminGuard(admin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !equal(c.Get("X-Admin-Token"), admin) {
			return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
		}
		return c.Next()
	}
}

// GameGuard admits the game service and acts as the pool's settlement owner.
func GameGuard(token string, owner common.Address) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !equal(c.Get("X-Game-Token"), token) {
			return c.Status(403).JSON(fiber.Map{"error": "forbidden"})
		}
		c.Locals(callerKey, owner)
		return c.Next()
	}
}

// CallerIdentity takes the acting account from X-Account.
func CallerIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := c.Get("X-Account")
		if !common.IsHexAddress(v) {
			return c.Status(401).JSON(fiber.Map{"error": "missing or invalid X-Account"})
		}
		c.Locals(callerKey, common.HexToAddress(v))
		return c.Next()
	}
}

func Caller(c *fiber.Ctx) common.Address {
	addr, _ := c.Locals(callerKey).(common.Address)
	return addr
}

func equal(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
