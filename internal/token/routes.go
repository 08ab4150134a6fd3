package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/holiman/uint256"

	"bx-pool/internal/security"
)

type Auditor interface {
	Log(actor string, action string, metadata string) error
}

type amountReq struct {
	To      string `json:"to"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// RegisterAdminRoutes exposes the faucet of the simulated stablecoins.
func RegisterAdminRoutes(r fiber.Router, s *Service, audit Auditor) {
	r.Post("/stablecoins/:symbol/mint", func(c *fiber.Ctx) error {
		coin, err := s.Get(c.Params("symbol"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		var body amountReq
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}
		amount, err := uint256.FromDecimal(body.Amount)
		if err != nil || !common.IsHexAddress(body.To) {
			return c.Status(400).JSON(fiber.Map{"error": "invalid to or amount"})
		}
		if err := coin.Mint(common.HexToAddress(body.To), amount); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if err := audit.Log("admin", "stablecoin.mint", coin.Symbol()+" "+body.To+" "+amount.Dec()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "minted", "balance": coin.BalanceOf(common.HexToAddress(body.To)).Dec()})
	})
}

// RegisterRoutes exposes stablecoin approve and balance reads to the caller
// identified by security.CallerIdentity.
func RegisterRoutes(r fiber.Router, s *Service) {
	r.Post("/stablecoins/:symbol/approve", func(c *fiber.Ctx) error {
		coin, err := s.Get(c.Params("symbol"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		var body amountReq
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(400)
		}
		amount, err := uint256.FromDecimal(body.Amount)
		if err != nil || !common.IsHexAddress(body.Spender) {
			return c.Status(400).JSON(fiber.Map{"error": "invalid spender or amount"})
		}
		if err := coin.Approve(security.Caller(c), common.HexToAddress(body.Spender), amount); err != nil {
			status := 400
			if errors.Is(err, ErrZeroAddress) {
				status = 422
			}
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "approved"})
	})

	r.Get("/stablecoins/:symbol/balance", func(c *fiber.Ctx) error {
		coin, err := s.Get(c.Params("symbol"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"balance": coin.BalanceOf(security.Caller(c)).Dec()})
	})
}
