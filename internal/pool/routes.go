package pool

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"bx-pool/internal/assets"
	"bx-pool/internal/security"
	"bx-pool/internal/token"
)

type Auditor interface {
	Log(actor string, action string, metadata string) error
}

// CoinFactory creates the stablecoin handle for a symbol named by an admin.
type CoinFactory func(symbol string) (assets.Stablecoin, error)

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownAsset):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateAsset), errors.Is(err, token.ErrCoinExists):
		return fiber.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrReentrancy):
		return fiber.StatusLocked
	case errors.Is(err, ErrInsufficientPoolBalance),
		errors.Is(err, ErrInsufficientShareBalance),
		errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrInsufficientAllowance):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrMinimumAmount),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrArithmeticOverflow),
		errors.Is(err, ErrArithmeticUnderflow):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func parseAmount(v string) (*uint256.Int, bool) {
	amount, err := uint256.FromDecimal(strings.TrimSpace(v))
	return amount, err == nil
}

// parseAddress accepts an empty string as the zero address.
func parseAddress(v string) (common.Address, bool) {
	if v == "" {
		return common.Address{}, true
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, false
	}
	return common.HexToAddress(v), true
}

type snapshotView struct {
	AssetID     int    `json:"asset_id"`
	Name        string `json:"name"`
	Stablecoin  string `json:"stablecoin"`
	ShareToken  string `json:"share_token"`
	PoolBalance string `json:"pool_balance"`
	FreeBalance string `json:"free_balance"`
	Blocked     string `json:"blocked"`
	Invested    string `json:"invested"`
	ShareSupply string `json:"share_supply"`
	BuyPrice    string `json:"buy_price"`
	SellPrice   string `json:"sell_price"`
}

func viewOf(s *Snapshot) snapshotView {
	return snapshotView{
		AssetID:     s.AssetID,
		Name:        s.Name,
		Stablecoin:  s.Stablecoin.Hex(),
		ShareToken:  s.ShareToken.Hex(),
		PoolBalance: s.PoolBalance.Dec(),
		FreeBalance: s.FreeBalance.Dec(),
		Blocked:     s.Blocked.Dec(),
		Invested:    s.Invested.Dec(),
		ShareSupply: s.ShareSupply.Dec(),
		BuyPrice:    s.BuyPrice.Dec(),
		SellPrice:   s.SellPrice.Dec(),
	}
}

func RegisterAdminRoutes(r fiber.Router, e *Engine, newCoin CoinFactory, audit Auditor) {
	r.Post("/assets", func(c *fiber.Ctx) error {
		var body struct {
			Symbol string `json:"symbol"`
		}
		if err := c.BodyParser(&body); err != nil || body.Symbol == "" {
			return badRequest(c, "symbol required")
		}
		coin, err := newCoin(body.Symbol)
		if err != nil {
			return fail(c, err)
		}
		id, err := e.Register(c.UserContext(), coin)
		if err != nil {
			return fail(c, err)
		}
		if err := audit.Log("admin", "asset.register", body.Symbol); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"asset_id":   id,
			"stablecoin": coin.Address().Hex(),
		})
	})
}

type settlementReq struct {
	AssetID  int    `json:"asset_id"`
	Player   string `json:"player"`
	Referrer string `json:"referrer"`
	Amount   string `json:"amount"`
}

// RegisterGameRoutes serves the settlement caller. The caller identity is set
// by security.GameGuard.
func RegisterGameRoutes(r fiber.Router, e *Engine) {
	r.Post("/bets", func(c *fiber.Ctx) error {
		var body struct {
			AssetID         int    `json:"asset_id"`
			Bettor          string `json:"bettor"`
			Amount          string `json:"amount"`
			PotentialReward string `json:"potential_reward"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		amount, ok1 := parseAmount(body.Amount)
		reward, ok2 := parseAmount(body.PotentialReward)
		bettor, ok3 := parseAddress(body.Bettor)
		if !ok1 || !ok2 || !ok3 || body.Bettor == "" {
			return badRequest(c, "invalid bettor, amount or potential_reward")
		}

		bet := Bet{
			AssetID:         body.AssetID,
			BetID:           uuid.New().String(),
			Bettor:          bettor,
			Amount:          amount,
			PotentialReward: reward,
		}
		if err := e.MakeBet(c.UserContext(), security.Caller(c), bet); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"bet_id": bet.BetID})
	})

	settle := func(win bool) fiber.Handler {
		return func(c *fiber.Ctx) error {
			var body settlementReq
			if err := c.BodyParser(&body); err != nil {
				return c.SendStatus(fiber.StatusBadRequest)
			}
			amount, ok1 := parseAmount(body.Amount)
			player, ok2 := parseAddress(body.Player)
			ref, ok3 := parseAddress(body.Referrer)
			if !ok1 || !ok2 || !ok3 {
				return badRequest(c, "invalid player, referrer or amount")
			}

			s := Settlement{
				AssetID:  body.AssetID,
				BetID:    c.Params("id"),
				Player:   player,
				Referrer: ref,
				Amount:   amount,
			}
			var err error
			if win {
				err = e.TransferReward(c.UserContext(), security.Caller(c), s)
			} else {
				err = e.Unlock(c.UserContext(), security.Caller(c), s)
			}
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(fiber.Map{"status": "settled"})
		}
	}
	r.Post("/bets/:id/win", settle(true))
	r.Post("/bets/:id/lose", settle(false))
}

// RegisterRoutes serves investors and viewers. Mutating routes act for the
// caller set by security.CallerIdentity.
func RegisterRoutes(r fiber.Router, e *Engine) {
	assetID := func(c *fiber.Ctx) (int, error) {
		return c.ParamsInt("id")
	}

	r.Get("/assets", func(c *fiber.Ctx) error {
		snaps, err := e.Snapshots(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		out := make([]snapshotView, 0, len(snaps))
		for _, s := range snaps {
			out = append(out, viewOf(s))
		}
		return c.JSON(fiber.Map{"names": e.AssetNames(c.UserContext()), "assets": out})
	})

	r.Get("/assets/by-name/:name", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		name := c.Params("name")
		id, ok := e.ResolveAsset(ctx, name)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.JSON(fiber.Map{
			"asset_id":    id,
			"stablecoin":  e.ResolveAssetAddress(ctx, name).Hex(),
			"share_token": e.ResolveShareTokenAddress(ctx, name).Hex(),
		})
	})

	r.Get("/assets/:id/state", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		s, err := e.State(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(viewOf(s))
	})

	r.Get("/assets/:id/prices", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		buy, err := e.BuyPrice(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		sell, err := e.SellPrice(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"buy": buy.Dec(), "sell": sell.Dec()})
	})

	r.Get("/assets/:id/pool-balance-enough", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		amount, ok := parseAmount(c.Query("amount"))
		if !ok {
			return badRequest(c, "invalid amount")
		}
		enough, err := e.PoolBalanceEnough(c.UserContext(), amount, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"enough": enough})
	})

	r.Get("/assets/:id/user-balance-enough", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		amount, ok1 := parseAmount(c.Query("amount"))
		user, ok2 := parseAddress(c.Query("user"))
		if !ok1 || !ok2 {
			return badRequest(c, "invalid user or amount")
		}
		enough, err := e.UserBalanceEnough(c.UserContext(), user, amount, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"enough": enough})
	})

	r.Get("/assets/:id/referrals/:addr", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		addr, ok := parseAddress(c.Params("addr"))
		if !ok {
			return badRequest(c, "invalid address")
		}
		bal, err := e.ReferralBalanceOf(c.UserContext(), id, addr)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"balance": bal.Dec()})
	})

	r.Get("/assets/:id/shares/:addr", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		addr, ok := parseAddress(c.Params("addr"))
		if !ok {
			return badRequest(c, "invalid address")
		}
		bal, err := e.ShareBalanceOf(c.UserContext(), id, addr)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"balance": bal.Dec()})
	})

	r.Post("/assets/:id/deposit", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		var body struct {
			Amount string `json:"amount"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		amount, ok := parseAmount(body.Amount)
		if !ok {
			return badRequest(c, "invalid amount")
		}
		res, err := e.Deposit(c.UserContext(), security.Caller(c), id, amount)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"shares":     res.Shares.Dec(),
			"price":      res.Price.Dec(),
			"post_price": res.PostPrice.Dec(),
		})
	})

	r.Post("/assets/:id/withdraw", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		var body struct {
			Shares string `json:"shares"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		shares, ok := parseAmount(body.Shares)
		if !ok {
			return badRequest(c, "invalid shares")
		}
		res, err := e.Withdraw(c.UserContext(), security.Caller(c), id, shares)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"paid":       res.Paid.Dec(),
			"price":      res.Price.Dec(),
			"post_price": res.PostPrice.Dec(),
		})
	})

	r.Post("/assets/:id/claim", func(c *fiber.Ctx) error {
		id, err := assetID(c)
		if err != nil {
			return badRequest(c, "invalid asset id")
		}
		paid, err := e.Claim(c.UserContext(), security.Caller(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"paid": paid.Dec()})
	})
}
