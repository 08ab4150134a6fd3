package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bx-pool/internal/event"
	"bx-pool/internal/monitoring"
	"bx-pool/internal/pricing"
)

type DepositResult struct {
	Shares *uint256.Int
	// Price is the buy price the shares were minted at.
	Price *uint256.Int
	// PostPrice is the buy price after the deposit.
	PostPrice *uint256.Int
}

type WithdrawResult struct {
	Paid      *uint256.Int
	Price     *uint256.Int
	PostPrice *uint256.Int
}

// Deposit mints amount*100/buyPrice shares to caller and pulls amount from
// the caller's approved stablecoin.
func (e *Engine) Deposit(ctx context.Context, caller common.Address, assetID int, amount *uint256.Int) (*DepositResult, error) {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	res, err := e.deposit(ctx, caller, assetID, amount)
	e.finish("deposit", err, zap.Int("asset_id", assetID), zap.String("account", caller.Hex()))
	return res, err
}

func (e *Engine) deposit(ctx context.Context, caller common.Address, assetID int, amount *uint256.Int) (*DepositResult, error) {
	if amount == nil {
		return nil, ErrInvalidAmount
	}
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	if amount.Lt(uint256.NewInt(MinDeposit)) {
		return nil, fmt.Errorf("%w: %s < %d", ErrMinimumAmount, amount.Dec(), MinDeposit)
	}

	price := pricing.BuyPrice(e.inputs(a, book))
	shares, overflow := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(100), price)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	if shares.IsZero() {
		return nil, fmt.Errorf("%w: %s buys no shares at price %s", ErrMinimumAmount, amount.Dec(), price.Dec())
	}
	invested, err := book.InvestedAfterAdd(amount)
	if err != nil {
		return nil, err
	}

	if err := e.pull(ctx, a.Stablecoin, caller, amount); err != nil {
		return nil, fmt.Errorf("pull deposit: %w", err)
	}
	if err := e.mint(ctx, a.ShareToken, caller, shares); err != nil {
		if rerr := e.pay(ctx, a.Stablecoin, caller, amount); rerr != nil {
			err = errors.Join(err, fmt.Errorf("refund deposit: %w", rerr))
		}
		return nil, fmt.Errorf("mint shares: %w", err)
	}
	book.SetInvested(invested)
	e.recordGauges(a, book)

	post := pricing.BuyPrice(e.inputs(a, book))
	monitoring.SharePrice.WithLabelValues(a.Name, "buy").Set(post.Float64())

	e.log.Info("investment added",
		zap.String("asset", a.Name),
		zap.String("account", caller.Hex()),
		amountField("amount", amount),
		amountField("shares", shares),
		amountField("price", price),
		amountField("post_price", post),
	)
	e.emit(event.EventBuyPriceChanged, a, event.Payload{Price: post.Dec()})
	e.emit(event.EventInvestmentAdded, a, event.Payload{
		Account: caller.Hex(),
		Amount:  saturatingMul(amount, post).Dec(),
		Price:   post.Dec(),
	})

	return &DepositResult{Shares: shares, Price: price, PostPrice: post}, nil
}

// Withdraw burns shares and pays shares*sellPrice/100 to caller. Invested
// principal drops by the share amount, not the payout.
func (e *Engine) Withdraw(ctx context.Context, caller common.Address, assetID int, shares *uint256.Int) (*WithdrawResult, error) {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	res, err := e.withdraw(ctx, caller, assetID, shares)
	e.finish("withdraw", err, zap.Int("asset_id", assetID), zap.String("account", caller.Hex()))
	return res, err
}

func (e *Engine) withdraw(ctx context.Context, caller common.Address, assetID int, shares *uint256.Int) (*WithdrawResult, error) {
	if shares == nil {
		return nil, ErrInvalidAmount
	}
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}

	if held := a.ShareToken.BalanceOf(caller); held.Lt(shares) {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrInsufficientShareBalance, held.Dec(), shares.Dec())
	}

	in := e.inputs(a, book)
	price := pricing.SellPrice(in)
	paid, overflow := new(uint256.Int).MulDivOverflow(shares, price, uint256.NewInt(100))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	left, underflow := new(uint256.Int).SubOverflow(in.PoolBalance, paid)
	if underflow {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientPoolBalance, in.PoolBalance.Dec(), paid.Dec())
	}
	if left.Lt(in.Blocked) {
		return nil, fmt.Errorf("%w: withdrawal of %s would leave %s against %s blocked",
			ErrInsufficientPoolBalance, paid.Dec(), left.Dec(), in.Blocked.Dec())
	}
	invested, err := book.InvestedAfterSub(shares)
	if err != nil {
		return nil, err
	}

	if err := e.burn(ctx, a.ShareToken, caller, shares); err != nil {
		return nil, fmt.Errorf("burn shares: %w", err)
	}
	if err := e.pay(ctx, a.Stablecoin, caller, paid); err != nil {
		if merr := e.mint(ctx, a.ShareToken, caller, shares); merr != nil {
			err = errors.Join(err, fmt.Errorf("restore shares: %w", merr))
		}
		return nil, fmt.Errorf("pay withdrawal: %w", err)
	}
	book.SetInvested(invested)
	e.recordGauges(a, book)

	post := pricing.SellPrice(e.inputs(a, book))
	monitoring.SharePrice.WithLabelValues(a.Name, "sell").Set(post.Float64())

	e.log.Info("withdrawn",
		zap.String("asset", a.Name),
		zap.String("account", caller.Hex()),
		amountField("shares", shares),
		amountField("paid", paid),
		amountField("price", price),
		amountField("post_price", post),
	)
	e.emit(event.EventSellPriceChanged, a, event.Payload{Price: post.Dec()})
	e.emit(event.EventWithdrawn, a, event.Payload{
		Account: caller.Hex(),
		Amount:  paid.Dec(),
		Price:   post.Dec(),
	})

	return &WithdrawResult{Paid: paid, Price: price, PostPrice: post}, nil
}

// saturatingMul clips at the maximum value. Event payloads only.
func saturatingMul(x, y *uint256.Int) *uint256.Int {
	v, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return v
}
