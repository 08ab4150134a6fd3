package pool

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

// Claim pays out the caller's accrued house or referral balance.
//
// The caller is eligible only while the balance exceeds the asset's blocked
// amount, and then the whole balance is paid, not the excess. An ineligible
// claim is a no-op and returns zero.
func (e *Engine) Claim(ctx context.Context, caller common.Address, assetID int) (*uint256.Int, error) {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	paid, err := e.claim(ctx, caller, assetID)
	e.finish("claim_reward", err, zap.Int("asset_id", assetID), zap.String("account", caller.Hex()))
	return paid, err
}

func (e *Engine) claim(ctx context.Context, caller common.Address, assetID int) (*uint256.Int, error) {
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}

	owed := book.BalanceOf(caller)
	blocked := book.Blocked()
	if !owed.Gt(blocked) {
		return new(uint256.Int), nil
	}

	bal := a.Stablecoin.BalanceOf(e.cfg.Address)
	left, underflow := new(uint256.Int).SubOverflow(bal, owed)
	if underflow || left.Lt(blocked) {
		return nil, fmt.Errorf("%w: claim of %s would leave %s against %s blocked",
			ErrInsufficientPoolBalance, owed.Dec(), left.Dec(), blocked.Dec())
	}

	if err := e.pay(ctx, a.Stablecoin, caller, owed); err != nil {
		return nil, fmt.Errorf("pay claim: %w", err)
	}
	book.Zero(caller)

	e.log.Info("reward claimed",
		zap.String("asset", a.Name),
		zap.String("account", caller.Hex()),
		amountField("amount", owed),
	)
	e.emit(event.EventRewardClaimed, a, event.Payload{Account: caller.Hex(), Amount: owed.Dec()})
	return owed, nil
}
