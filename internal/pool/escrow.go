package pool

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bx-pool/internal/assets"
	"bx-pool/internal/event"
	"bx-pool/internal/ledger"
)

type Bet struct {
	AssetID         int
	BetID           string
	Bettor          common.Address
	Amount          *uint256.Int
	PotentialReward *uint256.Int
}

// Settlement closes a bet. Amount is the reward the bet was opened with;
// the engine does not check it against the amount locked at MakeBet.
type Settlement struct {
	AssetID  int
	BetID    string
	Player   common.Address
	Referrer common.Address
	Amount   *uint256.Int
}

// MakeBet reserves PotentialReward plus the house fee and pulls the stake from
// the bettor, who must have approved the pool beforehand.
func (e *Engine) MakeBet(ctx context.Context, caller common.Address, bet Bet) error {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	err = e.makeBet(ctx, caller, bet)
	e.finish("make_bet", err, zap.Int("asset_id", bet.AssetID), zap.String("bet_id", bet.BetID))
	return err
}

func (e *Engine) makeBet(ctx context.Context, caller common.Address, bet Bet) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if bet.Amount == nil || bet.PotentialReward == nil {
		return ErrInvalidAmount
	}
	a, book, err := e.asset(bet.AssetID)
	if err != nil {
		return err
	}

	fee := houseFee(bet.PotentialReward)
	lock, err := addChecked(bet.PotentialReward, fee)
	if err != nil {
		return err
	}
	blocked, err := book.BlockedAfterLock(lock)
	if err != nil {
		return err
	}

	funded, err := addChecked(a.Stablecoin.BalanceOf(e.cfg.Address), bet.Amount)
	if err != nil {
		return err
	}
	if blocked.Gt(funded) {
		return fmt.Errorf("%w: blocked would be %s, pool holds %s", ErrInsufficientPoolBalance, blocked.Dec(), funded.Dec())
	}

	if err := e.pull(ctx, a.Stablecoin, bet.Bettor, bet.Amount); err != nil {
		return fmt.Errorf("pull stake: %w", err)
	}
	book.SetBlocked(blocked)
	e.recordGauges(a, book)

	e.log.Info("bet opened",
		zap.String("asset", a.Name),
		zap.String("bet_id", bet.BetID),
		zap.String("bettor", bet.Bettor.Hex()),
		amountField("amount", bet.Amount),
		amountField("locked", lock),
	)
	e.emit(event.EventBetOpened, a, event.Payload{
		Account: bet.Bettor.Hex(),
		BetID:   bet.BetID,
		Amount:  lock.Dec(),
	})
	return nil
}

// TransferReward pays a winning bet and releases its reservation.
func (e *Engine) TransferReward(ctx context.Context, caller common.Address, s Settlement) error {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	err = e.settle(ctx, caller, s, true)
	e.finish("transfer_reward", err, zap.Int("asset_id", s.AssetID), zap.String("bet_id", s.BetID))
	return err
}

// Unlock releases the reservation of a lost bet. Nothing is paid out.
func (e *Engine) Unlock(ctx context.Context, caller common.Address, s Settlement) error {
	ctx, leave, err := e.enter(ctx)
	if err != nil {
		return err
	}
	defer leave()

	err = e.settle(ctx, caller, s, false)
	e.finish("unlock", err, zap.Int("asset_id", s.AssetID), zap.String("bet_id", s.BetID))
	return err
}

func (e *Engine) settle(ctx context.Context, caller common.Address, s Settlement, pay bool) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if s.Amount == nil {
		return ErrInvalidAmount
	}
	a, book, err := e.asset(s.AssetID)
	if err != nil {
		return err
	}

	if pay {
		if bal := a.Stablecoin.BalanceOf(e.cfg.Address); bal.Lt(s.Amount) {
			return fmt.Errorf("%w: have %s, need %s", ErrInsufficientPoolBalance, bal.Dec(), s.Amount.Dec())
		}
	}

	fee := houseFee(s.Amount)
	release, err := addChecked(s.Amount, fee)
	if err != nil {
		return err
	}
	blocked, err := book.BlockedAfterRelease(release)
	if err != nil {
		return err
	}
	credits := e.splitFee(fee, s.Referrer)
	if err := book.CheckCredits(credits...); err != nil {
		return err
	}

	if pay {
		if err := e.pay(ctx, a.Stablecoin, s.Player, s.Amount); err != nil {
			return fmt.Errorf("pay reward: %w", err)
		}
	}
	book.SetBlocked(blocked)
	book.Apply(credits...)
	e.recordGauges(a, book)

	name, msg := event.EventBetLost, "bet lost"
	if pay {
		name, msg = event.EventBetWon, "bet won"
	}
	e.log.Info(msg,
		zap.String("asset", a.Name),
		zap.String("bet_id", s.BetID),
		zap.String("player", s.Player.Hex()),
		amountField("amount", s.Amount),
		amountField("fee", fee),
	)
	e.emit(name, a, event.Payload{
		Account:  s.Player.Hex(),
		Referrer: referrerHex(s.Referrer),
		BetID:    s.BetID,
		Amount:   s.Amount.Dec(),
	})
	if len(credits) == 2 {
		e.emitReferral(a, s, credits[1].Amount)
	}
	return nil
}

// splitFee gives half the fee to a non-zero referrer, the rest to the house.
// When half rounds down to zero the house keeps everything.
func (e *Engine) splitFee(fee *uint256.Int, referrer common.Address) []ledger.Credit {
	half := new(uint256.Int).Rsh(fee, 1)
	if referrer == (common.Address{}) || half.IsZero() {
		return []ledger.Credit{{Account: e.cfg.House, Amount: fee}}
	}
	return []ledger.Credit{
		{Account: e.cfg.House, Amount: new(uint256.Int).Sub(fee, half)},
		{Account: referrer, Amount: half},
	}
}

func (e *Engine) emitReferral(a *assets.Asset, s Settlement, amount *uint256.Int) {
	e.log.Info("referral reward earned",
		zap.String("asset", a.Name),
		zap.String("referrer", s.Referrer.Hex()),
		amountField("amount", amount),
	)
	e.emit(event.EventReferralRewardEarned, a, event.Payload{
		Account: s.Referrer.Hex(),
		BetID:   s.BetID,
		Amount:  amount.Dec(),
	})
}

func referrerHex(addr common.Address) string {
	if addr == (common.Address{}) {
		return ""
	}
	return addr.Hex()
}
