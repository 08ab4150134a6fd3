package token

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bx-pool/internal/assets"
)

// ShareToken is the pool share of one asset. Mint and Burn are reserved to the
// minter fixed at construction.
type ShareToken struct {
	mu       sync.RWMutex
	address  common.Address
	symbol   string
	minter   common.Address
	balances balances
}

func NewShareToken(name string, minter common.Address) *ShareToken {
	return &ShareToken{
		address:  deriveAddress("share", name),
		symbol:   "bp" + name,
		minter:   minter,
		balances: newBalances(),
	}
}

// ShareTokenFactory adapts NewShareToken to the registry's factory signature.
func ShareTokenFactory(name string, minter common.Address) assets.ShareToken {
	return NewShareToken(name, minter)
}

func (t *ShareToken) Address() common.Address { return t.address }

func (t *ShareToken) Symbol() string { return t.symbol }

func (t *ShareToken) Minter() common.Address { return t.minter }

func (t *ShareToken) BalanceOf(owner common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances.of(owner)
}

func (t *ShareToken) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances.supply.Clone()
}

func (t *ShareToken) Mint(ctx context.Context, minter, to common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if minter != t.minter {
		return ErrNotMinter
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances.mint(to, amount)
}

func (t *ShareToken) Burn(ctx context.Context, minter, from common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if minter != t.minter {
		return ErrNotMinter
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances.burn(from, amount)
}
