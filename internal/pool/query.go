package pool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"bx-pool/internal/pricing"
)

type Snapshot struct {
	AssetID     int
	Name        string
	Stablecoin  common.Address
	ShareToken  common.Address
	PoolBalance *uint256.Int
	FreeBalance *uint256.Int
	Blocked     *uint256.Int
	Invested    *uint256.Int
	ShareSupply *uint256.Int
	BuyPrice    *uint256.Int
	SellPrice   *uint256.Int
}

// AssetNames and the resolvers below read the registry under its own lock,
// not the engine's.
func (e *Engine) AssetNames(ctx context.Context) []string {
	return e.registry.Names()
}

func (e *Engine) ResolveAsset(ctx context.Context, name string) (int, bool) {
	return e.registry.ResolveByName(name)
}

// ResolveAssetAddress returns the stablecoin address registered under name,
// or the zero address.
func (e *Engine) ResolveAssetAddress(ctx context.Context, name string) common.Address {
	id, ok := e.registry.ResolveByName(name)
	if !ok {
		return common.Address{}
	}
	a, _ := e.registry.Get(id)
	return a.Stablecoin.Address()
}

// ResolveShareTokenAddress returns the share token address of the asset
// registered under name, or the zero address.
func (e *Engine) ResolveShareTokenAddress(ctx context.Context, name string) common.Address {
	id, ok := e.registry.ResolveByName(name)
	if !ok {
		return common.Address{}
	}
	a, _ := e.registry.Get(id)
	return a.ShareToken.Address()
}

// PoolBalanceEnough reports whether the free balance covers amount.
func (e *Engine) PoolBalanceEnough(ctx context.Context, amount *uint256.Int, assetID int) (bool, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()
	a, book, err := e.asset(assetID)
	if err != nil {
		return false, err
	}
	return !e.inputs(a, book).FreeBalance().Lt(amount), nil
}

func (e *Engine) UserBalanceEnough(ctx context.Context, user common.Address, amount *uint256.Int, assetID int) (bool, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()
	a, _, err := e.asset(assetID)
	if err != nil {
		return false, err
	}
	return !a.Stablecoin.BalanceOf(user).Lt(amount), nil
}

func (e *Engine) ReferralBalanceOf(ctx context.Context, assetID int, addr common.Address) (*uint256.Int, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	_, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	return book.BalanceOf(addr), nil
}

func (e *Engine) ShareBalanceOf(ctx context.Context, assetID int, addr common.Address) (*uint256.Int, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, _, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	return a.ShareToken.BalanceOf(addr), nil
}

func (e *Engine) BuyPrice(ctx context.Context, assetID int) (*uint256.Int, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	return pricing.BuyPrice(e.inputs(a, book)), nil
}

func (e *Engine) SellPrice(ctx context.Context, assetID int) (*uint256.Int, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	return pricing.SellPrice(e.inputs(a, book)), nil
}

func (e *Engine) State(ctx context.Context, assetID int) (*Snapshot, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return e.snapshot(assetID)
}

// Snapshots returns the state of every asset in registration order.
func (e *Engine) Snapshots(ctx context.Context) ([]*Snapshot, error) {
	unlock, err := e.view(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]*Snapshot, 0, len(e.books))
	for id := range e.books {
		s, err := e.snapshot(id)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (e *Engine) snapshot(assetID int) (*Snapshot, error) {
	a, book, err := e.asset(assetID)
	if err != nil {
		return nil, err
	}
	in := e.inputs(a, book)
	return &Snapshot{
		AssetID:     a.ID,
		Name:        a.Name,
		Stablecoin:  a.Stablecoin.Address(),
		ShareToken:  a.ShareToken.Address(),
		PoolBalance: in.PoolBalance,
		FreeBalance: in.FreeBalance(),
		Blocked:     in.Blocked,
		Invested:    in.Invested,
		ShareSupply: in.ShareSupply,
		BuyPrice:    pricing.BuyPrice(in),
		SellPrice:   pricing.SellPrice(in),
	}, nil
}

// Solvent reports whether the pool holds at least the blocked amount.
func (s *Snapshot) Solvent() bool {
	return !s.PoolBalance.Lt(s.Blocked)
}
