// Package pricing computes share token prices in centi-units, where 100
// means one unit of stablecoin per share.
package pricing

import "github.com/holiman/uint256"

const (
	// MinPrice is the floor for the buy price.
	MinPrice = 100
	scale    = 100
)

// Inputs is the per-asset state prices are derived from.
type Inputs struct {
	PoolBalance *uint256.Int
	Blocked     *uint256.Int
	Invested    *uint256.Int
	ShareSupply *uint256.Int
}

// FreeBalance is the pool balance not reserved for open bets. It saturates at
// zero if the pool is ever short of its blocked amount.
func (in Inputs) FreeBalance() *uint256.Int {
	free, underflow := new(uint256.Int).SubOverflow(orZero(in.PoolBalance), orZero(in.Blocked))
	if underflow {
		return new(uint256.Int)
	}
	return free
}

// BuyPrice never drops below MinPrice.
func BuyPrice(in Inputs) *uint256.Int {
	free := in.FreeBalance()
	if orZero(in.Invested).IsZero() || free.IsZero() || orZero(in.ShareSupply).IsZero() {
		return uint256.NewInt(MinPrice)
	}
	price := ratio(free, in.Invested)
	if price.Lt(uint256.NewInt(MinPrice)) {
		return uint256.NewInt(MinPrice)
	}
	return price
}

// SellPrice is not floored: once liquidity shrinks below the invested
// principal it falls under MinPrice.
func SellPrice(in Inputs) *uint256.Int {
	if orZero(in.Invested).IsZero() {
		return uint256.NewInt(MinPrice)
	}
	return ratio(in.FreeBalance(), in.Invested)
}

// ratio returns free*100/invested with a 512-bit intermediate product,
// saturating at the largest representable price.
func ratio(free, invested *uint256.Int) *uint256.Int {
	price, overflow := new(uint256.Int).MulDivOverflow(free, uint256.NewInt(scale), invested)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return price
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
