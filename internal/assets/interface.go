package assets

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Stablecoin is the escrowed currency of an asset. The pool never owns the
// implementation, it only holds balances in it.
type Stablecoin interface {
	Address() common.Address
	Symbol() string
	BalanceOf(owner common.Address) *uint256.Int
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error
}

// ShareToken is minted on deposit and burned on withdrawal. Only the minter
// it was created for may call Mint and Burn.
type ShareToken interface {
	Address() common.Address
	Symbol() string
	BalanceOf(owner common.Address) *uint256.Int
	TotalSupply() *uint256.Int
	Mint(ctx context.Context, minter, to common.Address, amount *uint256.Int) error
	Burn(ctx context.Context, minter, from common.Address, amount *uint256.Int) error
}

// ShareTokenFactory builds the dedicated share token for a newly registered
// asset, with minting restricted to minter.
type ShareTokenFactory func(name string, minter common.Address) ShareToken
