package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrZeroAddress           = errors.New("token: zero address")
	ErrNotMinter             = errors.New("token: caller is not the minter")
	ErrSupplyOverflow        = errors.New("token: supply overflow")
)

// balances keeps sum(balances) == supply. Callers hold the token lock.
type balances struct {
	supply   *uint256.Int
	accounts map[common.Address]*uint256.Int
}

func newBalances() balances {
	return balances{
		supply:   new(uint256.Int),
		accounts: make(map[common.Address]*uint256.Int),
	}
}

func (b *balances) of(owner common.Address) *uint256.Int {
	if v, ok := b.accounts[owner]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (b *balances) move(from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	have := b.of(from)
	if have.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, have.Dec(), amount.Dec())
	}
	b.accounts[from] = have.Sub(have, amount)
	recv := b.of(to)
	b.accounts[to] = recv.Add(recv, amount)
	return nil
}

func (b *balances) mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	supply, overflow := new(uint256.Int).AddOverflow(b.supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	b.supply = supply
	recv := b.of(to)
	b.accounts[to] = recv.Add(recv, amount)
	return nil
}

func (b *balances) burn(from common.Address, amount *uint256.Int) error {
	have := b.of(from)
	if have.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, have.Dec(), amount.Dec())
	}
	b.accounts[from] = have.Sub(have, amount)
	b.supply = new(uint256.Int).Sub(b.supply, amount)
	return nil
}

// deriveAddress gives simulated tokens a stable address per kind and symbol.
func deriveAddress(kind, symbol string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(kind + ":" + symbol))[12:])
}
