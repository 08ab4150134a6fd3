package token

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Stablecoin is an in-process stand-in for an external stablecoin contract:
// balances, allowances, transfer and transferFrom. Mint acts as a faucet.
type Stablecoin struct {
	mu         sync.RWMutex
	address    common.Address
	symbol     string
	balances   balances
	allowances map[common.Address]map[common.Address]*uint256.Int
}

func NewStablecoin(symbol string) *Stablecoin {
	return &Stablecoin{
		address:    deriveAddress("stablecoin", symbol),
		symbol:     symbol,
		balances:   newBalances(),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

func (s *Stablecoin) Address() common.Address { return s.address }

func (s *Stablecoin) Symbol() string { return s.symbol }

func (s *Stablecoin) BalanceOf(owner common.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances.of(owner)
}

func (s *Stablecoin) TotalSupply() *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances.supply.Clone()
}

func (s *Stablecoin) Mint(to common.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances.mint(to, amount)
}

func (s *Stablecoin) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allowances[owner] == nil {
		s.allowances[owner] = make(map[common.Address]*uint256.Int)
	}
	s.allowances[owner][spender] = amount.Clone()
	return nil
}

func (s *Stablecoin) Allowance(owner, spender common.Address) *uint256.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowance(owner, spender)
}

func (s *Stablecoin) allowance(owner, spender common.Address) *uint256.Int {
	if v, ok := s.allowances[owner][spender]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (s *Stablecoin) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances.move(from, to, amount)
}

func (s *Stablecoin) TransferFrom(ctx context.Context, spender, from, to common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := s.allowance(from, spender)
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: allowed %s, need %s", ErrInsufficientAllowance, allowed.Dec(), amount.Dec())
	}
	if err := s.balances.move(from, to, amount); err != nil {
		return err
	}
	s.allowances[from][spender] = allowed.Sub(allowed, amount)
	return nil
}
