package ledger

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrOverflow  = errors.New("ledger: arithmetic overflow")
	ErrUnderflow = errors.New("ledger: arithmetic underflow")
)

// Book is the mutable state of one asset: the amount escrowed against open
// bets, the invested principal and accrued house/referral balances.
//
// Book does no locking; the pool engine serializes access.
type Book struct {
	blocked  *uint256.Int
	invested *uint256.Int
	balances map[common.Address]*uint256.Int
}

func NewBook() *Book {
	return &Book{
		blocked:  new(uint256.Int),
		invested: new(uint256.Int),
		balances: make(map[common.Address]*uint256.Int),
	}
}

func (b *Book) Blocked() *uint256.Int { return b.blocked.Clone() }

func (b *Book) Invested() *uint256.Int { return b.invested.Clone() }

func (b *Book) BalanceOf(addr common.Address) *uint256.Int {
	if v, ok := b.balances[addr]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// BlockedAfterLock returns what blocked would be after locking amount,
// without changing the book.
func (b *Book) BlockedAfterLock(amount *uint256.Int) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).AddOverflow(b.blocked, amount)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

func (b *Book) BlockedAfterRelease(amount *uint256.Int) (*uint256.Int, error) {
	v, underflow := new(uint256.Int).SubOverflow(b.blocked, amount)
	if underflow {
		return nil, ErrUnderflow
	}
	return v, nil
}

func (b *Book) InvestedAfterAdd(amount *uint256.Int) (*uint256.Int, error) {
	v, overflow := new(uint256.Int).AddOverflow(b.invested, amount)
	if overflow {
		return nil, ErrOverflow
	}
	return v, nil
}

func (b *Book) InvestedAfterSub(amount *uint256.Int) (*uint256.Int, error) {
	v, underflow := new(uint256.Int).SubOverflow(b.invested, amount)
	if underflow {
		return nil, ErrUnderflow
	}
	return v, nil
}

func (b *Book) SetBlocked(v *uint256.Int) { b.blocked = v.Clone() }

func (b *Book) SetInvested(v *uint256.Int) { b.invested = v.Clone() }

type Credit struct {
	Account common.Address
	Amount  *uint256.Int
}

// CheckCredits reports ErrOverflow if applying credits would overflow any
// balance. Credits to the same account are summed first.
func (b *Book) CheckCredits(credits ...Credit) error {
	next := make(map[common.Address]*uint256.Int, len(credits))
	for _, c := range credits {
		cur, ok := next[c.Account]
		if !ok {
			cur = b.BalanceOf(c.Account)
		}
		sum, overflow := new(uint256.Int).AddOverflow(cur, c.Amount)
		if overflow {
			return ErrOverflow
		}
		next[c.Account] = sum
	}
	return nil
}

// Apply credits every account. Callers run CheckCredits first.
func (b *Book) Apply(credits ...Credit) {
	for _, c := range credits {
		bal := b.BalanceOf(c.Account)
		b.balances[c.Account] = bal.Add(bal, c.Amount)
	}
}

func (b *Book) Zero(addr common.Address) {
	delete(b.balances, addr)
}
