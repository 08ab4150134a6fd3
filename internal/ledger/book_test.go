package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	house = common.HexToAddress("0x0000000000000000000000000000000000000011")
	ref   = common.HexToAddress("0x0000000000000000000000000000000000000022")
)

func TestBookBlockedArithmetic(t *testing.T) {
	b := NewBook()

	next, err := b.BlockedAfterLock(uint256.NewInt(505_000))
	require.NoError(t, err)
	require.True(t, b.Blocked().IsZero())
	b.SetBlocked(next)

	_, err = b.BlockedAfterRelease(uint256.NewInt(505_001))
	require.ErrorIs(t, err, ErrUnderflow)

	next, err = b.BlockedAfterRelease(uint256.NewInt(505_000))
	require.NoError(t, err)
	b.SetBlocked(next)
	require.True(t, b.Blocked().IsZero())

	b.SetBlocked(new(uint256.Int).SetAllOne())
	_, err = b.BlockedAfterLock(uint256.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestBookInvested(t *testing.T) {
	b := NewBook()
	v, err := b.InvestedAfterAdd(uint256.NewInt(2_000_000))
	require.NoError(t, err)
	b.SetInvested(v)

	_, err = b.InvestedAfterSub(uint256.NewInt(2_000_001))
	require.ErrorIs(t, err, ErrUnderflow)
	v, err = b.InvestedAfterSub(uint256.NewInt(500_000))
	require.NoError(t, err)
	b.SetInvested(v)
	require.Equal(t, uint64(1_500_000), b.Invested().Uint64())
}

func TestBookCredits(t *testing.T) {
	b := NewBook()
	credits := []Credit{
		{Account: house, Amount: uint256.NewInt(5)},
		{Account: ref, Amount: uint256.NewInt(5)},
	}
	require.NoError(t, b.CheckCredits(credits...))
	b.Apply(credits...)
	b.Apply(credits[0])
	require.Equal(t, uint64(10), b.BalanceOf(house).Uint64())
	require.Equal(t, uint64(5), b.BalanceOf(ref).Uint64())

	b.Zero(ref)
	require.True(t, b.BalanceOf(ref).IsZero())
}

func TestBookCheckCreditsSumsSameAccount(t *testing.T) {
	b := NewBook()
	half := new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 1)
	b.Apply(Credit{Account: house, Amount: half})

	err := b.CheckCredits(
		Credit{Account: house, Amount: half},
		Credit{Account: house, Amount: uint256.NewInt(2)},
	)
	require.ErrorIs(t, err, ErrOverflow)
	require.True(t, b.BalanceOf(house).Eq(half))
}

func TestBookReturnsCopies(t *testing.T) {
	b := NewBook()
	b.Apply(Credit{Account: house, Amount: uint256.NewInt(7)})

	v := b.BalanceOf(house)
	v.SetUint64(1_000)
	require.Equal(t, uint64(7), b.BalanceOf(house).Uint64())
}
