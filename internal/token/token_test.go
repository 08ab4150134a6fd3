package token

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	pool  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	alice = common.HexToAddress("0x0000000000000000000000000000000000000002")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

func TestStablecoinTransferFromSpendsAllowance(t *testing.T) {
	ctx := context.Background()
	coin := NewStablecoin("USDT")
	require.NoError(t, coin.Mint(alice, uint256.NewInt(1_000)))
	require.NoError(t, coin.Approve(alice, pool, uint256.NewInt(600)))

	require.NoError(t, coin.TransferFrom(ctx, pool, alice, pool, uint256.NewInt(400)))
	require.Equal(t, uint64(600), coin.BalanceOf(alice).Uint64())
	require.Equal(t, uint64(400), coin.BalanceOf(pool).Uint64())
	require.Equal(t, uint64(200), coin.Allowance(alice, pool).Uint64())

	err := coin.TransferFrom(ctx, pool, alice, pool, uint256.NewInt(201))
	require.ErrorIs(t, err, ErrInsufficientAllowance)
	require.Equal(t, uint64(600), coin.BalanceOf(alice).Uint64())
}

func TestStablecoinTransfer(t *testing.T) {
	ctx := context.Background()
	coin := NewStablecoin("USDT")
	require.NoError(t, coin.Mint(pool, uint256.NewInt(50)))

	require.ErrorIs(t, coin.Transfer(ctx, pool, bob, uint256.NewInt(51)), ErrInsufficientBalance)
	require.ErrorIs(t, coin.Transfer(ctx, pool, common.Address{}, uint256.NewInt(1)), ErrZeroAddress)
	require.NoError(t, coin.Transfer(ctx, pool, bob, uint256.NewInt(50)))
	require.Equal(t, uint64(50), coin.BalanceOf(bob).Uint64())
	require.True(t, coin.BalanceOf(pool).IsZero())
	require.Equal(t, uint64(50), coin.TotalSupply().Uint64())
}

func TestStablecoinRespectsContext(t *testing.T) {
	coin := NewStablecoin("USDT")
	require.NoError(t, coin.Mint(pool, uint256.NewInt(50)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, coin.Transfer(ctx, pool, bob, uint256.NewInt(1)), context.Canceled)
	require.Equal(t, uint64(50), coin.BalanceOf(pool).Uint64())
}

func TestShareTokenMintRestrictedToMinter(t *testing.T) {
	ctx := context.Background()
	share := NewShareToken("USDT", pool)
	require.Equal(t, "bpUSDT", share.Symbol())

	require.ErrorIs(t, share.Mint(ctx, alice, alice, uint256.NewInt(10)), ErrNotMinter)
	require.NoError(t, share.Mint(ctx, pool, alice, uint256.NewInt(10)))
	require.Equal(t, uint64(10), share.TotalSupply().Uint64())

	require.ErrorIs(t, share.Burn(ctx, alice, alice, uint256.NewInt(1)), ErrNotMinter)
	require.ErrorIs(t, share.Burn(ctx, pool, alice, uint256.NewInt(11)), ErrInsufficientBalance)
	require.NoError(t, share.Burn(ctx, pool, alice, uint256.NewInt(4)))
	require.Equal(t, uint64(6), share.TotalSupply().Uint64())
	require.Equal(t, uint64(6), share.BalanceOf(alice).Uint64())
}

func TestMintRejectsSupplyOverflow(t *testing.T) {
	coin := NewStablecoin("USDT")
	require.NoError(t, coin.Mint(alice, new(uint256.Int).SetAllOne()))
	require.ErrorIs(t, coin.Mint(bob, uint256.NewInt(1)), ErrSupplyOverflow)
	require.True(t, coin.BalanceOf(bob).IsZero())
}

func TestAddressesAreStablePerSymbol(t *testing.T) {
	require.Equal(t, NewStablecoin("USDT").Address(), NewStablecoin("USDT").Address())
	require.NotEqual(t, NewStablecoin("USDT").Address(), NewStablecoin("USDC").Address())
	require.NotEqual(t, NewStablecoin("USDT").Address(), NewShareToken("USDT", pool).Address())
}
