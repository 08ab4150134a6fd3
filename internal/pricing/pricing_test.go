package pricing

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func in(pool, blocked, invested, supply uint64) Inputs {
	return Inputs{
		PoolBalance: uint256.NewInt(pool),
		Blocked:     uint256.NewInt(blocked),
		Invested:    uint256.NewInt(invested),
		ShareSupply: uint256.NewInt(supply),
	}
}

func TestBuyPrice(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
		want uint64
	}{
		{"nothing invested", in(5_000_000, 0, 0, 0), MinPrice},
		{"no free balance", in(505_000, 505_000, 2_000_000, 2_000_000), MinPrice},
		{"no shares", in(2_000_000, 0, 2_000_000, 0), MinPrice},
		{"par", in(2_000_000, 0, 2_000_000, 2_000_000), 100},
		{"profit", in(2_100_000, 0, 2_000_000, 2_000_000), 105},
		{"loss is floored", in(1_100_000, 0, 2_000_000, 2_000_000), MinPrice},
		{"blocked reduces free", in(2_605_000, 505_000, 2_000_000, 2_000_000), 105},
		{"truncates", in(2_000_019, 0, 2_000_000, 2_000_000), 100},
		{"pool short of blocked", in(100, 1_000, 2_000_000, 2_000_000), MinPrice},
		{"nil inputs", Inputs{}, MinPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, BuyPrice(tc.in).Uint64())
		})
	}
}

func TestSellPrice(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
		want uint64
	}{
		{"nothing invested", in(5_000_000, 0, 0, 0), MinPrice},
		{"par", in(2_000_000, 0, 2_000_000, 2_000_000), 100},
		{"loss is not floored", in(1_100_000, 0, 2_000_000, 2_000_000), 55},
		{"no free balance", in(505_000, 505_000, 2_000_000, 2_000_000), 0},
		{"ignores share supply", in(2_100_000, 0, 2_000_000, 0), 105},
		{"pool short of blocked", in(100, 1_000, 2_000_000, 2_000_000), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SellPrice(tc.in).Uint64())
		})
	}
}

func TestPriceDoesNotOverflowOnHugeBalances(t *testing.T) {
	huge := new(uint256.Int).SetAllOne()
	price := SellPrice(Inputs{
		PoolBalance: huge,
		Blocked:     uint256.NewInt(0),
		Invested:    new(uint256.Int).Rsh(huge, 1),
		ShareSupply: uint256.NewInt(1),
	})
	require.Equal(t, uint64(200), price.Uint64())

	capped := BuyPrice(Inputs{
		PoolBalance: huge,
		Blocked:     uint256.NewInt(0),
		Invested:    uint256.NewInt(1),
		ShareSupply: uint256.NewInt(1),
	})
	require.True(t, capped.Eq(huge))
}
