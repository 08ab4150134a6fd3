package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"bx-pool/internal/assets"
	"bx-pool/internal/event"
	"bx-pool/internal/token"
)

var (
	poolAddr = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	house    = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000d4")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	referrer = common.HexToAddress("0x00000000000000000000000000000000000000f6")
)

var fixedNow = time.Unix(1_700_000_000, 0)

type recorder struct {
	mu     sync.Mutex
	events []*event.Payload
}

func (r *recorder) Publish(name string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(*event.Payload))
}

func (r *recorder) named(name string) []*event.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.Payload
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	engine *Engine
	coin   *token.Stablecoin
	events *recorder
	id     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	coin := token.NewStablecoin("USDT")
	return newFixtureFor(t, coin, coin)
}

// newHookedFixture registers the asset through a hookCoin so tests can
// intercept outgoing transfers.
func newHookedFixture(t *testing.T) (*fixture, *hookCoin) {
	t.Helper()
	coin := token.NewStablecoin("USDT")
	hooked := &hookCoin{Stablecoin: coin}
	return newFixtureFor(t, coin, hooked), hooked
}

func newFixtureFor(t *testing.T, coin *token.Stablecoin, handle assets.Stablecoin) *fixture {
	t.Helper()
	rec := &recorder{}
	engine := New(Config{
		Address: poolAddr,
		Owner:   owner,
		House:   house,
		Clock:   func() time.Time { return fixedNow },
	}, token.ShareTokenFactory, rec, nil)

	id, err := engine.Register(context.Background(), handle)
	require.NoError(t, err)
	return &fixture{engine: engine, coin: coin, events: rec, id: id}
}

// fund mints amount to who and approves the pool for all of it.
func (f *fixture) fund(t *testing.T, who common.Address, amount uint64) {
	t.Helper()
	require.NoError(t, f.coin.Mint(who, u(amount)))
	require.NoError(t, f.coin.Approve(who, poolAddr, f.coin.BalanceOf(who)))
}

func (f *fixture) blocked(t *testing.T) *uint256.Int {
	t.Helper()
	s, err := f.engine.State(context.Background(), f.id)
	require.NoError(t, err)
	return s.Blocked
}

func (f *fixture) ledgerOf(t *testing.T, addr common.Address) uint64 {
	t.Helper()
	v, err := f.engine.ReferralBalanceOf(context.Background(), f.id, addr)
	require.NoError(t, err)
	return v.Uint64()
}

func (f *fixture) requireSolvent(t *testing.T) {
	t.Helper()
	snaps, err := f.engine.Snapshots(context.Background())
	require.NoError(t, err)
	for _, s := range snaps {
		require.Truef(t, s.Solvent(), "asset %s: blocked %s > balance %s", s.Name, s.Blocked.Dec(), s.PoolBalance.Dec())
	}
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

// hookCoin runs hook before every outgoing pool transfer, and can be told to
// fail transfers.
type hookCoin struct {
	*token.Stablecoin
	hook func(ctx context.Context)
	fail error
}

func (h *hookCoin) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	if h.hook != nil {
		h.hook(ctx)
	}
	if h.fail != nil {
		return h.fail
	}
	return h.Stablecoin.Transfer(ctx, from, to, amount)
}
