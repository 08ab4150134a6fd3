// Package pool is the accounting engine of the liquidity pool backing the
// betting platform. It escrows stablecoin for open bets, splits house fees
// with referrers and mints or burns pool shares against a floating price.
package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"bx-pool/internal/assets"
	"bx-pool/internal/event"
	"bx-pool/internal/ledger"
	"bx-pool/internal/monitoring"
	"bx-pool/internal/pricing"
)

const (
	// FeeBps is the house fee charged on potential rewards and settlements.
	FeeBps      = 100
	basisPoints = 10_000

	// MinDeposit is 1.0 in stablecoin base units.
	MinDeposit = 1_000_000
)

type Emitter interface {
	Publish(event string, payload interface{})
}

type Config struct {
	// Address holds the pool's stablecoin and is the minter of every share token.
	Address common.Address
	// Owner is the only caller allowed to open and settle bets.
	Owner common.Address
	// House receives the house part of every fee.
	House common.Address
	Clock func() time.Time
	// ReentryWait bounds how long a call that arrives while a token call is in
	// flight waits for it to return before failing with ErrReentrancy.
	// Defaults to 100ms.
	ReentryWait time.Duration
}

// Engine serializes every operation behind one mutex, so each call either
// commits fully or returns an error with no state changed.
type Engine struct {
	mu       sync.Mutex
	calling  atomic.Pointer[callout]
	cfg      Config
	registry *assets.Registry
	books    []*ledger.Book
	events   Emitter
	log      *zap.Logger
}

func New(cfg Config, shares assets.ShareTokenFactory, events Emitter, log *zap.Logger) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.ReentryWait <= 0 {
		cfg.ReentryWait = 100 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:      cfg,
		registry: assets.NewRegistry(cfg.Address, shares),
		events:   events,
		log:      log.Named("pool"),
	}
}

func (e *Engine) Address() common.Address { return e.cfg.Address }

func (e *Engine) Owner() common.Address { return e.cfg.Owner }

func (e *Engine) House() common.Address { return e.cfg.House }

type engineKey struct{}

// callout marks a token call in flight. done is closed when it returns.
type callout struct {
	done chan struct{}
}

func (e *Engine) inside(ctx context.Context) bool {
	owner, _ := ctx.Value(engineKey{}).(*Engine)
	return owner == e
}

// call runs a token call with the call-out marker set.
func (e *Engine) call(fn func() error) error {
	c := &callout{done: make(chan struct{})}
	e.calling.Store(c)
	defer func() {
		e.calling.Store(nil)
		close(c.done)
	}()
	return fn()
}

// acquire takes the engine lock. While a token call is in flight the caller
// may be that token calling back in under a context the engine never handed
// out: it waits up to ReentryWait for the call to return, then gives up with
// ErrReentrancy instead of blocking on the lock its own caller holds.
func (e *Engine) acquire(ctx context.Context) error {
	if c := e.calling.Load(); c != nil {
		timer := time.NewTimer(e.cfg.ReentryWait)
		defer timer.Stop()
		select {
		case <-c.done:
		case <-timer.C:
			return ErrReentrancy
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.mu.Lock()
	return nil
}

// enter locks the engine for a mutating call. The returned context marks the
// call in progress; it is what token calls receive, so a token calling back
// with it gets ErrReentrancy at once.
func (e *Engine) enter(ctx context.Context) (context.Context, func(), error) {
	if e.inside(ctx) {
		return nil, nil, ErrReentrancy
	}
	if err := e.acquire(ctx); err != nil {
		return nil, nil, err
	}
	return context.WithValue(ctx, engineKey{}, e), e.mu.Unlock, nil
}

// view locks the engine for a read unless the read comes from inside a call
// that already holds the lock.
func (e *Engine) view(ctx context.Context) (func(), error) {
	if e.inside(ctx) {
		return func() {}, nil
	}
	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	return e.mu.Unlock, nil
}

func (e *Engine) pay(ctx context.Context, coin assets.Stablecoin, to common.Address, amount *uint256.Int) error {
	return e.call(func() error { return coin.Transfer(ctx, e.cfg.Address, to, amount) })
}

func (e *Engine) pull(ctx context.Context, coin assets.Stablecoin, from common.Address, amount *uint256.Int) error {
	return e.call(func() error { return coin.TransferFrom(ctx, e.cfg.Address, from, e.cfg.Address, amount) })
}

func (e *Engine) mint(ctx context.Context, share assets.ShareToken, to common.Address, amount *uint256.Int) error {
	return e.call(func() error { return share.Mint(ctx, e.cfg.Address, to, amount) })
}

func (e *Engine) burn(ctx context.Context, share assets.ShareToken, from common.Address, amount *uint256.Int) error {
	return e.call(func() error { return share.Burn(ctx, e.cfg.Address, from, amount) })
}

func (e *Engine) authorize(caller common.Address) error {
	if caller != e.cfg.Owner {
		return ErrUnauthorized
	}
	return nil
}

func (e *Engine) asset(id int) (*assets.Asset, *ledger.Book, error) {
	a, err := e.registry.Get(id)
	if err != nil {
		return nil, nil, err
	}
	return a, e.books[id], nil
}

func (e *Engine) inputs(a *assets.Asset, b *ledger.Book) pricing.Inputs {
	return pricing.Inputs{
		PoolBalance: a.Stablecoin.BalanceOf(e.cfg.Address),
		Blocked:     b.Blocked(),
		Invested:    b.Invested(),
		ShareSupply: a.ShareToken.TotalSupply(),
	}
}

// Register adds an asset for coin and creates its share token.
func (e *Engine) Register(ctx context.Context, coin assets.Stablecoin) (int, error) {
	_, leave, err := e.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer leave()

	a, err := e.registry.Register(coin)
	e.finish("register", err)
	if err != nil {
		return 0, err
	}
	e.books = append(e.books, ledger.NewBook())

	e.log.Info("asset registered",
		zap.Int("asset_id", a.ID),
		zap.String("asset", a.Name),
		zap.String("stablecoin", a.Stablecoin.Address().Hex()),
		zap.String("share_token", a.ShareToken.Address().Hex()),
	)
	e.emit(event.EventAssetRegistered, a, event.Payload{Account: a.Stablecoin.Address().Hex()})
	return a.ID, nil
}

func (e *Engine) finish(op string, err error, fields ...zap.Field) {
	monitoring.ObserveOperation(op, err)
	if err != nil {
		e.log.Warn(op+" failed", append(fields, zap.Error(err))...)
	}
}

func (e *Engine) emit(name string, a *assets.Asset, p event.Payload) {
	if e.events == nil {
		return
	}
	p.Name = name
	p.AssetID = a.ID
	p.Asset = a.Name
	p.Timestamp = e.cfg.Clock()
	e.events.Publish(name, &p)
}

func (e *Engine) recordGauges(a *assets.Asset, b *ledger.Book) {
	monitoring.BlockedAmount.WithLabelValues(a.Name).Set(b.Blocked().Float64())
	monitoring.InvestedAmount.WithLabelValues(a.Name).Set(b.Invested().Float64())
}

// houseFee is 1% of amount, truncated. The product is 512 bits wide and the
// result never exceeds amount, so it cannot overflow.
func houseFee(amount *uint256.Int) *uint256.Int {
	fee, _ := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(FeeBps), uint256.NewInt(basisPoints))
	return fee
}

func addChecked(x, y *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return sum, nil
}

func amountField(key string, v *uint256.Int) zap.Field {
	if v == nil {
		return zap.Skip()
	}
	return zap.String(key, v.Dec())
}
