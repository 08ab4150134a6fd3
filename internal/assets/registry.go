package assets

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrDuplicateAsset = errors.New("assets: asset with this name already registered")
	ErrUnknownAsset   = errors.New("assets: unknown asset")
	ErrNilStablecoin  = errors.New("assets: stablecoin handle is nil")
)

type Asset struct {
	ID         int
	Name       string
	Stablecoin Stablecoin
	ShareToken ShareToken
}

// Registry is append-only. Assets keep their index for the lifetime of the
// process and are never removed.
type Registry struct {
	mu     sync.RWMutex
	assets []*Asset
	byName map[string]int
	minter common.Address
	newTok ShareTokenFactory
}

func NewRegistry(minter common.Address, factory ShareTokenFactory) *Registry {
	return &Registry{
		byName: make(map[string]int),
		minter: minter,
		newTok: factory,
	}
}

// Register names the asset after the stablecoin's symbol and creates its
// share token. Names are compared byte for byte.
func (r *Registry) Register(coin Stablecoin) (*Asset, error) {
	if coin == nil {
		return nil, ErrNilStablecoin
	}
	name := coin.Symbol()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAsset, name)
	}

	asset := &Asset{
		ID:         len(r.assets),
		Name:       name,
		Stablecoin: coin,
		ShareToken: r.newTok(name, r.minter),
	}
	r.assets = append(r.assets, asset)
	r.byName[name] = asset.ID

	return asset, nil
}

func (r *Registry) Get(id int) (*Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= len(r.assets) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAsset, id)
	}
	return r.assets[id], nil
}

func (r *Registry) ResolveByName(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	return id, ok
}

// Names lists asset names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.assets))
	for _, a := range r.assets {
		names = append(names, a.Name)
	}
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.assets)
}
