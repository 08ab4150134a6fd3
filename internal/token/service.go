package token

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrCoinExists  = errors.New("token: stablecoin already exists")
	ErrUnknownCoin = errors.New("token: unknown stablecoin")
)

// Service holds the simulated stablecoins served by this process.
type Service struct {
	mu    sync.RWMutex
	coins map[string]*Stablecoin
}

func NewService() *Service {
	return &Service{coins: make(map[string]*Stablecoin)}
}

func (s *Service) Create(symbol string) (*Stablecoin, error) {
	if symbol == "" {
		return nil, errors.New("token: empty symbol")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coins[symbol]; ok {
		return nil, fmt.Errorf("%w: %s", ErrCoinExists, symbol)
	}
	coin := NewStablecoin(symbol)
	s.coins[symbol] = coin
	return coin, nil
}

func (s *Service) Get(symbol string) (*Stablecoin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coin, ok := s.coins[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCoin, symbol)
	}
	return coin, nil
}
