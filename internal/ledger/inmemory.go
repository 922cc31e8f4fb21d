package ledger

import (
	"context"
	"sync"
)

type inMemoryGateway struct {
	mu       sync.RWMutex
	balances map[string]int64
	records  []Record
	byRef    map[string]struct{}
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests.
func NewInMemory() Gateway {
	return &inMemoryGateway{
		balances: make(map[string]int64),
		byRef:    make(map[string]struct{}),
	}
}

func (g *inMemoryGateway) EnsureWallet(_ context.Context, ownerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.balances[ownerID]; !exists {
		g.balances[ownerID] = 0
	}
	return nil
}

func (g *inMemoryGateway) Balance(_ context.Context, ownerID string) (int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	balance, ok := g.balances[ownerID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	return balance, nil
}

func (g *inMemoryGateway) ApplyDelta(_ context.Context, ownerID string, delta int64, expectedPrior int64) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	balance, ok := g.balances[ownerID]
	if !ok {
		return 0, ErrWalletNotFound
	}
	if expectedPrior != AnyBalance && balance != expectedPrior {
		return 0, ErrConcurrentModification
	}
	if balance+delta < 0 {
		return 0, ErrInsufficientFunds
	}

	balance += delta
	g.balances[ownerID] = balance
	return balance, nil
}

func (g *inMemoryGateway) AppendTransaction(_ context.Context, rec Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if rec.Reference != "" {
		if _, exists := g.byRef[rec.Reference+":"+rec.Kind+":"+rec.OwnerID]; exists {
			return ErrDuplicateReference
		}
		g.byRef[rec.Reference+":"+rec.Kind+":"+rec.OwnerID] = struct{}{}
	}
	g.records = append(g.records, rec)
	return nil
}
