package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/profile"
)

// Balance encapsulates available funds for a member's central wallet.
type Balance struct {
	OwnerID string
	Amount  int64
	AsOf    time.Time
}

// Service exposes wallet reads backed by the ledger gateway.
type Service struct {
	ledger   ledger.Gateway
	profiles profile.Repository
}

// NewService builds a wallet service instance.
func NewService(lg ledger.Gateway, profiles profile.Repository) *Service {
	return &Service{ledger: lg, profiles: profiles}
}

// Balance returns the ledger balance for the owner, provisioning the wallet
// row on first touch.
func (s *Service) Balance(ctx context.Context, ownerID string) (Balance, error) {
	if _, err := s.profiles.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return Balance{}, apperr.New(apperr.KindNotFound, "member not found")
		}
		return Balance{}, apperr.Wrap(apperr.KindInternal, "look up member", err)
	}
	if err := s.ledger.EnsureWallet(ctx, ownerID); err != nil {
		return Balance{}, apperr.Wrap(apperr.KindInternal, "provision wallet", err)
	}
	amount, err := s.ledger.Balance(ctx, ownerID)
	if err != nil {
		return Balance{}, apperr.Wrap(apperr.KindInternal, "read balance", err)
	}
	return Balance{OwnerID: ownerID, Amount: amount, AsOf: time.Now().UTC()}, nil
}
