package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no member matches the lookup.
var ErrNotFound = errors.New("member not found")

// Member is the slice of a user profile the money-movement flows need:
// enough to resolve a peer transfer recipient and label payout recipients.
type Member struct {
	ID          string
	Email       string
	Phone       string
	DisplayName string
	CreatedAt   time.Time
}

// Repository looks up members of the platform directory.
type Repository interface {
	FindByID(ctx context.Context, id string) (Member, error)
	FindByEmail(ctx context.Context, email string) (Member, error)
}
