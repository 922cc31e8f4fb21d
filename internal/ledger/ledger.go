package ledger

import (
	"context"
	"errors"
)

var (
	// ErrWalletNotFound indicates no wallet exists for the owner in this namespace.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInsufficientFunds occurs when applying a delta would take the balance
	// below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConcurrentModification indicates the wallet balance changed between the
	// caller's read and its conditional write.
	ErrConcurrentModification = errors.New("concurrent balance modification")

	// ErrDuplicateReference indicates a transaction record with the same
	// external reference was already appended.
	ErrDuplicateReference = errors.New("duplicate transaction reference")
)

// Wallet namespaces. Central wallets hold spendable balance; group savings
// wallets live in their own namespace and never collide with central ones.
const (
	KindCentral = "central"
	KindSavings = "savings"
)

// Transaction kinds and statuses recorded in the audit trail.
const (
	TxWithdrawal = "withdrawal"
	TxTransfer   = "transfer"
	TxDeposit    = "deposit"

	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AnyBalance disables the compare-and-set predicate on ApplyDelta. Balances
// are never negative, so -1 can never be a real expectation.
const AnyBalance int64 = -1

// Record is an append-only audit entry. One record is written per
// ledger-affecting step; peer transfers write two (debit and credit).
type Record struct {
	OwnerID     string
	Kind        string
	Amount      int64 // signed: negative for debits
	Description string
	Status      string
	Reference   string
	Metadata    map[string]any
}

// Gateway is the narrow interface to the wallet ledger store. ApplyDelta must
// be atomic: a plain read-modify-write "set balance" is not an acceptable
// implementation, since two concurrent withdrawals could both pass their
// balance check and overdraft the wallet.
type Gateway interface {
	// EnsureWallet guarantees a wallet row exists for the owner.
	EnsureWallet(ctx context.Context, ownerID string) error

	// Balance returns the current balance for the owner's wallet.
	Balance(ctx context.Context, ownerID string) (int64, error)

	// ApplyDelta atomically adjusts the balance by delta, refusing to go
	// negative. When expectedPrior is not AnyBalance the update only applies
	// if the stored balance still equals it, otherwise
	// ErrConcurrentModification is returned and the caller must re-read.
	ApplyDelta(ctx context.Context, ownerID string, delta int64, expectedPrior int64) (int64, error)

	// AppendTransaction writes an audit record. References must be unique per
	// external transfer attempt.
	AppendTransaction(ctx context.Context, rec Record) error
}
