// Package transfer drives the money-movement flows: withdrawals to external
// payout rails and peer transfers between internal wallets. It owns the
// ordering guarantees around the external provider and the ledger, including
// compensation when a downstream step fails partway.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/notification"
	"github.com/hanzara/quick-hello-wave/internal/paystack"
	"github.com/hanzara/quick-hello-wave/internal/payout"
	"github.com/hanzara/quick-hello-wave/internal/profile"
	"github.com/hanzara/quick-hello-wave/internal/resilience"
)

// Provider is the slice of the payment gateway the orchestrator needs.
type Provider interface {
	Balance(ctx context.Context) (int64, error)
	CreateTransfer(ctx context.Context, req paystack.TransferRequest) (paystack.Transfer, error)
}

// Resolver obtains a provider-side recipient code for a payout destination.
type Resolver interface {
	Resolve(ctx context.Context, ch payout.Channel, dest payout.Destination, accountName string) (string, error)
}

// Service orchestrates withdrawals and peer transfers over the ledger
// gateway, the payment provider and the member directory.
type Service struct {
	ledger   ledger.Gateway
	profiles profile.Repository
	resolver Resolver
	provider Provider
	notifier notification.Notifier
	logger   *slog.Logger

	callTimeout time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// NewService wires the orchestrator.
func NewService(lg ledger.Gateway, profiles profile.Repository, resolver Resolver, provider Provider,
	notifier notification.Notifier, logger *slog.Logger,
	callTimeout time.Duration, maxAttempts int, retryDelay time.Duration) *Service {
	return &Service{
		ledger:      lg,
		profiles:    profiles,
		resolver:    resolver,
		provider:    provider,
		notifier:    notifier,
		logger:      logger.With("component", "transfer"),
		callTimeout: callTimeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// WithdrawInput captures a validated caller request to move wallet funds to
// an external rail.
type WithdrawInput struct {
	OwnerID     string
	Amount      int64
	Channel     payout.Channel
	Destination payout.Destination
	Description string
}

// WithdrawResult describes a completed withdrawal.
type WithdrawResult struct {
	Amount      int64
	Fee         int64
	NetAmount   int64
	Destination string
	Channel     payout.Channel
	Reference   string
	NewBalance  int64
}

// Withdraw runs the end-to-end withdrawal pipeline. The external transfer is
// initiated before the ledger debit; once the provider has accepted the
// transfer it is never retried, and a debit failure afterwards is escalated
// as a ledger inconsistency rather than reported as a plain failure.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (WithdrawResult, error) {
	// Validating.
	if input.Amount <= 0 {
		return WithdrawResult{}, apperr.New(apperr.KindValidation, "amount must be a positive number")
	}
	if err := payout.ValidateDestination(input.Channel, input.Destination); err != nil {
		return WithdrawResult{}, err
	}

	fee, err := payout.ComputeFee(input.Amount, input.Channel)
	if err != nil {
		return WithdrawResult{}, err
	}
	net := input.Amount - fee
	if net <= 0 {
		return WithdrawResult{}, apperr.Newf(apperr.KindAmountTooLow,
			"amount is too low to cover the %d fee; minimum is %d", fee, fee+1)
	}

	// BalanceChecking. This read pairs with the conditional debit below; the
	// balance observed here becomes the compare-and-set expectation.
	balance, err := s.ledger.Balance(ctx, input.OwnerID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return WithdrawResult{}, apperr.New(apperr.KindNotFound, "wallet not found")
		}
		return WithdrawResult{}, apperr.Wrap(apperr.KindInternal, "read wallet balance", err)
	}
	if balance < input.Amount {
		return WithdrawResult{}, apperr.Newf(apperr.KindInsufficientBalance,
			"insufficient balance: have %d, need %d", balance, input.Amount)
	}

	// ProviderBalanceChecking: advisory only. A failure here never blocks a
	// legitimate withdrawal; it only prevents wasted downstream calls.
	providerBalance, err := resilience.Do(ctx, s.maxAttempts, s.retryDelay, func(ctx context.Context) (int64, error) {
		return resilience.WithTimeout(ctx, s.callTimeout, s.provider.Balance)
	})
	if err != nil {
		s.logger.Warn("provider balance pre-check failed, proceeding", "error", err)
	} else if providerBalance < net {
		return WithdrawResult{}, apperr.ProviderInsufficientBalance(
			"the payout service cannot fulfil this transfer right now")
	}

	// RecipientResolving. No ledger mutation has happened, so failures here
	// are terminal without compensation.
	member, err := s.profiles.FindByID(ctx, input.OwnerID)
	if err != nil && !errors.Is(err, profile.ErrNotFound) {
		return WithdrawResult{}, apperr.Wrap(apperr.KindInternal, "look up member profile", err)
	}
	accountName := input.Destination.AccountName
	if accountName == "" {
		accountName = member.DisplayName
	}
	recipientCode, err := s.resolver.Resolve(ctx, input.Channel, input.Destination, accountName)
	if err != nil {
		return WithdrawResult{}, err
	}

	// TransferInitiating. The locally generated reference is unique per
	// attempt, which makes provider-side retries idempotent.
	reference := newReference("WD", input.OwnerID)
	transfer, err := resilience.Do(ctx, s.maxAttempts, s.retryDelay, func(ctx context.Context) (paystack.Transfer, error) {
		return resilience.WithTimeout(ctx, s.callTimeout, func(ctx context.Context) (paystack.Transfer, error) {
			return s.provider.CreateTransfer(ctx, paystack.TransferRequest{
				Amount:    net,
				Recipient: recipientCode,
				Reference: reference,
				Reason:    input.Description,
			})
		})
	})
	if err != nil {
		return WithdrawResult{}, err
	}

	// LedgerReconciling. Money has left the provider; the gross amount must
	// come off the wallet. A failure past this point cannot be compensated
	// because the external transfer is irreversible.
	newBalance, err := s.debitWithRetry(ctx, input.OwnerID, input.Amount, balance)
	if err != nil {
		s.alertLedgerInconsistency(ctx, input, reference, transfer.TransferCode, err)
		return WithdrawResult{}, apperr.Wrap(apperr.KindLedgerInconsistency,
			"transfer succeeded but the wallet debit failed; manual reconciliation required", err)
	}

	// Recording. The movement already happened; an audit-write failure is
	// alerted, not surfaced to the caller as an operation failure.
	s.appendRecord(ctx, ledger.Record{
		OwnerID:     input.OwnerID,
		Kind:        ledger.TxWithdrawal,
		Amount:      -input.Amount,
		Description: recordDescription(input),
		Status:      ledger.StatusCompleted,
		Reference:   reference,
		Metadata: map[string]any{
			"fee":            fee,
			"net_amount":     net,
			"channel":        string(input.Channel),
			"destination":    input.Destination.Summary(input.Channel),
			"transfer_code":  transfer.TransferCode,
			"provider_state": transfer.Status,
		},
	})

	return WithdrawResult{
		Amount:      input.Amount,
		Fee:         fee,
		NetAmount:   net,
		Destination: input.Destination.Summary(input.Channel),
		Channel:     input.Channel,
		Reference:   reference,
		NewBalance:  newBalance,
	}, nil
}

// debitWithRetry applies a conditional debit, re-reading and re-checking
// sufficiency when another request modified the balance in between. A losing
// racer re-validates instead of overdrafting.
func (s *Service) debitWithRetry(ctx context.Context, ownerID string, amount, expected int64) (int64, error) {
	const casRounds = 3
	for round := 0; round < casRounds; round++ {
		newBalance, err := s.ledger.ApplyDelta(ctx, ownerID, -amount, expected)
		if err == nil {
			return newBalance, nil
		}
		if !errors.Is(err, ledger.ErrConcurrentModification) {
			return 0, err
		}
		current, rerr := s.ledger.Balance(ctx, ownerID)
		if rerr != nil {
			return 0, rerr
		}
		if current < amount {
			return 0, ledger.ErrInsufficientFunds
		}
		expected = current
	}
	return 0, ledger.ErrConcurrentModification
}

func (s *Service) alertLedgerInconsistency(ctx context.Context, input WithdrawInput, reference, transferCode string, cause error) {
	s.logger.Error("ledger inconsistency: external transfer succeeded but wallet debit failed",
		"owner_id", input.OwnerID, "amount", input.Amount, "reference", reference,
		"transfer_code", transferCode, "error", cause)
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindLedgerInconsistency,
		Destination: "operations",
		Body:        "external transfer completed without a matching wallet debit",
		Fields: map[string]string{
			"owner_id":      input.OwnerID,
			"amount":        fmt.Sprintf("%d", input.Amount),
			"reference":     reference,
			"transfer_code": transferCode,
		},
	})
}

// appendRecord writes an audit record, alerting the operator channel when the
// write fails for a movement that already completed.
func (s *Service) appendRecord(ctx context.Context, rec ledger.Record) {
	if err := s.ledger.AppendTransaction(ctx, rec); err != nil {
		s.logger.Error("audit record write failed", "owner_id", rec.OwnerID,
			"reference", rec.Reference, "error", err)
		if s.notifier != nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindRecordWriteFailed,
				Destination: "operations",
				Body:        "transaction record could not be appended",
				Fields: map[string]string{
					"owner_id":  rec.OwnerID,
					"reference": rec.Reference,
					"amount":    fmt.Sprintf("%d", rec.Amount),
				},
			})
		}
	}
}

func recordDescription(input WithdrawInput) string {
	if input.Description != "" {
		return input.Description
	}
	return fmt.Sprintf("withdrawal via %s to %s", input.Channel, input.Destination.Summary(input.Channel))
}

// newReference derives a unique transfer reference from the timestamp and the
// caller identity.
func newReference(prefix, ownerID string) string {
	short := strings.ReplaceAll(ownerID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), short)
}
