package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/notification"
	"github.com/hanzara/quick-hello-wave/internal/payout"
	"github.com/hanzara/quick-hello-wave/internal/profile"
)

// PeerInput captures a wallet-to-wallet transfer request.
type PeerInput struct {
	SenderID       string
	RecipientEmail string
	Amount         int64
	Description    string
}

// PeerResult describes a completed peer transfer.
type PeerResult struct {
	AmountSent       int64
	Fee              int64
	RemainingBalance int64
	Recipient        string
}

// Peer moves funds between two internal wallets. The sender is debited
// amount + fee and the recipient credited amount; if the credit fails after
// the debit, the sender's pre-debit balance is restored before the error is
// reported.
func (s *Service) Peer(ctx context.Context, input PeerInput) (PeerResult, error) {
	if input.Amount <= 0 {
		return PeerResult{}, apperr.New(apperr.KindValidation, "amount must be a positive number")
	}
	if input.RecipientEmail == "" {
		return PeerResult{}, apperr.New(apperr.KindValidation, "recipient identifier is required")
	}

	recipient, err := s.profiles.FindByEmail(ctx, input.RecipientEmail)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return PeerResult{}, apperr.New(apperr.KindNotFound, "recipient is not a member")
		}
		return PeerResult{}, apperr.Wrap(apperr.KindInternal, "look up recipient", err)
	}
	if recipient.ID == input.SenderID {
		return PeerResult{}, apperr.New(apperr.KindValidation, "cannot send funds to yourself")
	}

	fee := payout.PeerTransferFee(input.Amount)
	total := input.Amount + fee

	balance, err := s.ledger.Balance(ctx, input.SenderID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return PeerResult{}, apperr.New(apperr.KindNotFound, "wallet not found")
		}
		return PeerResult{}, apperr.Wrap(apperr.KindInternal, "read wallet balance", err)
	}
	if balance < total {
		return PeerResult{}, apperr.Newf(apperr.KindInsufficientBalance,
			"insufficient balance: have %d, need %d including the %d fee", balance, total, fee)
	}

	if err := s.ledger.EnsureWallet(ctx, recipient.ID); err != nil {
		return PeerResult{}, apperr.Wrap(apperr.KindInternal, "provision recipient wallet", err)
	}

	newBalance, err := s.debitWithRetry(ctx, input.SenderID, total, balance)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return PeerResult{}, apperr.New(apperr.KindInsufficientBalance, "insufficient balance")
		}
		return PeerResult{}, apperr.Wrap(apperr.KindInternal, "debit sender", err)
	}

	if _, err := s.ledger.ApplyDelta(ctx, recipient.ID, input.Amount, ledger.AnyBalance); err != nil {
		// Compensate: restore the sender's pre-debit balance before
		// reporting the failure.
		if _, cerr := s.ledger.ApplyDelta(ctx, input.SenderID, total, ledger.AnyBalance); cerr != nil {
			s.logger.Error("peer transfer compensation failed",
				"sender_id", input.SenderID, "amount", total, "error", cerr)
			if s.notifier != nil {
				_ = s.notifier.Send(ctx, notification.Message{
					Kind:        notification.KindLedgerInconsistency,
					Destination: "operations",
					Body:        "peer transfer debit could not be compensated after credit failure",
					Fields: map[string]string{
						"sender_id": input.SenderID,
						"amount":    fmt.Sprintf("%d", total),
					},
				})
			}
			return PeerResult{}, apperr.Wrap(apperr.KindLedgerInconsistency,
				"transfer failed and the sender debit could not be restored", cerr)
		}
		return PeerResult{}, apperr.Wrap(apperr.KindInternal, "credit recipient", err)
	}

	reference := newReference("PT", input.SenderID)
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("transfer to %s", input.RecipientEmail)
	}

	s.appendRecord(ctx, ledger.Record{
		OwnerID:     input.SenderID,
		Kind:        ledger.TxTransfer,
		Amount:      -total,
		Description: description,
		Status:      ledger.StatusCompleted,
		Reference:   reference,
		Metadata: map[string]any{
			"fee":       fee,
			"amount":    input.Amount,
			"recipient": input.RecipientEmail,
		},
	})
	s.appendRecord(ctx, ledger.Record{
		OwnerID:     recipient.ID,
		Kind:        ledger.TxDeposit,
		Amount:      input.Amount,
		Description: description,
		Status:      ledger.StatusCompleted,
		Reference:   reference,
		Metadata: map[string]any{
			"sender": input.SenderID,
		},
	})

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPeerCredit,
			Destination: recipient.ID,
			Body:        fmt.Sprintf("You received %d", input.Amount),
		})
	}

	recipientLabel := recipient.DisplayName
	if recipientLabel == "" {
		recipientLabel = recipient.Email
	}
	return PeerResult{
		AmountSent:       input.Amount,
		Fee:              fee,
		RemainingBalance: newBalance,
		Recipient:        recipientLabel,
	}, nil
}
