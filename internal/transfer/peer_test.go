package transfer

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/notification"
	"github.com/hanzara/quick-hello-wave/internal/profile"
)

func TestPeerTransferSuccess(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	notifier := &capturingNotifier{}
	svc := newService(lg, profiles, &fakeResolver{}, &fakeProvider{}, notifier)

	sender := seedOwner(t, lg, profiles, 500)
	recipient := uuid.NewString()
	profiles.Add(profile.Member{ID: recipient, Email: "friend@example.com", DisplayName: "Friend"})

	result, err := svc.Peer(context.Background(), PeerInput{
		SenderID:       sender,
		RecipientEmail: "friend@example.com",
		Amount:         100,
	})
	if err != nil {
		t.Fatalf("peer transfer: %v", err)
	}

	// fee = max(min(1% of 100, 100), 10) = 10; total debit 110.
	if result.Fee != 10 || result.AmountSent != 100 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.RemainingBalance != 390 {
		t.Fatalf("expected remaining balance 390, got %d", result.RemainingBalance)
	}

	recipientBalance, err := lg.Balance(context.Background(), recipient)
	if err != nil || recipientBalance != 100 {
		t.Fatalf("recipient balance = %d, %v", recipientBalance, err)
	}

	records := ledger.Records(lg)
	if len(records) != 2 {
		t.Fatalf("expected two audit records, got %d", len(records))
	}
	if records[0].Amount != -110 || records[1].Amount != 100 {
		t.Fatalf("unexpected record amounts: %+v", records)
	}

	kinds := notifier.kinds()
	if len(kinds) != 1 || kinds[0] != notification.KindPeerCredit {
		t.Fatalf("expected a credit notification, got %v", kinds)
	}
}

func TestPeerTransferCompensatesOnCreditFailure(t *testing.T) {
	inner := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()

	sender := seedOwner(t, inner, profiles, 1000)
	recipient := uuid.NewString()
	profiles.Add(profile.Member{ID: recipient, Email: "friend@example.com"})

	lg := &failingCreditLedger{Gateway: inner, failOwner: recipient}
	svc := newService(lg, profiles, &fakeResolver{}, &fakeProvider{}, nil)

	// amount 200, fee 10: debit to 790 succeeds, credit fails, balance must
	// return to 1000.
	_, err := svc.Peer(context.Background(), PeerInput{
		SenderID:       sender,
		RecipientEmail: "friend@example.com",
		Amount:         200,
	})
	if err == nil {
		t.Fatal("expected the operation to report failure")
	}

	balance, berr := inner.Balance(context.Background(), sender)
	if berr != nil || balance != 1000 {
		t.Fatalf("sender balance not restored: %d, %v", balance, berr)
	}
	if len(ledger.Records(inner)) != 0 {
		t.Fatal("no audit records may be written for a compensated transfer")
	}
}

func TestPeerTransferInsufficientBalanceIncludesFee(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	svc := newService(lg, profiles, &fakeResolver{}, &fakeProvider{}, nil)

	sender := seedOwner(t, lg, profiles, 105)
	recipient := uuid.NewString()
	profiles.Add(profile.Member{ID: recipient, Email: "friend@example.com"})

	// 100 + fee 10 exceeds the 105 balance.
	_, err := svc.Peer(context.Background(), PeerInput{
		SenderID:       sender,
		RecipientEmail: "friend@example.com",
		Amount:         100,
	})
	if !apperr.Is(err, apperr.KindInsufficientBalance) {
		t.Fatalf("expected insufficient_balance, got %v", err)
	}
}

func TestPeerTransferUnknownRecipient(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	svc := newService(lg, profiles, &fakeResolver{}, &fakeProvider{}, nil)
	sender := seedOwner(t, lg, profiles, 1000)

	_, err := svc.Peer(context.Background(), PeerInput{
		SenderID:       sender,
		RecipientEmail: "stranger@example.com",
		Amount:         100,
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPeerTransferToSelfRejected(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	svc := newService(lg, profiles, &fakeResolver{}, &fakeProvider{}, nil)
	sender := seedOwner(t, lg, profiles, 1000)

	_, err := svc.Peer(context.Background(), PeerInput{
		SenderID:       sender,
		RecipientEmail: sender + "@example.com",
		Amount:         100,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
