package transfer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/ledger"
	"github.com/hanzara/quick-hello-wave/internal/logging"
	"github.com/hanzara/quick-hello-wave/internal/notification"
	"github.com/hanzara/quick-hello-wave/internal/paystack"
	"github.com/hanzara/quick-hello-wave/internal/payout"
	"github.com/hanzara/quick-hello-wave/internal/profile"
)

type fakeProvider struct {
	balance    int64
	balanceErr error

	transfers    []paystack.TransferRequest
	transferErr  error
	transferCode string
}

func (f *fakeProvider) Balance(context.Context) (int64, error) {
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeProvider) CreateTransfer(_ context.Context, req paystack.TransferRequest) (paystack.Transfer, error) {
	f.transfers = append(f.transfers, req)
	if f.transferErr != nil {
		return paystack.Transfer{}, f.transferErr
	}
	code := f.transferCode
	if code == "" {
		code = "TRF_test"
	}
	return paystack.Transfer{ID: 1, TransferCode: code, Reference: req.Reference, Status: "pending"}, nil
}

type fakeResolver struct {
	code string
	err  error
}

func (f *fakeResolver) Resolve(context.Context, payout.Channel, payout.Destination, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.code == "" {
		return "RCP_test", nil
	}
	return f.code, nil
}

// failingCreditLedger forwards to the in-memory gateway but rejects credits
// (positive deltas) for one owner.
type failingCreditLedger struct {
	ledger.Gateway
	failOwner string
}

func (l *failingCreditLedger) ApplyDelta(ctx context.Context, ownerID string, delta, expected int64) (int64, error) {
	if ownerID == l.failOwner && delta > 0 {
		return 0, ledger.ErrWalletNotFound
	}
	return l.Gateway.ApplyDelta(ctx, ownerID, delta, expected)
}

// failingDebitLedger rejects all negative deltas.
type failingDebitLedger struct {
	ledger.Gateway
}

func (l *failingDebitLedger) ApplyDelta(ctx context.Context, ownerID string, delta, expected int64) (int64, error) {
	if delta < 0 {
		return 0, ledger.ErrConcurrentModification
	}
	return l.Gateway.ApplyDelta(ctx, ownerID, delta, expected)
}

type capturingNotifier struct {
	messages []notification.Message
}

func (n *capturingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func (n *capturingNotifier) kinds() []string {
	out := make([]string, len(n.messages))
	for i, m := range n.messages {
		out[i] = m.Kind
	}
	return out
}

func newService(lg ledger.Gateway, profiles profile.Repository, resolver Resolver, provider Provider, notifier notification.Notifier) *Service {
	return NewService(lg, profiles, resolver, provider, notifier, logging.Discard(),
		time.Second, 2, time.Millisecond)
}

func seedOwner(t *testing.T, lg ledger.Gateway, profiles interface{ Add(profile.Member) }, balance int64) string {
	t.Helper()
	ownerID := uuid.NewString()
	if err := lg.EnsureWallet(context.Background(), ownerID); err != nil {
		t.Fatalf("ensure wallet: %v", err)
	}
	ledger.SeedBalance(lg, ownerID, balance)
	profiles.Add(profile.Member{ID: ownerID, Email: ownerID + "@example.com", DisplayName: "Jane Doe"})
	return ownerID
}

func mpesaInput(ownerID string, amount int64) WithdrawInput {
	return WithdrawInput{
		OwnerID:     ownerID,
		Amount:      amount,
		Channel:     payout.ChannelMpesa,
		Destination: payout.Destination{PhoneNumber: "0712345678"},
	}
}

func TestWithdrawEndToEnd(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 5_000)

	result, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	// amount 1000 on mpesa sits in the ≤5000 band: fee 30, net 970.
	if result.Fee != 30 || result.NetAmount != 970 {
		t.Fatalf("unexpected fee/net: %+v", result)
	}
	if result.NewBalance != 4_000 {
		t.Fatalf("expected gross debit to 4000, got %d", result.NewBalance)
	}
	if len(provider.transfers) != 1 || provider.transfers[0].Amount != 970 {
		t.Fatalf("provider must receive the net amount: %+v", provider.transfers)
	}
	if !strings.HasPrefix(result.Reference, "WD-") {
		t.Fatalf("unexpected reference %q", result.Reference)
	}

	records := ledger.Records(lg)
	if len(records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(records))
	}
	rec := records[0]
	if rec.Amount != -1000 || rec.Kind != ledger.TxWithdrawal || rec.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Metadata["fee"] != int64(30) || rec.Metadata["net_amount"] != int64(970) {
		t.Fatalf("unexpected record metadata %+v", rec.Metadata)
	}
}

func TestWithdrawAmountTooLow(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 5_000)

	// mpesa fee at 10 is 15, so net would be negative.
	_, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 10))
	if !apperr.Is(err, apperr.KindAmountTooLow) {
		t.Fatalf("expected amount_too_low, got %v", err)
	}
	if !strings.Contains(err.Error(), "minimum is 16") {
		t.Fatalf("expected the minimum viable amount in the message, got %v", err)
	}
	if len(provider.transfers) != 0 {
		t.Fatal("no external call may happen before validation passes")
	}
}

func TestWithdrawInsufficientLocalBalance(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 500)

	_, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000))
	if !apperr.Is(err, apperr.KindInsufficientBalance) {
		t.Fatalf("expected insufficient_balance, got %v", err)
	}
	if len(provider.transfers) != 0 {
		t.Fatal("no external transfer may be attempted without local funds")
	}
}

func TestWithdrawProviderBalanceCheckIsAdvisory(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	// The pre-check itself errors; the withdrawal must still proceed.
	provider := &fakeProvider{balanceErr: apperr.New(apperr.KindNetworkError, "flaky")}
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 5_000)

	if _, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000)); err != nil {
		t.Fatalf("advisory check failure blocked a withdrawal: %v", err)
	}
}

func TestWithdrawProviderFloatShortfallFailsFast(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 100} // below the 970 net
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 5_000)

	_, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000))
	if !apperr.Is(err, apperr.KindInsufficientBalance) || !apperr.ServiceSide(err) {
		t.Fatalf("expected service-side insufficient_balance, got %v", err)
	}
	if len(provider.transfers) != 0 {
		t.Fatal("transfer must not be initiated against a known-short float")
	}
}

func TestWithdrawLedgerInconsistencyIsEscalatedNotRetried(t *testing.T) {
	inner := ledger.NewInMemory()
	lg := &failingDebitLedger{Gateway: inner}
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	notifier := &capturingNotifier{}
	svc := newService(lg, profiles, &fakeResolver{}, provider, notifier)
	ownerID := seedOwner(t, inner, profiles, 5_000)

	_, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000))
	if !apperr.Is(err, apperr.KindLedgerInconsistency) {
		t.Fatalf("expected ledger_inconsistency, got %v", err)
	}
	if len(provider.transfers) != 1 {
		t.Fatalf("external transfer must not be retried after success, got %d calls", len(provider.transfers))
	}
	kinds := notifier.kinds()
	if len(kinds) == 0 || kinds[0] != notification.KindLedgerInconsistency {
		t.Fatalf("expected an operator alert, got %v", kinds)
	}
}

func TestWithdrawRecipientFailureNeedsNoCompensation(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	resolver := &fakeResolver{err: apperr.New(apperr.KindRecipientError, "provider rejected the phone number")}
	svc := newService(lg, profiles, resolver, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 5_000)

	_, err := svc.Withdraw(context.Background(), mpesaInput(ownerID, 1000))
	if !apperr.Is(err, apperr.KindRecipientError) {
		t.Fatalf("expected recipient_error, got %v", err)
	}
	balance, _ := lg.Balance(context.Background(), ownerID)
	if balance != 5_000 {
		t.Fatalf("no ledger mutation may happen before transfer initiation, balance=%d", balance)
	}
}

func TestWithdrawMissingBankFields(t *testing.T) {
	lg := ledger.NewInMemory()
	profiles := profile.NewMemoryRepository()
	provider := &fakeProvider{balance: 1_000_000}
	svc := newService(lg, profiles, &fakeResolver{}, provider, nil)
	ownerID := seedOwner(t, lg, profiles, 50_000)

	_, err := svc.Withdraw(context.Background(), WithdrawInput{
		OwnerID:     ownerID,
		Amount:      10_000,
		Channel:     payout.ChannelBank,
		Destination: payout.Destination{AccountNumber: "0123456789"},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
