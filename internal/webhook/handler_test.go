package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/logging"
)

const testSecret = "sk_test_secret"

type fakeApprover struct {
	approved []string
	err      error
}

func (f *fakeApprover) ApproveTransfer(_ context.Context, code string) error {
	f.approved = append(f.approved, code)
	return f.err
}

func newApp(approver Approver) *fiber.App {
	app := fiber.New()
	h := NewHandler(approver, testSecret, logging.Discard(), time.Second, 2, time.Millisecond)
	app.Post("/webhooks/paystack", h.Receive)
	return app
}

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func post(t *testing.T, app *fiber.App, body []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestPendingApprovalEventApprovesTransfer(t *testing.T) {
	approver := &fakeApprover{}
	app := newApp(approver)

	body := []byte(`{"event":"transfer.pending_approval","data":{"transfer_code":"TRF_abc"}}`)
	resp := post(t, app, body, sign(body))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(approver.approved) != 1 || approver.approved[0] != "TRF_abc" {
		t.Fatalf("approve not called correctly: %v", approver.approved)
	}
}

func TestUnrelatedEventAcknowledgedWithoutWork(t *testing.T) {
	approver := &fakeApprover{}
	app := newApp(approver)

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)
	resp := post(t, app, body, sign(body))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unrelated events must be acknowledged with 200, got %d", resp.StatusCode)
	}
	if len(approver.approved) != 0 {
		t.Fatal("approve must not be called for unrelated events")
	}
}

func TestBadSignatureRejected(t *testing.T) {
	approver := &fakeApprover{}
	app := newApp(approver)

	body := []byte(`{"event":"transfer.pending_approval","data":{"transfer_code":"TRF_abc"}}`)
	resp := post(t, app, body, "deadbeef")

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if len(approver.approved) != 0 {
		t.Fatal("approve must not run on a forged payload")
	}
}

func TestMissingSignatureRejected(t *testing.T) {
	app := newApp(&fakeApprover{})
	body := []byte(`{"event":"charge.success"}`)
	if resp := post(t, app, body, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
