// Package webhook receives provider event callbacks. Only the
// transfer-pending-approval event triggers work; everything else is
// acknowledged with 200 so the sender is never retried into an error storm.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/resilience"
)

const signatureHeader = "x-paystack-signature"

// EventPendingApproval is the provider event that requires us to call the
// approval endpoint for the transfer it names.
const EventPendingApproval = "transfer.pending_approval"

// Approver is the slice of the payment gateway the webhook needs.
type Approver interface {
	ApproveTransfer(ctx context.Context, transferCode string) error
}

// Handler verifies and dispatches provider events.
type Handler struct {
	approver  Approver
	secretKey string
	logger    *slog.Logger

	callTimeout time.Duration
	maxAttempts int
	retryDelay  time.Duration
}

// NewHandler constructs a webhook handler. The secret key is the same
// provider secret used for outbound calls; the provider signs event bodies
// with it.
func NewHandler(approver Approver, secretKey string, logger *slog.Logger,
	callTimeout time.Duration, maxAttempts int, retryDelay time.Duration) *Handler {
	return &Handler{
		approver:    approver,
		secretKey:   secretKey,
		logger:      logger.With("component", "webhook"),
		callTimeout: callTimeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

type event struct {
	Event string `json:"event"`
	Data  struct {
		TransferCode string `json:"transfer_code"`
		Reference    string `json:"reference"`
	} `json:"data"`
}

// Receive handles a provider callback.
func (h *Handler) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if !h.verifySignature(body, c.Get(signatureHeader)) {
		h.logger.Warn("webhook signature verification failed")
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "invalid signature", "code": "unauthenticated",
		})
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		// Signed but unparseable; acknowledge so the sender stops retrying.
		h.logger.Warn("webhook body not parseable", "error", err)
		return c.SendStatus(http.StatusOK)
	}

	if ev.Event != EventPendingApproval {
		return c.SendStatus(http.StatusOK)
	}
	if ev.Data.TransferCode == "" {
		h.logger.Warn("pending-approval event without transfer code")
		return c.SendStatus(http.StatusOK)
	}

	_, err := resilience.Do(c.UserContext(), h.maxAttempts, h.retryDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, resilience.WithTimeoutErr(ctx, h.callTimeout, func(ctx context.Context) error {
			return h.approver.ApproveTransfer(ctx, ev.Data.TransferCode)
		})
	})
	if err != nil {
		h.logger.Error("transfer approval failed", "transfer_code", ev.Data.TransferCode, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success": false, "error": "approval failed", "code": "internal_error",
		})
	}

	h.logger.Info("transfer approved", "transfer_code", ev.Data.TransferCode)
	return c.SendStatus(http.StatusOK)
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(h.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
