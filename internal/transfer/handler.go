package transfer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
	"github.com/hanzara/quick-hello-wave/internal/payout"
)

// Handler exposes the money-movement HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type destinationDetails struct {
	PhoneNumber   string `json:"phoneNumber"`
	AccountNumber string `json:"accountNumber"`
	BankCode      string `json:"bankCode"`
	AccountName   string `json:"accountName"`
}

type withdrawRequest struct {
	Amount             int64              `json:"amount"`
	PaymentMethod      string             `json:"paymentMethod"`
	DestinationDetails destinationDetails `json:"destinationDetails"`
	Description        string             `json:"description"`
}

type peerRequest struct {
	RecipientIdentifier string `json:"recipientIdentifier"`
	Amount              int64  `json:"amount"`
	Description         string `json:"description"`
}

// Withdraw moves wallet funds to an external payout rail.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return errorResponse(c, apperr.New(apperr.KindUnauthenticated, "authentication required"))
	}

	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, apperr.Wrap(apperr.KindValidation, "malformed request body", err))
	}

	channel, err := payout.ParseChannel(req.PaymentMethod)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.Withdraw(c.UserContext(), WithdrawInput{
		OwnerID: ownerID,
		Amount:  req.Amount,
		Channel: channel,
		Destination: payout.Destination{
			PhoneNumber:   req.DestinationDetails.PhoneNumber,
			AccountNumber: req.DestinationDetails.AccountNumber,
			BankCode:      req.DestinationDetails.BankCode,
			AccountName:   req.DestinationDetails.AccountName,
		},
		Description: req.Description,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":       true,
		"amount":        result.Amount,
		"fee":           result.Fee,
		"netAmount":     result.NetAmount,
		"destination":   result.Destination,
		"paymentMethod": string(result.Channel),
		"reference":     result.Reference,
		"newBalance":    result.NewBalance,
	})
}

// Peer moves funds between two member wallets.
func (h *Handler) Peer(c *fiber.Ctx) error {
	senderID, _ := c.Locals("user_id").(string)
	if senderID == "" {
		return errorResponse(c, apperr.New(apperr.KindUnauthenticated, "authentication required"))
	}

	var req peerRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, apperr.Wrap(apperr.KindValidation, "malformed request body", err))
	}

	result, err := h.service.Peer(c.UserContext(), PeerInput{
		SenderID:       senderID,
		RecipientEmail: req.RecipientIdentifier,
		Amount:         req.Amount,
		Description:    req.Description,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":           true,
		"amount_sent":       result.AmountSent,
		"fee":               result.Fee,
		"remaining_balance": result.RemainingBalance,
		"recipient":         result.Recipient,
	})
}

// errorResponse renders the uniform failure shape. Messages stay descriptive
// for validation and business failures; upstream failures already carry
// deliberately generic messages from the call sites.
func errorResponse(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	message := "something went wrong"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && kind != apperr.KindInternal && kind != apperr.KindLedgerInconsistency {
		message = appErr.Message
	}
	return c.Status(apperr.StatusFor(err)).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    string(kind),
	})
}
