package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me returns the authenticated caller's balance.
func (h *Handler) Me(c *fiber.Ctx) error {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false, "error": "authentication required", "code": "unauthenticated",
		})
	}

	balance, err := h.service.Balance(c.UserContext(), ownerID)
	if err != nil {
		message := "something went wrong"
		var appErr *apperr.Error
		if errors.As(err, &appErr) && apperr.KindOf(err) != apperr.KindInternal {
			message = appErr.Message
		}
		return c.Status(apperr.StatusFor(err)).JSON(fiber.Map{
			"success": false, "error": message, "code": string(apperr.KindOf(err)),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":   true,
		"balance":   balance.Amount,
		"timestamp": balance.AsOf,
	})
}
