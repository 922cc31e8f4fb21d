package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/transfer"
)

// RegisterTransferRoutes wires the money-movement endpoints.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler) {
	r.Post("/transfers/withdraw", h.Withdraw)
	r.Post("/transfers/peer", h.Peer)
}
