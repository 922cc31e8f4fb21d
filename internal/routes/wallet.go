package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hanzara/quick-hello-wave/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallet", h.Me)
}
