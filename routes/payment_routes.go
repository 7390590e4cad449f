package routes

import (
	"github.com/anjiri1684/payment_reconciler/handlers"
	"github.com/anjiri1684/payment_reconciler/middleware"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.PaymentHandler, jwtSecret string) {
	api := app.Group("/api/v1")

	payments := api.Group("/payments")
	payments.Post("/checkout", h.Checkout)
	payments.Get("/callback", h.Callback)
	payments.Post("/callback", h.Callback)
	payments.Get("/:id/status", middleware.Protected(jwtSecret), h.Status)
}
