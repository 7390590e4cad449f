package routes

import (
	"github.com/anjiri1684/payment_reconciler/handlers"
	"github.com/anjiri1684/payment_reconciler/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App, h *handlers.AdminHandler, jwtSecret string) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(jwtSecret), middleware.AdminRequired())
	admin.Get("/payments", h.ListPayments)
	admin.Get("/payments/export", h.ExportPayments)
	admin.Get("/payments/:id/receipt", h.GetReceipt)
	admin.Get("/callbacks", h.ListCallbacks)
}
