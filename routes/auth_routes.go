package routes

import (
	"github.com/anjiri1684/payment_reconciler/handlers"
	"github.com/anjiri1684/payment_reconciler/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler, jwtSecret string) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", h.LoginUser)
	auth.Post("/register", middleware.Protected(jwtSecret), middleware.AdminRequired(), h.RegisterUser)
}
