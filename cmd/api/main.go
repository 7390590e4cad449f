package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/payment_reconciler/configs"
	"github.com/anjiri1684/payment_reconciler/database"
	"github.com/anjiri1684/payment_reconciler/handlers"
	"github.com/anjiri1684/payment_reconciler/jobs"
	"github.com/anjiri1684/payment_reconciler/notifications"
	"github.com/anjiri1684/payment_reconciler/payments"
	"github.com/anjiri1684/payment_reconciler/receipts"
	"github.com/anjiri1684/payment_reconciler/routes"
	"github.com/anjiri1684/payment_reconciler/services"
	"github.com/anjiri1684/payment_reconciler/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Invalid configuration: %v", err)
	}

	db, err := database.ConnectDB(settings.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 %v", err)
	}
	if err := database.SeedAdmin(db, settings.AdminFullName, settings.AdminEmail, settings.AdminPassword); err != nil {
		log.Printf("🔥 %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := payments.NewIntaSendClient(payments.ClientConfig{
		PublishableKey: settings.IntaSendPublishableKey,
		SecretKey:      settings.IntaSendSecretKey,
		TestMode:       settings.IntaSendTestMode,
		BaseURL:        settings.IntaSendBaseURL,
	})
	sandbox := services.NewSandboxPolicy(settings.IntaSendTestMode)
	if sandbox.Enabled {
		log.Println("⚠️ IntaSend test mode enabled, sandbox compensations active.")
	}

	paymentRepo := database.NewPaymentRepository(db)
	callbackRepo := database.NewCallbackLogRepository(db)
	receiptRepo := database.NewReceiptRepository(db)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	listeners := []services.PaymentListener{hub}
	if brevo := notifications.NewBrevoService(settings.BrevoAPIKey, settings.EmailSender, settings.EmailSenderName); brevo != nil {
		listeners = append(listeners, notifications.NewReceiptNotifier(brevo))
	}
	if settings.CloudinaryURL != "" {
		uploader, err := receipts.NewCloudinaryUploader(settings.CloudinaryURL)
		if err != nil {
			log.Printf("🔥 Receipt archiving disabled: %v", err)
		} else {
			listeners = append(listeners, receipts.NewArchiver(receipts.ChromeRenderer{}, uploader, receiptRepo))
			log.Println("✅ Receipt archiving enabled.")
		}
	}

	reconciler := services.NewReconciler(paymentRepo, client, sandbox, listeners...)
	checkout := services.NewCheckoutService(paymentRepo, client, sandbox)

	c := cron.New()
	if _, err := c.AddFunc(settings.ReconcileCron, jobs.ReconcilePendingPayments(reconciler)); err != nil {
		log.Fatalf("🔥 Invalid RECONCILE_CRON %q: %v", settings.ReconcileCron, err)
	}
	c.Start()
	log.Println("✅ Cron job for pending payment reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Payment Reconciler",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Africa/Nairobi",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Payment Reconciler API",
		})
	})

	routes.PaymentRoutes(app, handlers.NewPaymentHandler(checkout, reconciler, callbackRepo, settings.PublicBaseURL), settings.JWTSecret)
	routes.AuthRoutes(app, handlers.NewAuthHandler(db, settings.JWTSecret), settings.JWTSecret)
	routes.AdminRoutes(app, handlers.NewAdminHandler(paymentRepo, callbackRepo, receiptRepo), settings.JWTSecret)
	routes.RealtimeRoutes(app, handlers.NewRealtimeHandler(hub, paymentRepo, settings.JWTSecret))

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		<-c.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("🔥 Server shutdown failed: %v", err)
		}
	}()

	log.Printf("✅ Server is running on port %s", settings.Port)
	if err := app.Listen(":" + settings.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
