package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/anjiri1684/payment_reconciler/database"
	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
	"github.com/anjiri1684/payment_reconciler/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

const callbackPath = "/api/v1/payments/callback"

type CheckoutRequest struct {
	Amount      string `json:"amount" form:"amount" validate:"required"`
	Currency    string `json:"currency" form:"currency" validate:"omitempty,len=3,alpha"`
	PhoneNumber string `json:"phone_number" form:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName    string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
}

type PaymentHandler struct {
	checkout    *services.CheckoutService
	reconciler  *services.Reconciler
	callbacks   *database.CallbackLogRepository
	callbackURL string
}

func NewPaymentHandler(checkout *services.CheckoutService, reconciler *services.Reconciler, callbacks *database.CallbackLogRepository, publicBaseURL string) *PaymentHandler {
	return &PaymentHandler{
		checkout:    checkout,
		reconciler:  reconciler,
		callbacks:   callbacks,
		callbackURL: strings.TrimRight(publicBaseURL, "/") + callbackPath,
	}
}

// Checkout accepts a JSON or form submission. Form posts come from a browser
// and are redirected straight to the hosted checkout page.
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
	}

	res, err := h.checkout.Create(c.UserContext(), services.CheckoutInput{
		Amount:      amount,
		Currency:    req.Currency,
		Phone:       req.PhoneNumber,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		RedirectURL: h.callbackURL,
	})
	if err != nil {
		return checkoutErrorResponse(c, err)
	}

	if !c.Is("json") {
		return c.Redirect(res.RedirectURL, fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference":    res.Payment.Reference,
		"redirect_url": res.RedirectURL,
		"payment":      res.Payment,
	})
}

func checkoutErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrInvalidAmount) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be greater than zero"})
	}
	var coErr *services.CheckoutError
	if errors.As(err, &coErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": coErr.Message})
	}
	log.Printf("🔥 Checkout failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
}

// Callback is where the processor sends the payer back after checkout.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	req := services.IdentityRequest{
		Query: c.Queries(),
		Body:  bodyParams(c),
	}

	out := h.reconciler.HandleCallback(c.UserContext(), req)

	var paymentID *uint
	if out.Payment != nil {
		paymentID = &out.Payment.ID
	}
	if err := h.callbacks.Record(c.UserContext(), c.Method(), req.Params(), paymentID, callbackOutcome(out), out.Message); err != nil {
		log.Printf("Failed to record callback: %v", err)
	}

	status := fiber.StatusOK
	switch {
	case errors.Is(out.Err, services.ErrPaymentNotFound):
		status = fiber.StatusNotFound
	case errors.Is(out.Err, services.ErrMissingIdentifier):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(out)
}

// Status runs a fresh reconciliation for one payment. Anything that does not
// name an existing record sends the caller back to the landing page.
func (h *PaymentHandler) Status(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Redirect("/")
	}

	payment, err := h.reconciler.Refresh(c.UserContext(), uint(id))
	if errors.Is(err, services.ErrPaymentNotFound) {
		return c.Redirect("/")
	}
	if err != nil {
		log.Printf("🔥 Failed to load payment %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payment"})
	}

	return c.JSON(fiber.Map{
		"payment":        payment,
		"method_label":   payment.PaymentMethod.Label(),
		"is_terminal":    payment.Status.IsTerminal(),
		"customer":       payment.Customer(),
		"amount_display": payment.Amount.StringFixed(2) + " " + payment.Currency,
	})
}

// bodyParams flattens a JSON object or form body into string values.
func bodyParams(c *fiber.Ctx) map[string]string {
	params := map[string]string{}
	if len(c.Body()) == 0 {
		return params
	}

	if c.Is("json") {
		env, err := payments.DecodeEnvelope(c.Body())
		if err != nil {
			return params
		}
		for k := range env {
			if v := env.String(k); v != "" {
				params[k] = v
			}
		}
		return params
	}

	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}

func callbackOutcome(out services.Outcome) models.CallbackOutcome {
	switch {
	case errors.Is(out.Err, services.ErrMissingIdentifier):
		return models.CallbackInvalid
	case errors.Is(out.Err, services.ErrPaymentNotFound):
		return models.CallbackNotFound
	case out.Success:
		return models.CallbackSuccess
	case out.Err == nil && out.Status == models.StatusPending:
		return models.CallbackPending
	}
	return models.CallbackFailed
}
