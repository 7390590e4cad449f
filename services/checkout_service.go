package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
	"github.com/anjiri1684/payment_reconciler/utils"
	"github.com/shopspring/decimal"
)

const (
	checkoutComment      = "Payment via payment reconciler"
	maxReferenceAttempts = 5
	msgSessionNotCreated = "Failed to create payment session"
	processorErrorPrefix = "API Error: "
	transportErrorPrefix = "Error: "
)

type CheckoutInput struct {
	Amount      decimal.Decimal
	Currency    string
	Phone       string
	Email       string
	FirstName   string
	LastName    string
	RedirectURL string
}

type CheckoutResult struct {
	Payment     *models.Payment
	RedirectURL string
}

// CheckoutService creates Payment Records and opens hosted checkout sessions.
type CheckoutService struct {
	store     PaymentStore
	processor payments.Processor
	sandbox   SandboxPolicy
}

func NewCheckoutService(store PaymentStore, processor payments.Processor, sandbox SandboxPolicy) *CheckoutService {
	return &CheckoutService{store: store, processor: processor, sandbox: sandbox}
}

// Create persists a pending payment and requests a checkout session for it.
// When the processor call fails the record is kept, still pending, so a
// later poll can reconcile it.
func (s *CheckoutService) Create(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !in.Amount.Round(2).IsPositive() {
		return nil, ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}

	reference, err := s.newReference(ctx)
	if err != nil {
		return nil, err
	}

	phone := s.sandbox.NormalizePhone(strings.TrimSpace(in.Phone))
	payment := &models.Payment{
		Amount:        in.Amount.Round(2),
		Currency:      currency,
		Reference:     reference,
		Status:        models.StatusPending,
		PaymentMethod: models.MethodUnknown,
		PayerPhone:    optional(phone),
		PayerEmail:    optional(strings.TrimSpace(in.Email)),
		PayerName:     optional(strings.TrimSpace(in.FirstName + " " + in.LastName)),
	}
	if err := s.store.Create(ctx, payment); err != nil {
		return nil, err
	}

	resp, err := s.processor.CreateCheckout(ctx, payments.CheckoutRequest{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: phone,
		Amount:      payment.Amount.StringFixed(2),
		Currency:    currency,
		Comment:     checkoutComment,
		APIRef:      reference,
		RedirectURL: in.RedirectURL,
	})
	if err != nil {
		log.Printf("🔥 IntaSend checkout failed for payment %s: %v", reference, err)
		return nil, checkoutFailure(err)
	}

	redirectURL := resp.String("url")
	if redirectURL == "" {
		msg := msgSessionNotCreated
		if apiMsg := resp.ErrorMessage(); apiMsg != "" {
			msg = processorErrorPrefix + apiMsg
		}
		log.Printf("IntaSend checkout for payment %s returned no url: %v", reference, resp)
		return nil, &CheckoutError{Message: msg, Err: ErrProcessorError}
	}

	checkoutID := extractCheckoutID(resp)
	if checkoutID == "" {
		checkoutID = reference
	}
	if err := s.store.SetCheckoutID(ctx, payment.ID, checkoutID); err != nil {
		return nil, err
	}
	payment.CheckoutID = &checkoutID

	log.Printf("✅ Checkout session %s created for payment %s", checkoutID, reference)
	return &CheckoutResult{Payment: payment, RedirectURL: redirectURL}, nil
}

func (s *CheckoutService) newReference(ctx context.Context) (string, error) {
	for i := 0; i < maxReferenceAttempts; i++ {
		ref := utils.GenerateReference()
		exists, err := s.store.ReferenceExists(ctx, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique reference", ErrRecordStore)
}

// extractCheckoutID finds the invoice id, which IntaSend nests under
// "invoice" on some responses and returns as top-level "id" on others.
func extractCheckoutID(resp payments.Envelope) string {
	if inv := resp.Nested("invoice"); inv != nil {
		for _, key := range []string{"id", "invoice_id"} {
			if id := strings.TrimSpace(inv.String(key)); id != "" {
				return id
			}
		}
	}
	if id := strings.TrimSpace(resp.String("invoice")); id != "" {
		return id
	}
	return strings.TrimSpace(resp.String("id"))
}

func checkoutFailure(err error) error {
	var apiErr *payments.APIError
	if errors.As(err, &apiErr) {
		msg := msgSessionNotCreated
		if apiErr.Message != "" {
			msg = processorErrorPrefix + apiErr.Message
		}
		return &CheckoutError{Message: msg, Err: fmt.Errorf("%w: %w", ErrProcessorError, err)}
	}
	if errors.Is(err, payments.ErrUnavailable) {
		return &CheckoutError{Message: transportErrorPrefix + err.Error(), Err: fmt.Errorf("%w: %w", ErrProcessorUnavailable, err)}
	}
	return &CheckoutError{Message: transportErrorPrefix + err.Error(), Err: fmt.Errorf("%w: %w", ErrProcessorError, err)}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
