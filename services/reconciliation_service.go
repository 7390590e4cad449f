package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
)

const (
	msgPaymentSuccessful = "Payment successful!"
	msgPaymentPending    = "Payment is still pending. Please check back later."
	msgPaymentFailed     = "Payment failed or was cancelled"
	msgPaymentNotFound   = "Payment record not found"
	msgInvalidRequest    = "Invalid request"
	msgStoreFailure      = "Unable to update payment record"
)

// Outcome is the user-facing result of a callback.
type Outcome struct {
	Success bool                 `json:"success"`
	Status  models.PaymentStatus `json:"status,omitempty"`
	Message string               `json:"message"`
	Payment *models.Payment      `json:"payment,omitempty"`
	Err     error                `json:"-"`
}

// Reconciler applies processor status to Payment Records. Terminal states
// are sticky: the store only lets a pending record transition, so duplicate
// or out-of-order reconciliations are no-ops.
type Reconciler struct {
	store     PaymentStore
	processor payments.Processor
	sandbox   SandboxPolicy
	listeners []PaymentListener
	now       func() time.Time
}

func NewReconciler(store PaymentStore, processor payments.Processor, sandbox SandboxPolicy, listeners ...PaymentListener) *Reconciler {
	return &Reconciler{
		store:     store,
		processor: processor,
		sandbox:   sandbox,
		listeners: listeners,
		now:       time.Now,
	}
}

// HandleCallback reconciles the payment named by a processor redirect.
// It never returns an error; failures become negative outcomes.
func (r *Reconciler) HandleCallback(ctx context.Context, req IdentityRequest) Outcome {
	identity, err := ResolveIdentity(ctx, r.store, req)
	switch {
	case errors.Is(err, ErrMissingIdentifier):
		return Outcome{Message: msgInvalidRequest, Err: err}
	case errors.Is(err, ErrPaymentNotFound):
		return Outcome{Message: msgPaymentNotFound, Err: err}
	case err != nil:
		log.Printf("🔥 Callback identity lookup failed: %v", err)
		return Outcome{Message: msgStoreFailure, Err: err}
	}

	payment := identity.Payment
	resp, err := r.processor.Status(ctx, identity.CheckoutID)
	if err != nil {
		log.Printf("IntaSend status check failed for %s: %v", identity.CheckoutID, err)
		return Outcome{
			Status:  payment.Status,
			Message: "Unable to verify payment: " + processorMessage(err),
			Payment: payment,
			Err:     classifyProcessorError(err),
		}
	}

	status := NormalizeStatus(resp, req.RequestStatus(), r.sandbox)
	method := InferPaymentMethod(resp)
	log.Printf("Callback for payment %s: processor status %q -> %s, method %s", payment.Reference, resp.Lookup("state"), status, method)

	updated, err := r.apply(ctx, payment, status, method)
	if err != nil {
		log.Printf("🔥 Failed to apply callback for payment %s: %v", payment.Reference, err)
		return Outcome{Status: payment.Status, Message: msgStoreFailure, Payment: payment, Err: err}
	}
	return outcomeFor(updated)
}

// Refresh is the poll path: it reconciles a record by its local id. Processor
// and write failures are logged and the last known state is returned.
func (r *Reconciler) Refresh(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := r.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.refresh(ctx, payment), nil
}

func (r *Reconciler) refresh(ctx context.Context, payment *models.Payment) *models.Payment {
	if payment.Status.IsTerminal() && payment.PaymentMethod != models.MethodUnknown {
		return payment
	}

	if r.sandbox.ShouldAutoComplete(payment, r.now()) {
		log.Printf("Sandbox: auto-completing stale pending payment %s", payment.Reference)
		updated, err := r.apply(ctx, payment, models.StatusComplete, models.MethodUnknown)
		if err != nil {
			log.Printf("🔥 Sandbox auto-complete failed for payment %s: %v", payment.Reference, err)
			return payment
		}
		return updated
	}

	checkoutID := payment.CheckoutIDValue()
	if checkoutID == "" {
		return payment
	}

	resp, err := r.processor.Status(ctx, checkoutID)
	if err != nil {
		log.Printf("Error checking payment status for %s: %v", payment.Reference, err)
		return payment
	}

	updated, err := r.apply(ctx, payment, NormalizeStatus(resp, "", r.sandbox), InferPaymentMethod(resp))
	if err != nil {
		log.Printf("🔥 Failed to persist refreshed status for payment %s: %v", payment.Reference, err)
		return payment
	}
	return updated
}

// RefreshPending runs the poll path over pending records created before
// cutoff and returns how many reached a terminal state.
func (r *Reconciler) RefreshPending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	pending, err := r.store.ListPendingCreatedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	settled := 0
	for i := range pending {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		if updated := r.refresh(ctx, &pending[i]); updated.Status.IsTerminal() {
			settled++
		}
	}
	return settled, nil
}

func (r *Reconciler) apply(ctx context.Context, payment *models.Payment, status models.PaymentStatus, method models.PaymentMethod) (*models.Payment, error) {
	changed := false
	touched := false
	transitioned := false

	if payment.Status == models.StatusPending && status.IsTerminal() {
		touched = true
		ok, err := r.store.Transition(ctx, payment.ID, status, r.now())
		if err != nil {
			return payment, err
		}
		if ok {
			changed = true
			transitioned = true
			log.Printf("✅ Payment %s transitioned pending -> %s", payment.Reference, status)
		} else {
			log.Printf("Payment %s already settled, ignoring %s", payment.Reference, status)
		}
	}

	// A settled record keeps a specific method; only Unknown or Other may
	// still be refined.
	frozen := payment.Status.IsTerminal() && payment.PaymentMethod.IsSpecific()
	if merged := MergeMethod(payment.PaymentMethod, method); !frozen && merged != payment.PaymentMethod {
		touched = true
		if err := r.store.UpdateMethod(ctx, payment.ID, merged); err != nil {
			return payment, err
		}
		changed = true
	}

	if !touched {
		return payment, nil
	}

	fresh, err := r.store.FindByID(ctx, payment.ID)
	if err != nil {
		return payment, err
	}
	if changed {
		r.notify(*fresh, transitioned)
	}
	return fresh, nil
}

func (r *Reconciler) notify(p models.Payment, transitioned bool) {
	for _, l := range r.listeners {
		l.PaymentUpdated(p, transitioned)
	}
}

func outcomeFor(p *models.Payment) Outcome {
	out := Outcome{Status: p.Status, Payment: p}
	switch p.Status {
	case models.StatusComplete:
		out.Success = true
		out.Message = msgPaymentSuccessful
	case models.StatusPending:
		out.Message = msgPaymentPending
	default:
		out.Message = msgPaymentFailed
	}
	return out
}

func processorMessage(err error) string {
	var apiErr *payments.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func classifyProcessorError(err error) error {
	if errors.Is(err, payments.ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrProcessorUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrProcessorError, err)
}
