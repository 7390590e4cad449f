package services

import (
	"context"
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
)

// PaymentStore persists Payment Records. Lookups return ErrPaymentNotFound
// when nothing matches; any other failure wraps ErrRecordStore.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	// SetCheckoutID stores the processor invoice id on a record that has none.
	SetCheckoutID(ctx context.Context, id uint, checkoutID string) error

	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByCheckoutID(ctx context.Context, checkoutID string) (*models.Payment, error)
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)

	// Transition moves a pending record to a terminal status. It reports
	// false, without error, when the record was no longer pending.
	Transition(ctx context.Context, id uint, to models.PaymentStatus, at time.Time) (bool, error)
	UpdateMethod(ctx context.Context, id uint, method models.PaymentMethod) error

	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error)
}

// PaymentListener is told about records whose persisted state changed.
// transitioned is true only for the update that moved the record out of
// pending; method backfills on a settled record report false.
type PaymentListener interface {
	PaymentUpdated(p models.Payment, transitioned bool)
}
