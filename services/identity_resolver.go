package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/utils"
)

var (
	checkoutIDFields    = []string{"invoice_id", "id", "checkout_id", "tracking_id"}
	referenceFields     = []string{"reference", "api_ref"}
	requestStatusFields = []string{"status", "state"}
)

// IdentityRequest carries the two parameter channels of an inbound request.
// Both are equally trusted; the query channel is read first.
type IdentityRequest struct {
	Query map[string]string
	Body  map[string]string
}

// Value returns the first non-empty value among fields, checking the query
// channel before the body channel for each field.
func (r IdentityRequest) Value(fields ...string) string {
	for _, f := range fields {
		if v := strings.TrimSpace(r.Query[f]); v != "" {
			return v
		}
		if v := strings.TrimSpace(r.Body[f]); v != "" {
			return v
		}
	}
	return ""
}

func (r IdentityRequest) CheckoutID() string { return r.Value(checkoutIDFields...) }

func (r IdentityRequest) Reference() string { return r.Value(referenceFields...) }

// RequestStatus is the status the processor may embed in its redirect.
func (r IdentityRequest) RequestStatus() string { return r.Value(requestStatusFields...) }

// Params merges both channels for logging, query values winning.
func (r IdentityRequest) Params() map[string]string {
	out := make(map[string]string, len(r.Query)+len(r.Body))
	for k, v := range r.Body {
		out[k] = v
	}
	for k, v := range r.Query {
		out[k] = v
	}
	return out
}

// Identity is a resolved payment and the identifier to query the processor with.
type Identity struct {
	Payment    *models.Payment
	CheckoutID string
}

func ResolveIdentity(ctx context.Context, store PaymentStore, req IdentityRequest) (*Identity, error) {
	checkoutID := req.CheckoutID()
	reference := req.Reference()
	if checkoutID == "" && reference == "" {
		return nil, ErrMissingIdentifier
	}

	if checkoutID != "" {
		p, err := store.FindByCheckoutID(ctx, checkoutID)
		if err == nil {
			return &Identity{Payment: p, CheckoutID: checkoutID}, nil
		}
		if !errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}

		// References have a fixed shape, so anything else cannot match one.
		if utils.IsReference(checkoutID) {
			p, err = store.FindByReference(ctx, checkoutID)
			if err == nil {
				return &Identity{Payment: p, CheckoutID: p.LookupKey()}, nil
			}
			if !errors.Is(err, ErrPaymentNotFound) {
				return nil, err
			}
		}
		if reference == "" {
			return nil, ErrPaymentNotFound
		}
	}

	p, err := store.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return &Identity{Payment: p, CheckoutID: p.LookupKey()}, nil
}
