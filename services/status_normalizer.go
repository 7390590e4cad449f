package services

import (
	"strings"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
)

var (
	statusFields = []string{"state", "status"}
	methodFields = []string{"payment_method", "channel", "provider"}
)

// NormalizeStatus maps the processor's status vocabulary onto PaymentStatus.
// The response wins over the status carried by the inbound request; with
// neither present the sandbox policy decides.
func NormalizeStatus(resp payments.Envelope, requestStatus string, sandbox SandboxPolicy) models.PaymentStatus {
	raw := ""
	for _, field := range statusFields {
		if raw = resp.Lookup(field); raw != "" {
			break
		}
	}
	if raw == "" {
		raw = strings.TrimSpace(requestStatus)
	}
	if raw == "" {
		return sandbox.DefaultStatus()
	}
	return mapStatus(raw)
}

func mapStatus(raw string) models.PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "success", "paid":
		return models.StatusComplete
	case "pending", "processing":
		return models.StatusPending
	default:
		return models.StatusFailed
	}
}

// InferPaymentMethod reads the payment method from the first method field
// present, then falls back to scanning every string value.
func InferPaymentMethod(resp payments.Envelope) models.PaymentMethod {
	for _, field := range methodFields {
		if v := resp.Lookup(field); v != "" {
			if m, ok := matchMethod(v); ok {
				return m
			}
			return models.MethodOther
		}
	}
	for _, v := range resp.StringValues() {
		if m, ok := matchMethod(v); ok {
			return m
		}
	}
	return models.MethodUnknown
}

var separatorReplacer = strings.NewReplacer("-", "", "_", "", " ", "")

func matchMethod(value string) (models.PaymentMethod, bool) {
	s := separatorReplacer.Replace(strings.ToLower(value))
	switch {
	case strings.Contains(s, "mpesa"):
		return models.MethodMpesa, true
	case strings.Contains(s, "card"), strings.Contains(s, "visa"), strings.Contains(s, "mastercard"):
		return models.MethodCard, true
	case strings.Contains(s, "google"), strings.Contains(s, "gpay"):
		return models.MethodGooglePay, true
	case strings.Contains(s, "bank"):
		return models.MethodBank, true
	}
	return "", false
}

// MergeMethod keeps a resolved method from being reset: Unknown never
// replaces anything and Other never replaces a specific method.
func MergeMethod(current, inferred models.PaymentMethod) models.PaymentMethod {
	switch {
	case inferred == "" || inferred == models.MethodUnknown:
		return current
	case inferred == models.MethodOther && current != models.MethodUnknown && current != "":
		return current
	}
	return inferred
}
