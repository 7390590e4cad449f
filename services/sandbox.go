package services

import (
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
)

const (
	kenyaCountryCode          = "254"
	sandboxAutoCompleteWindow = time.Minute
)

// SandboxPolicy holds the compensations applied when talking to the
// processor's test environment. It comes from configuration only.
type SandboxPolicy struct {
	Enabled           bool
	CountryCode       string
	AutoCompleteAfter time.Duration
}

func NewSandboxPolicy(enabled bool) SandboxPolicy {
	return SandboxPolicy{
		Enabled:           enabled,
		CountryCode:       kenyaCountryCode,
		AutoCompleteAfter: sandboxAutoCompleteWindow,
	}
}

// NormalizePhone prefixes local numbers with the country code; the sandbox
// checkout rejects bare local-format numbers.
func (p SandboxPolicy) NormalizePhone(phone string) string {
	if !p.Enabled {
		return phone
	}
	return payments.WithCountryCode(phone, p.CountryCode)
}

// DefaultStatus is used when neither the processor nor the request carries
// any status at all.
func (p SandboxPolicy) DefaultStatus() models.PaymentStatus {
	if p.Enabled {
		return models.StatusComplete
	}
	return models.StatusFailed
}

func (p SandboxPolicy) ShouldAutoComplete(payment *models.Payment, now time.Time) bool {
	if !p.Enabled || payment.Status != models.StatusPending {
		return false
	}
	return now.Sub(payment.CreatedAt) > p.AutoCompleteAfter
}
