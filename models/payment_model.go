package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusComplete PaymentStatus = "complete"
	StatusFailed   PaymentStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusComplete, StatusFailed:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodMpesa     PaymentMethod = "mpesa"
	MethodCard      PaymentMethod = "card"
	MethodGooglePay PaymentMethod = "google_pay"
	MethodBank      PaymentMethod = "bank"
	MethodOther     PaymentMethod = "other"
	MethodUnknown   PaymentMethod = "unknown"
)

var methodLabels = map[PaymentMethod]string{
	MethodMpesa:     "M-Pesa",
	MethodCard:      "Card Payment",
	MethodGooglePay: "Google Pay",
	MethodBank:      "Bank Transfer",
	MethodOther:     "Other Method",
	MethodUnknown:   "Unknown Method",
}

func (m PaymentMethod) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return methodLabels[MethodUnknown]
}

func (m PaymentMethod) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

// IsSpecific reports whether m names a concrete payment channel.
func (m PaymentMethod) IsSpecific() bool {
	return m.Valid() && m != MethodOther && m != MethodUnknown
}

const DefaultCurrency = "KES"

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string          `gorm:"size:3;not null;default:'KES'" json:"currency"`
	Reference     string          `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	CheckoutID    *string         `gorm:"size:100;uniqueIndex" json:"checkout_id"`
	Status        PaymentStatus   `gorm:"size:10;not null;default:'pending';index" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"size:20;not null;default:'unknown'" json:"payment_method"`

	PayerPhone *string `gorm:"size:20" json:"payer_phone,omitempty"`
	PayerEmail *string `gorm:"size:255" json:"payer_email,omitempty"`
	PayerName  *string `gorm:"size:255" json:"payer_name,omitempty"`

	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CheckoutIDValue returns the processor invoice id, or "" when none is set.
func (p *Payment) CheckoutIDValue() string {
	if p.CheckoutID == nil {
		return ""
	}
	return *p.CheckoutID
}

// LookupKey is the identifier sent to the processor when querying status.
// Records without an invoice id fall back to the merchant reference.
func (p *Payment) LookupKey() string {
	if id := p.CheckoutIDValue(); id != "" {
		return id
	}
	return p.Reference
}

// Customer is the best available display name for the payer.
func (p *Payment) Customer() string {
	switch {
	case p.PayerName != nil && *p.PayerName != "":
		return *p.PayerName
	case p.PayerEmail != nil && *p.PayerEmail != "":
		return *p.PayerEmail
	case p.PayerPhone != nil && *p.PayerPhone != "":
		return *p.PayerPhone
	}
	return ""
}
