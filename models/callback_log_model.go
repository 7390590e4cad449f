package models

import (
	"time"

	"gorm.io/datatypes"
)

type CallbackOutcome string

const (
	CallbackSuccess  CallbackOutcome = "success"
	CallbackPending  CallbackOutcome = "pending"
	CallbackFailed   CallbackOutcome = "failed"
	CallbackNotFound CallbackOutcome = "not_found"
	CallbackInvalid  CallbackOutcome = "invalid"
)

// CallbackLog records every redirect the processor sends to the callback
// endpoint, whether or not it could be matched to a payment.
type CallbackLog struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PaymentID *uint           `gorm:"index" json:"payment_id"`
	Method    string          `gorm:"size:10" json:"method"`
	Params    datatypes.JSON  `json:"params"`
	Outcome   CallbackOutcome `gorm:"size:20;not null" json:"outcome"`
	Message   string          `gorm:"type:text" json:"message"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}
