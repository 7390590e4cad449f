package models

import "time"

// Receipt is the archived PDF receipt of a completed payment.
type Receipt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PaymentID uint      `gorm:"not null;uniqueIndex" json:"payment_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
