package database

import (
	"context"
	"errors"

	"github.com/anjiri1684/payment_reconciler/models"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// ForPayment returns nil, without error, when the payment has no receipt yet.
func (r *ReceiptRepository) ForPayment(ctx context.Context, paymentID uint) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find receipt", err)
	}
	return &receipt, nil
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return storeError("create receipt", err)
	}
	return nil
}
