package database

import (
	"context"
	"encoding/json"

	"github.com/anjiri1684/payment_reconciler/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CallbackLogRepository struct {
	db *gorm.DB
}

func NewCallbackLogRepository(db *gorm.DB) *CallbackLogRepository {
	return &CallbackLogRepository{db: db}
}

func (r *CallbackLogRepository) Record(ctx context.Context, method string, params map[string]string, paymentID *uint, outcome models.CallbackOutcome, message string) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return storeError("encode callback params", err)
	}
	entry := models.CallbackLog{
		PaymentID: paymentID,
		Method:    method,
		Params:    datatypes.JSON(raw),
		Outcome:   outcome,
		Message:   message,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return storeError("record callback", err)
	}
	return nil
}

func (r *CallbackLogRepository) Recent(ctx context.Context, paymentID *uint, limit int) ([]models.CallbackLog, error) {
	query := r.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit)
	if paymentID != nil {
		query = query.Where("payment_id = ?", *paymentID)
	}
	var logs []models.CallbackLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, storeError("list callbacks", err)
	}
	return logs, nil
}
