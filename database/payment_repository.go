package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/services"
	"gorm.io/gorm"
)

// PaymentRepository is the GORM-backed services.PaymentStore.
type PaymentRepository struct {
	db *gorm.DB
}

var _ services.PaymentStore = (*PaymentRepository)(nil)

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return storeError("create payment", err)
	}
	return nil
}

func (r *PaymentRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).Where("reference = ?", reference).Count(&count).Error
	if err != nil {
		return false, storeError("check reference", err)
	}
	return count > 0, nil
}

func (r *PaymentRepository) SetCheckoutID(ctx context.Context, id uint, checkoutID string) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND (checkout_id IS NULL OR checkout_id = '')", id).
		Updates(map[string]any{"checkout_id": checkoutID, "updated_at": time.Now()})
	if res.Error != nil {
		return storeError("set checkout id", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: payment %d already has a checkout id", services.ErrRecordStore, id)
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PaymentRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*models.Payment, error) {
	if checkoutID == "" {
		return nil, services.ErrPaymentNotFound
	}
	return r.first(ctx, "checkout_id = ?", checkoutID)
}

func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	if reference == "" {
		return nil, services.ErrPaymentNotFound
	}
	return r.first(ctx, "reference = ?", reference)
}

func (r *PaymentRepository) first(ctx context.Context, query string, args ...any) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrPaymentNotFound
		}
		return nil, storeError("find payment", err)
	}
	return &p, nil
}

// Transition is a compare-and-set on status: only a row that is still
// pending is updated, so concurrent reconciliations cannot both land.
func (r *PaymentRepository) Transition(ctx context.Context, id uint, to models.PaymentStatus, at time.Time) (bool, error) {
	if !to.IsTerminal() {
		return false, fmt.Errorf("%w: %q is not a terminal status", services.ErrRecordStore, to)
	}

	updates := map[string]any{"status": to, "updated_at": at}
	if to == models.StatusComplete {
		updates["completed_at"] = at
	}

	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, storeError("transition payment", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) UpdateMethod(ctx context.Context, id uint, method models.PaymentMethod) error {
	if method == models.MethodUnknown || method == "" {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]any{"payment_method": method, "updated_at": time.Now()}).Error
	if err != nil {
		return storeError("update payment method", err)
	}
	return nil
}

func (r *PaymentRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	var pending []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.StatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return nil, storeError("list pending payments", err)
	}
	return pending, nil
}

// PaymentFilter narrows the admin listing and export.
type PaymentFilter struct {
	Status    models.PaymentStatus
	Method    models.PaymentMethod
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	Page      int
	Limit     int
}

func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]models.Payment, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, storeError("count payments", err)
	}

	query := r.filtered(ctx, f)
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.Limit).Limit(f.Limit)
	}

	var list []models.Payment
	if err := query.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, 0, storeError("list payments", err)
	}
	return list, total, nil
}

func (r *PaymentRepository) filtered(ctx context.Context, f PaymentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Method != "" {
		query = query.Where("payment_method = ?", f.Method)
	}
	if f.StartDate != nil {
		query = query.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("created_at <= ?", *f.EndDate)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("(LOWER(reference) LIKE ? OR LOWER(checkout_id) LIKE ?)", like, like)
	}
	return query
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", services.ErrRecordStore, op, err)
}
