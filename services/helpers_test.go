package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anjiri1684/payment_reconciler/database"
	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*gorm.DB, *database.PaymentRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, database.NewPaymentRepository(db)
}

func seedPending(t *testing.T, repo *database.PaymentRepository, ref, checkoutID string) *models.Payment {
	t.Helper()
	ctx := context.Background()
	p := &models.Payment{
		Amount:        decimal.RequireFromString("500.00"),
		Currency:      models.DefaultCurrency,
		Reference:     ref,
		Status:        models.StatusPending,
		PaymentMethod: models.MethodUnknown,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if checkoutID != "" {
		if err := repo.SetCheckoutID(ctx, p.ID, checkoutID); err != nil {
			t.Fatalf("set checkout id: %v", err)
		}
		p.CheckoutID = &checkoutID
	}
	return p
}

// fakeProcessor records calls and returns canned responses.
type fakeProcessor struct {
	mu sync.Mutex

	checkoutResp payments.Envelope
	checkoutErr  error
	checkoutReqs []payments.CheckoutRequest

	statusResp    payments.Envelope
	statusErr     error
	statusQueries []string
}

func (f *fakeProcessor) CreateCheckout(ctx context.Context, req payments.CheckoutRequest) (payments.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutReqs = append(f.checkoutReqs, req)
	return f.checkoutResp, f.checkoutErr
}

func (f *fakeProcessor) Status(ctx context.Context, invoiceID string) (payments.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusQueries = append(f.statusQueries, invoiceID)
	return f.statusResp, f.statusErr
}

func (f *fakeProcessor) statusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statusQueries)
}

type recordingListener struct {
	mu          sync.Mutex
	updates     []models.Payment
	transitions int
}

func (l *recordingListener) PaymentUpdated(p models.Payment, transitioned bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, p)
	if transitioned {
		l.transitions++
	}
}

func (l *recordingListener) transitionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transitions
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.updates)
}
