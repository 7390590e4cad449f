package jobs

import (
	"context"
	"log"
	"time"
)

const (
	pendingMinAge = time.Minute
	sweepBatch    = 100
	sweepTimeout  = 2 * time.Minute
)

// PendingRefresher runs the poll path over stale pending payments.
type PendingRefresher interface {
	RefreshPending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// ReconcilePendingPayments returns the cron task that settles payments whose
// payer never came back through the callback.
func ReconcilePendingPayments(r PendingRefresher) func() {
	return func() {
		log.Println("Running job: ReconcilePendingPayments...")

		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		settled, err := r.RefreshPending(ctx, time.Now().Add(-pendingMinAge), sweepBatch)
		if err != nil {
			log.Printf("Error reconciling pending payments: %v", err)
			return
		}
		if settled > 0 {
			log.Printf("✅ Reconciled %d pending payments", settled)
		}
	}
}
