package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRefresher struct {
	calls  int
	cutoff time.Time
	limit  int
	err    error
}

func (f *fakeRefresher) RefreshPending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.calls++
	f.cutoff = cutoff
	f.limit = limit
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep must run with a deadline")
	}
	return 1, f.err
}

func TestReconcilePendingPayments(t *testing.T) {
	r := &fakeRefresher{}
	before := time.Now()
	ReconcilePendingPayments(r)()

	if r.calls != 1 || r.limit != sweepBatch {
		t.Fatalf("unexpected call %+v", r)
	}
	if r.cutoff.After(before.Add(-pendingMinAge).Add(time.Second)) {
		t.Fatalf("cutoff %v should be at least %v ago", r.cutoff, pendingMinAge)
	}

	failing := &fakeRefresher{err: errors.New("db down")}
	ReconcilePendingPayments(failing)()
	if failing.calls != 1 {
		t.Fatalf("job should still run once on error")
	}
}
