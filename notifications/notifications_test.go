package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/shopspring/decimal"
)

func TestBrevoSend(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "key-123" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"messageId":"abc"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("key-123", "billing@example.com", "Billing")
	s.URL = srv.URL
	if err := s.Send("jane@example.com", "", "Hello", "<p>hi</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.To[0]["name"] != "jane" || got.Sender["email"] != "billing@example.com" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestBrevoSendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"bad sender"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("key-123", "billing@example.com", "Billing")
	s.URL = srv.URL
	if err := s.Send("jane@example.com", "Jane", "Hello", "x"); err == nil || !strings.Contains(err.Error(), "bad sender") {
		t.Fatalf("expected Brevo error, got %v", err)
	}
	if err := s.Send("not-an-email", "", "Hello", "x"); err == nil {
		t.Fatalf("expected invalid recipient error")
	}
	if NewBrevoService("", "a@b.c", "x") != nil {
		t.Fatalf("unconfigured service should be nil")
	}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) Send(toEmail, toName, subject, htmlContent string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toEmail+"|"+subject)
	return nil
}

func TestReceiptNotifierSendsOnlyForCompletedPaymentsWithEmail(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewReceiptNotifier(mailer)
	email := "jane@example.com"
	now := time.Now()

	completed := models.Payment{
		Reference:   "payment-3",
		Amount:      decimal.RequireFromString("500"),
		Currency:    "KES",
		Status:      models.StatusComplete,
		PayerEmail:  &email,
		CompletedAt: &now,
	}
	n.PaymentUpdated(models.Payment{Reference: "payment-1", Status: models.StatusFailed, PayerEmail: &email}, true)
	n.PaymentUpdated(models.Payment{Reference: "payment-2", Status: models.StatusComplete}, true)
	n.PaymentUpdated(completed, true)
	// Method backfill on the already completed record.
	completed.PaymentMethod = models.MethodMpesa
	n.PaymentUpdated(completed, false)
	n.Wait()

	if len(mailer.sent) != 1 || mailer.sent[0] != "jane@example.com|Payment received: 500.00 KES" {
		t.Fatalf("unexpected sends %v", mailer.sent)
	}
}

func TestReceiptNotifierWithoutMailer(t *testing.T) {
	email := "jane@example.com"
	n := NewReceiptNotifier(nil)
	n.PaymentUpdated(models.Payment{Status: models.StatusComplete, PayerEmail: &email}, true)
	n.Wait()
}
