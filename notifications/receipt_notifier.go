package notifications

import (
	"fmt"
	"html"
	"log"
	"sync"

	"github.com/anjiri1684/payment_reconciler/models"
)

// ReceiptNotifier emails the payer once, when their payment first completes.
type ReceiptNotifier struct {
	mailer Mailer
	wg     sync.WaitGroup
}

func NewReceiptNotifier(mailer Mailer) *ReceiptNotifier {
	return &ReceiptNotifier{mailer: mailer}
}

func (n *ReceiptNotifier) PaymentUpdated(p models.Payment, transitioned bool) {
	if n.mailer == nil || !transitioned || p.Status != models.StatusComplete || p.PayerEmail == nil || *p.PayerEmail == "" {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		name := ""
		if p.PayerName != nil {
			name = *p.PayerName
		}
		if err := n.mailer.Send(*p.PayerEmail, name, receiptSubject(p), receiptBody(p)); err != nil {
			log.Printf("🔥 Failed to send receipt for payment %s: %v", p.Reference, err)
			return
		}
		log.Printf("✅ Receipt sent for payment %s", p.Reference)
	}()
}

// Wait blocks until queued receipts have been handed to the mailer.
func (n *ReceiptNotifier) Wait() {
	n.wg.Wait()
}

func receiptSubject(p models.Payment) string {
	return fmt.Sprintf("Payment received: %s %s", p.Amount.StringFixed(2), p.Currency)
}

func receiptBody(p models.Payment) string {
	completed := ""
	if p.CompletedAt != nil {
		completed = p.CompletedAt.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf(
		"<h1>Payment Successful</h1><p>We have received your payment.</p>"+
			"<p><b>Reference:</b> %s<br><b>Amount:</b> %s %s<br><b>Method:</b> %s<br><b>Date:</b> %s</p>",
		html.EscapeString(p.Reference),
		p.Amount.StringFixed(2),
		html.EscapeString(p.Currency),
		p.PaymentMethod.Label(),
		completed,
	)
}
