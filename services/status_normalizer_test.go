package services

import (
	"testing"

	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/anjiri1684/payment_reconciler/payments"
)

func TestNormalizeStatus(t *testing.T) {
	sandbox := NewSandboxPolicy(true)
	live := NewSandboxPolicy(false)

	cases := []struct {
		name    string
		resp    payments.Envelope
		reqStat string
		policy  SandboxPolicy
		want    models.PaymentStatus
	}{
		{"state success upper case", payments.Envelope{"state": "SUCCESS"}, "", live, models.StatusComplete},
		{"status cancelled", payments.Envelope{"status": "cancelled"}, "", live, models.StatusFailed},
		{"state processing", payments.Envelope{"state": "processing"}, "", live, models.StatusPending},
		{"state wins over status", payments.Envelope{"state": "COMPLETE", "status": "failed"}, "", live, models.StatusComplete},
		{"paid", payments.Envelope{"status": "Paid"}, "", live, models.StatusComplete},
		{"rejected", payments.Envelope{"state": "rejected"}, "", live, models.StatusFailed},
		{"unrecognized", payments.Envelope{"state": "RETRY"}, "", live, models.StatusFailed},
		{"nested invoice state", payments.Envelope{"invoice": map[string]any{"state": "PENDING"}}, "", live, models.StatusPending},
		{"request status fallback", payments.Envelope{}, "COMPLETE", live, models.StatusComplete},
		{"response beats request", payments.Envelope{"state": "pending"}, "complete", live, models.StatusPending},
		{"empty in sandbox", payments.Envelope{}, "", sandbox, models.StatusComplete},
		{"empty outside sandbox", payments.Envelope{}, "", live, models.StatusFailed},
		{"nil response outside sandbox", nil, "", live, models.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeStatus(tc.resp, tc.reqStat, tc.policy); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestInferPaymentMethod(t *testing.T) {
	cases := []struct {
		name string
		resp payments.Envelope
		want models.PaymentMethod
	}{
		{"channel visa", payments.Envelope{"channel": "VISA-1234"}, models.MethodCard},
		{"provider mpesa", payments.Envelope{"provider": "Safaricom MPESA"}, models.MethodMpesa},
		{"provider hyphenated", payments.Envelope{"provider": "M-PESA"}, models.MethodMpesa},
		{"explicit field first", payments.Envelope{"payment_method": "bank", "channel": "mpesa"}, models.MethodBank},
		{"google pay", payments.Envelope{"channel": "GooglePay"}, models.MethodGooglePay},
		{"gpay", payments.Envelope{"payment_method": "gpay"}, models.MethodGooglePay},
		{"mastercard", payments.Envelope{"provider": "MasterCard"}, models.MethodCard},
		{"unrecognized field", payments.Envelope{"channel": "crypto"}, models.MethodOther},
		{"scan fallback", payments.Envelope{"state": "COMPLETE", "narrative": "paid via bank transfer"}, models.MethodBank},
		{"nested invoice provider", payments.Envelope{"invoice": map[string]any{"provider": "CARD-PAYMENT"}}, models.MethodCard},
		{"opaque values only", payments.Envelope{"id": 12345.0, "ref": "XJ3K9"}, models.MethodUnknown},
		{"empty", payments.Envelope{}, models.MethodUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := InferPaymentMethod(tc.resp); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestMergeMethodIsSticky(t *testing.T) {
	cases := []struct {
		current, inferred, want models.PaymentMethod
	}{
		{models.MethodUnknown, models.MethodMpesa, models.MethodMpesa},
		{models.MethodMpesa, models.MethodUnknown, models.MethodMpesa},
		{models.MethodMpesa, models.MethodOther, models.MethodMpesa},
		{models.MethodUnknown, models.MethodOther, models.MethodOther},
		{models.MethodOther, models.MethodCard, models.MethodCard},
		{models.MethodCard, models.MethodBank, models.MethodBank},
	}
	for _, tc := range cases {
		if got := MergeMethod(tc.current, tc.inferred); got != tc.want {
			t.Errorf("MergeMethod(%s, %s) = %s, want %s", tc.current, tc.inferred, got, tc.want)
		}
	}
}
