package receipts

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/anjiri1684/payment_reconciler/models"
)

//go:embed templates/receipt.html
var templateFS embed.FS

var receiptTemplate = template.Must(template.ParseFS(templateFS, "templates/receipt.html"))

type receiptData struct {
	Reference     string
	Amount        string
	Currency      string
	Method        string
	Customer      string
	CheckoutID    string
	CompletedDate string
}

func RenderHTML(p models.Payment) (string, error) {
	data := receiptData{
		Reference:  p.Reference,
		Amount:     p.Amount.StringFixed(2),
		Currency:   p.Currency,
		Method:     p.PaymentMethod.Label(),
		Customer:   p.Customer(),
		CheckoutID: p.CheckoutIDValue(),
	}
	if p.CompletedAt != nil {
		data.CompletedDate = p.CompletedAt.Format("January 2, 2006 15:04")
	}

	var rendered bytes.Buffer
	if err := receiptTemplate.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}
