package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/payment_reconciler/database"
	"github.com/anjiri1684/payment_reconciler/models"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dateLayout      = "2006-01-02"
)

var exportHeaders = []string{"Reference", "Amount", "Currency", "Method", "Status", "Created Date", "Completed Date", "Customer"}

type AdminHandler struct {
	payments  *database.PaymentRepository
	callbacks *database.CallbackLogRepository
	receipts  *database.ReceiptRepository
}

func NewAdminHandler(payments *database.PaymentRepository, callbacks *database.CallbackLogRepository, receipts *database.ReceiptRepository) *AdminHandler {
	return &AdminHandler{payments: payments, callbacks: callbacks, receipts: receipts}
}

func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	filter, err := paymentFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	filter.Page, _ = strconv.Atoi(c.Query("page", "1"))
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if filter.Limit < 1 || filter.Limit > maxPageSize {
		filter.Limit = defaultPageSize
	}

	list, total, err := h.payments.List(c.UserContext(), filter)
	if err != nil {
		log.Printf("🔥 Failed to list payments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"data": list,
		"meta": fiber.Map{
			"total":     total,
			"page":      filter.Page,
			"last_page": int(math.Ceil(float64(total) / float64(filter.Limit))),
		},
	})
}

func (h *AdminHandler) ExportPayments(c *fiber.Ctx) error {
	filter, err := paymentFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	list, _, err := h.payments.List(c.UserContext(), filter)
	if err != nil {
		log.Printf("🔥 Failed to export payments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)
	if err := w.Write(exportHeaders); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV header"})
	}
	for _, p := range list {
		completed := ""
		if p.CompletedAt != nil {
			completed = p.CompletedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			p.Reference,
			p.Amount.StringFixed(2),
			p.Currency,
			p.PaymentMethod.Label(),
			string(p.Status),
			p.CreatedAt.Format("2006-01-02 15:04"),
			completed,
			p.Customer(),
		}
		if err := w.Write(row); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write CSV row"})
		}
	}
	w.Flush()

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payments_%s.csv\"", time.Now().Format(dateLayout)))
	return c.Send(b.Bytes())
}

func (h *AdminHandler) ListCallbacks(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit < 1 || limit > maxPageSize {
		limit = 50
	}

	var paymentID *uint
	if raw := c.Query("payment_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment_id"})
		}
		pid := uint(id)
		paymentID = &pid
	}

	logs, err := h.callbacks.Recent(c.UserContext(), paymentID, limit)
	if err != nil {
		log.Printf("🔥 Failed to list callbacks: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"data": logs})
}

func (h *AdminHandler) GetReceipt(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	receipt, err := h.receipts.ForPayment(c.UserContext(), uint(id))
	if err != nil {
		log.Printf("🔥 Failed to load receipt for payment %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if receipt == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Receipt not found"})
	}
	return c.JSON(receipt)
}

func paymentFilter(c *fiber.Ctx) (database.PaymentFilter, error) {
	var f database.PaymentFilter

	if s := c.Query("status"); s != "" {
		f.Status = models.PaymentStatus(strings.ToLower(s))
		if !f.Status.Valid() {
			return f, fmt.Errorf("invalid status %q", s)
		}
	}
	if m := c.Query("method"); m != "" {
		f.Method = models.PaymentMethod(strings.ToLower(m))
		if !f.Method.Valid() {
			return f, fmt.Errorf("invalid method %q", m)
		}
	}
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fmt.Errorf("invalid start_date, use YYYY-MM-DD")
		}
		f.StartDate = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return f, fmt.Errorf("invalid end_date, use YYYY-MM-DD")
		}
		// The end date is inclusive.
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}
	f.Search = c.Query("q")
	return f, nil
}
