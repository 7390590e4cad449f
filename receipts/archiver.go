package receipts

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/payment_reconciler/models"
)

const archiveTimeout = time.Minute

type PDFRenderer interface {
	RenderPDF(ctx context.Context, htmlContent string) ([]byte, error)
}

type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

type Store interface {
	ForPayment(ctx context.Context, paymentID uint) (*models.Receipt, error)
	Create(ctx context.Context, receipt *models.Receipt) error
}

// Archiver renders and uploads a PDF receipt for each completed payment.
type Archiver struct {
	renderer PDFRenderer
	uploader Uploader
	store    Store
	wg       sync.WaitGroup
}

func NewArchiver(renderer PDFRenderer, uploader Uploader, store Store) *Archiver {
	return &Archiver{renderer: renderer, uploader: uploader, store: store}
}

func (a *Archiver) PaymentUpdated(p models.Payment, transitioned bool) {
	if !transitioned || p.Status != models.StatusComplete {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if _, err := a.Archive(ctx, p); err != nil {
			log.Printf("🔥 Failed to archive receipt for payment %s: %v", p.Reference, err)
		}
	}()
}

// Archive stores the receipt for p unless one already exists.
func (a *Archiver) Archive(ctx context.Context, p models.Payment) (*models.Receipt, error) {
	if existing, err := a.store.ForPayment(ctx, p.ID); err != nil || existing != nil {
		return existing, err
	}

	htmlData, err := RenderHTML(p)
	if err != nil {
		return nil, err
	}
	pdfBytes, err := a.renderer.RenderPDF(ctx, htmlData)
	if err != nil {
		return nil, err
	}
	url, err := a.uploader.Upload(ctx, p.Reference, pdfBytes)
	if err != nil {
		return nil, err
	}

	receipt := &models.Receipt{PaymentID: p.ID, URL: url}
	if err := a.store.Create(ctx, receipt); err != nil {
		return nil, err
	}
	log.Printf("✅ Archived receipt for payment %s", p.Reference)
	return receipt, nil
}

// Wait blocks until in-flight archives finish.
func (a *Archiver) Wait() {
	a.wg.Wait()
}
