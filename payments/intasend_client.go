package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	intaSendLiveBaseURL    = "https://payment.intasend.com/api"
	intaSendSandboxBaseURL = "https://sandbox.intasend.com/api"

	defaultTimeout = 15 * time.Second
)

// Processor is the remote hosted-checkout provider.
type Processor interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Envelope, error)
	Status(ctx context.Context, invoiceID string) (Envelope, error)
}

type CheckoutRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Comment     string `json:"comment,omitempty"`
	APIRef      string `json:"api_ref"`
	RedirectURL string `json:"redirect_url"`
}

type ClientConfig struct {
	PublishableKey string
	SecretKey      string
	TestMode       bool
	// BaseURL overrides the environment default when set.
	BaseURL    string
	HTTPClient *http.Client
}

// IntaSendClient is safe for concurrent use and holds no mutable state.
type IntaSendClient struct {
	publishableKey string
	secretKey      string
	baseURL        string
	httpClient     *http.Client
}

func NewIntaSendClient(cfg ClientConfig) *IntaSendClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = intaSendLiveBaseURL
		if cfg.TestMode {
			baseURL = intaSendSandboxBaseURL
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &IntaSendClient{
		publishableKey: cfg.PublishableKey,
		secretKey:      cfg.SecretKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     httpClient,
	}
}

func (c *IntaSendClient) CreateCheckout(ctx context.Context, req CheckoutRequest) (Envelope, error) {
	payload := struct {
		PublicKey string `json:"public_key"`
		CheckoutRequest
	}{
		PublicKey:       c.publishableKey,
		CheckoutRequest: req,
	}
	return c.post(ctx, "/v1/checkout/", payload, false)
}

func (c *IntaSendClient) Status(ctx context.Context, invoiceID string) (Envelope, error) {
	payload := map[string]string{
		"invoice_id": invoiceID,
		"public_key": c.publishableKey,
	}
	return c.post(ctx, "/v1/payment/status/", payload, true)
}

func (c *IntaSendClient) post(ctx context.Context, path string, payload any, authenticated bool) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal IntaSend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create IntaSend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}

	env, decodeErr := DecodeEnvelope(respBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("IntaSend API Error: %s %d %s", path, resp.StatusCode, string(respBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: env}
		if decodeErr == nil {
			apiErr.Message = env.ErrorMessage()
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPI, decodeErr)
	}
	return env, nil
}
