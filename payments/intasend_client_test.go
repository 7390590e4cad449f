package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSendsPublicKey(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("checkout must not send the secret key")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"CHK1","url":"https://sandbox.intasend.com/checkout/CHK1/","invoice":{"id":"INV123"}}`))
	}))
	defer srv.Close()

	c := NewIntaSendClient(ClientConfig{PublishableKey: "pk", SecretKey: "sk", BaseURL: srv.URL})
	env, err := c.CreateCheckout(context.Background(), CheckoutRequest{Amount: "500.00", Currency: "KES", APIRef: "payment-abcd1234"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got["public_key"] != "pk" || got["api_ref"] != "payment-abcd1234" || got["amount"] != "500.00" {
		t.Fatalf("unexpected payload: %#v", got)
	}
	if env.Nested("invoice").String("id") != "INV123" {
		t.Fatalf("invoice id not decoded: %#v", env)
	}
}

func TestStatusUsesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["invoice_id"] != "INV123" {
			t.Errorf("unexpected invoice id %q", body["invoice_id"])
		}
		w.Write([]byte(`{"state":"COMPLETE","provider":"M-PESA"}`))
	}))
	defer srv.Close()

	c := NewIntaSendClient(ClientConfig{PublishableKey: "pk", SecretKey: "sk", BaseURL: srv.URL})
	env, err := c.Status(context.Background(), "INV123")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if env.String("state") != "COMPLETE" {
		t.Fatalf("unexpected state %q", env.String("state"))
	}
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":"invalid","detail":"amount too low"}]}`))
	}))
	defer srv.Close()

	c := NewIntaSendClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.Status(context.Background(), "INV1")
	if !errors.Is(err, ErrAPI) {
		t.Fatalf("expected ErrAPI, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Message != `[{"code":"invalid","detail":"amount too low"}]` {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewIntaSendClient(ClientConfig{BaseURL: url})
	_, err := c.Status(context.Background(), "INV1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestDefaultBaseURLFollowsTestMode(t *testing.T) {
	if c := NewIntaSendClient(ClientConfig{TestMode: true}); c.baseURL != intaSendSandboxBaseURL {
		t.Fatalf("sandbox base url not selected: %s", c.baseURL)
	}
	if c := NewIntaSendClient(ClientConfig{}); c.baseURL != intaSendLiveBaseURL {
		t.Fatalf("live base url not selected: %s", c.baseURL)
	}
}
