package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TutorNG-2025/marketplace-service/internal/config"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(config.PaystackConfig{
		SecretKey: "sk_test_secret",
		BaseURL:   server.URL,
	})
	return client, server
}

func TestClient_Initialize(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test_secret" {
			t.Errorf("authorization = %s", auth)
		}

		var req InitializeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 500000 || req.Reference == "" {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc",
				"access_code":       "abc",
				"reference":         req.Reference,
			},
		})
	})
	defer server.Close()

	resp, err := client.Initialize(context.Background(), &InitializeRequest{
		Email:     "applicant@example.com",
		Amount:    500000,
		Reference: "ref-1",
	})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if resp.AuthorizationURL != "https://checkout.paystack.com/abc" {
		t.Errorf("AuthorizationURL = %s", resp.AuthorizationURL)
	}
}

func TestClient_Verify(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/ref-9" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":    "success",
				"reference": "ref-9",
				"amount":    250000,
				"channel":   "card",
			},
		})
	})
	defer server.Close()

	txn, err := client.Verify(context.Background(), "ref-9")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if txn.Status != StatusSuccess || txn.Amount != 250000 {
		t.Errorf("Verify() = %+v", txn)
	}
}

func TestClient_VerifyGatewayError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Transaction reference not found",
		})
	})
	defer server.Close()

	if _, err := client.Verify(context.Background(), "missing"); err == nil {
		t.Error("Verify() expected error for gateway failure")
	}
}

func TestClient_VerifySignature(t *testing.T) {
	client := NewClient(config.PaystackConfig{SecretKey: "sk_test_secret"})
	body := []byte(`{"event":"charge.success"}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	if !client.VerifySignature(body, valid) {
		t.Error("VerifySignature() rejected a valid signature")
	}
	if client.VerifySignature(body, "deadbeef") {
		t.Error("VerifySignature() accepted an invalid signature")
	}
	if client.VerifySignature([]byte(`tampered`), valid) {
		t.Error("VerifySignature() accepted a tampered body")
	}
}
