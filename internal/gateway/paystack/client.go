// Package paystack is a minimal client for the Paystack transaction API:
// initialize a checkout, verify a transaction by reference, and verify
// webhook signatures.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/config"
)

const (
	// StatusSuccess is the gateway's terminal success status for a
	// transaction.
	StatusSuccess = "success"

	// SignatureHeader carries the HMAC-SHA512 webhook signature.
	SignatureHeader = "x-paystack-signature"
)

type Client struct {
	secretKey  string
	baseURL    string
	callback   string
	httpClient *http.Client
}

func NewClient(cfg config.PaystackConfig) *Client {
	return &Client{
		secretKey: cfg.SecretKey,
		baseURL:   cfg.BaseURL,
		callback:  cfg.CallbackURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InitializeRequest starts a checkout. Amount is in minor currency units;
// Reference is client-generated and must be unique.
type InitializeRequest struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"`
	Reference string            `json:"reference"`
	Currency  string            `json:"currency,omitempty"`
	Callback  string            `json:"callback_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the gateway's view of a transaction, returned by verify and
// delivered in webhook payloads.
type Transaction struct {
	ID        int64             `json:"id"`
	Status    string            `json:"status"`
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Channel   string            `json:"channel"`
	PaidAt    *time.Time        `json:"paid_at"`
	Metadata  map[string]string `json:"metadata"`
}

// WebhookEvent is the envelope Paystack posts to the webhook endpoint.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a checkout session and returns the redirect URL.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	if req.Callback == "" {
		req.Callback = c.callback
	}

	var resp InitializeResponse
	if err := c.post(ctx, "/transaction/initialize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Verify fetches the authoritative transaction state for a reference. Used
// as a fallback when the webhook is delayed or lost.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	var txn Transaction
	if err := c.get(ctx, "/transaction/verify/"+reference, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// VerifySignature checks the webhook HMAC-SHA512 signature over the raw
// request body.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode gateway response (http %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || !envelope.Status {
		return fmt.Errorf("gateway error (http %d): %s", resp.StatusCode, envelope.Message)
	}

	if dest != nil {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("failed to decode gateway data: %w", err)
		}
	}
	return nil
}
