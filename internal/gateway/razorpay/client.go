package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Order is the gateway order created before checkout opens.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the payment gateway REST API.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		keyID:     strings.TrimSpace(keyID),
		keySecret: strings.TrimSpace(keySecret),
		client:    &http.Client{Timeout: 12 * time.Second},
	}
}

// VerifySignature checks a callback signature against the configured
// key secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, c.keySecret)
}

// CreateOrder registers an order with the gateway so the checkout
// widget can collect the payment. Amount is in the currency's minor
// unit.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return Order{}, ErrInvalidConfig
	}
	if amount <= 0 {
		return Order{}, ErrInvalidAmount
	}
	if currency == "" {
		currency = "INR"
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": strings.ToUpper(currency),
		"receipt":  receipt,
	})
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Order{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var gatewayErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&gatewayErr); err != nil {
			return Order{}, ErrRequestFailed
		}
		message := strings.TrimSpace(gatewayErr.Error.Description)
		if message == "" {
			return Order{}, ErrRequestFailed
		}
		return Order{}, errors.New(message)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return Order{}, err
	}
	if order.ID == "" {
		return Order{}, ErrInvalidResponse
	}
	return order, nil
}

var (
	ErrInvalidConfig = errors.New("gateway_not_configured")
	// ErrConfigMissing means the verification secret is absent. A
	// callback can never be checked in that state, so the request
	// fails as a server error before anything is recorded.
	ErrConfigMissing   = errors.New("gateway_secret_missing")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrRequestFailed   = errors.New("gateway_request_failed")
	ErrInvalidResponse = errors.New("gateway_response_invalid")
)
