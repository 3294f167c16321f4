package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "rzp_test_key", user)
		require.Equal(t, "rzp_test_secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(50000), body["amount"])
		require.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(Order{
			ID:       "order_Jx123",
			Amount:   50000,
			Currency: "INR",
			Receipt:  body["receipt"].(string),
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "rzp_test_key", "rzp_test_secret")

	order, err := client.CreateOrder(context.Background(), 50000, "inr", "don-42")
	require.NoError(t, err)
	require.Equal(t, "order_Jx123", order.ID)
	require.Equal(t, "don-42", order.Receipt)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "BAD_REQUEST_ERROR", "description": "amount exceeds maximum"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "rzp_test_key", "rzp_test_secret")

	_, err := client.CreateOrder(context.Background(), 50000, "INR", "don-42")
	require.EqualError(t, err, "amount exceeds maximum")
}

func TestCreateOrderValidation(t *testing.T) {
	client := NewClient("https://example.invalid", "", "")
	_, err := client.CreateOrder(context.Background(), 100, "INR", "don-1")
	require.ErrorIs(t, err, ErrInvalidConfig)

	client = NewClient("https://example.invalid", "key", "secret")
	_, err = client.CreateOrder(context.Background(), 0, "INR", "don-1")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
