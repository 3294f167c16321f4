package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayog-foundation/sahayog/internal/auth/session"
	"github.com/sahayog-foundation/sahayog/internal/config"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
)

type fakeDonationService struct {
	verifyCalls int
	verifyErr   error
	lastVerify  donationdomain.VerifyRequest
}

func (f *fakeDonationService) CreateOrder(ctx context.Context, req donationdomain.CreateOrderRequest) (donationdomain.CreateOrderResponse, error) {
	return donationdomain.CreateOrderResponse{OrderID: "order_test", Amount: req.Amount, Currency: "INR"}, nil
}

func (f *fakeDonationService) VerifyAndRecord(ctx context.Context, req donationdomain.VerifyRequest) (donationdomain.Donation, error) {
	f.verifyCalls++
	f.lastVerify = req
	if f.verifyErr != nil {
		return donationdomain.Donation{}, f.verifyErr
	}
	return donationdomain.Donation{
		Amount:               req.Amount,
		TransactionReference: req.PaymentID,
	}, nil
}

func (f *fakeDonationService) RecordManual(ctx context.Context, req donationdomain.RecordManualRequest) (donationdomain.Donation, error) {
	return donationdomain.Donation{}, nil
}

func (f *fakeDonationService) List(ctx context.Context, req donationdomain.ListDonationRequest) (donationdomain.ListDonationResponse, error) {
	return donationdomain.ListDonationResponse{}, nil
}

func (f *fakeDonationService) GetByID(ctx context.Context, id string) (donationdomain.Donation, error) {
	return donationdomain.Donation{}, donationdomain.ErrDonationNotFound
}

func (f *fakeDonationService) Stats(ctx context.Context) (donationdomain.StatsResponse, error) {
	return donationdomain.StatsResponse{}, nil
}

func newTestServer(t *testing.T, donations donationdomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:      engine,
		sessions:    session.NewManager(config.Config{}),
		donationSvc: donations,
	}
	return srv
}

func TestVerifyDonationEndpoint(t *testing.T) {
	fake := &fakeDonationService{}
	srv := newTestServer(t, fake)
	srv.engine.POST("/api/donations/verify", srv.VerifyDonation)

	body, err := json.Marshal(map[string]any{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_abc",
		"razorpay_signature":  "deadbeef",
		"amount":              50000,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.verifyCalls)
	assert.Equal(t, "order_abc", fake.lastVerify.OrderID)
	assert.Equal(t, "pay_abc", fake.lastVerify.PaymentID)
}

func TestVerifyDonationMissingFields(t *testing.T) {
	fake := &fakeDonationService{}
	srv := newTestServer(t, fake)
	srv.engine.POST("/api/donations/verify", srv.VerifyDonation)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader([]byte(`{"amount":100}`)))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, fake.verifyCalls)
}

func TestVerifyDonationInvalidSignature(t *testing.T) {
	fake := &fakeDonationService{verifyErr: donationdomain.ErrInvalidSignature}
	srv := newTestServer(t, fake)
	srv.engine.POST("/api/donations/verify", srv.VerifyDonation)

	body := []byte(`{"razorpay_order_id":"order_abc","razorpay_payment_id":"pay_abc","razorpay_signature":"bad","amount":100}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "invalid_signature", payload.Error.Type)
}

func TestVerifyDonationDuplicate(t *testing.T) {
	fake := &fakeDonationService{verifyErr: donationdomain.ErrDuplicateTransaction}
	srv := newTestServer(t, fake)
	srv.engine.POST("/api/donations/verify", srv.VerifyDonation)

	body := []byte(`{"razorpay_order_id":"order_abc","razorpay_payment_id":"pay_abc","razorpay_signature":"sig","amount":100}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyDonationMissingSecretIsServerError(t *testing.T) {
	fake := &fakeDonationService{verifyErr: razorpay.ErrConfigMissing}
	srv := newTestServer(t, fake)
	srv.engine.POST("/api/donations/verify", srv.VerifyDonation)

	body := []byte(`{"razorpay_order_id":"order_abc","razorpay_payment_id":"pay_abc","razorpay_signature":"sig","amount":100}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donations/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var payload errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "service_unavailable", payload.Error.Type)
}

func TestAdminRouteRequiresSession(t *testing.T) {
	fake := &fakeDonationService{}
	srv := newTestServer(t, fake)
	srv.engine.GET("/admin/api/donations", srv.AuthRequired(), srv.ListDonations)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/api/donations", nil)
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
