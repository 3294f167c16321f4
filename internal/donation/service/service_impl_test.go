package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	campaigndomain "github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	campaignrepository "github.com/sahayog-foundation/sahayog/internal/campaign/repository"
	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/donation/repository"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	memberdomain "github.com/sahayog-foundation/sahayog/internal/member/domain"
	memberrepository "github.com/sahayog-foundation/sahayog/internal/member/repository"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

const testSecret = "test-gateway-secret"

type fakeGateway struct {
	secret string
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return razorpay.VerifySignature(orderID, paymentID, signature, g.secret)
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (razorpay.Order, error) {
	return razorpay.Order{
		ID:       "order_test_1",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type fakeCertificates struct {
	mu         sync.Mutex
	issueCalls int
	fail       bool
}

func (f *fakeCertificates) Issue(ctx context.Context, req certdomain.IssueRequest) (certdomain.Certificate, error) {
	f.mu.Lock()
	f.issueCalls++
	f.mu.Unlock()
	if f.fail {
		return certdomain.Certificate{}, errors.New("renderer unavailable")
	}
	return certdomain.Certificate{
		DonationID:        req.DonationID,
		CertificateNumber: "CRT-TEST",
		RecipientName:     req.RecipientName,
	}, nil
}

func (f *fakeCertificates) GetByNumber(ctx context.Context, number string) (certdomain.Certificate, error) {
	return certdomain.Certificate{}, certdomain.ErrCertificateNotFound
}

func (f *fakeCertificates) Document(ctx context.Context, number string) ([]byte, error) {
	return nil, certdomain.ErrDocumentMissing
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) AuditLog(ctx context.Context, actorType, actorID, action, resourceType, resourceID string, metadata map[string]any) error {
	a.mu.Lock()
	a.actions = append(a.actions, action)
	a.mu.Unlock()
	return nil
}

func (a *recordingAudit) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type testEnv struct {
	svc   domain.Service
	db    *gorm.DB
	clk   *clock.FakeClock
	certs *fakeCertificates
	audit *recordingAudit
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithSecret(t, testSecret)
}

func newTestEnvWithSecret(t *testing.T, secret string) *testEnv {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Donation{},
		&campaigndomain.Campaign{},
		&memberdomain.Member{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	certs := &fakeCertificates{}
	audit := &recordingAudit{}

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Cfg: config.Config{
			GatewayKeyID:  "rzp_test_key",
			GatewaySecret: secret,
		},
		CertCfg: config.NewStaticCertificateConfigHolder(
			config.DefaultCertificateConfig(),
		),
		Repo:         repository.Provide(),
		CampaignRepo: campaignrepository.Provide(),
		MemberRepo:   memberrepository.Provide(),
		Gateway:      &fakeGateway{secret: testSecret},
		Certificates: certs,
		Email:        &email.NoOpProvider{},
		AuditSvc:     audit,
	})

	return &testEnv{svc: svc, db: conn, clk: clk, certs: certs, audit: audit}
}

func (e *testEnv) createCampaign(t *testing.T, status string) campaigndomain.Campaign {
	t.Helper()
	campaign := campaigndomain.Campaign{
		ID:       snowflake.ID(time.Now().UnixNano()),
		Title:    "Flood Relief",
		Slug:     fmt.Sprintf("flood-relief-%d", time.Now().UnixNano()),
		Currency: "INR",
		Status:   status,
	}
	require.NoError(t, e.db.Create(&campaign).Error)
	return campaign
}

func signPayload(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyAndRecord(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	donation, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_abc",
		PaymentID:  "pay_abc",
		Signature:  signPayload("order_abc", "pay_abc"),
		Amount:     50000,
		CampaignID: campaign.ID.String(),
		DonorName:  "Asha Rao",
		DonorEmail: "asha@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MethodGateway, donation.Method)
	assert.Equal(t, "pay_abc", donation.TransactionReference)
	assert.Equal(t, "order_abc", donation.GatewayOrderID)
	assert.Equal(t, "Asha Rao", donation.DonorName)

	var updated campaigndomain.Campaign
	require.NoError(t, env.db.First(&updated, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(50000), updated.RaisedAmount)
	assert.Equal(t, int64(1), updated.DonationCount)

	assert.Equal(t, 1, env.certs.issueCalls)
	assert.Contains(t, env.audit.actions, "donation.recorded")
}

func TestVerifyAndRecordRejectsInvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	_, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_abc",
		PaymentID:  "pay_abc",
		Signature:  signPayload("order_abc", "pay_tampered"),
		Amount:     50000,
		CampaignID: campaign.ID.String(),
	})
	require.ErrorIs(t, err, domain.ErrInvalidSignature)

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)

	var updated campaigndomain.Campaign
	require.NoError(t, env.db.First(&updated, "id = ?", campaign.ID).Error)
	assert.Zero(t, updated.RaisedAmount)
	assert.Zero(t, updated.DonationCount)

	assert.Contains(t, env.audit.actions, "donation.rejected")
	assert.Zero(t, env.certs.issueCalls)
}

func TestVerifyAndRecordMissingSecretIsConfigError(t *testing.T) {
	env := newTestEnvWithSecret(t, "")
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	_, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_abc",
		PaymentID:  "pay_abc",
		Signature:  signPayload("order_abc", "pay_abc"),
		Amount:     50000,
		CampaignID: campaign.ID.String(),
	})
	require.ErrorIs(t, err, razorpay.ErrConfigMissing)
	require.NotErrorIs(t, err, domain.ErrInvalidSignature)

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.NotContains(t, env.audit.actions, "donation.rejected")
}

func TestVerifyAndRecordDuplicateTransaction(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	req := domain.VerifyRequest{
		OrderID:    "order_dup",
		PaymentID:  "pay_dup",
		Signature:  signPayload("order_dup", "pay_dup"),
		Amount:     10000,
		CampaignID: campaign.ID.String(),
	}

	_, err := env.svc.VerifyAndRecord(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.VerifyAndRecord(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrDuplicateTransaction)

	// The replay must not double count.
	var updated campaigndomain.Campaign
	require.NoError(t, env.db.First(&updated, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(10000), updated.RaisedAmount)
	assert.Equal(t, int64(1), updated.DonationCount)

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVerifyAndRecordUnknownDonorIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	donation, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:   "order_anon",
		PaymentID: "pay_anon",
		Signature: signPayload("order_anon", "pay_anon"),
		Amount:    2500,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousDonor, donation.DonorName)
	assert.Nil(t, donation.MemberID)
	assert.Nil(t, donation.CampaignID)
}

func TestVerifyAndRecordAttributesMemberByEmail(t *testing.T) {
	env := newTestEnv(t)

	member := memberdomain.Member{
		ID:           snowflake.ID(42),
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.com",
		MembershipNo: "MEM-TEST",
		Status:       memberdomain.StatusActive,
	}
	require.NoError(t, env.db.Create(&member).Error)

	donation, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_member",
		PaymentID:  "pay_member",
		Signature:  signPayload("order_member", "pay_member"),
		Amount:     7500,
		DonorEmail: "Ravi@Example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, donation.MemberID)
	assert.Equal(t, member.ID, *donation.MemberID)
	assert.Equal(t, "Ravi Kumar", donation.DonorName)
}

func TestVerifyAndRecordSurvivesCertificateFailure(t *testing.T) {
	env := newTestEnv(t)
	env.certs.fail = true

	donation, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:   "order_cert",
		PaymentID: "pay_cert",
		Signature: signPayload("order_cert", "pay_cert"),
		Amount:    1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.certs.issueCalls)

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	_ = donation
}

func TestVerifyAndRecordClosedCampaign(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusClosed)

	_, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_closed",
		PaymentID:  "pay_closed",
		Signature:  signPayload("order_closed", "pay_closed"),
		Amount:     1000,
		CampaignID: campaign.ID.String(),
	})
	require.ErrorIs(t, err, campaigndomain.ErrCampaignClosed)

	var count int64
	require.NoError(t, env.db.Model(&domain.Donation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestVerifyAndRecordExpiredWindow(t *testing.T) {
	env := newTestEnv(t)
	ended := env.clk.Now().Add(-24 * time.Hour)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)
	require.NoError(t, env.db.Model(&campaigndomain.Campaign{}).
		Where("id = ?", campaign.ID).
		Update("ends_at", ended).Error)

	_, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
		OrderID:    "order_late",
		PaymentID:  "pay_late",
		Signature:  signPayload("order_late", "pay_late"),
		Amount:     1000,
		CampaignID: campaign.ID.String(),
	})
	require.ErrorIs(t, err, campaigndomain.ErrCampaignClosed)
}

func TestRecordManual(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	donation, err := env.svc.RecordManual(context.Background(), domain.RecordManualRequest{
		Amount:     30000,
		Method:     domain.MethodCheque,
		CampaignID: campaign.ID.String(),
		DonorName:  "Meera Joshi",
		Notes:      "cheque no 114532",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MethodCheque, donation.Method)
	assert.True(t, strings.HasPrefix(donation.TransactionReference, "manual-"))
	assert.Equal(t, "cheque no 114532", donation.Notes)

	var updated campaigndomain.Campaign
	require.NoError(t, env.db.First(&updated, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(30000), updated.RaisedAmount)
	assert.Equal(t, int64(1), updated.DonationCount)
}

func TestRecordManualRejectsGatewayMethod(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.RecordManual(context.Background(), domain.RecordManualRequest{
		Amount: 1000,
		Method: domain.MethodGateway,
	})
	require.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestConcurrentDonationsSumCorrectly(t *testing.T) {
	env := newTestEnv(t)
	campaign := env.createCampaign(t, campaigndomain.StatusActive)

	// Serialize on a single connection so sqlite behaves like a real
	// server under concurrent writers.
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			orderID := fmt.Sprintf("order_c%d", n)
			paymentID := fmt.Sprintf("pay_c%d", n)
			_, err := env.svc.VerifyAndRecord(context.Background(), domain.VerifyRequest{
				OrderID:    orderID,
				PaymentID:  paymentID,
				Signature:  signPayload(orderID, paymentID),
				Amount:     1000,
				CampaignID: campaign.ID.String(),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var updated campaigndomain.Campaign
	require.NoError(t, env.db.First(&updated, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(workers*1000), updated.RaisedAmount)
	assert.Equal(t, int64(workers), updated.DonationCount)
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Amount:   5000,
		Currency: "inr",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_test_1", resp.OrderID)
	assert.Equal(t, int64(5000), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
}

func TestCreateOrderUnknownCampaign(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
		Amount:     5000,
		CampaignID: "999999",
	})
	require.ErrorIs(t, err, campaigndomain.ErrCampaignNotFound)
}
