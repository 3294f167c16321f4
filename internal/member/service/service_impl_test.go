package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	donationrepository "github.com/sahayog-foundation/sahayog/internal/donation/repository"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	"github.com/sahayog-foundation/sahayog/internal/member/domain"
	"github.com/sahayog-foundation/sahayog/internal/member/repository"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

type fakeGateway struct {
	verifyOK bool
	orders   int
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return f.verifyOK
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (razorpay.Order, error) {
	f.orders++
	return razorpay.Order{
		ID:       "order_member_test",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type fakeCertificates struct {
	issueCalls int
}

func (f *fakeCertificates) Issue(ctx context.Context, req certdomain.IssueRequest) (certdomain.Certificate, error) {
	f.issueCalls++
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

type testEnv struct {
	svc     domain.Service
	db      *gorm.DB
	gateway *fakeGateway
	certs   *fakeCertificates
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithSecret(t, "member-gateway-secret")
}

func newTestEnvWithSecret(t *testing.T, secret string) *testEnv {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Member{}, &donationdomain.Donation{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	gateway := &fakeGateway{verifyOK: true}
	certs := &fakeCertificates{}

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		Cfg: config.Config{
			GatewayKeyID:  "rzp_test_key",
			GatewaySecret: secret,
			MembershipFee: 25000,
		},
		Repo:         repository.Provide(),
		Donations:    donationrepository.Provide(),
		Gateway:      gateway,
		Certificates: certs,
		Email:        &email.NoOpProvider{},
		PDF:          &pdf.NoOpProvider{},
		CertCfg: config.NewStaticCertificateConfigHolder(
			config.DefaultCertificateConfig(),
		),
	})

	return &testEnv{svc: svc, db: conn, gateway: gateway, certs: certs}
}

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	return newTestEnv(t).svc
}

func TestCreateMemberAssignsMembershipNumber(t *testing.T) {
	svc := newTestService(t)

	member, err := svc.Create(context.Background(), domain.CreateMemberRequest{
		FullName: "Ravi Kumar",
		Email:    "Ravi@Example.com",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(member.MembershipNo, "MEM-"))
	assert.Equal(t, "ravi@example.com", member.Email)
	assert.Equal(t, domain.StatusActive, member.Status)
}

func TestRegisterOpensPendingMembershipWithOrder(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Ravi Kumar",
		Email:    "ravi@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, resp.Member.Status)
	assert.True(t, strings.HasPrefix(resp.Member.MembershipNo, "MEM-"))
	assert.Equal(t, "order_member_test", resp.OrderID)
	assert.Equal(t, int64(25000), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
	assert.Equal(t, 1, env.gateway.orders)
}

func TestVerifyMembershipPaymentActivates(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Ravi Kumar",
		Email:    "ravi@example.com",
	})
	require.NoError(t, err)

	member, err := env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		MemberID:  resp.Member.ID.String(),
		OrderID:   resp.OrderID,
		PaymentID: "pay_member_1",
		Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, member.Status)
	assert.Equal(t, 1, env.certs.issueCalls)

	fetched, err := env.svc.GetByID(context.Background(), member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, fetched.Status)

	// The booked fee is the configured one; clients cannot influence it.
	var record donationdomain.Donation
	require.NoError(t, env.db.First(&record, "transaction_reference = ?", "pay_member_1").Error)
	assert.Equal(t, int64(25000), record.Amount)
	require.NotNil(t, record.MemberID)
	assert.Equal(t, member.ID, *record.MemberID)
}

func TestVerifyMembershipPaymentRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.verifyOK = false

	resp, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Ravi Kumar",
	})
	require.NoError(t, err)

	_, err = env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		MemberID:  resp.Member.ID.String(),
		OrderID:   resp.OrderID,
		PaymentID: "pay_member_1",
		Signature: "tampered",
	})
	require.ErrorIs(t, err, donationdomain.ErrInvalidSignature)

	fetched, err := env.svc.GetByID(context.Background(), resp.Member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fetched.Status)
	assert.Zero(t, env.certs.issueCalls)
}

func TestVerifyMembershipPaymentReplay(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Ravi Kumar",
	})
	require.NoError(t, err)

	req := domain.VerifyPaymentRequest{
		MemberID:  resp.Member.ID.String(),
		OrderID:   resp.OrderID,
		PaymentID: "pay_member_1",
		Signature: "sig",
	}
	_, err = env.svc.VerifyPayment(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.VerifyPayment(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrMemberAlreadyActive)

	// Same payment reference against a different pending member hits
	// the unique constraint.
	other, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Meena Devi",
	})
	require.NoError(t, err)

	req.MemberID = other.Member.ID.String()
	_, err = env.svc.VerifyPayment(context.Background(), req)
	require.ErrorIs(t, err, donationdomain.ErrDuplicateTransaction)
}

func TestVerifyMembershipPaymentUnknownMember(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		MemberID:  "123456789",
		OrderID:   "order_x",
		PaymentID: "pay_x",
		Signature: "sig",
	})
	require.True(t, errors.Is(err, domain.ErrMemberNotFound))
}

func TestVerifyMembershipPaymentMissingSecretIsConfigError(t *testing.T) {
	env := newTestEnvWithSecret(t, "")

	resp, err := env.svc.Register(context.Background(), domain.RegisterRequest{
		FullName: "Ravi Kumar",
	})
	require.NoError(t, err)

	_, err = env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		MemberID:  resp.Member.ID.String(),
		OrderID:   resp.OrderID,
		PaymentID: "pay_member_1",
		Signature: "sig",
	})
	require.ErrorIs(t, err, razorpay.ErrConfigMissing)
	require.NotErrorIs(t, err, donationdomain.ErrInvalidSignature)

	fetched, err := env.svc.GetByID(context.Background(), resp.Member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, fetched.Status)
}

func TestFindByEmail(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateMemberRequest{
		FullName: "Ravi Kumar",
		Email:    "ravi@example.com",
	})
	require.NoError(t, err)

	found, err := svc.FindByEmail(context.Background(), "ravi@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := svc.FindByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateMemberStatus(t *testing.T) {
	svc := newTestService(t)

	member, err := svc.Create(context.Background(), domain.CreateMemberRequest{FullName: "Ravi Kumar"})
	require.NoError(t, err)

	status := domain.StatusInactive
	updated, err := svc.Update(context.Background(), domain.UpdateMemberRequest{
		ID:     member.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, updated.Status)
}

func TestGetByIDUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "123456789")
	require.ErrorIs(t, err, domain.ErrMemberNotFound)
}
