package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/certificate/repository"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func newTestService(t *testing.T) certdomain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&certdomain.Certificate{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		PDF:   &pdf.NoOpProvider{},
		Cfg:   config.Config{CertificateDir: t.TempDir()},
		CertCfg: config.NewStaticCertificateConfigHolder(
			config.DefaultCertificateConfig(),
		),
	})
}

func TestIssueCertificate(t *testing.T) {
	svc := newTestService(t)

	certificate, err := svc.Issue(context.Background(), certdomain.IssueRequest{
		DonationID:    snowflake.ID(1),
		RecipientName: "Asha Rao",
		Amount:        "INR 500.00",
		CampaignTitle: "Flood Relief",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(certificate.CertificateNumber, "CRT-"))
	assert.Equal(t, "Asha Rao", certificate.RecipientName)
}

func TestIssueIsIdempotentPerDonation(t *testing.T) {
	svc := newTestService(t)

	req := certdomain.IssueRequest{
		DonationID:    snowflake.ID(7),
		RecipientName: "Ravi Kumar",
		Amount:        "INR 100.00",
	}

	first, err := svc.Issue(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Issue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)
	assert.Equal(t, first.ID, second.ID)
}

func TestIssueRejectsEmptyRecipient(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Issue(context.Background(), certdomain.IssueRequest{
		DonationID:    snowflake.ID(2),
		RecipientName: "   ",
	})
	require.ErrorIs(t, err, certdomain.ErrInvalidRecipient)
}

func TestGetByNumberUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByNumber(context.Background(), "CRT-MISSING")
	require.ErrorIs(t, err, certdomain.ErrCertificateNotFound)
}

func TestDocumentMissingFile(t *testing.T) {
	svc := newTestService(t)

	certificate, err := svc.Issue(context.Background(), certdomain.IssueRequest{
		DonationID:    snowflake.ID(3),
		RecipientName: "Meera Joshi",
	})
	require.NoError(t, err)

	// NoOp renderer produces no document.
	_, err = svc.Document(context.Background(), certificate.CertificateNumber)
	require.ErrorIs(t, err, certdomain.ErrDocumentMissing)
}
