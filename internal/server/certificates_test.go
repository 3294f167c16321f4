package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	certificatedomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
)

type fakeCertificateService struct {
	issueCalls int
	lastIssue  certificatedomain.IssueRequest
}

func (f *fakeCertificateService) Issue(ctx context.Context, req certificatedomain.IssueRequest) (certificatedomain.Certificate, error) {
	f.issueCalls++
	f.lastIssue = req
	return certificatedomain.Certificate{
		DonationID:        req.DonationID,
		CertificateNumber: "CRT-01TESTREISSUE",
		RecipientName:     req.RecipientName,
	}, nil
}

func (f *fakeCertificateService) GetByNumber(ctx context.Context, number string) (certificatedomain.Certificate, error) {
	return certificatedomain.Certificate{}, certificatedomain.ErrCertificateNotFound
}

func (f *fakeCertificateService) Document(ctx context.Context, number string) ([]byte, error) {
	return nil, certificatedomain.ErrDocumentMissing
}

// reissueDonationService serves a single known donation by id.
type reissueDonationService struct {
	fakeDonationService
	donation donationdomain.Donation
}

func (f *reissueDonationService) GetByID(ctx context.Context, id string) (donationdomain.Donation, error) {
	if id != f.donation.ID.String() {
		return donationdomain.Donation{}, donationdomain.ErrDonationNotFound
	}
	return f.donation, nil
}

func TestIssueCertificateReissuesDonation(t *testing.T) {
	donations := &reissueDonationService{donation: donationdomain.Donation{
		ID:        snowflake.ID(42),
		DonorName: "Asha Rao",
		Amount:    50000,
		Currency:  "INR",
	}}
	certificates := &fakeCertificateService{}

	srv := newTestServer(t, donations)
	srv.certificateSvc = certificates
	srv.engine.POST("/admin/api/certificates/issue", srv.IssueCertificate)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/api/certificates/issue", bytes.NewBufferString(`{"donation_id":"42"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, certificates.issueCalls)
	assert.Equal(t, snowflake.ID(42), certificates.lastIssue.DonationID)
	assert.Equal(t, "Asha Rao", certificates.lastIssue.RecipientName)
	assert.Equal(t, donationdomain.FormatAmount(50000, "INR"), certificates.lastIssue.Amount)
}

func TestIssueCertificateUnknownDonation(t *testing.T) {
	donations := &reissueDonationService{donation: donationdomain.Donation{ID: snowflake.ID(42)}}
	certificates := &fakeCertificateService{}

	srv := newTestServer(t, donations)
	srv.certificateSvc = certificates
	srv.engine.POST("/admin/api/certificates/issue", srv.IssueCertificate)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/api/certificates/issue", bytes.NewBufferString(`{"donation_id":"404"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, certificates.issueCalls)
}
