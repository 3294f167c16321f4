package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	certificatedomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
)

// GetCertificate is the public verification endpoint behind the QR
// code printed on every certificate.
func (s *Server) GetCertificate(c *gin.Context) {
	certificate, err := s.certificateSvc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": certificate})
}

func (s *Server) DownloadCertificate(c *gin.Context) {
	document, err := s.certificateSvc.Document(c.Request.Context(), c.Param("number"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="certificate.pdf"`)
	c.Data(http.StatusOK, "application/pdf", document)
}

type issueCertificateRequest struct {
	DonationID string `json:"donation_id" binding:"required"`
}

// IssueCertificate re-runs issuance for a donation whose certificate
// failed to render during checkout. Issuance is idempotent, so calling
// it for an already certified donation returns the existing one.
func (s *Server) IssueCertificate(c *gin.Context) {
	var req issueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Only one re-issue per donation runs at a time across instances.
	// Redis outages fail open, same as the public rate limits.
	token, acquired, err := s.limiter.AcquireReissueLock(c.Request.Context(), req.DonationID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("certificate re-issue lock failed", zap.Error(err))
	} else if !acquired {
		AbortWithError(c, ErrTooManyRequest)
		return
	} else {
		defer func() {
			if err := s.limiter.ReleaseReissueLock(c.Request.Context(), req.DonationID, token); err != nil {
				logger.FromContext(c.Request.Context()).Warn("certificate re-issue lock release failed", zap.Error(err))
			}
		}()
	}

	donation, err := s.donationSvc.GetByID(c.Request.Context(), req.DonationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	campaignTitle := ""
	if donation.CampaignID != nil {
		campaign, err := s.campaignSvc.GetByID(c.Request.Context(), donation.CampaignID.String())
		if err == nil {
			campaignTitle = campaign.Title
		}
	}

	certificate, err := s.certificateSvc.Issue(c.Request.Context(), certificatedomain.IssueRequest{
		DonationID:    donation.ID,
		RecipientName: donation.DonorName,
		Amount:        donationdomain.FormatAmount(donation.Amount, donation.Currency),
		CampaignTitle: campaignTitle,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"certificate": certificate})
}
