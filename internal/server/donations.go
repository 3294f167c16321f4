package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

func (s *Server) CreateDonationOrder(c *gin.Context) {
	var req donationdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.donationSvc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// VerifyDonation is the checkout callback. The donation is only
// recorded when the gateway signature over order id and payment id
// checks out.
func (s *Server) VerifyDonation(c *gin.Context) {
	var req donationdomain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.VerifyAndRecord(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

func (s *Server) RecordManualDonation(c *gin.Context) {
	var req donationdomain.RecordManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	donation, err := s.donationSvc.RecordManual(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"donation": donation})
}

type listDonationsQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	CampaignID string `form:"campaign_id"`
	Method     string `form:"method"`
	StartAt    string `form:"start_at"`
	EndAt      string `form:"end_at"`
}

func (s *Server) ListDonations(c *gin.Context) {
	var query listDonationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startAt, err := parseDateParam(query.StartAt)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseDateParam(query.EndAt)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	resp, err := s.donationSvc.List(c.Request.Context(), donationdomain.ListDonationRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		CampaignID: strings.TrimSpace(query.CampaignID),
		Method:     strings.TrimSpace(query.Method),
		StartAt:    startAt,
		EndAt:      endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetDonationByID(c *gin.Context) {
	donation, err := s.donationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"donation": donation})
}

func (s *Server) DonationStats(c *gin.Context) {
	stats, err := s.donationSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, err
		}
	}
	return &parsed, nil
}
