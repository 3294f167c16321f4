package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	campaigndomain "github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	memberdomain "github.com/sahayog-foundation/sahayog/internal/member/domain"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/observability/metrics"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/pkg/db"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Cfg          config.Config
	CertCfg      *config.CertificateConfigHolder
	Repo         domain.Repository
	CampaignRepo campaigndomain.Repository
	MemberRepo   memberdomain.Repository
	Gateway      domain.Gateway
	Certificates certdomain.Service
	Email        email.Provider
	AuditSvc     auditdomain.Service `optional:"true"`
	Metrics      *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.Config
	certCfg      *config.CertificateConfigHolder
	repo         domain.Repository
	campaignRepo campaigndomain.Repository
	memberRepo   memberdomain.Repository
	gateway      domain.Gateway
	certificates certdomain.Service
	email        email.Provider
	auditSvc     auditdomain.Service
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("donation.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		certCfg:      p.CertCfg,
		repo:         p.Repo,
		campaignRepo: p.CampaignRepo,
		memberRepo:   p.MemberRepo,
		gateway:      p.Gateway,
		certificates: p.Certificates,
		email:        p.Email,
		auditSvc:     p.AuditSvc,
		metrics:      p.Metrics,
	}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.CreateOrderResponse, error) {
	if req.Amount <= 0 {
		return domain.CreateOrderResponse{}, domain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	if _, err := s.resolveCampaign(ctx, s.db, req.CampaignID); err != nil {
		return domain.CreateOrderResponse{}, err
	}

	receipt := "don-" + s.genID.Generate().String()
	order, err := s.gateway.CreateOrder(ctx, req.Amount, currency, receipt)
	if err != nil {
		return domain.CreateOrderResponse{}, err
	}

	return domain.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.cfg.GatewayKeyID,
	}, nil
}

func (s *Service) VerifyAndRecord(ctx context.Context, req domain.VerifyRequest) (domain.Donation, error) {
	if req.Amount <= 0 {
		return domain.Donation{}, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(s.cfg.GatewaySecret) == "" {
		return domain.Donation{}, razorpay.ErrConfigMissing
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.count(ctx, func(m *metrics.Metrics) { metrics.Add(ctx, m.DonationsRejected) })
		s.audit(ctx, "donation.rejected", "", map[string]any{
			"gateway_order_id": req.OrderID,
			"payment_id":       req.PaymentID,
		})
		return domain.Donation{}, domain.ErrInvalidSignature
	}

	donation := domain.Donation{
		ID:                   s.genID.Generate(),
		Amount:               req.Amount,
		Currency:             normalizeCurrency(req.Currency),
		Method:               domain.MethodGateway,
		TransactionReference: strings.TrimSpace(req.PaymentID),
		GatewayOrderID:       strings.TrimSpace(req.OrderID),
		Status:               domain.StatusVerified,
		ReceivedAt:           s.clock.Now(),
	}

	if err := s.record(ctx, &donation, req.CampaignID, req.DonorName, req.DonorEmail); err != nil {
		return domain.Donation{}, err
	}

	s.count(ctx, func(m *metrics.Metrics) { metrics.Add(ctx, m.DonationsVerified) })
	s.afterRecord(ctx, &donation)
	return donation, nil
}

func (s *Service) RecordManual(ctx context.Context, req domain.RecordManualRequest) (domain.Donation, error) {
	if req.Amount <= 0 {
		return domain.Donation{}, domain.ErrInvalidAmount
	}
	switch req.Method {
	case domain.MethodCash, domain.MethodCheque, domain.MethodBankTransfer:
	default:
		return domain.Donation{}, domain.ErrInvalidMethod
	}

	reference := strings.TrimSpace(req.TransactionReference)
	if reference == "" {
		reference = "manual-" + uuid.NewString()
	}

	receivedAt := s.clock.Now()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	donation := domain.Donation{
		ID:                   s.genID.Generate(),
		Amount:               req.Amount,
		Currency:             normalizeCurrency(req.Currency),
		Method:               req.Method,
		TransactionReference: reference,
		Status:               domain.StatusVerified,
		Notes:                strings.TrimSpace(req.Notes),
		ReceivedAt:           receivedAt,
	}

	if err := s.record(ctx, &donation, req.CampaignID, req.DonorName, req.DonorEmail); err != nil {
		return domain.Donation{}, err
	}

	s.afterRecord(ctx, &donation)
	return donation, nil
}

// record resolves attribution and writes the donation row plus the
// campaign counters in a single transaction.
func (s *Service) record(ctx context.Context, donation *domain.Donation, campaignID, donorName, donorEmail string) error {
	campaign, err := s.resolveCampaign(ctx, s.db, campaignID)
	if err != nil {
		return err
	}
	if campaign != nil {
		donation.CampaignID = &campaign.ID
	}

	s.attributeDonor(ctx, donation, donorName, donorEmail)

	now := s.clock.Now()
	donation.CreatedAt = now
	donation.UpdatedAt = now

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, donation); err != nil {
			if db.IsDuplicateKeyErr(err) {
				s.count(ctx, func(m *metrics.Metrics) { metrics.Add(ctx, m.DonationsDuplicate) })
				return domain.ErrDuplicateTransaction
			}
			return err
		}
		if donation.CampaignID != nil {
			// Relative increment: concurrent donations to the same
			// campaign serialize on the row without read-modify-write.
			if err := s.campaignRepo.ApplyDonation(ctx, tx, *donation.CampaignID, donation.Amount, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) resolveCampaign(ctx context.Context, tx *gorm.DB, rawID string) (*campaigndomain.Campaign, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, campaigndomain.ErrCampaignNotFound
	}
	campaign, err := s.campaignRepo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, campaigndomain.ErrCampaignNotFound
	}
	if !campaign.AcceptsDonations(s.clock.Now()) {
		return nil, campaigndomain.ErrCampaignClosed
	}
	return campaign, nil
}

// attributeDonor links the donation to a member by email when one
// exists. An unknown payer degrades to an anonymous donation rather
// than failing the payment.
func (s *Service) attributeDonor(ctx context.Context, donation *domain.Donation, donorName, donorEmail string) {
	donorName = strings.TrimSpace(donorName)
	donorEmail = strings.ToLower(strings.TrimSpace(donorEmail))
	donation.DonorEmail = donorEmail

	if donorEmail != "" {
		member, err := s.memberRepo.FindByEmail(ctx, s.db, donorEmail)
		if err != nil {
			logger.FromContext(ctx).Warn("member lookup failed, recording donor as given",
				zap.Error(err),
			)
		} else if member != nil {
			donation.MemberID = &member.ID
			if donorName == "" {
				donorName = member.FullName
			}
		}
	}

	if donorName == "" {
		donorName = domain.AnonymousDonor
	}
	donation.DonorName = donorName
}

// afterRecord runs the best-effort follow-ups. None of them can undo
// the recorded donation.
func (s *Service) afterRecord(ctx context.Context, donation *domain.Donation) {
	s.audit(ctx, "donation.recorded", donation.ID.String(), map[string]any{
		"transaction_reference": donation.TransactionReference,
		"method":                donation.Method,
		"amount":                fmt.Sprintf("%d", donation.Amount),
	})

	campaignTitle := ""
	if donation.CampaignID != nil {
		if campaign, err := s.campaignRepo.FindByID(ctx, s.db, *donation.CampaignID); err == nil && campaign != nil {
			campaignTitle = campaign.Title
		}
	}

	certificateNumber := ""
	certificate, err := s.certificates.Issue(ctx, certdomain.IssueRequest{
		DonationID:    donation.ID,
		RecipientName: donation.DonorName,
		Amount:        domain.FormatAmount(donation.Amount, donation.Currency),
		CampaignTitle: campaignTitle,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("certificate issuance failed",
			zap.String("donation_id", donation.ID.String()),
			zap.Error(err),
		)
	} else {
		certificateNumber = certificate.CertificateNumber
	}

	s.sendReceipt(ctx, donation, campaignTitle, certificateNumber)
}

func (s *Service) sendReceipt(ctx context.Context, donation *domain.Donation, campaignTitle, certificateNumber string) {
	if donation.DonorEmail == "" {
		return
	}
	data := map[string]interface{}{
		"donor_name":            donation.DonorName,
		"amount":                domain.FormatAmount(donation.Amount, donation.Currency),
		"campaign_title":        campaignTitle,
		"transaction_reference": donation.TransactionReference,
		"certificate_number":    certificateNumber,
		"organization_name":     s.certCfg.Get().OrganizationName,
	}
	if err := s.email.SendTemplate(ctx, []string{donation.DonorEmail}, "donation_receipt", data); err != nil {
		s.count(ctx, func(m *metrics.Metrics) { metrics.Add(ctx, m.NotificationsFailure) })
		logger.FromContext(ctx).Warn("failed to send donation receipt",
			zap.String("donation_id", donation.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListDonationRequest) (domain.ListDonationResponse, error) {
	filter := domain.ListDonationFilter{
		Method:  req.Method,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}
	if raw := strings.TrimSpace(req.CampaignID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListDonationResponse{}, campaigndomain.ErrCampaignNotFound
		}
		filter.CampaignID = &id
	}

	limit := req.Limit()
	donations, err := s.repo.List(ctx, s.db, filter, req.Pagination)
	if err != nil {
		return domain.ListDonationResponse{}, err
	}

	donations, pageInfo := pagination.BuildCursorPageInfo(donations, limit, func(d *domain.Donation) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        d.ID.String(),
			CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Donation, 0, len(donations))
	for _, donation := range donations {
		items = append(items, *donation)
	}
	return domain.ListDonationResponse{
		PageInfo:  *pageInfo,
		Donations: items,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Donation, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Donation{}, domain.ErrDonationNotFound
	}
	donation, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Donation{}, err
	}
	if donation == nil {
		return domain.Donation{}, domain.ErrDonationNotFound
	}
	return *donation, nil
}

func (s *Service) Stats(ctx context.Context) (domain.StatsResponse, error) {
	return s.repo.Stats(ctx, s.db)
}

func (s *Service) count(ctx context.Context, fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (s *Service) audit(ctx context.Context, action, resourceID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "system", "", action, "donation", resourceID, metadata)
}

func normalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "INR"
	}
	return currency
}
