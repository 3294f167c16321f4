package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	"github.com/sahayog-foundation/sahayog/internal/member/domain"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/pkg/db"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

const (
	membershipPrefix = "MEM-"

	defaultMembershipFee = 50000
	membershipCurrency   = "INR"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Cfg          config.Config
	Repo         domain.Repository
	Donations    donationdomain.Repository
	Gateway      donationdomain.Gateway
	Certificates certdomain.Service
	Email        email.Provider
	PDF          pdf.Provider
	CertCfg      *config.CertificateConfigHolder
	AuditSvc     auditdomain.Service `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	cfg          config.Config
	repo         domain.Repository
	donations    donationdomain.Repository
	gateway      donationdomain.Gateway
	certificates certdomain.Service
	email        email.Provider
	pdf          pdf.Provider
	certCfg      *config.CertificateConfigHolder
	auditSvc     auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("member.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		cfg:          p.Cfg,
		repo:         p.Repo,
		donations:    p.Donations,
		gateway:      p.Gateway,
		certificates: p.Certificates,
		email:        p.Email,
		pdf:          p.PDF,
		certCfg:      p.CertCfg,
		auditSvc:     p.AuditSvc,
	}
}

func (s *Service) membershipFee() int64 {
	if s.cfg.MembershipFee > 0 {
		return s.cfg.MembershipFee
	}
	return defaultMembershipFee
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.RegisterResponse{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	member := domain.Member{
		ID:           s.genID.Generate(),
		FullName:     fullName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		MembershipNo: membershipPrefix + ulid.Make().String(),
		Status:       domain.StatusPending,
		JoinedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return domain.RegisterResponse{}, err
	}

	fee := s.membershipFee()
	order, err := s.gateway.CreateOrder(ctx, fee, membershipCurrency, member.MembershipNo)
	if err != nil {
		// The pending row stays; the applicant can retry verification
		// after a fresh registration.
		return domain.RegisterResponse{}, err
	}

	return domain.RegisterResponse{
		Member:   member,
		OrderID:  order.ID,
		Amount:   fee,
		Currency: membershipCurrency,
		KeyID:    s.cfg.GatewayKeyID,
	}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, req domain.VerifyPaymentRequest) (domain.Member, error) {
	id, err := snowflake.ParseString(req.MemberID)
	if err != nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	if member.Status == domain.StatusActive {
		return domain.Member{}, domain.ErrMemberAlreadyActive
	}
	if strings.TrimSpace(s.cfg.GatewaySecret) == "" {
		return domain.Member{}, razorpay.ErrConfigMissing
	}

	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.log.Warn("membership payment signature mismatch",
			zap.String("member_id", member.ID.String()),
			zap.String("gateway_order_id", req.OrderID),
		)
		return domain.Member{}, donationdomain.ErrInvalidSignature
	}

	// The signature covers only the order and payment ids, so the
	// booked amount is the configured fee, never client input.
	now := s.clock.Now()
	record := donationdomain.Donation{
		ID:                   s.genID.Generate(),
		MemberID:             &member.ID,
		DonorName:            member.FullName,
		DonorEmail:           member.Email,
		Amount:               s.membershipFee(),
		Currency:             membershipCurrency,
		Method:               donationdomain.MethodGateway,
		TransactionReference: strings.TrimSpace(req.PaymentID),
		GatewayOrderID:       strings.TrimSpace(req.OrderID),
		Status:               donationdomain.StatusVerified,
		Notes:                "membership fee " + member.MembershipNo,
		ReceivedAt:           now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.donations.Insert(ctx, tx, &record); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return donationdomain.ErrDuplicateTransaction
			}
			return err
		}
		member.Status = domain.StatusActive
		member.JoinedAt = now
		member.UpdatedAt = now
		return s.repo.Update(ctx, tx, member)
	})
	if err != nil {
		return domain.Member{}, err
	}

	s.afterActivation(ctx, member, &record)
	return *member, nil
}

// afterActivation runs the best-effort side effects. The membership is
// already committed; failures here are logged and dropped.
func (s *Service) afterActivation(ctx context.Context, member *domain.Member, record *donationdomain.Donation) {
	if s.certificates != nil {
		_, err := s.certificates.Issue(ctx, certdomain.IssueRequest{
			DonationID:    record.ID,
			RecipientName: member.FullName,
			Amount:        donationdomain.FormatAmount(record.Amount, record.Currency),
			CampaignTitle: "Membership",
		})
		if err != nil {
			logger.FromContext(ctx).Warn("membership certificate issue failed",
				zap.String("member_id", member.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.email != nil && member.Email != "" {
		data := map[string]any{
			"full_name":     member.FullName,
			"membership_no": member.MembershipNo,
			"joined_at":     member.JoinedAt.Format("02 Jan 2006"),
		}
		if err := s.email.SendTemplate(ctx, []string{member.Email}, "member_welcome", data); err != nil {
			logger.FromContext(ctx).Warn("membership welcome mail failed",
				zap.String("member_id", member.ID.String()),
				zap.Error(err),
			)
		}
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.AuditLog(ctx, "system", "", "member.activated", "member", member.ID.String(), map[string]any{
			"membership_no":         member.MembershipNo,
			"transaction_reference": record.TransactionReference,
		})
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMemberRequest) (domain.Member, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Member{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	joinedAt := now
	if req.JoinedAt != nil {
		joinedAt = req.JoinedAt.UTC()
	}

	member := domain.Member{
		ID:           s.genID.Generate(),
		FullName:     fullName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		MembershipNo: membershipPrefix + ulid.Make().String(),
		Status:       domain.StatusActive,
		JoinedAt:     joinedAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &member); err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateMemberRequest) (domain.Member, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}

	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}

	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return domain.Member{}, domain.ErrInvalidName
		}
		member.FullName = fullName
	}
	if req.Email != nil {
		member.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		member.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		member.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusActive, domain.StatusInactive:
			member.Status = *req.Status
		default:
			return domain.Member{}, domain.ErrInvalidStatus
		}
	}
	member.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, member); err != nil {
		return domain.Member{}, err
	}
	return *member, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMemberRequest) (domain.ListMemberResponse, error) {
	limit := req.Limit()
	members, err := s.repo.List(ctx, s.db, domain.ListMemberFilter{
		Status: req.Status,
		Email:  req.Email,
	}, req.Pagination)
	if err != nil {
		return domain.ListMemberResponse{}, err
	}

	members, pageInfo := pagination.BuildCursorPageInfo(members, limit, func(m *domain.Member) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        m.ID.String(),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Member, 0, len(members))
	for _, member := range members {
		items = append(items, *member)
	}
	return domain.ListMemberResponse{
		PageInfo: *pageInfo,
		Members:  items,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Member, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	member, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Member{}, err
	}
	if member == nil {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return *member, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return s.repo.FindByEmail(ctx, s.db, email)
}

func (s *Service) IDCard(ctx context.Context, rawID string) ([]byte, error) {
	member, err := s.GetByID(ctx, rawID)
	if err != nil {
		return nil, err
	}

	certCfg := s.certCfg.Get()
	verifyURL := ""
	if certCfg.VerifyBaseURL != "" {
		verifyURL = strings.TrimRight(certCfg.VerifyBaseURL, "/") + "/members/" + member.MembershipNo
	}

	reader, err := s.pdf.GenerateIDCard(ctx, pdf.IDCardData{
		OrganizationName: certCfg.OrganizationName,
		FullName:         member.FullName,
		MembershipNo:     member.MembershipNo,
		MemberSince:      member.JoinedAt.Format("02 Jan 2006"),
		Phone:            member.Phone,
		Email:            member.Email,
		VerifyURL:        verifyURL,
	})
	if err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, domain.ErrIDCardUnavailable
	}
	return io.ReadAll(reader)
}
