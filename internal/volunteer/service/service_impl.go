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

	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

const volunteerPrefix = "VOL-"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Email   email.Provider
	PDF     pdf.Provider
	CertCfg *config.CertificateConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	email   email.Provider
	pdf     pdf.Provider
	certCfg *config.CertificateConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("volunteer.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		email:   p.Email,
		pdf:     p.PDF,
		certCfg: p.CertCfg,
	}
}

func (s *Service) Apply(ctx context.Context, req domain.ApplyRequest) (domain.Volunteer, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return domain.Volunteer{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	volunteer := domain.Volunteer{
		ID:           s.genID.Generate(),
		FullName:     fullName,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Skills:       strings.TrimSpace(req.Skills),
		Availability: strings.TrimSpace(req.Availability),
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &volunteer); err != nil {
		return domain.Volunteer{}, err
	}
	return volunteer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateVolunteerRequest) (domain.Volunteer, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.Volunteer{}, domain.ErrVolunteerNotFound
	}

	volunteer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Volunteer{}, err
	}
	if volunteer == nil {
		return domain.Volunteer{}, domain.ErrVolunteerNotFound
	}

	previousStatus := volunteer.Status

	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return domain.Volunteer{}, domain.ErrInvalidName
		}
		volunteer.FullName = fullName
	}
	if req.Phone != nil {
		volunteer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Skills != nil {
		volunteer.Skills = strings.TrimSpace(*req.Skills)
	}
	if req.Availability != nil {
		volunteer.Availability = strings.TrimSpace(*req.Availability)
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusInactive:
			volunteer.Status = *req.Status
		default:
			return domain.Volunteer{}, domain.ErrInvalidStatus
		}
	}
	if volunteer.Status == domain.StatusApproved && volunteer.VolunteerNo == "" {
		volunteer.VolunteerNo = volunteerPrefix + ulid.Make().String()
	}
	volunteer.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, volunteer); err != nil {
		return domain.Volunteer{}, err
	}

	if previousStatus != domain.StatusApproved && volunteer.Status == domain.StatusApproved {
		s.sendWelcome(ctx, volunteer)
	}
	return *volunteer, nil
}

// sendWelcome is best effort. A mail failure never fails the update.
func (s *Service) sendWelcome(ctx context.Context, volunteer *domain.Volunteer) {
	if volunteer.Email == "" {
		return
	}
	data := map[string]interface{}{
		"full_name":         volunteer.FullName,
		"organization_name": s.certCfg.Get().OrganizationName,
	}
	if err := s.email.SendTemplate(ctx, []string{volunteer.Email}, "volunteer_welcome", data); err != nil {
		logger.FromContext(ctx).Warn("failed to send volunteer welcome mail",
			zap.String("volunteer_id", volunteer.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, req domain.ListVolunteerRequest) (domain.ListVolunteerResponse, error) {
	limit := req.Limit()
	volunteers, err := s.repo.List(ctx, s.db, domain.ListVolunteerFilter{Status: req.Status}, req.Pagination)
	if err != nil {
		return domain.ListVolunteerResponse{}, err
	}

	volunteers, pageInfo := pagination.BuildCursorPageInfo(volunteers, limit, func(v *domain.Volunteer) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        v.ID.String(),
			CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Volunteer, 0, len(volunteers))
	for _, volunteer := range volunteers {
		items = append(items, *volunteer)
	}
	return domain.ListVolunteerResponse{
		PageInfo:   *pageInfo,
		Volunteers: items,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Volunteer, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Volunteer{}, domain.ErrVolunteerNotFound
	}
	volunteer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Volunteer{}, err
	}
	if volunteer == nil {
		return domain.Volunteer{}, domain.ErrVolunteerNotFound
	}
	return *volunteer, nil
}

func (s *Service) IDCard(ctx context.Context, rawID string) ([]byte, error) {
	volunteer, err := s.GetByID(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if volunteer.Status != domain.StatusApproved || volunteer.VolunteerNo == "" {
		return nil, domain.ErrVolunteerNotApproved
	}

	certCfg := s.certCfg.Get()
	verifyURL := ""
	if certCfg.VerifyBaseURL != "" {
		verifyURL = strings.TrimRight(certCfg.VerifyBaseURL, "/") + "/volunteers/" + volunteer.VolunteerNo
	}

	reader, err := s.pdf.GenerateIDCard(ctx, pdf.IDCardData{
		OrganizationName: certCfg.OrganizationName,
		FullName:         volunteer.FullName,
		MembershipNo:     volunteer.VolunteerNo,
		MemberSince:      volunteer.CreatedAt.Format("02 Jan 2006"),
		Phone:            volunteer.Phone,
		Email:            volunteer.Email,
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
