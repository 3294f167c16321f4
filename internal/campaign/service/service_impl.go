package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("campaign.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Campaign{}, domain.ErrInvalidTitle
	}
	if req.GoalAmount < 0 {
		return domain.Campaign{}, domain.ErrInvalidGoal
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return domain.Campaign{}, domain.ErrInvalidSchedule
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	campaignSlug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return domain.Campaign{}, err
	}

	now := s.clock.Now()
	campaign := domain.Campaign{
		ID:          s.genID.Generate(),
		Title:       title,
		Slug:        campaignSlug,
		Description: strings.TrimSpace(req.Description),
		GoalAmount:  req.GoalAmount,
		Currency:    currency,
		Status:      domain.StatusActive,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &campaign); err != nil {
		return domain.Campaign{}, err
	}
	return campaign, nil
}

// uniqueSlug derives a URL slug from the title, suffixing with the
// generated id when the natural slug is taken.
func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	existing, err := s.repo.FindBySlug(ctx, s.db, base)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, s.genID.Generate().String()), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCampaignRequest) (domain.Campaign, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}

	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Campaign{}, domain.ErrInvalidTitle
		}
		campaign.Title = title
	}
	if req.Description != nil {
		campaign.Description = strings.TrimSpace(*req.Description)
	}
	if req.GoalAmount != nil {
		if *req.GoalAmount < 0 {
			return domain.Campaign{}, domain.ErrInvalidGoal
		}
		campaign.GoalAmount = *req.GoalAmount
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StatusDraft, domain.StatusActive, domain.StatusClosed, domain.StatusArchived:
			campaign.Status = *req.Status
		default:
			return domain.Campaign{}, domain.ErrInvalidStatus
		}
	}
	if req.StartsAt != nil {
		campaign.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		campaign.EndsAt = req.EndsAt
	}
	if campaign.StartsAt != nil && campaign.EndsAt != nil && campaign.EndsAt.Before(*campaign.StartsAt) {
		return domain.Campaign{}, domain.ErrInvalidSchedule
	}
	campaign.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, campaign); err != nil {
		return domain.Campaign{}, err
	}
	return *campaign, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCampaignRequest) (domain.ListCampaignResponse, error) {
	limit := req.Limit()
	campaigns, err := s.repo.List(ctx, s.db, domain.ListCampaignFilter{Status: req.Status}, req.Pagination)
	if err != nil {
		return domain.ListCampaignResponse{}, err
	}

	campaigns, pageInfo := pagination.BuildCursorPageInfo(campaigns, limit, func(c *domain.Campaign) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        c.ID.String(),
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, *campaign)
	}
	return domain.ListCampaignResponse{
		PageInfo:  *pageInfo,
		Campaigns: items,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Campaign, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	campaign, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return *campaign, nil
}

func (s *Service) GetBySlug(ctx context.Context, rawSlug string) (domain.Campaign, error) {
	campaign, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(rawSlug))
	if err != nil {
		return domain.Campaign{}, err
	}
	if campaign == nil {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return *campaign, nil
}
