package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/notice/domain"
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
		log:   p.Log.Named("notice.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateNoticeRequest) (domain.Notice, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Notice{}, domain.ErrInvalidTitle
	}

	now := s.clock.Now()
	notice := domain.Notice{
		ID:        s.genID.Generate(),
		Title:     title,
		Body:      strings.TrimSpace(req.Body),
		Published: req.Publish,
		AuthorID:  req.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Publish {
		notice.PublishedAt = &now
	}

	if err := s.repo.Insert(ctx, s.db, &notice); err != nil {
		return domain.Notice{}, err
	}
	return notice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateNoticeRequest) (domain.Notice, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.Notice{}, domain.ErrNoticeNotFound
	}

	notice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Notice{}, err
	}
	if notice == nil {
		return domain.Notice{}, domain.ErrNoticeNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Notice{}, domain.ErrInvalidTitle
		}
		notice.Title = title
	}
	if req.Body != nil {
		notice.Body = strings.TrimSpace(*req.Body)
	}
	now := s.clock.Now()
	if req.Publish != nil && *req.Publish != notice.Published {
		notice.Published = *req.Publish
		if *req.Publish {
			notice.PublishedAt = &now
		} else {
			notice.PublishedAt = nil
		}
	}
	notice.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, notice); err != nil {
		return domain.Notice{}, err
	}
	return *notice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListNoticeRequest) (domain.ListNoticeResponse, error) {
	limit := req.Limit()
	notices, err := s.repo.List(ctx, s.db, req.PublishedOnly, req.Pagination)
	if err != nil {
		return domain.ListNoticeResponse{}, err
	}

	notices, pageInfo := pagination.BuildCursorPageInfo(notices, limit, func(n *domain.Notice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        n.ID.String(),
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Notice, 0, len(notices))
	for _, notice := range notices {
		items = append(items, *notice)
	}
	return domain.ListNoticeResponse{
		PageInfo: *pageInfo,
		Notices:  items,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Notice, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Notice{}, domain.ErrNoticeNotFound
	}
	notice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Notice{}, err
	}
	if notice == nil {
		return domain.Notice{}, domain.ErrNoticeNotFound
	}
	return *notice, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.ErrNoticeNotFound
	}
	notice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if notice == nil {
		return domain.ErrNoticeNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}
