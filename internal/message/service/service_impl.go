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
	"github.com/sahayog-foundation/sahayog/internal/message/domain"
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
		log:   p.Log.Named("message.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitMessageRequest) (domain.Message, error) {
	senderName := strings.TrimSpace(req.SenderName)
	senderEmail := strings.ToLower(strings.TrimSpace(req.SenderEmail))
	if senderName == "" || senderEmail == "" {
		return domain.Message{}, domain.ErrInvalidSender
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return domain.Message{}, domain.ErrInvalidBody
	}

	message := domain.Message{
		ID:          s.genID.Generate(),
		SenderName:  senderName,
		SenderEmail: senderEmail,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        body,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &message); err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMessageRequest) (domain.ListMessageResponse, error) {
	limit := req.Limit()
	messages, err := s.repo.List(ctx, s.db, req.UnreadOnly, req.Pagination)
	if err != nil {
		return domain.ListMessageResponse{}, err
	}

	messages, pageInfo := pagination.BuildCursorPageInfo(messages, limit, func(m *domain.Message) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        m.ID.String(),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		return token
	})

	items := make([]domain.Message, 0, len(messages))
	for _, message := range messages {
		items = append(items, *message)
	}
	return domain.ListMessageResponse{
		PageInfo: *pageInfo,
		Messages: items,
	}, nil
}

func (s *Service) MarkRead(ctx context.Context, rawID string) (domain.Message, error) {
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	message, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Message{}, err
	}
	if message == nil {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	if !message.Read {
		if err := s.repo.MarkRead(ctx, s.db, id); err != nil {
			return domain.Message{}, err
		}
		message.Read = true
	}
	return *message, nil
}
