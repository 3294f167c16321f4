package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/auth/domain"
	"github.com/sahayog-foundation/sahayog/internal/auth/password"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

const sessionTTL = 12 * time.Hour

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
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		return domain.LoginResponse{}, domain.ErrUserDisabled
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.LoginResponse{}, err
	}

	// Opportunistic cleanup keeps the sessions table from growing
	// without a dedicated reaper.
	if err := s.repo.DeleteExpiredSessions(ctx, s.db); err != nil {
		s.log.Warn("failed to prune expired sessions", zap.Error(err))
	}

	return domain.LoginResponse{
		User:      *user,
		Token:     session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, s.db, token)
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.repo.FindSession(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionExpired
	}
	if s.clock.Now().After(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, s.db, session.ID)
		return nil, domain.ErrSessionExpired
	}

	user, err := s.repo.FindUserByID(ctx, s.db, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrSessionExpired
	}
	if user.Status != domain.StatusActive {
		return nil, domain.ErrUserDisabled
	}
	return user, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         req.Role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertUser(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	user, err := s.repo.FindUserByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Role != nil && (*req.Role == domain.RoleAdmin || *req.Role == domain.RoleStaff) {
		user.Role = *req.Role
	}
	if req.Status != nil && (*req.Status == domain.StatusActive || *req.Status == domain.StatusDisabled) {
		user.Status = *req.Status
	}
	user.UpdatedAt = s.clock.Now()

	if err := s.repo.UpdateUser(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListUsers(ctx, s.db)
}
