package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type Notice struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"not null" json:"title"`
	Body        string        `gorm:"not null;default:''" json:"body"`
	Published   bool          `gorm:"not null;default:false" json:"published"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	AuthorID    *snowflake.ID `json:"author_id,omitempty"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type CreateNoticeRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	Publish  bool   `json:"publish"`
	AuthorID *snowflake.ID
}

type UpdateNoticeRequest struct {
	ID      string
	Title   *string `json:"title"`
	Body    *string `json:"body"`
	Publish *bool   `json:"publish"`
}

type ListNoticeRequest struct {
	pagination.Pagination
	// PublishedOnly limits to published notices for the public feed.
	PublishedOnly bool
}

type ListNoticeResponse struct {
	pagination.PageInfo
	Notices []Notice `json:"notices"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, notice *Notice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Notice, error)
	List(ctx context.Context, db *gorm.DB, publishedOnly bool, page pagination.Pagination) ([]*Notice, error)
	Update(ctx context.Context, db *gorm.DB, notice *Notice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type Service interface {
	Create(context.Context, CreateNoticeRequest) (Notice, error)
	Update(context.Context, UpdateNoticeRequest) (Notice, error)
	List(context.Context, ListNoticeRequest) (ListNoticeResponse, error)
	GetByID(ctx context.Context, id string) (Notice, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrNoticeNotFound = errors.New("notice_not_found")
)
