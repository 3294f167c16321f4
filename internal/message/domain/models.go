package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

// Message is a contact-form submission from the public site.
type Message struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SenderName  string       `gorm:"not null" json:"sender_name"`
	SenderEmail string       `gorm:"not null" json:"sender_email"`
	Subject     string       `gorm:"not null;default:''" json:"subject"`
	Body        string       `gorm:"not null" json:"body"`
	Read        bool         `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type SubmitMessageRequest struct {
	SenderName  string `json:"sender_name" binding:"required"`
	SenderEmail string `json:"sender_email" binding:"required,email"`
	Subject     string `json:"subject"`
	Body        string `json:"body" binding:"required"`
}

type ListMessageRequest struct {
	pagination.Pagination
	UnreadOnly bool `form:"unread_only"`
}

type ListMessageResponse struct {
	pagination.PageInfo
	Messages []Message `json:"messages"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, message *Message) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Message, error)
	List(ctx context.Context, db *gorm.DB, unreadOnly bool, page pagination.Pagination) ([]*Message, error)
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type Service interface {
	Submit(context.Context, SubmitMessageRequest) (Message, error)
	List(context.Context, ListMessageRequest) (ListMessageResponse, error)
	MarkRead(ctx context.Context, id string) (Message, error)
}

var (
	ErrInvalidSender   = errors.New("invalid_sender")
	ErrInvalidBody     = errors.New("invalid_body")
	ErrMessageNotFound = errors.New("message_not_found")
)
