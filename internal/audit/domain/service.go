package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type AuditLog struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	ActorType    string            `gorm:"not null;default:''" json:"actor_type"`
	ActorID      string            `gorm:"not null;default:''" json:"actor_id"`
	Action       string            `gorm:"not null" json:"action"`
	ResourceType string            `gorm:"not null;default:''" json:"resource_type"`
	ResourceID   string            `gorm:"not null;default:''" json:"resource_id"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	RequestID    string            `gorm:"not null;default:''" json:"request_id,omitempty"`
	ClientIP     string            `gorm:"not null;default:''" json:"client_ip,omitempty"`
	UserAgent    string            `gorm:"not null;default:''" json:"user_agent,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type ListAuditLogRequest struct {
	pagination.Pagination
	Action       string
	ResourceType string
	ResourceID   string
	ActorType    string
	StartAt      *time.Time
	EndAt        *time.Time
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type ListFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
	ActorType    string
	StartAt      *time.Time
	EndAt        *time.Time
	Cursor       *pagination.Cursor
	Limit        int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

type Service interface {
	AuditLog(ctx context.Context, actorType string, actorID string, action string, resourceType string, resourceID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
