package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type CreateCampaignRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	GoalAmount  int64      `json:"goal_amount" binding:"omitempty,gte=0"`
	Currency    string     `json:"currency"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type UpdateCampaignRequest struct {
	ID          string
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	GoalAmount  *int64     `json:"goal_amount"`
	Status      *string    `json:"status"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type ListCampaignRequest struct {
	pagination.Pagination
	Status string `form:"status"`
}

type ListCampaignResponse struct {
	pagination.PageInfo
	Campaigns []Campaign `json:"campaigns"`
}

type Service interface {
	Create(context.Context, CreateCampaignRequest) (Campaign, error)
	Update(context.Context, UpdateCampaignRequest) (Campaign, error)
	List(context.Context, ListCampaignRequest) (ListCampaignResponse, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	GetBySlug(ctx context.Context, slug string) (Campaign, error)
}

var (
	ErrInvalidTitle     = errors.New("invalid_title")
	ErrInvalidGoal      = errors.New("invalid_goal")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidSchedule  = errors.New("invalid_schedule")
	ErrCampaignNotFound = errors.New("campaign_not_found")
	ErrCampaignClosed   = errors.New("campaign_closed")
)
