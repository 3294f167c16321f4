package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusInactive = "inactive"
)

type Volunteer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FullName     string       `gorm:"not null" json:"full_name"`
	Email        string       `gorm:"not null;default:''" json:"email"`
	Phone        string       `gorm:"not null;default:''" json:"phone"`
	Skills       string       `gorm:"not null;default:''" json:"skills"`
	Availability string       `gorm:"not null;default:''" json:"availability"`
	// VolunteerNo is assigned on first approval and never reissued.
	VolunteerNo string    `gorm:"not null;default:''" json:"volunteer_no,omitempty"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type ApplyRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Skills       string `json:"skills"`
	Availability string `json:"availability"`
}

type UpdateVolunteerRequest struct {
	ID           string
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	Skills       *string `json:"skills"`
	Availability *string `json:"availability"`
	Status       *string `json:"status"`
}

type ListVolunteerRequest struct {
	pagination.Pagination
	Status string `form:"status"`
}

type ListVolunteerResponse struct {
	pagination.PageInfo
	Volunteers []Volunteer `json:"volunteers"`
}

type ListVolunteerFilter struct {
	Status string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, volunteer *Volunteer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Volunteer, error)
	List(ctx context.Context, db *gorm.DB, filter ListVolunteerFilter, page pagination.Pagination) ([]*Volunteer, error)
	Update(ctx context.Context, db *gorm.DB, volunteer *Volunteer) error
}

type Service interface {
	Apply(context.Context, ApplyRequest) (Volunteer, error)
	Update(context.Context, UpdateVolunteerRequest) (Volunteer, error)
	List(context.Context, ListVolunteerRequest) (ListVolunteerResponse, error)
	GetByID(ctx context.Context, id string) (Volunteer, error)
	// IDCard renders the card PDF for an approved volunteer.
	IDCard(ctx context.Context, id string) ([]byte, error)
}

var (
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrVolunteerNotFound    = errors.New("volunteer_not_found")
	ErrVolunteerNotApproved = errors.New("volunteer_not_approved")
	ErrIDCardUnavailable    = errors.New("id_card_unavailable")
)
