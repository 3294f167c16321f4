package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusClosed   = "closed"
	StatusArchived = "archived"
)

// Campaign is a fundraising drive. RaisedAmount and DonationCount are
// aggregate counters maintained in the same transaction as each
// donation row, always by relative increment.
type Campaign struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Title         string       `gorm:"not null" json:"title"`
	Slug          string       `gorm:"not null;uniqueIndex" json:"slug"`
	Description   string       `gorm:"not null;default:''" json:"description"`
	GoalAmount    int64        `gorm:"not null;default:0" json:"goal_amount"`
	RaisedAmount  int64        `gorm:"not null;default:0" json:"raised_amount"`
	DonationCount int64        `gorm:"not null;default:0" json:"donation_count"`
	Currency      string       `gorm:"not null;default:'INR'" json:"currency"`
	Status        string       `gorm:"not null;default:'active'" json:"status"`
	StartsAt      *time.Time   `json:"starts_at,omitempty"`
	EndsAt        *time.Time   `json:"ends_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AcceptsDonations reports whether a donation may be attached to the
// campaign at the given time.
func (c *Campaign) AcceptsDonations(at time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.StartsAt != nil && at.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && at.After(*c.EndsAt) {
		return false
	}
	return true
}
