package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Member struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	FullName     string       `gorm:"not null" json:"full_name"`
	Email        string       `gorm:"not null;default:'';index" json:"email"`
	Phone        string       `gorm:"not null;default:''" json:"phone"`
	Address      string       `gorm:"not null;default:''" json:"address"`
	MembershipNo string       `gorm:"not null;uniqueIndex" json:"membership_no"`
	Status       string       `gorm:"not null;default:'active'" json:"status"`
	JoinedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
