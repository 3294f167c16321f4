package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Certificate is the donation acknowledgement document. One per
// donation, numbered CRT-<ULID>.
type Certificate struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	DonationID        snowflake.ID `gorm:"not null;uniqueIndex" json:"donation_id"`
	CertificateNumber string       `gorm:"not null;uniqueIndex" json:"certificate_number"`
	RecipientName     string       `gorm:"not null" json:"recipient_name"`
	FilePath          string       `gorm:"not null;default:''" json:"-"`
	IssuedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"issued_at"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type IssueRequest struct {
	DonationID    snowflake.ID
	RecipientName string
	Amount        string
	CampaignTitle string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, certificate *Certificate) error
	FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*Certificate, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Certificate, error)
}

type Service interface {
	// Issue renders and stores the certificate for a donation. It is
	// idempotent: issuing twice for the same donation returns the
	// existing certificate.
	Issue(context.Context, IssueRequest) (Certificate, error)
	GetByNumber(ctx context.Context, number string) (Certificate, error)
	// Document returns the rendered PDF bytes for a certificate.
	Document(ctx context.Context, number string) ([]byte, error)
}

var (
	ErrInvalidRecipient    = errors.New("invalid_recipient")
	ErrCertificateNotFound = errors.New("certificate_not_found")
	ErrDocumentMissing     = errors.New("certificate_document_missing")
)
