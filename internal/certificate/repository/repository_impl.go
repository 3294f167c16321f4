package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/certificate/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, certificate *domain.Certificate) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO certificates (
			id, donation_id, certificate_number, recipient_name, file_path, issued_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		certificate.ID,
		certificate.DonationID,
		certificate.CertificateNumber,
		certificate.RecipientName,
		certificate.FilePath,
		certificate.IssuedAt,
		certificate.CreatedAt,
	).Error
}

func (r *repo) FindByDonationID(ctx context.Context, db *gorm.DB, donationID snowflake.ID) (*domain.Certificate, error) {
	var certificate domain.Certificate
	err := db.WithContext(ctx).Where("donation_id = ?", donationID).First(&certificate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Certificate, error) {
	var certificate domain.Certificate
	err := db.WithContext(ctx).Where("certificate_number = ?", number).First(&certificate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}
