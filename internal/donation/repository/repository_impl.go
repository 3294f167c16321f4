package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/option"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO donations (
			id, campaign_id, member_id, donor_name, donor_email, amount, currency,
			method, transaction_reference, gateway_order_id, status, notes,
			received_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		donation.ID,
		donation.CampaignID,
		donation.MemberID,
		donation.DonorName,
		donation.DonorEmail,
		donation.Amount,
		donation.Currency,
		donation.Method,
		donation.TransactionReference,
		donation.GatewayOrderID,
		donation.Status,
		donation.Notes,
		donation.ReceivedAt,
		donation.CreatedAt,
		donation.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).Where("id = ?", id).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repo) FindByTransactionReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Donation, error) {
	var donation domain.Donation
	err := db.WithContext(ctx).Where("transaction_reference = ?", strings.TrimSpace(reference)).First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListDonationFilter, page pagination.Pagination) ([]*domain.Donation, error) {
	var donations []*domain.Donation
	stmt := db.WithContext(ctx).Model(&domain.Donation{})
	if filter.CampaignID != nil {
		stmt = stmt.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Method != "" {
		stmt = stmt.Where("method = ?", filter.Method)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("received_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("received_at <= ?", filter.EndAt.UTC())
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB) (domain.StatsResponse, error) {
	var totals struct {
		TotalAmount int64
		TotalCount  int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS total_count FROM donations`,
	).Scan(&totals).Error
	if err != nil {
		return domain.StatsResponse{}, err
	}

	var byCampaign []domain.CampaignStat
	err = db.WithContext(ctx).Raw(
		`SELECT c.id AS campaign_id, c.title AS title,
		        COALESCE(SUM(d.amount), 0) AS total_amount, COUNT(d.id) AS count
		 FROM campaigns c
		 LEFT JOIN donations d ON d.campaign_id = c.id
		 GROUP BY c.id, c.title
		 ORDER BY total_amount DESC`,
	).Scan(&byCampaign).Error
	if err != nil {
		return domain.StatsResponse{}, err
	}

	var unassigned int64
	err = db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM donations WHERE campaign_id IS NULL`,
	).Scan(&unassigned).Error
	if err != nil {
		return domain.StatsResponse{}, err
	}

	return domain.StatsResponse{
		TotalAmount:   totals.TotalAmount,
		TotalCount:    totals.TotalCount,
		ByCampaign:    byCampaign,
		UnassignedSum: unassigned,
	}, nil
}
