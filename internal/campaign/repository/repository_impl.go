package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/option"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (
			id, title, slug, description, goal_amount, raised_amount, donation_count,
			currency, status, starts_at, ends_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Title,
		campaign.Slug,
		campaign.Description,
		campaign.GoalAmount,
		campaign.RaisedAmount,
		campaign.DonationCount,
		campaign.Currency,
		campaign.Status,
		campaign.StartsAt,
		campaign.EndsAt,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCampaignFilter, page pagination.Pagination) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	stmt := db.WithContext(ctx).Model(&domain.Campaign{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`UPDATE campaigns SET
			title = ?, description = ?, goal_amount = ?, status = ?,
			starts_at = ?, ends_at = ?, updated_at = ?
		 WHERE id = ?`,
		campaign.Title,
		campaign.Description,
		campaign.GoalAmount,
		campaign.Status,
		campaign.StartsAt,
		campaign.EndsAt,
		campaign.UpdatedAt,
		campaign.ID,
	).Error
}

func (r *repo) ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, at time.Time) error {
	result := db.WithContext(ctx).Exec(
		`UPDATE campaigns SET
			raised_amount = raised_amount + ?,
			donation_count = donation_count + 1,
			updated_at = ?
		 WHERE id = ?`,
		amount,
		at,
		id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrCampaignNotFound
	}
	return nil
}
