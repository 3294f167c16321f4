package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type ListCampaignFilter struct {
	Status string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, filter ListCampaignFilter, page pagination.Pagination) ([]*Campaign, error)
	Update(ctx context.Context, db *gorm.DB, campaign *Campaign) error

	// ApplyDonation adds amount to the aggregate counters by relative
	// increment so concurrent donations never lose updates. It must be
	// called inside the transaction that inserts the donation row.
	ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, at time.Time) error
}
