package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func TestApplyDonationIncrementsCounters(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Campaign{}))

	repo := Provide()
	campaign := domain.Campaign{
		ID:     snowflake.ID(1),
		Title:  "Relief Fund",
		Slug:   "relief-fund",
		Status: domain.StatusActive,
	}
	require.NoError(t, conn.Create(&campaign).Error)

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ApplyDonation(context.Background(), conn, campaign.ID, 5000, now))
	require.NoError(t, repo.ApplyDonation(context.Background(), conn, campaign.ID, 2500, now))

	var updated domain.Campaign
	require.NoError(t, conn.First(&updated, "id = ?", campaign.ID).Error)
	assert.Equal(t, int64(7500), updated.RaisedAmount)
	assert.Equal(t, int64(2), updated.DonationCount)
}

func TestApplyDonationUnknownCampaign(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Campaign{}))

	repo := Provide()
	err = repo.ApplyDonation(context.Background(), conn, snowflake.ID(404), 1000, time.Now())
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}
