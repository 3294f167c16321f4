package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	"github.com/sahayog-foundation/sahayog/internal/campaign/repository"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Campaign{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})
	return svc, clk
}

func TestCreateCampaignSlug(t *testing.T) {
	svc, _ := newTestService(t)

	campaign, err := svc.Create(context.Background(), domain.CreateCampaignRequest{
		Title:      "Winter Blanket Drive 2025",
		GoalAmount: 500000,
	})
	require.NoError(t, err)
	assert.Equal(t, "winter-blanket-drive-2025", campaign.Slug)
	assert.Equal(t, domain.StatusActive, campaign.Status)
	assert.Equal(t, "INR", campaign.Currency)
}

func TestCreateCampaignSlugCollision(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Create(context.Background(), domain.CreateCampaignRequest{Title: "School Kits"})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), domain.CreateCampaignRequest{Title: "School Kits"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestCreateCampaignInvalidSchedule(t *testing.T) {
	svc, _ := newTestService(t)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.Create(context.Background(), domain.CreateCampaignRequest{
		Title:    "Backwards",
		StartsAt: &start,
		EndsAt:   &end,
	})
	require.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestUpdateCampaignStatus(t *testing.T) {
	svc, _ := newTestService(t)

	campaign, err := svc.Create(context.Background(), domain.CreateCampaignRequest{Title: "Medical Camp"})
	require.NoError(t, err)

	status := domain.StatusClosed
	updated, err := svc.Update(context.Background(), domain.UpdateCampaignRequest{
		ID:     campaign.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, updated.Status)

	bogus := "paused"
	_, err = svc.Update(context.Background(), domain.UpdateCampaignRequest{
		ID:     campaign.ID.String(),
		Status: &bogus,
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestGetBySlug(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateCampaignRequest{Title: "Tree Plantation"})
	require.NoError(t, err)

	found, err := svc.GetBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestAcceptsDonationsWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour * 48)
	after := now.Add(time.Hour * 48)

	campaign := domain.Campaign{Status: domain.StatusActive, StartsAt: &before, EndsAt: &after}
	assert.True(t, campaign.AcceptsDonations(now))

	campaign.Status = domain.StatusClosed
	assert.False(t, campaign.AcceptsDonations(now))

	campaign.Status = domain.StatusActive
	assert.False(t, campaign.AcceptsDonations(before.Add(-time.Minute)))
	assert.False(t, campaign.AcceptsDonations(after.Add(time.Minute)))
}
