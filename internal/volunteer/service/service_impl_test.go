package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
	"github.com/sahayog-foundation/sahayog/internal/volunteer/repository"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

type recordingEmail struct {
	mu        sync.Mutex
	templates []string
	to        []string
}

func (p *recordingEmail) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	return nil
}

func (p *recordingEmail) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates = append(p.templates, templateName)
	p.to = append(p.to, to...)
	return nil
}

func newTestService(t *testing.T) (domain.Service, *recordingEmail) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Volunteer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mail := &recordingEmail{}
	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
		Email: mail,
		PDF:   &pdf.NoOpProvider{},
		CertCfg: config.NewStaticCertificateConfigHolder(
			config.DefaultCertificateConfig(),
		),
	})
	return svc, mail
}

func TestApplyStartsPending(t *testing.T) {
	svc, mail := newTestService(t)

	volunteer, err := svc.Apply(context.Background(), domain.ApplyRequest{
		FullName: "Kiran Patel",
		Email:    "kiran@example.com",
		Skills:   "first aid",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, volunteer.Status)
	assert.Empty(t, mail.templates)
}

func TestApproveSendsWelcome(t *testing.T) {
	svc, mail := newTestService(t)

	volunteer, err := svc.Apply(context.Background(), domain.ApplyRequest{
		FullName: "Kiran Patel",
		Email:    "kiran@example.com",
	})
	require.NoError(t, err)

	status := domain.StatusApproved
	updated, err := svc.Update(context.Background(), domain.UpdateVolunteerRequest{
		ID:     volunteer.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.True(t, strings.HasPrefix(updated.VolunteerNo, "VOL-"))
	assert.Equal(t, []string{"volunteer_welcome"}, mail.templates)
	assert.Equal(t, []string{"kiran@example.com"}, mail.to)

	// The number is kept across later transitions.
	inactive := domain.StatusInactive
	downgraded, err := svc.Update(context.Background(), domain.UpdateVolunteerRequest{
		ID:     volunteer.ID.String(),
		Status: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, updated.VolunteerNo, downgraded.VolunteerNo)
}

func TestIDCardRequiresApproval(t *testing.T) {
	svc, _ := newTestService(t)

	volunteer, err := svc.Apply(context.Background(), domain.ApplyRequest{FullName: "Kiran Patel"})
	require.NoError(t, err)

	_, err = svc.IDCard(context.Background(), volunteer.ID.String())
	require.ErrorIs(t, err, domain.ErrVolunteerNotApproved)
}

func TestApproveTwiceSendsOneWelcome(t *testing.T) {
	svc, mail := newTestService(t)

	volunteer, err := svc.Apply(context.Background(), domain.ApplyRequest{
		FullName: "Kiran Patel",
		Email:    "kiran@example.com",
	})
	require.NoError(t, err)

	status := domain.StatusApproved
	_, err = svc.Update(context.Background(), domain.UpdateVolunteerRequest{
		ID:     volunteer.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)

	// Re-saving an already approved volunteer is not a transition.
	_, err = svc.Update(context.Background(), domain.UpdateVolunteerRequest{
		ID:     volunteer.ID.String(),
		Status: &status,
	})
	require.NoError(t, err)
	assert.Len(t, mail.templates, 1)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	volunteer, err := svc.Apply(context.Background(), domain.ApplyRequest{FullName: "Kiran Patel"})
	require.NoError(t, err)

	status := "standby"
	_, err = svc.Update(context.Background(), domain.UpdateVolunteerRequest{
		ID:     volunteer.ID.String(),
		Status: &status,
	})
	require.ErrorIs(t, err, domain.ErrInvalidStatus)
}
