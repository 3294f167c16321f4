package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	"github.com/sahayog-foundation/sahayog/internal/audit/repository"
	"github.com/sahayog-foundation/sahayog/internal/auditcontext"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

func newTestService(t *testing.T) auditdomain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestAuditLogMasksAndStoresMetadata(t *testing.T) {
	svc := newTestService(t)

	ctx := auditcontext.WithMeta(context.Background(), auditcontext.Meta{
		RequestID: "req-1",
		ClientIP:  "203.0.113.9",
		UserAgent: "test-agent",
	})

	err := svc.AuditLog(ctx, "system", "", "donation.recorded", "donation", "42", map[string]any{
		"transaction_reference": "pay_QWERTY123456",
		"campaign_slug":         "flood-relief-2025",
	})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, "donation.recorded", entry.Action)
	assert.Equal(t, "donation", entry.ResourceType)
	assert.Equal(t, "42", entry.ResourceID)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "203.0.113.9", entry.ClientIP)
	assert.Equal(t, "pay_****3456", entry.Metadata["transaction_reference"])
	assert.Equal(t, "flood-relief-2025", entry.Metadata["campaign_slug"])
}

func TestAuditLogRejectsBlankAction(t *testing.T) {
	svc := newTestService(t)

	err := svc.AuditLog(context.Background(), "system", "", "  ", "donation", "", nil)
	require.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListRejectsInvertedTimeRange(t *testing.T) {
	svc := newTestService(t)

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start := end.Add(time.Hour)
	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		StartAt: &start,
		EndAt:   &end,
	})
	require.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}

func TestListRejectsGarbagePageToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)

	req := auditdomain.ListAuditLogRequest{}
	req.PageToken = "not-base64!!"
	_, err = svc.List(context.Background(), req)
	require.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}
