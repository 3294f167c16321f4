package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectDonation    = "donation"
	ObjectCampaign    = "campaign"
	ObjectMember      = "member"
	ObjectVolunteer   = "volunteer"
	ObjectCertificate = "certificate"
	ObjectNotice      = "notice"
	ObjectMessage     = "message"
	ObjectAuditLog    = "audit_log"
	ObjectUser        = "user"
)

const (
	ActionDonationRecord = "donation.record"
	ActionDonationView   = "donation.view"

	ActionCampaignManage = "campaign.manage"
	ActionCampaignView   = "campaign.view"

	ActionMemberManage = "member.manage"
	ActionMemberView   = "member.view"

	ActionVolunteerManage = "volunteer.manage"
	ActionVolunteerView   = "volunteer.view"

	ActionCertificateIssue = "certificate.issue"
	ActionCertificateView  = "certificate.view"

	ActionNoticeManage = "notice.manage"

	ActionMessageView = "message.view"

	ActionAuditLogView = "audit_log.view"

	ActionUserManage = "user.manage"
)

var (
	ErrInvalidActor = errors.New("invalid_actor")
	ErrForbidden    = errors.New("forbidden")
)

// Service answers capability checks for authenticated staff.
type Service interface {
	Authorize(ctx context.Context, actorID string, role string, object string, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actorID string, role string, object string, action string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrInvalidActor
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ErrForbidden
	}

	subject := fmt.Sprintf("user:%s", actorID)
	roleName := fmt.Sprintf("role:%s", role)
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorID, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps the casbin grouping table in sync with the
// role stored on the user row. The user table is the source of truth.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.AuditLog(ctx, "user", actorID, "authorization.denied", "authorization", "capability", map[string]any{
		"object": object,
		"action": action,
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Staff permissions cover day-to-day operations.
		{"role:staff", ObjectDonation, ActionDonationRecord},
		{"role:staff", ObjectDonation, ActionDonationView},
		{"role:staff", ObjectCampaign, ActionCampaignManage},
		{"role:staff", ObjectCampaign, ActionCampaignView},
		{"role:staff", ObjectMember, ActionMemberManage},
		{"role:staff", ObjectMember, ActionMemberView},
		{"role:staff", ObjectVolunteer, ActionVolunteerManage},
		{"role:staff", ObjectVolunteer, ActionVolunteerView},
		{"role:staff", ObjectCertificate, ActionCertificateIssue},
		{"role:staff", ObjectCertificate, ActionCertificateView},
		{"role:staff", ObjectNotice, ActionNoticeManage},
		{"role:staff", ObjectMessage, ActionMessageView},

		// Admin additionally manages accounts and reads the audit trail.
		{"role:admin", ObjectDonation, ActionDonationRecord},
		{"role:admin", ObjectDonation, ActionDonationView},
		{"role:admin", ObjectCampaign, ActionCampaignManage},
		{"role:admin", ObjectCampaign, ActionCampaignView},
		{"role:admin", ObjectMember, ActionMemberManage},
		{"role:admin", ObjectMember, ActionMemberView},
		{"role:admin", ObjectVolunteer, ActionVolunteerManage},
		{"role:admin", ObjectVolunteer, ActionVolunteerView},
		{"role:admin", ObjectCertificate, ActionCertificateIssue},
		{"role:admin", ObjectCertificate, ActionCertificateView},
		{"role:admin", ObjectNotice, ActionNoticeManage},
		{"role:admin", ObjectMessage, ActionMessageView},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},
		{"role:admin", ObjectUser, ActionUserManage},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
