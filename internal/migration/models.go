package migration

import (
	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	authdomain "github.com/sahayog-foundation/sahayog/internal/auth/domain"
	campaigndomain "github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	certificatedomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	memberdomain "github.com/sahayog-foundation/sahayog/internal/member/domain"
	messagedomain "github.com/sahayog-foundation/sahayog/internal/message/domain"
	noticedomain "github.com/sahayog-foundation/sahayog/internal/notice/domain"
	volunteerdomain "github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
)

// AllModels lists every persisted model. Non-postgres deployments
// (and the test suite) schema-sync through gorm instead of the SQL
// migrations.
func AllModels() []interface{} {
	return []interface{}{
		&authdomain.User{},
		&authdomain.Session{},
		&memberdomain.Member{},
		&volunteerdomain.Volunteer{},
		&campaigndomain.Campaign{},
		&donationdomain.Donation{},
		&certificatedomain.Certificate{},
		&noticedomain.Notice{},
		&messagedomain.Message{},
		&auditdomain.AuditLog{},
	}
}
