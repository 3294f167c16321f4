package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/audit"
	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	"github.com/sahayog-foundation/sahayog/internal/auth"
	authdomain "github.com/sahayog-foundation/sahayog/internal/auth/domain"
	"github.com/sahayog-foundation/sahayog/internal/auth/session"
	"github.com/sahayog-foundation/sahayog/internal/authorization"
	"github.com/sahayog-foundation/sahayog/internal/campaign"
	campaigndomain "github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	"github.com/sahayog-foundation/sahayog/internal/certificate"
	certificatedomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/donation"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	"github.com/sahayog-foundation/sahayog/internal/member"
	memberdomain "github.com/sahayog-foundation/sahayog/internal/member/domain"
	"github.com/sahayog-foundation/sahayog/internal/message"
	messagedomain "github.com/sahayog-foundation/sahayog/internal/message/domain"
	"github.com/sahayog-foundation/sahayog/internal/notice"
	noticedomain "github.com/sahayog-foundation/sahayog/internal/notice/domain"
	"github.com/sahayog-foundation/sahayog/internal/observability"
	obslogger "github.com/sahayog-foundation/sahayog/internal/observability/logger"
	obsmetrics "github.com/sahayog-foundation/sahayog/internal/observability/metrics"
	obstracing "github.com/sahayog-foundation/sahayog/internal/observability/tracing"
	"github.com/sahayog-foundation/sahayog/internal/providers/email"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/internal/ratelimit"
	"github.com/sahayog-foundation/sahayog/internal/volunteer"
	volunteerdomain "github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
)

var Module = fx.Module("http.server",
	authorization.Module,
	audit.Module,
	auth.Module,
	razorpay.Module,
	campaign.Module,
	member.Module,
	volunteer.Module,
	certificate.Module,
	donation.Module,
	notice.Module,
	message.Module,
	email.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(RequestMetadata())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", httpMetrics.Handler())

	return r
}

type Server struct {
	engine   *gin.Engine
	cfg      config.Config
	db       *gorm.DB
	genID    *snowflake.Node
	sessions *session.Manager

	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	donationSvc    donationdomain.Service
	campaignSvc    campaigndomain.Service
	memberSvc      memberdomain.Service
	volunteerSvc   volunteerdomain.Service
	certificateSvc certificatedomain.Service
	noticeSvc      noticedomain.Service
	messageSvc     messagedomain.Service

	limiter    *ratelimit.PublicLimiter
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	DB       *gorm.DB
	GenID    *snowflake.Node
	Sessions *session.Manager

	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	DonationSvc    donationdomain.Service
	CampaignSvc    campaigndomain.Service
	MemberSvc      memberdomain.Service
	VolunteerSvc   volunteerdomain.Service
	CertificateSvc certificatedomain.Service
	NoticeSvc      noticedomain.Service
	MessageSvc     messagedomain.Service

	Limiter    *ratelimit.PublicLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessions:       p.Sessions,
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		donationSvc:    p.DonationSvc,
		campaignSvc:    p.CampaignSvc,
		memberSvc:      p.MemberSvc,
		volunteerSvc:   p.VolunteerSvc,
		certificateSvc: p.CertificateSvc,
		noticeSvc:      p.NoticeSvc,
		messageSvc:     p.MessageSvc,
		limiter:        p.Limiter,
		obsMetrics:     p.ObsMetrics,
	}
}

func registerRoutes(s *Server) {
	s.registerAuthRoutes()
	s.registerPublicRoutes()
	s.registerAdminRoutes()
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/auth")

	group.POST("/login", s.Login)
	group.POST("/logout", s.Logout)
	group.GET("/me", s.Me)
}

// registerPublicRoutes wires the endpoints the donation site calls
// without a session: campaign browsing, the checkout flow, certificate
// verification, volunteer applications and the contact form.
func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.GET("/campaigns", s.ListCampaigns)
	api.GET("/campaigns/:slug", s.GetCampaignBySlug)

	api.POST("/donations/orders", s.CreateDonationOrder)
	api.POST("/donations/verify", s.VerifyRateLimit(), s.VerifyDonation)

	api.POST("/members/register", s.RegisterMember)
	api.POST("/members/verify", s.VerifyRateLimit(), s.VerifyMemberPayment)

	api.GET("/certificates/:number", s.GetCertificate)
	api.GET("/certificates/:number/document", s.DownloadCertificate)

	api.POST("/volunteers/apply", s.ApplyVolunteer)

	api.GET("/notices", s.ListPublishedNotices)

	api.POST("/messages", s.MessageRateLimit(), s.SubmitMessage)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin/api", s.AuthRequired())

	admin.GET("/donations", s.RequireCapability(authorization.ObjectDonation, authorization.ActionDonationView), s.ListDonations)
	admin.GET("/donations/stats", s.RequireCapability(authorization.ObjectDonation, authorization.ActionDonationView), s.DonationStats)
	admin.GET("/donations/:id", s.RequireCapability(authorization.ObjectDonation, authorization.ActionDonationView), s.GetDonationByID)
	admin.POST("/donations", s.RequireCapability(authorization.ObjectDonation, authorization.ActionDonationRecord), s.RecordManualDonation)

	admin.POST("/campaigns", s.RequireCapability(authorization.ObjectCampaign, authorization.ActionCampaignManage), s.CreateCampaign)
	admin.PUT("/campaigns/:id", s.RequireCapability(authorization.ObjectCampaign, authorization.ActionCampaignManage), s.UpdateCampaign)
	admin.GET("/campaigns", s.RequireCapability(authorization.ObjectCampaign, authorization.ActionCampaignView), s.ListAllCampaigns)
	admin.GET("/campaigns/:id", s.RequireCapability(authorization.ObjectCampaign, authorization.ActionCampaignView), s.GetCampaignByID)

	admin.POST("/members", s.RequireCapability(authorization.ObjectMember, authorization.ActionMemberManage), s.CreateMember)
	admin.PUT("/members/:id", s.RequireCapability(authorization.ObjectMember, authorization.ActionMemberManage), s.UpdateMember)
	admin.GET("/members", s.RequireCapability(authorization.ObjectMember, authorization.ActionMemberView), s.ListMembers)
	admin.GET("/members/:id", s.RequireCapability(authorization.ObjectMember, authorization.ActionMemberView), s.GetMemberByID)
	admin.GET("/members/:id/id-card", s.RequireCapability(authorization.ObjectMember, authorization.ActionMemberView), s.MemberIDCard)

	admin.GET("/volunteers", s.RequireCapability(authorization.ObjectVolunteer, authorization.ActionVolunteerView), s.ListVolunteers)
	admin.GET("/volunteers/:id", s.RequireCapability(authorization.ObjectVolunteer, authorization.ActionVolunteerView), s.GetVolunteerByID)
	admin.GET("/volunteers/:id/id-card", s.RequireCapability(authorization.ObjectVolunteer, authorization.ActionVolunteerView), s.VolunteerIDCard)
	admin.PUT("/volunteers/:id", s.RequireCapability(authorization.ObjectVolunteer, authorization.ActionVolunteerManage), s.UpdateVolunteer)

	admin.POST("/certificates/issue", s.RequireCapability(authorization.ObjectCertificate, authorization.ActionCertificateIssue), s.IssueCertificate)

	admin.POST("/notices", s.RequireCapability(authorization.ObjectNotice, authorization.ActionNoticeManage), s.CreateNotice)
	admin.PUT("/notices/:id", s.RequireCapability(authorization.ObjectNotice, authorization.ActionNoticeManage), s.UpdateNotice)
	admin.DELETE("/notices/:id", s.RequireCapability(authorization.ObjectNotice, authorization.ActionNoticeManage), s.DeleteNotice)
	admin.GET("/notices", s.RequireCapability(authorization.ObjectNotice, authorization.ActionNoticeManage), s.ListAllNotices)

	admin.GET("/messages", s.RequireCapability(authorization.ObjectMessage, authorization.ActionMessageView), s.ListMessages)
	admin.POST("/messages/:id/read", s.RequireCapability(authorization.ObjectMessage, authorization.ActionMessageView), s.MarkMessageRead)

	admin.GET("/audit-logs", s.RequireCapability(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)

	admin.GET("/users", s.RequireCapability(authorization.ObjectUser, authorization.ActionUserManage), s.ListUsers)
	admin.POST("/users", s.RequireCapability(authorization.ObjectUser, authorization.ActionUserManage), s.CreateUser)
	admin.PUT("/users/:id", s.RequireCapability(authorization.ObjectUser, authorization.ActionUserManage), s.UpdateUser)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
