package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sahayog-foundation/sahayog/internal/auditcontext"
	authdomain "github.com/sahayog-foundation/sahayog/internal/auth/domain"
	obscontext "github.com/sahayog-foundation/sahayog/internal/observability/context"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/observability/metrics"
)

const contextUserKey = "auth_user"

// RequestMetadata attaches client metadata to the request context so
// audit writes deeper in the stack can record it. Applied to every
// route, authenticated or not.
func RequestMetadata() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = auditcontext.WithMeta(ctx, auditcontext.Meta{
			RequestID: obscontext.RequestIDFromContext(ctx),
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthRequired authenticates the session cookie and stores the user on
// the gin context. It aborts with 401 when the session is missing,
// expired or belongs to a disabled user.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithActor(c.Request.Context(), "user", user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireCapability gates a route on the actor's capability set.
// Must run after AuthRequired.
func (s *Server) RequireCapability(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), user.ID.String(), user.Role, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *authdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*authdomain.User)
	if !ok {
		return nil
	}
	return user
}

// VerifyRateLimit throttles the public donation verify endpoint per
// client IP. Redis outages fail open so legitimate donations are
// never dropped because of the limiter.
func (s *Server) VerifyRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.limiter.AllowVerify(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("donation verify rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.rejectRateLimited(c, result.RetryAfter, "donation.verify")
			return
		}
		c.Next()
	}
}

// MessageRateLimit throttles the public contact form per client IP.
func (s *Server) MessageRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.limiter.AllowMessage(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("message rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			s.rejectRateLimited(c, result.RetryAfter, "message.submit")
			return
		}
		c.Next()
	}
}

func (s *Server) rejectRateLimited(c *gin.Context, retryAfter time.Duration, endpoint string) {
	if s.obsMetrics != nil {
		metrics.Add(c.Request.Context(), s.obsMetrics.RateLimitRejections, attribute.String("endpoint", endpoint))
	}
	if seconds := int(retryAfter.Seconds()) + 1; seconds > 0 {
		c.Header("Retry-After", strconv.Itoa(seconds))
	}
	AbortWithError(c, ErrTooManyRequest)
}
