package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/sahayog-foundation/sahayog/internal/audit/domain"
	authdomain "github.com/sahayog-foundation/sahayog/internal/auth/domain"
	"github.com/sahayog-foundation/sahayog/internal/authorization"
	campaigndomain "github.com/sahayog-foundation/sahayog/internal/campaign/domain"
	certificatedomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	donationdomain "github.com/sahayog-foundation/sahayog/internal/donation/domain"
	"github.com/sahayog-foundation/sahayog/internal/gateway/razorpay"
	memberdomain "github.com/sahayog-foundation/sahayog/internal/member/domain"
	messagedomain "github.com/sahayog-foundation/sahayog/internal/message/domain"
	noticedomain "github.com/sahayog-foundation/sahayog/internal/notice/domain"
	volunteerdomain "github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrTooManyRequest = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

var badRequestErrors = []error{
	donationdomain.ErrInvalidAmount,
	donationdomain.ErrInvalidMethod,
	campaigndomain.ErrInvalidTitle,
	campaigndomain.ErrInvalidGoal,
	campaigndomain.ErrInvalidStatus,
	campaigndomain.ErrInvalidSchedule,
	memberdomain.ErrInvalidName,
	memberdomain.ErrInvalidStatus,
	volunteerdomain.ErrInvalidName,
	volunteerdomain.ErrInvalidStatus,
	noticedomain.ErrInvalidTitle,
	messagedomain.ErrInvalidSender,
	messagedomain.ErrInvalidBody,
	certificatedomain.ErrInvalidRecipient,
	auditdomain.ErrInvalidPageToken,
	auditdomain.ErrInvalidTimeRange,
	auditdomain.ErrInvalidAction,
	razorpay.ErrInvalidAmount,
}

var notFoundErrors = []error{
	ErrNotFound,
	donationdomain.ErrDonationNotFound,
	campaigndomain.ErrCampaignNotFound,
	memberdomain.ErrMemberNotFound,
	volunteerdomain.ErrVolunteerNotFound,
	noticedomain.ErrNoticeNotFound,
	messagedomain.ErrMessageNotFound,
	certificatedomain.ErrCertificateNotFound,
	certificatedomain.ErrDocumentMissing,
	authdomain.ErrUserNotFound,
	gorm.ErrRecordNotFound,
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, errorPayload{
				Type:    "validation_error",
				Message: target.Error(),
			}
		}
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, errorPayload{
				Type:    "not_found",
				Message: "not found",
			}
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrUserDisabled):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authorization.ErrInvalidActor):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, donationdomain.ErrInvalidSignature):
		// The gateway callback failed the HMAC check. Nothing was
		// recorded; the client should not retry with the same payload.
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_signature",
			Message: "payment signature verification failed",
		}
	case errors.Is(err, donationdomain.ErrDuplicateTransaction):
		return http.StatusConflict, errorPayload{
			Type:    "duplicate_transaction",
			Message: "a donation with this transaction reference already exists",
		}
	case errors.Is(err, campaigndomain.ErrCampaignClosed):
		return http.StatusConflict, errorPayload{
			Type:    "campaign_closed",
			Message: "campaign is not accepting donations",
		}
	case errors.Is(err, authdomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "email already in use",
		}
	case errors.Is(err, memberdomain.ErrMemberAlreadyActive):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "membership is already active",
		}
	case errors.Is(err, volunteerdomain.ErrVolunteerNotApproved):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "volunteer is not approved",
		}
	case errors.Is(err, memberdomain.ErrIDCardUnavailable),
		errors.Is(err, volunteerdomain.ErrIDCardUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "document rendering is not available",
		}
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, razorpay.ErrInvalidConfig),
		errors.Is(err, razorpay.ErrConfigMissing):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "payment gateway is not configured",
		}
	case errors.Is(err, razorpay.ErrRequestFailed), errors.Is(err, razorpay.ErrInvalidResponse):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: "payment gateway request failed",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
