package goSaaS

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSaaS/domain"
	"github.com/MrEthical07/goSaaS/internal/audit"
	"github.com/MrEthical07/goSaaS/internal/rate"
	"github.com/MrEthical07/goSaaS/session"
)

const (
	auditEventSignInSuccess        = "sign_in_success"
	auditEventSignInFailure        = "sign_in_failure"
	auditEventSignInRateLimited    = "sign_in_rate_limited"
	auditEventSignUpSuccess        = "sign_up_success"
	auditEventSignUpFailure        = "sign_up_failure"
	auditEventSignUpRateLimited    = "sign_up_rate_limited"
	auditEventSignOut              = "sign_out"
	auditEventPasswordChange       = "password_change"
	auditEventPasswordRehash       = "password_rehash"
	auditEventAccountDeleted       = "account_deleted"
	auditEventSessionTampered      = "session_tampered"
	auditEventSessionExpired       = "session_expired"
	auditEventSubscriptionUpdated  = "subscription_updated"
	auditEventActivityAppendFailed = "activity_append_failed"
)

// AuditErrorCode is the stable error label carried in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrConflict           AuditErrorCode = "conflict"
	auditErrNotFound           AuditErrorCode = "not_found"
	auditErrInvalidInvitation  AuditErrorCode = "invalid_invitation"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrExpiredToken       AuditErrorCode = "expired_token"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidInvitation  = errors.New("invalid invitation")
	errSessionTampered    = errors.New("session tampered")
	errSessionExpired     = errors.New("session expired")
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID int64,
	teamID int64,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := audit.Event{
		Type:     eventType,
		UserID:   userID,
		TeamID:   teamID,
		IP:       ClientIP(ctx),
		Success:  success,
		Metadata: metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, errInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrSignInRateLimited),
		errors.Is(err, ErrSignUpRateLimited),
		errors.Is(err, rate.ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, domain.ErrConflict):
		return auditErrConflict
	case errors.Is(err, domain.ErrNotFound):
		return auditErrNotFound
	case errors.Is(err, errInvalidInvitation):
		return auditErrInvalidInvitation
	case errors.Is(err, errSessionTampered):
		return auditErrInvalidToken
	case errors.Is(err, errSessionExpired):
		return auditErrExpiredToken
	case errors.Is(err, rate.ErrBackendUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

// sessionObserver counts every cookie resolution and reports rejected cookies. It is
// installed on the session manager by Build.
type sessionObserver struct {
	engine *Engine
}

func (o sessionObserver) ObserveResolution(ctx context.Context, res session.Resolution, err error) {
	e := o.engine
	switch res.State {
	case session.Valid:
		e.metricInc(MetricSessionValid)
	case session.Absent:
		e.metricInc(MetricSessionAbsent)
	case session.Expired:
		e.metricInc(MetricSessionExpired)
		e.logger.Debug().Err(err).Msg("session cookie expired")
		e.emitAudit(ctx, auditEventSessionExpired, false, 0, 0, errSessionExpired, nil)
	case session.Tampered:
		e.metricInc(MetricSessionTampered)
		e.logger.Warn().Err(err).Str("ip", ClientIP(ctx)).Msg("session cookie rejected")
		e.emitAudit(ctx, auditEventSessionTampered, false, 0, 0, errSessionTampered, nil)
	}
}
