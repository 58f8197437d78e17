package authflow

import (
	"context"
)

// RequestPasswordReset asks the identity provider to mail reset instructions
// for the address. The engine validates the address locally before touching
// the gateway; delivery and the reset itself happen entirely provider-side.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if !e.config.PasswordReset.Enabled {
		return ErrPasswordResetDisabled
	}
	if e.gateway == nil {
		return ErrEngineNotReady
	}
	if email == "" {
		return ErrMissingFields
	}
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}

	if err := e.gateway.SendPasswordResetEmail(ctx, email); err != nil {
		if isContextError(err) {
			return err
		}
		mapped := mapPasswordResetGatewayError(err)
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventResetFailure, false, "", email, mapped, func() map[string]string {
			return map[string]string{
				"code": gatewayCode(err),
			}
		})
		return mapped
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventResetRequest, true, "", email, nil, nil)
	return nil
}

func mapPasswordResetGatewayError(err error) error {
	switch gatewayCode(err) {
	case CodeUserNotFound:
		return ErrUserNotFound
	case CodeInvalidEmail:
		return ErrInvalidEmail
	case CodeTooManyRequests:
		return ErrTooManyRequests
	default:
		return ErrPasswordResetUnavailable
	}
}
