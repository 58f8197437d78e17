package authflow

import (
	"context"
	"encoding/json"
	"log"
)

// Login authenticates the credential pair against the identity gateway and,
// on success, refreshes the local session mirror. The mirror write is
// best-effort: a failed write is audited and counted but the login still
// succeeds.
func (e *Engine) Login(ctx context.Context, email, password string) (*Session, error) {
	if e.gateway == nil || e.mirror == nil {
		return nil, ErrEngineNotReady
	}
	if email == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrMissingFields, func() map[string]string {
			return map[string]string{
				"reason": "empty_fields",
			}
		})
		return nil, ErrMissingFields
	}

	id, err := e.gateway.SignIn(ctx, email, password)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		mapped := mapLoginGatewayError(err)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", email, mapped, func() map[string]string {
			return map[string]string{
				"code": gatewayCode(err),
			}
		})
		return nil, mapped
	}

	if e.config.Session.MirrorOnLogin {
		e.mirrorSession(ctx, id)
	}

	password = ""
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, id.UID, id.Email, nil, nil)

	return &Session{Identity: id}, nil
}

// Logout signs out of the gateway and clears the session mirror. Both steps
// are best-effort: failures are audited and counted, never surfaced, and the
// caller always proceeds to the logged-out state. Safe to call repeatedly,
// including when no session exists.
func (e *Engine) Logout(ctx context.Context) {
	if e == nil {
		return
	}

	if e.gateway != nil {
		if err := e.gateway.SignOut(ctx); err != nil {
			e.metricInc(MetricSignOutFailure)
			log.Print("authflow: gateway sign-out failed")
			e.emitAudit(ctx, auditEventSignOutFailure, false, "", "", err, nil)
		}
	}

	if e.mirror != nil {
		if err := e.mirror.Remove(ctx, MirrorKeyAuthUser); err != nil {
			e.metricInc(MetricMirrorRemoveFailure)
			log.Print("authflow: session mirror remove failed")
			e.emitAudit(ctx, auditEventMirrorRemoveFailure, false, "", "", err, func() map[string]string {
				return map[string]string{
					"key": MirrorKeyAuthUser,
				}
			})
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, "", "", nil, nil)
}

// RestoreSession reads the session mirror so the shell can pick a start
// route. A cold mirror and a corrupt mirror are both reported as a miss, not
// an error; the mirror is a cache, never a source of truth.
func (e *Engine) RestoreSession(ctx context.Context) (*SessionMirror, bool, error) {
	if e.mirror == nil {
		return nil, false, ErrEngineNotReady
	}

	raw, ok, err := e.mirror.Get(ctx, MirrorKeyAuthUser)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var mirror SessionMirror
	if err := json.Unmarshal([]byte(raw), &mirror); err != nil {
		return nil, false, nil
	}
	return &mirror, true, nil
}

// mirrorSession writes {email, uid} under the authUser key. Shared by the
// provisioning and login workflows; always best-effort.
func (e *Engine) mirrorSession(ctx context.Context, id *Identity) {
	data, err := json.Marshal(SessionMirror{
		Email: id.Email,
		UID:   id.UID,
	})
	if err == nil {
		err = e.mirror.Set(ctx, MirrorKeyAuthUser, string(data))
	}
	if err != nil {
		e.metricInc(MetricMirrorWriteFailure)
		log.Print("authflow: session mirror write failed")
		e.emitAudit(ctx, auditEventMirrorWriteFailure, false, id.UID, id.Email, err, func() map[string]string {
			return map[string]string{
				"key": MirrorKeyAuthUser,
			}
		})
	}
}

func mapLoginGatewayError(err error) error {
	switch gatewayCode(err) {
	case CodeInvalidCredential:
		return ErrInvalidCredential
	case CodeUserNotFound:
		return ErrUserNotFound
	case CodeWrongPassword:
		return ErrWrongPassword
	case CodeInvalidEmail:
		return ErrInvalidEmail
	default:
		return ErrLoginUnavailable
	}
}
