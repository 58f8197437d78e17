package authflow

import (
	"context"
	"time"

	internalaudit "github.com/stamfree/authflow/internal/audit"
)

// Audit event types emitted by the engine. Best-effort failures get their own
// event types so operators can see them even though the owning workflow
// reported success.
const (
	auditEventProvisionSuccess     = "account.provision.success"
	auditEventProvisionFailure     = "account.provision.failure"
	auditEventProfileWriteSkipped  = "account.profile_write.skipped"
	auditEventMirrorWriteFailure   = "mirror.write.failure"
	auditEventMirrorRemoveFailure  = "mirror.remove.failure"
	auditEventLoginSuccess         = "session.login.success"
	auditEventLoginFailure         = "session.login.failure"
	auditEventLogout               = "session.logout"
	auditEventSignOutFailure       = "session.sign_out.failure"
	auditEventVerificationCheck    = "verification.check"
	auditEventVerificationVerified = "verification.verified"
	auditEventVerificationResend   = "verification.resend"
	auditEventResetRequest         = "password_reset.request"
	auditEventResetFailure         = "password_reset.failure"
)

// emitAudit builds and dispatches one audit event. metaFn is evaluated only
// when the dispatcher is live, so callers can build metadata maps lazily.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	uid, email string,
	err error,
	metaFn func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UID:       uid,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metaFn != nil {
		event.Metadata = metaFn()
	}

	e.audit.Emit(ctx, event)
}
