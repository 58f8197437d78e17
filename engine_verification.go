package authflow

import (
	"context"
	"sync"
	"time"
)

// VerificationPhase is the state of a [Verifier].
type VerificationPhase uint8

const (
	// PhaseUnverified is the initial phase; resending is allowed.
	PhaseUnverified VerificationPhase = iota
	// PhaseCooldown follows a successful resend until the cooldown expires.
	PhaseCooldown
	// PhaseVerified is terminal for the verifier's lifetime.
	PhaseVerified
)

func (p VerificationPhase) String() string {
	switch p {
	case PhaseUnverified:
		return "unverified"
	case PhaseCooldown:
		return "cooldown"
	case PhaseVerified:
		return "verified"
	default:
		return "invalid"
	}
}

// Verifier drives email verification for one identity: status checks against
// the gateway, resend with a timed cooldown, and a one-shot verified signal
// the shell uses as its navigation trigger.
//
// A Verifier owns one timer at most (the cooldown). Close cancels it; a
// verifier abandoned without Close leaks nothing once the cooldown fires.
// The verifier does not re-check the cooldown gate on Resend; the UI owns
// that gate, mirroring the resend button it disables.
type Verifier struct {
	engine   *Engine
	identity *Identity

	mu            sync.Mutex
	phase         VerificationPhase
	cooldownUntil time.Time
	timer         *time.Timer
	verified      chan struct{}
	closed        bool
}

// NewVerifier creates a Verifier for id and performs the initial status
// check. The verifier is returned and usable even when that first check
// fails; the error reports the check outcome so the shell can surface it.
func (e *Engine) NewVerifier(ctx context.Context, id *Identity) (*Verifier, error) {
	if !e.config.Verification.Enabled {
		return nil, ErrVerificationDisabled
	}
	if e.gateway == nil {
		return nil, ErrEngineNotReady
	}
	if id == nil {
		return nil, ErrNoIdentity
	}

	v := &Verifier{
		engine:   e,
		identity: id,
		phase:    PhaseUnverified,
		verified: make(chan struct{}),
	}

	_, err := v.Check(ctx)
	return v, err
}

// Check reloads the identity from the gateway and inspects its verification
// flag. On the first observation of a verified identity the verifier
// transitions to PhaseVerified, stops any cooldown timer, and closes the
// Verified channel exactly once, regardless of the phase it was in.
// Check never alters cooldown timing for an unverified identity.
func (v *Verifier) Check(ctx context.Context) (bool, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false, ErrVerifierClosed
	}
	if v.phase == PhaseVerified {
		v.mu.Unlock()
		return true, nil
	}
	v.mu.Unlock()

	v.engine.metricInc(MetricVerificationCheck)
	if err := v.engine.gateway.Reload(ctx, v.identity); err != nil {
		if isContextError(err) {
			return false, err
		}
		mapped := mapVerificationGatewayError(err)
		v.engine.emitAudit(ctx, auditEventVerificationCheck, false, v.identity.UID, v.identity.Email, mapped, nil)
		return false, mapped
	}

	if !v.identity.Verified {
		v.engine.emitAudit(ctx, auditEventVerificationCheck, true, v.identity.UID, v.identity.Email, nil, func() map[string]string {
			return map[string]string{
				"verified": "false",
			}
		})
		return false, nil
	}

	v.mu.Lock()
	transitioned := v.phase != PhaseVerified
	if transitioned {
		v.phase = PhaseVerified
		v.cooldownUntil = time.Time{}
		if v.timer != nil {
			v.timer.Stop()
			v.timer = nil
		}
		close(v.verified)
	}
	v.mu.Unlock()

	if transitioned {
		v.engine.metricInc(MetricVerificationVerified)
		v.engine.emitAudit(ctx, auditEventVerificationVerified, true, v.identity.UID, v.identity.Email, nil, nil)
	}
	return true, nil
}

// Resend asks the gateway to mail a fresh verification link. Success arms the
// cooldown: the phase becomes PhaseCooldown and autonomously returns to
// PhaseUnverified once Verification.ResendCooldown elapses. Failure leaves
// the phase unchanged and returns the mapped gateway error. Resending for an
// already-verified identity is a no-op.
func (v *Verifier) Resend(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrVerifierClosed
	}
	if v.phase == PhaseVerified {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	if err := v.engine.gateway.SendVerificationEmail(ctx, v.identity); err != nil {
		if isContextError(err) {
			return err
		}
		mapped := mapVerificationGatewayError(err)
		v.engine.metricInc(MetricVerificationResendFailure)
		v.engine.emitAudit(ctx, auditEventVerificationResend, false, v.identity.UID, v.identity.Email, mapped, nil)
		return mapped
	}

	cooldown := v.engine.config.Verification.ResendCooldown

	v.mu.Lock()
	if !v.closed && v.phase != PhaseVerified {
		v.phase = PhaseCooldown
		v.cooldownUntil = time.Now().Add(cooldown)
		if v.timer != nil {
			v.timer.Stop()
		}
		v.timer = time.AfterFunc(cooldown, v.expireCooldown)
	}
	v.mu.Unlock()

	v.engine.metricInc(MetricVerificationResend)
	v.engine.emitAudit(ctx, auditEventVerificationResend, true, v.identity.UID, v.identity.Email, nil, nil)
	return nil
}

func (v *Verifier) expireCooldown() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.phase != PhaseCooldown {
		return
	}
	v.phase = PhaseUnverified
	v.cooldownUntil = time.Time{}
	v.timer = nil
}

// Phase returns the verifier's current phase.
func (v *Verifier) Phase() VerificationPhase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// CooldownRemaining reports how long until resending becomes available
// again, or zero outside the cooldown phase.
func (v *Verifier) CooldownRemaining() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.phase != PhaseCooldown {
		return 0
	}
	remaining := time.Until(v.cooldownUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Verified returns a channel that is closed exactly once, when the verifier
// first observes a verified identity. The shell treats the close as its
// navigate-away signal.
func (v *Verifier) Verified() <-chan struct{} {
	return v.verified
}

// Close disposes the verifier and cancels any pending cooldown timer.
// Idempotent; subsequent Check and Resend calls return ErrVerifierClosed.
func (v *Verifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func mapVerificationGatewayError(err error) error {
	switch gatewayCode(err) {
	case CodeUserNotFound:
		return ErrUserNotFound
	case CodeTooManyRequests:
		return ErrTooManyRequests
	default:
		return ErrVerificationUnavailable
	}
}
