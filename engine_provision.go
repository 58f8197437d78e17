package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"
)

// CreateAccount runs the account provisioning workflow: validate the form,
// create the identity, apply the child's name as the display name, then
// persist the profile and the local session mirror.
//
// Identity creation and the display-name update are the only fatal steps.
// The profile write is raced against Provision.ProfileWriteTimeout and its
// outcome (success, failure, or still in flight) never fails the workflow;
// the same holds for the mirror writes. Account creation succeeds whenever
// the identity exists with its display name applied.
func (e *Engine) CreateAccount(ctx context.Context, form AccountForm) (*Account, error) {
	if !e.config.Provision.Enabled {
		e.emitAudit(ctx, auditEventProvisionFailure, false, "", form.Email, ErrProvisionDisabled, nil)
		return nil, ErrProvisionDisabled
	}
	if e.gateway == nil || e.profiles == nil || e.mirror == nil {
		return nil, ErrEngineNotReady
	}

	if err := validateAccountForm(form, e.config.Provision.MinPasswordLength, e.config.Provision.PhoneDigits); err != nil {
		e.metricInc(MetricProvisionValidationFailure)
		e.emitAudit(ctx, auditEventProvisionFailure, false, "", form.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "validation",
			}
		})
		return nil, err
	}

	id, err := e.gateway.CreateIdentity(ctx, form.Email, form.Password)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		mapped := mapProvisionGatewayError(err)
		e.metricInc(MetricProvisionGatewayFailure)
		e.emitAudit(ctx, auditEventProvisionFailure, false, "", form.Email, mapped, func() map[string]string {
			return map[string]string{
				"reason": "identity_creation_failed",
				"code":   gatewayCode(err),
			}
		})
		return nil, mapped
	}

	// The identity exists but lacks its display name; a failure here leaves
	// it inconsistent, so it aborts the workflow rather than being swallowed.
	if err := e.gateway.UpdateDisplayName(ctx, id, form.ChildName); err != nil {
		if isContextError(err) {
			return nil, err
		}
		mapped := mapProvisionGatewayError(err)
		e.metricInc(MetricProvisionGatewayFailure)
		e.emitAudit(ctx, auditEventProvisionFailure, false, id.UID, id.Email, mapped, func() map[string]string {
			return map[string]string{
				"reason": "display_name_update_failed",
				"code":   gatewayCode(err),
			}
		})
		return nil, mapped
	}

	profile := Profile{
		ChildName:   form.ChildName,
		ChildAge:    form.ChildAge,
		ParentName:  form.ParentName,
		ParentPhone: NormalizePhone(form.ParentPhone),
		Email:       form.Email,
		CreatedAt:   time.Now().UTC(),
	}

	// Best-effort: the write races the timeout and the loser's outcome is
	// discarded. A slow profile store must not hold the account hostage.
	if writeErr := runWithTimeout(ctx, e.config.Provision.ProfileWriteTimeout, func(ctx context.Context) error {
		return e.profiles.WriteProfile(ctx, id.UID, profile)
	}); writeErr != nil {
		reason := "write_failed"
		if errors.Is(writeErr, errDeadlineElapsed) {
			reason = "timeout"
			e.metricInc(MetricProfileWriteTimeout)
		} else {
			e.metricInc(MetricProfileWriteSkipped)
		}
		log.Print("authflow: profile write skipped")
		e.emitAudit(ctx, auditEventProfileWriteSkipped, false, id.UID, id.Email, writeErr, func() map[string]string {
			return map[string]string{
				"reason": reason,
			}
		})
	}

	e.mirrorSession(ctx, id)
	if e.config.Mirror.WriteLegacySnapshot {
		e.mirrorLegacySnapshot(ctx, id, form)
	}

	form.Password = ""
	form.ConfirmPassword = ""
	e.metricInc(MetricProvisionSuccess)
	e.emitAudit(ctx, auditEventProvisionSuccess, true, id.UID, id.Email, nil, nil)

	return &Account{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
	}, nil
}

// legacySnapshot is the userData document shape older clients persisted. The
// password is deliberately excluded even though legacy documents carried it.
type legacySnapshot struct {
	ChildName   string `json:"childName"`
	ChildAge    string `json:"childAge"`
	ParentName  string `json:"parentName"`
	ParentPhone string `json:"parentPhone"`
	Email       string `json:"email"`
}

func (e *Engine) mirrorLegacySnapshot(ctx context.Context, id *Identity, form AccountForm) {
	data, err := json.Marshal(legacySnapshot{
		ChildName:   form.ChildName,
		ChildAge:    form.ChildAge,
		ParentName:  form.ParentName,
		ParentPhone: form.ParentPhone,
		Email:       form.Email,
	})
	if err == nil {
		err = e.mirror.Set(ctx, MirrorKeyUserData, string(data))
	}
	if err != nil {
		e.metricInc(MetricMirrorWriteFailure)
		log.Print("authflow: legacy snapshot write failed")
		e.emitAudit(ctx, auditEventMirrorWriteFailure, false, id.UID, id.Email, err, func() map[string]string {
			return map[string]string{
				"key": MirrorKeyUserData,
			}
		})
	}
}

func mapProvisionGatewayError(err error) error {
	switch gatewayCode(err) {
	case CodeEmailInUse:
		return ErrEmailInUse
	case CodeInvalidEmail:
		return ErrInvalidEmail
	case CodeWeakPassword:
		return ErrWeakPassword
	default:
		return ErrProvisionUnavailable
	}
}
