package authflow

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by authflow APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Provision     ProvisionConfig
	Session       SessionConfig
	Verification  VerificationConfig
	PasswordReset PasswordResetConfig
	Mirror        MirrorConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

/*
====================================
PROVISION CONFIG
====================================
*/

// ProvisionConfig controls the account-creation workflow.
type ProvisionConfig struct {
	Enabled           bool
	MinPasswordLength int
	PhoneDigits       int

	// ProfileWriteTimeout bounds the best-effort profile write: the write is
	// raced against this timeout and the loser's outcome is discarded.
	ProfileWriteTimeout time.Duration
}

// SessionConfig controls login/logout behavior.
type SessionConfig struct {
	// MirrorOnLogin writes the session mirror after a successful sign-in.
	MirrorOnLogin bool
}

// VerificationConfig controls the email-verification state machine.
type VerificationConfig struct {
	Enabled bool

	// ResendCooldown is how long a Verifier stays in the cooldown phase after
	// a successful resend before autonomously returning to unverified.
	ResendCooldown time.Duration
}

// PasswordResetConfig controls the password-reset workflow.
type PasswordResetConfig struct {
	Enabled bool
}

// MirrorConfig controls the local session mirror.
type MirrorConfig struct {
	RedisPrefix string

	// WriteLegacySnapshot additionally stores a form snapshot (without the
	// password) under the legacy userData key during provisioning.
	WriteLegacySnapshot bool
}

// AuditConfig controls dispatcher buffering behavior.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Provision: ProvisionConfig{
			Enabled:             true,
			MinPasswordLength:   6,
			PhoneDigits:         10,
			ProfileWriteTimeout: 5 * time.Second,
		},
		Session: SessionConfig{
			MirrorOnLogin: true,
		},
		Verification: VerificationConfig{
			Enabled:        true,
			ResendCooldown: 60 * time.Second,
		},
		PasswordReset: PasswordResetConfig{
			Enabled: true,
		},
		Mirror: MirrorConfig{
			RedisPrefix: "afm",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate checks configuration invariants before the engine is built.
func (c Config) Validate() error {
	if c.Provision.Enabled {
		if c.Provision.MinPasswordLength < 1 {
			return errors.New("Provision.MinPasswordLength must be at least 1")
		}
		if c.Provision.PhoneDigits < 1 {
			return errors.New("Provision.PhoneDigits must be at least 1")
		}
		if c.Provision.ProfileWriteTimeout <= 0 {
			return errors.New("Provision.ProfileWriteTimeout must be positive")
		}
	}
	if c.Verification.Enabled && c.Verification.ResendCooldown <= 0 {
		return errors.New("Verification.ResendCooldown must be positive")
	}
	if c.Mirror.RedisPrefix == "" {
		return errors.New("Mirror.RedisPrefix must not be empty")
	}
	if strings.Contains(c.Mirror.RedisPrefix, ":") {
		return errors.New("Mirror.RedisPrefix must not contain ':'")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
