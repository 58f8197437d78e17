package authflow

import (
	"io"
	"time"

	internalaudit "github.com/stamfree/authflow/internal/audit"
	internalmetrics "github.com/stamfree/authflow/internal/metrics"
)

// AccountForm carries the raw field values of one account-creation
// submission. It is transient: validated, consumed by CreateAccount, and
// never persisted as-is.
type AccountForm struct {
	ChildName       string
	ChildAge        string
	ParentName      string
	ParentPhone     string
	Email           string
	Password        string
	ConfirmPassword string
}

// Identity is the provider-owned authentication record. The engine never
// constructs one itself; identities come back from [IdentityGateway] calls
// and remain the source of truth for the verification flag.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Verified    bool

	// Token is the provider session credential attached to this identity.
	// Gateway implementations that need it (the REST gateway) use it for
	// authenticated calls; in-memory gateways may leave it empty.
	Token string
}

// Account is the result of a successful provisioning workflow.
type Account struct {
	UID         string
	Email       string
	DisplayName string
}

// Session is the result of a successful login.
type Session struct {
	Identity *Identity
}

// Profile is the child/parent metadata written to the remote profile store,
// keyed by the identity's UID. Persistence is best-effort: its absence must
// never block account usability.
type Profile struct {
	ChildName   string
	ChildAge    string
	ParentName  string
	ParentPhone string
	Email       string
	CreatedAt   time.Time
}

// SessionMirror is the locally persisted snapshot of the current session,
// stored under [MirrorKeyAuthUser]. It is a resilience cache, not a source
// of truth.
type SessionMirror struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

// Metrics holds the engine's atomic counters.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled: cfg.Enabled,
	})
}
