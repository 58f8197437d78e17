// Package metrics provides lock-free counters for authflow observability.
//
// Counters are stored in cache-line-padded slots and incremented atomically.
// The write path is allocation-free; Snapshot deep-copies into a map for
// export.
//
// This package owns metric storage only. It performs no I/O and must not
// import authflow or any sibling package.
package metrics

import "sync/atomic"

// MetricID identifies a specific counter slot.
type MetricID uint8

const (
	MetricProvisionSuccess MetricID = iota
	MetricProvisionValidationFailure
	MetricProvisionGatewayFailure
	MetricProfileWriteSkipped
	MetricProfileWriteTimeout
	MetricMirrorWriteFailure
	MetricMirrorRemoveFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricLogout
	MetricSignOutFailure
	MetricVerificationCheck
	MetricVerificationVerified
	MetricVerificationResend
	MetricVerificationResendFailure
	MetricPasswordResetRequest
	MetricPasswordResetFailure

	MetricIDCount
)

// Config controls whether metric writes are recorded.
type Config struct {
	Enabled bool
}

type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Metrics holds one padded atomic counter per MetricID. A disabled or nil
// Metrics turns every operation into a no-op.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Inc adds one to the counter identified by id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Get returns the current value of a single counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].value.Load()
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Counters that were never incremented are
// omitted.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters: make(map[MetricID]uint64, MetricIDCount),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := m.counters[id].value.Load(); v > 0 {
			snap.Counters[id] = v
		}
	}
	return snap
}
