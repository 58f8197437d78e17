package authflow

import (
	internalaudit "github.com/stamfree/authflow/internal/audit"
)

// Engine defines a public type used by authflow APIs.
//
// Engine instances are intended to be configured during initialization
// through [Builder.Build] and then treated as immutable unless documented
// otherwise. Engine methods never panic across the API boundary; every
// workflow returns a success value or a tagged error from errors.go.
type Engine struct {
	config   Config
	gateway  IdentityGateway
	profiles ProfileStore
	mirror   MirrorStore
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
}

// Close releases engine-owned background resources. It drains and stops the
// audit dispatcher; in-flight workflow calls are unaffected.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
