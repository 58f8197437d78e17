package authflow

import (
	"errors"

	internalaudit "github.com/stamfree/authflow/internal/audit"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authflow APIs.
//
// Builder instances are intended to be configured during initialization and
// then consumed exactly once by [Builder.Build].
type Builder struct {
	config Config
	redis  *redis.Client

	gateway  IdentityGateway
	profiles ProfileStore
	mirror   MirrorStore

	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client used for the default mirror and
// profile store implementations. Unnecessary when both stores are supplied
// explicitly.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithIdentityGateway supplies the remote identity provider client. Required.
func (b *Builder) WithIdentityGateway(gw IdentityGateway) *Builder {
	b.gateway = gw
	return b
}

// WithProfileStore overrides the default Redis-backed profile store.
func (b *Builder) WithProfileStore(ps ProfileStore) *Builder {
	b.profiles = ps
	return b
}

// WithMirrorStore overrides the default Redis-backed session mirror.
func (b *Builder) WithMirrorStore(ms MirrorStore) *Builder {
	b.mirror = ms
	return b
}

// WithAuditSink supplies the sink receiving engine audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the engine. The builder
// cannot be reused afterwards.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.gateway == nil {
		return nil, errors.New("identity gateway required")
	}

	mirror := b.mirror
	if mirror == nil {
		if b.redis == nil {
			return nil, errors.New("mirror store or redis client required")
		}
		mirror = NewRedisMirrorStore(b.redis, cfg.Mirror.RedisPrefix)
	}

	profiles := b.profiles
	if profiles == nil && cfg.Provision.Enabled {
		if b.redis == nil {
			return nil, errors.New("profile store or redis client required when provisioning is enabled")
		}
		profiles = NewRedisProfileStore(b.redis, "")
	}

	engine := &Engine{
		config:   cfg,
		gateway:  b.gateway,
		profiles: profiles,
		mirror:   mirror,
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
