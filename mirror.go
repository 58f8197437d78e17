package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Well-known mirror keys. Workflows only write keys they own and every write
// replaces the whole value, so no cross-key coordination is needed.
const (
	// MirrorKeyAuthUser holds the current session mirror ({email, uid} JSON).
	MirrorKeyAuthUser = "authUser"
	// MirrorKeyUserData holds the legacy full-form snapshot. It is no longer
	// authoritative and is written only when Mirror.WriteLegacySnapshot is set.
	MirrorKeyUserData = "userData"
)

// MirrorStore is the durable, process-surviving key-value cache behind the
// session mirror. Operations may suspend but never panic; infrastructure
// failures are surfaced as errors wrapping [ErrMirrorUnavailable], and a
// missing key is not an error.
type MirrorStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type redisMirrorStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisMirrorStore returns a MirrorStore backed by Redis. Keys are stored
// under prefix with no expiry; the mirror survives process restarts for as
// long as the Redis instance persists.
func NewRedisMirrorStore(client *redis.Client, prefix string) MirrorStore {
	return &redisMirrorStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *redisMirrorStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *redisMirrorStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMirrorUnavailable, err)
	}
	return value, true, nil
}

func (s *redisMirrorStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorUnavailable, err)
	}
	return nil
}

func (s *redisMirrorStore) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMirrorUnavailable, err)
	}
	return nil
}
