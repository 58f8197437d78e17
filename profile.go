package authflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileStore is the remote document store holding child/parent metadata,
// one document per account keyed by uid. The provisioning workflow treats
// every write as best-effort.
type ProfileStore interface {
	WriteProfile(ctx context.Context, uid string, profile Profile) error
}

const profileKeyPrefix = "afp"

// profileDoc is the wire shape of a profile document. Field names match the
// documents the hosted document store holds for accounts created by older
// clients.
type profileDoc struct {
	ChildName   string `json:"childName"`
	ChildAge    string `json:"childAge"`
	ParentName  string `json:"parentName"`
	ParentPhone string `json:"parentPhone"`
	Email       string `json:"email"`
	CreatedAt   string `json:"createdAt"`
}

type redisProfileStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisProfileStore returns a ProfileStore backed by Redis, for
// self-hosted deployments that keep profile documents next to the mirror.
func NewRedisProfileStore(client *redis.Client, prefix string) ProfileStore {
	if prefix == "" {
		prefix = profileKeyPrefix
	}
	return &redisProfileStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *redisProfileStore) key(uid string) string {
	return s.prefix + ":" + uid
}

func (s *redisProfileStore) WriteProfile(ctx context.Context, uid string, profile Profile) error {
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	encoded, err := json.Marshal(profileDoc{
		ChildName:   profile.ChildName,
		ChildAge:    profile.ChildAge,
		ParentName:  profile.ParentName,
		ParentPhone: profile.ParentPhone,
		Email:       profile.Email,
		CreatedAt:   createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(uid), encoded, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	return nil
}
