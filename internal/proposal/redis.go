package proposal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tattoovision/internal/domain"
)

const (
	redisKeyPrefix   = "tattoovision:session:"
	redisMaxAttempts = 8
)

// RedisStore shares sessions across API replicas. Updates run as optimistic
// WATCH/MULTI transactions and retry on conflicting writers.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("proposal: session id is required")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("proposal: encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("proposal: store session: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("proposal: load session: %w", err)
	}
	return decodeSession(data)
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	key := redisKey(id)
	var updated *Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("proposal: load session: %w", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		session.UpdatedAt = time.Now().UTC()
		encoded, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("proposal: encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("proposal: session %s: too many concurrent updates", id)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("proposal: delete session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("proposal: decode session: %w", err)
	}
	if s.Proposals == nil {
		s.Proposals = []domain.GeneratedProposal{}
	}
	return &s, nil
}

var _ Store = (*RedisStore)(nil)
