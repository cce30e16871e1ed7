package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"unitd/internal/converter"
	"unitd/pkg/platform/sentinel"
)

const sessionKeyPrefix = "batch:session:"

// Redis is the production session store for multi-instance deployments.
// Sessions are JSON blobs with a TTL; Put runs under WATCH so two callers
// racing on the same id cannot silently lose an update.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Get(ctx context.Context, id string) (converter.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return converter.Session{}, sentinel.ErrNotFound
	}
	if err != nil {
		return converter.Session{}, fmt.Errorf("get session: %w", err)
	}
	var sess converter.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return converter.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *Redis) Put(ctx context.Context, session converter.Session, ttl time.Duration) (converter.Session, error) {
	key := sessionKeyPrefix + session.ID
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if session.Version != 0 {
				return sentinel.ErrConflict
			}
		case err != nil:
			return fmt.Errorf("get session: %w", err)
		default:
			var current converter.Session
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
			if current.Version != session.Version {
				return sentinel.ErrConflict
			}
		}
		session.Version++
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return converter.Session{}, sentinel.ErrConflict
	}
	if err != nil {
		return converter.Session{}, err
	}
	return session, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
