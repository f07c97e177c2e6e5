package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billdesk/internal/clock"
)

const keySession = "billdesk:session:%s"

type RedisStore struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisStore(client *redis.Client, clk clock.Clock) *RedisStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &RedisStore{client: client, clock: clk}
}

func (r *RedisStore) Save(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(r.clock.Now())
		if ttl <= 0 {
			return nil
		}
	}
	return r.client.Set(ctx, fmt.Sprintf(keySession, sess.ID), payload, ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := r.client.Get(ctx, fmt.Sprintf(keySession, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, fmt.Sprintf(keySession, id)).Err()
}
