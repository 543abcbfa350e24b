package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sabi-web/sabi/internal/config"
)

const (
	keyPrefix = "session:"

	// scanPageSize bounds how many keys ClearAll asks the backend for per
	// round trip.
	scanPageSize = 100
)

// RedisStore persists sessions in Redis under "session:{token}". Every call is
// one round trip; there is no in-process caching.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisClient builds the shared client from config. The client pools
// connections internally and is safe for concurrent use.
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// NewRedisStore wraps an existing client. Records never expire on their own;
// they are removed by Destroy or ClearAll.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(token string) string {
	return keyPrefix + token
}

func (s *RedisStore) Load(ctx context.Context, token string) (*Session, bool, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("decode session record: %w", err)
	}
	return &sess, true, nil
}

func (s *RedisStore) Store(ctx context.Context, sess *Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("serialize session record: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), raw, 0).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return sess.ID, nil
}

func (s *RedisStore) Destroy(ctx context.Context, sess *Session) error {
	// DEL on a missing key deletes zero keys and reports no error, which is
	// exactly the idempotence we want.
	if err := s.rdb.Del(ctx, sessionKey(sess.ID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ClearAll walks the keyspace with SCAN so the backend is never asked for an
// unbounded result set. Iteration ends when the cursor returns to zero.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", scanPageSize).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
