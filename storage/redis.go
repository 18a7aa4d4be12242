package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/utils/logger"
)

const (
	defaultKeyPrefix     = "portal:session:"
	defaultTTL           = 7 * 24 * time.Hour
	defaultSubmitLockTTL = 30 * time.Second
	releaseTimeout       = 2 * time.Second
)

// releaseScript drops the submit lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	KeyPrefix string
	// TTL caps how long an idle session survives. Each Save refreshes it.
	TTL           time.Duration
	SubmitLockTTL time.Duration
}

// RedisBackend stores each visitor's record as a hash
// <prefix><session id> with fields access_token, refresh_token and role.
type RedisBackend struct {
	client redis.UniversalClient
	cfg    RedisConfig
	now    func() time.Time
}

func NewRedisBackend(client redis.UniversalClient, cfg RedisConfig) *RedisBackend {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.SubmitLockTTL <= 0 {
		cfg.SubmitLockTTL = defaultSubmitLockTTL
	}
	return &RedisBackend{client: client, cfg: cfg, now: time.Now}
}

func (b *RedisBackend) Scope(sessionID string) Store {
	key := b.cfg.KeyPrefix + sessionID
	return &redisStore{backend: b, key: key, lockKey: key + ":submit"}
}

type redisStore struct {
	backend *RedisBackend
	key     string
	lockKey string
}

func (s *redisStore) Load(ctx context.Context) (Record, error) {
	fields, err := s.backend.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("load session %s: %w", s.key, err)
	}

	rec := Record{
		AccessToken:  fields[KeyAccessToken],
		RefreshToken: fields[KeyRefreshToken],
	}
	if role, ok := enums.ParseRole(fields[KeyRole]); ok {
		rec.Role = role
	}
	return rec, nil
}

func (s *redisStore) Save(ctx context.Context, rec Record) error {
	if !rec.Complete() {
		return ErrIncompleteRecord
	}

	ttl := TokenTTL(rec.AccessToken, s.backend.cfg.TTL, s.backend.now())
	_, err := s.backend.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, map[string]interface{}{
			KeyAccessToken:  rec.AccessToken,
			KeyRefreshToken: rec.RefreshToken,
			KeyRole:         string(rec.Role),
		})
		pipe.Expire(ctx, s.key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.key, err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.backend.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", s.key, err)
	}
	return nil
}

func (s *redisStore) AcquireSubmit(ctx context.Context) (func(), error) {
	owner := uuid.NewString()
	ok, err := s.backend.client.SetNX(ctx, s.lockKey, owner, s.backend.cfg.SubmitLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submit lock %s: %w", s.lockKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, s.backend.client, []string{s.lockKey}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
			// The lock still expires on its own after SubmitLockTTL.
			logger.LogWarn("release submit lock failed", zap.String("key", s.lockKey), zap.Error(err))
		}
	}, nil
}
