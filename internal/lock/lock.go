package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/openunited/platform/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keySettleOrder = "settle:order:%s:%s"

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a single-holder lease on a redis key. Release only deletes the
// key when the caller still holds the token it was issued.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(releaseScript),
	}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// SettlementLocks serializes settlement of one order across instances.
// Within a single instance the status guards already prevent double
// settlement; the lease covers deployments running more than one replica.
// Disabled (no redis configured) it admits every caller.
type SettlementLocks struct {
	enabled bool
	locker  *Locker
	ttl     time.Duration
}

func NewSettlementLocks(cfg config.Config) *SettlementLocks {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	ttl := time.Duration(cfg.SettleLockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &SettlementLocks{
		enabled: true,
		locker:  NewLocker(client),
		ttl:     ttl,
	}
}

func (s *SettlementLocks) Enabled() bool {
	return s != nil && s.enabled
}

func (s *SettlementLocks) TryLockOrder(ctx context.Context, kind string, orderID snowflake.ID) (string, bool, error) {
	if !s.Enabled() {
		return "", true, nil
	}
	return s.locker.TryLock(ctx, fmt.Sprintf(keySettleOrder, kind, orderID), s.ttl)
}

func (s *SettlementLocks) ReleaseOrder(ctx context.Context, kind string, orderID snowflake.ID, token string) error {
	if !s.Enabled() {
		return nil
	}
	return s.locker.Release(ctx, fmt.Sprintf(keySettleOrder, kind, orderID), token)
}
