package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatflowers/memberpay/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyNamespace     = "memberpay"
	verifyLockPrefix = "verify_lock"
	defaultLockTTL   = 30 * time.Second
)

// compare-and-delete: only the owner may release
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Eval(context.Context, string, []string, ...any) *redis.Cmd
}

// Client holds the optional redis connection. A nil *Client means redis is
// not configured.
type Client struct {
	store   cmdable
	raw     *redis.Client
	lockTTL time.Duration
	log     *zap.SugaredLogger
}

func newClient(store cmdable, lockTTL time.Duration, log *zap.SugaredLogger) *Client {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{store: store, lockTTL: lockTTL, log: log}
}

// New connects when redis.addr is set and returns nil otherwise.
func New(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (*Client, error) {
	if cfg.Redis.Addr == "" {
		log.Infow("redis not configured, verification lock disabled")
		return nil, nil
	}
	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c := newClient(raw, cfg.Redis.LockTTL, log)
	c.raw = raw

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := raw.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			log.Infow("redis connection established", "addr", cfg.Redis.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return raw.Close()
		},
	})
	return c, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

func (c *Client) VerifyLockKey(orderID string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, verifyLockPrefix, orderID)
}

// TryLock takes the per-order verification lock. When acquired is false
// another verification holds it. release is never nil.
func (c *Client) TryLock(ctx context.Context, orderID string) (release func(), acquired bool, err error) {
	noop := func() {}
	if orderID == "" {
		return noop, false, errors.New("lock key is empty")
	}
	key := c.VerifyLockKey(orderID)
	token := uuid.NewString()

	ok, err := c.store.SetNX(ctx, key, token, c.lockTTL).Result()
	if err != nil {
		return noop, false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return noop, false, nil
	}
	return func() {
		// release must run even when the request context is already done
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := c.store.Eval(rctx, releaseScript, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			c.log.Warnw("release verify lock failed", "key", key, "error", err)
		}
	}, true, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
