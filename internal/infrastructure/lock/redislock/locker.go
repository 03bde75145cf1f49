package redislock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const releaseTimeout = 3 * time.Second

// Only the holder's token may delete the key.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
}

// Locker is a run guard shared by every replica. The key expires after ttl so a
// crashed holder cannot block a trigger forever.
type Locker struct {
	client client
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

func New(client client, prefix string, ttl time.Duration, logger *logging.Logger) *Locker {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "matchsync:lock:"
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Dial parses a redis:// URL and pings the server.
func Dial(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("%w: redis lock %s: %v", usecase.ErrDependencyUnavailable, key, err)
	}
	if !ok {
		return func() {}, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(ctx, fullKey, token) })
	}, true, nil
}

func (l *Locker) release(ctx context.Context, fullKey, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := l.client.Eval(releaseCtx, releaseScript, []string{fullKey}, token).Err(); err != nil {
		l.logger.WarnContext(releaseCtx, "release run lock failed", "key", fullKey, "error", err)
	}
}
