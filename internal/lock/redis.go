package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultKey = "leasesync:pass"

// releaseScript deletes the key only while it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every instance pointed at the same Redis
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logrus.Entry
}

// InitRedis connects to Redis and verifies the connection
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedis creates a Redis backed lock. The TTL bounds how long a crashed holder blocks others.
func NewRedis(client *redis.Client, ttl time.Duration, logger *logrus.Entry) *Redis {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Redis{
		client: client,
		key:    defaultKey,
		ttl:    ttl,
		logger: logger.WithField("component", "lock"),
	}
}

// Acquire implements Locker with SET NX PX
func (r *Redis) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func() {
		// the pass context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil && err != redis.Nil {
			r.logger.Warnf("Failed to release lock: %v", err)
		}
	}
	return release, nil
}
