package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/safety"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey is the Redis list dispatch workers consume from.
const DefaultQueueKey = "emergency_calls"

// listPusher is the slice of redis.Cmdable the queue needs.
type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// QueueDispatcher hands the call to a backend worker by pushing a CallEvent
// onto a Redis list.
type QueueDispatcher struct {
	client listPusher
	key    string
	caller Caller
	logger *logger.Logger
	now    func() time.Time
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 4,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

// NewQueueDispatcher builds a dispatcher pushing to key (DefaultQueueKey if
// empty).
func NewQueueDispatcher(client redis.Cmdable, key string, caller Caller, log *logger.Logger) *QueueDispatcher {
	return newQueueDispatcher(client, key, caller, log)
}

func newQueueDispatcher(client listPusher, key string, caller Caller, log *logger.Logger) *QueueDispatcher {
	if key == "" {
		key = DefaultQueueKey
	}
	if log == nil {
		log = logger.Nop()
	}
	return &QueueDispatcher{
		client: client,
		key:    key,
		caller: caller,
		logger: log,
		now:    time.Now,
	}
}

// Call enqueues one CallEvent.
func (d *QueueDispatcher) Call(ctx context.Context) error {
	event := d.caller.event(d.now())
	payload, err := json.Marshal(event)
	if err != nil {
		return safety.NewDispatchError(safety.KindRejected, fmt.Errorf("marshal call event: %w", err))
	}

	if err := d.client.LPush(ctx, d.key, payload).Err(); err != nil {
		return safety.NewDispatchError(safety.KindUnreachable, fmt.Errorf("push call event to %s: %w", d.key, err))
	}

	d.logger.Info("dispatch %s queued on %s", event.RequestID, d.key)
	return nil
}

// Ping checks that Redis answers.
func (d *QueueDispatcher) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil {
		return safety.NewDispatchError(safety.KindUnreachable, fmt.Errorf("ping redis: %w", err))
	}
	return nil
}
