package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
)

const (
	defaultKeyPrefix = "storefront:"
	changesChannel   = "changes"
)

// changeMessage is published on the change channel after every write.
type changeMessage struct {
	Origin string `json:"origin"`
	Change
}

// Redis stores values under a key prefix and announces every write on a
// pub/sub channel, tagged with the writing instance's origin id so an
// instance can ignore its own announcements.
type Redis struct {
	client redis.UniversalClient
	prefix string
	origin string
	logger *slog.Logger
}

// NewRedis returns a Redis store. An empty prefix selects "storefront:".
func NewRedis(client redis.UniversalClient, prefix string, logger *slog.Logger) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		client: client,
		prefix: prefix,
		origin: uuid.NewString(),
		logger: logger,
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) channel() string {
	return r.prefix + changesChannel
}

func (r *Redis) Get(ctx context.Context, key string) (_ string, err error) {
	ctx, end := database.TraceCommand(ctx, "GET", r.key(key))
	defer func() { end(err) }()

	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", notFound(key)
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceCommand(ctx, "SET", r.key(key))
	defer func() { end(err) }()

	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.announce(ctx, Change{Key: key, Value: value})
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceCommand(ctx, "DEL", r.key(key))
	defer func() { end(err) }()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	r.announce(ctx, Change{Key: key, Deleted: true})
	return nil
}

// announce publishes a write. A failed publish only delays other instances
// until their next poll, so it is logged rather than returned.
func (r *Redis) announce(ctx context.Context, c Change) {
	data, err := json.Marshal(changeMessage{Origin: r.origin, Change: c})
	if err != nil {
		return
	}
	if err := r.client.Publish(ctx, r.channel(), data).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to publish storage change",
			slog.String("key", c.Key),
			slog.String("error", err.Error()),
		)
	}
}

// Watch subscribes to the change channel and reports writes made by other
// instances. The channel is closed when ctx is done.
func (r *Redis) Watch(ctx context.Context) (<-chan Change, error) {
	sub := r.client.Subscribe(ctx, r.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel(), err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var cm changeMessage
				if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
					r.logger.WarnContext(ctx, "malformed storage change", slog.String("error", err.Error()))
					continue
				}
				if cm.Origin == r.origin {
					continue
				}
				logChange(ctx, r.logger, DriverRedis, cm.Change)
				select {
				case out <- cm.Change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
