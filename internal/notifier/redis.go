package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/models"
)

// RedisPublisher fans stored notifications out over Redis pub/sub so that
// whichever process holds the recipient's live connection can forward it.
// Each recipient has its own channel: "<prefix>:<userID>".
type RedisPublisher struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

func NewRedisClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisPublisher(rdb goredis.UniversalClient, prefix string, log *logger.Logger) *RedisPublisher {
	if prefix == "" {
		prefix = "notifications"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix, log: log.With("component", "redis_publisher")}
}

func (p *RedisPublisher) Channel(userID uint) string {
	return fmt.Sprintf("%s:%d", p.prefix, userID)
}

func (p *RedisPublisher) PublishNotification(ctx context.Context, n models.Notification) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.Channel(n.UserID), raw).Err()
}

// Subscribe delivers notifications published for userID to onMsg until ctx is
// done or the subscription closes. It blocks for the life of the stream.
func (p *RedisPublisher) Subscribe(ctx context.Context, userID uint, onMsg func(models.Notification) error) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	sub := p.rdb.Subscribe(ctx, p.Channel(userID))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	return p.forward(ctx, sub.Channel(), onMsg)
}

// forward decodes pub/sub payloads and hands them to onMsg. Undecodable
// payloads are logged and skipped; an onMsg error ends the stream.
func (p *RedisPublisher) forward(ctx context.Context, ch <-chan *goredis.Message, onMsg func(models.Notification) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if m == nil {
				continue
			}
			var n models.Notification
			if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
				p.log.Warn("bad notification payload", "channel", m.Channel, "error", err)
				continue
			}
			if err := onMsg(n); err != nil {
				return err
			}
		}
	}
}
