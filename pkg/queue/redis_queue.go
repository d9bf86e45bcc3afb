package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// NotificationMessage is the wire form of a workflow notification.
type NotificationMessage struct {
	NotificationID uint                   `json:"notification_id"`
	UserID         uint                   `json:"user_id"`
	Kind           string                 `json:"kind"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	Created        int64                  `json:"created"`
}

// Config holds the Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// RedisQueue delivers notifications through Redis: a per-user list keeps
// messages for offline catch-up, and a per-user channel pushes them to live
// WebSocket subscribers.
type RedisQueue struct {
	client *redis.Client
	prefix string
}

func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "renthub:notify"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping tests the Redis connection.
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// GetClient exposes the raw client for pub/sub consumers.
func (q *RedisQueue) GetClient() *redis.Client {
	return q.client
}

// Publish enqueues a notification for the user and announces it on the
// user's live channel.
func (q *RedisQueue) Publish(msg *NotificationMessage) error {
	ctx := context.Background()

	if msg.Created == 0 {
		msg.Created = time.Now().Unix()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %v", err)
	}

	listKey := q.getListKey(msg.UserID)
	if err := q.client.LPush(ctx, listKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %v", err)
	}

	// keep a bounded backlog per user
	q.client.LTrim(ctx, listKey, 0, 199)
	q.client.Expire(ctx, listKey, 7*24*time.Hour)

	// best effort: nobody may be listening
	q.client.Publish(ctx, q.ChannelKey(msg.UserID), data)

	return nil
}

// Backlog returns up to limit queued notifications for the user, newest
// first.
func (q *RedisQueue) Backlog(userID uint, limit int64) ([]*NotificationMessage, error) {
	ctx := context.Background()

	raw, err := q.client.LRange(ctx, q.getListKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notification backlog: %v", err)
	}

	messages := make([]*NotificationMessage, 0, len(raw))
	for _, item := range raw {
		var msg NotificationMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

// ChannelKey is the pub/sub channel for a user's live notifications.
func (q *RedisQueue) ChannelKey(userID uint) string {
	return fmt.Sprintf("%s:channel:%d", q.prefix, userID)
}

func (q *RedisQueue) getListKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", q.prefix, userID)
}
