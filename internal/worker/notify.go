package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"resumeforge/internal/tasks"
)

// Notifier 把导出结果推送给用户。
type Notifier interface {
	Notify(ctx context.Context, userID uint, msg tasks.PDFNotification) error
}

// RedisNotifier 通过 Redis Pub/Sub 发布通知，API 进程的 WebSocket 负责转发。
type RedisNotifier struct {
	client redis.Cmdable
}

// NewRedisNotifier 创建 Redis 通知器。
func NewRedisNotifier(client redis.Cmdable) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID uint, msg tasks.PDFNotification) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.NotifyChannel(userID)
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
