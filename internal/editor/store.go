package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore 持久化每份简历的编辑历史。
type HistoryStore interface {
	Load(ctx context.Context, resumeID uint) (*History, error)
	Save(ctx context.Context, resumeID uint, h *History) error
	Delete(ctx context.Context, resumeID uint) error
}

const historyKeyPattern = "editor:history:%d"

func historyKey(resumeID uint) string {
	return fmt.Sprintf(historyKeyPattern, resumeID)
}

// RedisHistoryStore 把历史序列化为 JSON 存入 Redis，并在每次写入时续期。
type RedisHistoryStore struct {
	client redis.Cmdable
	ttl    time.Duration
	limit  int
}

// NewRedisHistoryStore 构造基于 Redis 的历史存储。
func NewRedisHistoryStore(client redis.Cmdable, ttl time.Duration, limit int) *RedisHistoryStore {
	return &RedisHistoryStore{client: client, ttl: ttl, limit: limit}
}

func (s *RedisHistoryStore) Load(ctx context.Context, resumeID uint) (*History, error) {
	data, err := s.client.Get(ctx, historyKey(resumeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewHistory(s.limit), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return decodeHistory(data, s.limit)
}

func (s *RedisHistoryStore) Save(ctx context.Context, resumeID uint, h *History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.client.Set(ctx, historyKey(resumeID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) Delete(ctx context.Context, resumeID uint) error {
	return s.client.Del(ctx, historyKey(resumeID)).Err()
}

// MemoryHistoryStore 是进程内实现，用于测试与未配置 Redis 的单实例部署。
type MemoryHistoryStore struct {
	mu    sync.Mutex
	data  map[uint][]byte
	limit int
}

func NewMemoryHistoryStore(limit int) *MemoryHistoryStore {
	return &MemoryHistoryStore{data: map[uint][]byte{}, limit: limit}
}

func (s *MemoryHistoryStore) Load(_ context.Context, resumeID uint) (*History, error) {
	s.mu.Lock()
	data, ok := s.data[resumeID]
	s.mu.Unlock()
	if !ok {
		return NewHistory(s.limit), nil
	}
	return decodeHistory(data, s.limit)
}

func (s *MemoryHistoryStore) Save(_ context.Context, resumeID uint, h *History) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	s.mu.Lock()
	s.data[resumeID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryHistoryStore) Delete(_ context.Context, resumeID uint) error {
	s.mu.Lock()
	delete(s.data, resumeID)
	s.mu.Unlock()
	return nil
}

func decodeHistory(data []byte, limit int) (*History, error) {
	h := NewHistory(limit)
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if h.Cursor >= len(h.Entries) {
		h.Cursor = len(h.Entries) - 1
	}
	h.SetLimit(limit)
	return h, nil
}
