package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	slotKeyPrefix = "progress:serum:slot"
	slotTTL       = 7 * 24 * time.Hour
)

// RedisProgressStore 管理 Redis 中的 slot 状态记录（幂等控制）
type RedisProgressStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisProgressStore(rdb redis.UniversalClient) *RedisProgressStore {
	return &RedisProgressStore{rdb: rdb, ttl: slotTTL}
}

func (r *RedisProgressStore) getKey(slot uint64) string {
	return fmt.Sprintf("%s:%d", slotKeyPrefix, slot)
}

// GetSlotStatus 获取 slot 的状态（Unknown / Processed / Invalid / Pending）
func (r *RedisProgressStore) GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error) {
	val, err := r.rdb.Get(ctx, r.getKey(slot)).Int()
	switch {
	case errors.Is(err, redis.Nil):
		return SlotUnknown, nil
	case err != nil:
		return SlotUnknown, fmt.Errorf("redis get error: %w", err)
	}
	switch SlotStatus(val) {
	case SlotProcessed, SlotInvalid, SlotPending:
		return SlotStatus(val), nil
	default:
		return SlotUnknown, nil
	}
}

func (r *RedisProgressStore) MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error {
	return r.rdb.Set(ctx, r.getKey(slot), int(status), r.ttl).Err()
}

// MemoryStatusStore 是进程内的 StatusStore，未配置 Redis 时使用
type MemoryStatusStore struct {
	mu     sync.RWMutex
	status map[uint64]SlotStatus
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{status: make(map[uint64]SlotStatus)}
}

func (m *MemoryStatusStore) GetSlotStatus(_ context.Context, slot uint64) (SlotStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status[slot], nil
}

func (m *MemoryStatusStore) MarkSlotStatus(_ context.Context, slot uint64, status SlotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[slot] = status
	return nil
}
