package sink

import (
	"context"
	"sync"

	"serum-indexer-sol/internal/logic/entity"
)

// MemorySink 将 Record 保存在进程内，按实体类型分组；用于测试与 CLI
type MemorySink struct {
	mu      sync.RWMutex
	records []*entity.Record
	byType  map[string][]*entity.Record
}

func NewMemorySink() *MemorySink {
	return &MemorySink{byType: make(map[string][]*entity.Record)}
}

func (m *MemorySink) Save(_ context.Context, entityType string, rec *entity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	m.byType[entityType] = append(m.byType[entityType], rec)
	return nil
}

// Records 返回按写入顺序排列的全部 Record
func (m *MemorySink) Records() []*entity.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*entity.Record, len(m.records))
	copy(out, m.records)
	return out
}

func (m *MemorySink) ByType(entityType string) []*entity.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byType[entityType]
	out := make([]*entity.Record, len(list))
	copy(out, list)
	return out
}

func (m *MemorySink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
