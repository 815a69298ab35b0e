package progress

import (
	"sync"
)

// slotBuffer 暂存待批量落库的 slot 记录
type slotBuffer struct {
	mu     sync.Mutex
	buffer []*SlotRecord
}

func newSlotBuffer() *slotBuffer {
	return &slotBuffer{}
}

func (b *slotBuffer) Add(record *SlotRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = append(b.buffer, record)
}

// Flush 取出并清空缓冲区
func (b *slotBuffer) Flush() []*SlotRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	flushed := b.buffer
	b.buffer = nil
	return flushed
}

func (b *slotBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}
