package progress

import (
	"context"
	"time"

	"serum-indexer-sol/internal/pkg/logger"
)

// 每秒约 2.5 个 slot，GC 保留最近 7 天
const gcRetainSlots = uint64(7 * 24 * 3600 * 5 / 2)

// ProgressManager 统一封装 状态缓存 + DB + 缓冲，控制进度判重与写入
type ProgressManager struct {
	status          StatusStore
	db              *DBProgressStore // 可为 nil，此时只维护状态缓存
	buffer          *slotBuffer
	recentThreshold time.Duration // 新 block 的判断阈值
}

func NewProgressManager(status StatusStore, db *DBProgressStore, recentThresholdSec int) *ProgressManager {
	if status == nil {
		status = NewMemoryStatusStore()
	}
	return &ProgressManager{
		status:          status,
		db:              db,
		buffer:          newSlotBuffer(),
		recentThreshold: time.Duration(recentThresholdSec) * time.Second,
	}
}

// ShouldProcessSlot 判断是否需要处理该 slot：
//   - block 是"最近的"，直接处理；
//   - 否则先查状态缓存，已成功处理的跳过；
//   - 缓存未命中时 fallback 到 DB，并回填缓存。
func (pm *ProgressManager) ShouldProcessSlot(ctx context.Context, slot uint64, blockTime int64) (bool, error) {
	if blockTime > 0 && time.Since(time.Unix(blockTime, 0)) <= pm.recentThreshold {
		return true, nil
	}

	status, err := pm.status.GetSlotStatus(ctx, slot)
	if err != nil {
		return false, err
	}
	switch status {
	case SlotProcessed:
		return false, nil
	case SlotInvalid, SlotPending:
		return true, nil
	}

	if pm.db == nil {
		return true, nil
	}
	status, err = pm.db.GetSlotStatus(ctx, slot)
	if err != nil {
		return false, err
	}
	if status == SlotProcessed {
		_ = pm.status.MarkSlotStatus(ctx, slot, SlotProcessed)
		return false, nil
	}
	return true, nil
}

// MarkSlotStatus 标记某 slot 的处理状态，同时更新状态缓存与 slotBuffer（供后续批量写入 DB）
func (pm *ProgressManager) MarkSlotStatus(ctx context.Context, rec SlotRecord) error {
	switch rec.Status {
	case SlotProcessed, SlotInvalid, SlotPending:
	default:
		return nil
	}
	if err := pm.status.MarkSlotStatus(ctx, rec.Slot, rec.Status); err != nil {
		return err
	}
	if rec.Status != SlotPending && pm.db != nil {
		pm.buffer.Add(&rec)
	}
	return nil
}

// Flush 将缓冲区中的记录写入 DB
func (pm *ProgressManager) Flush(ctx context.Context) error {
	if pm.db == nil {
		return nil
	}
	list := pm.buffer.Flush()
	if len(list) == 0 {
		return nil
	}
	return pm.db.BatchUpsertSlots(ctx, list)
}

// StartFlushLoop 定时 flush，ctx 结束时做最后一次 flush 后返回
func (pm *ProgressManager) StartFlushLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := pm.Flush(flushCtx); err != nil {
				logger.Errorf("[progress] final flush failed: %v", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := pm.Flush(ctx); err != nil {
				logger.Errorf("[progress] flush failed: %v", err)
			}
		}
	}
}

// StartGCLoop 启动后台 GC 清理（每 interval 执行一次）
func (pm *ProgressManager) StartGCLoop(ctx context.Context, interval time.Duration) {
	if pm.db == nil {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.gcOnce(ctx)
			}
		}
	}()
}

func (pm *ProgressManager) gcOnce(ctx context.Context) {
	latest, err := pm.db.LatestSlot(ctx)
	if err != nil {
		logger.Warnf("[progress] gc: %v", err)
		return
	}
	if latest <= gcRetainSlots {
		return
	}
	n, err := pm.db.DeleteSlotsBefore(ctx, latest-gcRetainSlots)
	if err != nil {
		logger.Warnf("[progress] gc: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("[progress] gc deleted %d old progress rows", n)
	}
}
