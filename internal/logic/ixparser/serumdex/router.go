package serumdex

import (
	"context"
	"encoding/hex"

	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/types"

	"github.com/google/uuid"
)

// Router 负责 解码 → 投影 → 写入 Sink，每条成功解码的指令恰好调用一次 Save。
// Router 本身无状态，可被多个 goroutine 共享。
type Router struct {
	sink  entity.Sink
	newID func() string
}

type RouterOption func(*Router)

// WithIDGenerator 替换记录 ID 生成器（测试中用于固定输出）
func WithIDGenerator(fn func() string) RouterOption {
	return func(r *Router) {
		if fn != nil {
			r.newID = fn
		}
	}
}

func NewRouter(sink entity.Sink, opts ...RouterOption) *Router {
	r := &Router{
		sink:  sink,
		newID: NewRecordID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRecordID 生成 32 位小写十六进制的随机 UUID（不带连字符）
func NewRecordID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Route 处理一条原始指令。
// 解码失败不是错误：返回 (nil, nil)，只记录 debug 日志，不调用 Sink。
// Sink 写入失败返回 *entity.SinkError。
func (r *Router) Route(ctx context.Context, meta entity.Meta, accounts []types.Pubkey, data []byte) (*entity.Record, error) {
	ix, err := DecodeDetailed(data)
	if err != nil {
		logger.Debugf("[serumdex] skip instruction: slot=%d tx=%s ix=%d inner=%d err=%v",
			meta.Slot, meta.Signature, meta.IxIndex, meta.InnerIndex, err)
		return nil, nil
	}

	rec := Project(ix, accounts, r.newID())
	rec.Meta = meta
	if err := r.Emit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Emit 以 Record 的实体类型写入 Sink
func (r *Router) Emit(ctx context.Context, rec *entity.Record) error {
	if err := r.sink.Save(ctx, rec.EntityType, rec); err != nil {
		return &entity.SinkError{
			EntityType: rec.EntityType,
			RecordID:   rec.ID,
			Err:        err,
		}
	}
	return nil
}
