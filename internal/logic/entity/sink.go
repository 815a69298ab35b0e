package entity

import (
	"context"
	"errors"
	"fmt"
)

// ErrSink 标识实体写入失败，可用 errors.Is 判断
var ErrSink = errors.New("entity sink failed")

// Sink 是持久化/索引后端的最小契约：保存一条具名 Record。
// 实现方负责并发安全；调用方不做批量、重试或聚合。
type Sink interface {
	Save(ctx context.Context, entityType string, rec *Record) error
}

// SinkFunc 允许用普通函数实现 Sink
type SinkFunc func(ctx context.Context, entityType string, rec *Record) error

func (f SinkFunc) Save(ctx context.Context, entityType string, rec *Record) error {
	return f(ctx, entityType, rec)
}

// SinkError 包装后端返回的错误，携带实体类型与记录 ID
type SinkError struct {
	EntityType string
	RecordID   string
	Err        error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("save %s id=%s: %v", e.EntityType, e.RecordID, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

func (e *SinkError) Is(target error) bool {
	return target == ErrSink
}
