package sink

import (
	"context"
	"strings"

	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/pkg/logger"
)

// LogSink 只把 Record 打到日志，未配置任何后端时使用
type LogSink struct{}

func (LogSink) Save(_ context.Context, entityType string, rec *entity.Record) error {
	logger.Infof("[sink] %s slot=%d tx=%s ix=%d.%d %s",
		entityType, rec.Meta.Slot, rec.Meta.Signature, rec.Meta.IxIndex, rec.Meta.InnerIndex, FormatAttributes(rec))
	return nil
}

// FormatAttributes 按属性名排序输出 k=v，值为空串时输出 k=""
func FormatAttributes(rec *entity.Record) string {
	var sb strings.Builder
	for i, k := range rec.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		v, _ := rec.Get(k)
		s := v.String()
		if s == "" {
			s = `""`
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(s)
	}
	return sb.String()
}
