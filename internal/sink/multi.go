package sink

import (
	"context"
	"errors"

	"serum-indexer-sol/internal/logic/entity"
)

// MultiSink 依次写入所有后端；任一失败都会返回，但不影响其它后端的写入
type MultiSink []entity.Sink

func (m MultiSink) Save(ctx context.Context, entityType string, rec *entity.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, entityType, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
