package sink

import (
	"context"
	"fmt"
	"time"

	"serum-indexer-sol/internal/logic/entity"

	"github.com/redis/go-redis/v9"
)

// RedisSink 以 Hash 保存 Record，并按 slot 维护每种实体类型的有序索引：
//
//	{prefix}:{entity_type}:{id}        HASH  属性 + _slot/_signature/...
//	{prefix}:{entity_type}:by_slot     ZSET  score=slot member=id
type RedisSink struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisSink(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisSink {
	if prefix == "" {
		prefix = "serum"
	}
	return &RedisSink{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisSink) recordKey(entityType, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, entityType, id)
}

func (r *RedisSink) indexKey(entityType string) string {
	return fmt.Sprintf("%s:%s:by_slot", r.prefix, entityType)
}

// hashFields 属性值统一写成规范文本，元数据字段以 "_" 开头避免与属性重名
func hashFields(rec *entity.Record) map[string]any {
	fields := make(map[string]any, len(rec.Attributes)+5)
	for k, v := range rec.Attributes {
		fields[k] = v.String()
	}
	fields["_slot"] = rec.Meta.Slot
	fields["_block_time"] = rec.Meta.BlockTime
	fields["_signature"] = rec.Meta.Signature
	fields["_tx_index"] = rec.Meta.TxIndex
	fields["_ix_index"] = fmt.Sprintf("%d.%d", rec.Meta.IxIndex, rec.Meta.InnerIndex)
	return fields
}

func (r *RedisSink) Save(ctx context.Context, entityType string, rec *entity.Record) error {
	key := r.recordKey(entityType, rec.ID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, hashFields(rec))
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	pipe.ZAdd(ctx, r.indexKey(entityType), redis.Z{Score: float64(rec.Meta.Slot), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save %s: %w", key, err)
	}
	return nil
}
