package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/logic/ixparser/serumdex"
	"serum-indexer-sol/internal/mq"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/pkg/sqldb"

	"github.com/redis/go-redis/v9"
)

const (
	KindLog    = "log"
	KindMemory = "memory"
	KindKafka  = "kafka"
	KindRedis  = "redis"
	KindSQL    = "sql"
)

// Backends 持有配置中启用的全部 Sink 以及它们的释放函数
type Backends struct {
	Sink    entity.Sink
	Memory  *MemorySink // 仅在启用 memory 时非空
	closers []func()
}

// Close 按创建的逆序释放资源
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// New 根据配置创建 Sink；kinds 为空时只输出日志。
// 任一后端创建失败时会释放已创建的后端。
func New(ctx context.Context, cfg config.SinkConfig) (_ *Backends, err error) {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = []string{KindLog}
	}

	b := &Backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	var sinks MultiSink
	seen := make(map[string]struct{}, len(kinds))
	for _, raw := range kinds {
		kind := strings.ToLower(strings.TrimSpace(raw))
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}

		var s entity.Sink
		switch kind {
		case KindLog:
			s = LogSink{}
		case KindMemory:
			b.Memory = NewMemorySink()
			s = b.Memory
		case KindKafka:
			s, err = b.newKafka(cfg.Kafka)
		case KindRedis:
			s, err = b.newRedis(ctx, cfg.Redis)
		case KindSQL:
			s, err = b.newSQL(ctx, cfg.SQL)
		default:
			err = fmt.Errorf("unknown sink kind %q", raw)
		}
		if err != nil {
			return nil, err
		}
		logger.Infof("[sink] enabled %s", kind)
		sinks = append(sinks, s)
	}

	if len(sinks) == 1 {
		b.Sink = sinks[0]
	} else {
		b.Sink = sinks
	}
	return b, nil
}

func (b *Backends) newKafka(cfg config.KafkaConfig) (entity.Sink, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka sink: brokers is empty")
	}
	producer, err := mq.NewKafkaProducer(cfg.ToKafkaOption())
	if err != nil {
		return nil, fmt.Errorf("kafka sink: %w", err)
	}
	b.closers = append(b.closers, func() {
		if remaining := producer.Flush(5000); remaining > 0 {
			logger.Warnf("[sink] kafka close with %d unflushed messages", remaining)
		}
		producer.Close()
	})
	timeout := time.Duration(cfg.SendTimeoutMs) * time.Millisecond
	return NewKafkaSink(producer, cfg.Topic, cfg.Partitions, timeout, serumdex.EntityTypeCode), nil
}

func (b *Backends) newRedis(ctx context.Context, cfg config.RedisConfig) (entity.Sink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis sink: addr is empty")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	b.closers = append(b.closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis sink ping %s: %w", cfg.Addr, err)
	}
	return NewRedisSink(rdb, cfg.Prefix, time.Duration(cfg.TTLSec)*time.Second), nil
}

func (b *Backends) newSQL(ctx context.Context, cfg config.SQLConfig) (entity.Sink, error) {
	db, dialect, err := sqldb.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql sink: %w", err)
	}
	b.closers = append(b.closers, func() { _ = db.Close() })
	s, err := NewSQLSink(db, dialect, cfg.Table)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
