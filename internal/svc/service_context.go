package svc

import (
	"context"
	"fmt"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/logic/ixparser"
	"serum-indexer-sol/internal/logic/progress"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/pkg/sqldb"
	"serum-indexer-sol/internal/sink"

	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含索引服务共享的资源
type ServiceContext struct {
	Config          config.IndexerConfig
	Sinks           *sink.Backends
	Parser          *ixparser.Parser
	ProgressManager *progress.ProgressManager

	closers []func()
}

// NewServiceContext 按配置初始化 Sink、指令解析器与进度管理器
func NewServiceContext(ctx context.Context, c config.IndexerConfig) (_ *ServiceContext, err error) {
	sc := &ServiceContext{Config: c}
	defer func() {
		if err != nil {
			sc.Close()
		}
	}()

	// 1. Sink
	sc.Sinks, err = sink.New(ctx, c.Sink)
	if err != nil {
		logger.Errorf("Sink 初始化失败: %v", err)
		return nil, err
	}
	sc.closers = append(sc.closers, sc.Sinks.Close)

	// 2. 指令解析器
	programIDs, err := c.ProgramIDs()
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	sc.Parser = ixparser.NewParser(sc.Sinks.Sink, programIDs)

	// 3. 进度管理器（可选）
	sc.ProgressManager, err = sc.newProgressManager(ctx, c.ProgressConf)
	if err != nil {
		logger.Errorf("进度管理器初始化失败: %v", err)
		return nil, err
	}
	return sc, nil
}

func (sc *ServiceContext) newProgressManager(ctx context.Context, c config.ProgressConfig) (*progress.ProgressManager, error) {
	threshold := c.RecentThresholdSec
	if threshold <= 0 {
		threshold = 60
	}
	if !c.Enabled {
		return progress.NewProgressManager(nil, nil, threshold), nil
	}

	var status progress.StatusStore
	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		sc.closers = append(sc.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("progress redis ping %s: %w", c.RedisAddr, err)
		}
		status = progress.NewRedisProgressStore(rdb)
	}

	var dbStore *progress.DBProgressStore
	if c.SQLDSN != "" {
		db, dialect, err := sqldb.Open(c.SQLDriver, c.SQLDSN)
		if err != nil {
			return nil, err
		}
		sc.closers = append(sc.closers, func() { _ = db.Close() })
		dbStore = progress.NewDBProgressStore(db, dialect)
		if err := dbStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}
	return progress.NewProgressManager(status, dbStore, threshold), nil
}

// Close 按初始化的逆序释放资源
func (sc *ServiceContext) Close() {
	for i := len(sc.closers) - 1; i >= 0; i-- {
		sc.closers[i]()
	}
	sc.closers = nil
}
