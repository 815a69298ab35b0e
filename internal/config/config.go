package config

import (
	"strings"

	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/mq"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/types"
)

type LogConfig struct {
	Format   string `json:"format,default=console,options=console|json"` // 日志格式
	LogDir   string `json:"log_dir,default=logs"`                        // 日志目录（可为相对路径或绝对路径）
	Level    string `json:"level,default=info"`                          // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`                           // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// KafkaConfig 表示 Kafka 生产者相关配置
type KafkaConfig struct {
	Brokers       string `json:"brokers"`                    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize     int    `json:"batch_size,default=32768"`   // 批处理大小（单位字节）
	LingerMs      int    `json:"linger_ms,default=5"`        // 批处理最大延迟（毫秒）
	Topic         string `json:"topic,default=serum-market"` // Record 写入的 topic
	Partitions    int    `json:"partitions,default=8"`       // topic 分区数
	SendTimeoutMs int    `json:"send_timeout_ms,default=3000"`
}

func (c *KafkaConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []mq.TopicSpec{
			{Topic: c.Topic, Partitions: c.Partitions},
		},
	}
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,optional"`
	DB       int    `json:"db,default=0"`
	Prefix   string `json:"prefix,default=serum"`   // key 前缀
	TTLSec   int    `json:"ttl_sec,default=604800"` // Record 保留时长（秒），0 表示不过期
}

type SQLConfig struct {
	Driver string `json:"driver,default=sqlite3,options=sqlite3|mysql"`
	DSN    string `json:"dsn"`
	Table  string `json:"table,default=serum_records"`
}

// SinkConfig 选择 Record 的落地后端，可同时启用多个
type SinkConfig struct {
	Kinds []string    `json:"kinds,optional"` // log / memory / kafka / redis / sql，为空时为 log
	Kafka KafkaConfig `json:"kafka,optional"`
	Redis RedisConfig `json:"redis,optional"`
	SQL   SQLConfig   `json:"sql,optional"`
}

// ProgressConfig slot 处理进度的存储配置
type ProgressConfig struct {
	Enabled         bool   `json:"enabled,optional"`
	RedisAddr       string `json:"redis_addr,optional"`
	SQLDriver       string `json:"sql_driver,default=sqlite3,options=sqlite3|mysql"`
	SQLDSN          string `json:"sql_dsn,optional"`
	FlushIntervalMs int    `json:"flush_interval_ms,default=1000"`

	RecentThresholdSec int `json:"recent_threshold_sec,default=60"` // 判定"近期 block"的时间阈值
	GCIntervalSec      int `json:"gc_interval_sec,default=3600"`
}

// BackfillConfig 通过 RPC getBlock 回补指定 slot 区间
type BackfillConfig struct {
	Enabled   bool   `json:"enabled,optional"`
	Endpoint  string `json:"endpoint,optional"`
	FromSlot  uint64 `json:"from_slot,optional"`
	ToSlot    uint64 `json:"to_slot,optional"`
	Workers   int    `json:"workers,default=4"`
	TimeoutMs int    `json:"timeout_ms,default=10000"`
}

// GrpcConfig gRPC 客户端连接相关配置
type GrpcConfig struct {
	Enabled  bool   `json:"enabled,default=true"`
	Endpoint string `json:"endpoint,optional"` // gRPC 服务端地址
	XToken   string `json:"x_token,optional"`  // x-token 认证

	// 应用级逻辑心跳（ping）配置
	StreamPingIntervalSec int `json:"stream_ping_interval_sec,default=10"`

	// gRPC Keepalive 底层连接检测配置
	KeepalivePingIntervalSec int `json:"keepalive_ping_interval_sec,default=15"`
	KeepalivePingTimeoutSec  int `json:"keepalive_ping_timeout_sec,default=5"`

	// gRPC 窗口大小调优（用于大数据流推送）
	InitialWindowSize     int `json:"initial_window_size,default=67108864"`
	InitialConnWindowSize int `json:"initial_conn_window_size,default=134217728"`

	// 消息体大小限制
	MaxCallSendMsgSize int `json:"max_call_send_msg_size,default=4194304"`
	MaxCallRecvMsgSize int `json:"max_call_recv_msg_size,default=1073741824"`

	// 超时与重连策略
	ReconnectIntervalSec int `json:"reconnect_interval_sec,default=3"`
	ConnectTimeoutSec    int `json:"connect_timeout_sec,default=10"`
	SendTimeoutSec       int `json:"send_timeout_sec,default=5"`
	RecvTimeoutSec       int `json:"recv_timeout_sec,default=30"`
	BlockRecvTimeoutSec  int `json:"block_recv_timeout_sec,default=30"` // 超过该时长未收到 block 触发重连
	BlockChanSize        int `json:"block_chan_size,default=200"`
	MaxLatencyWarnMs     int `json:"max_latency_warn_ms,default=2000"`
}

// IndexerConfig 是主配置结构体，用于驱动索引器服务
type IndexerConfig struct {
	LogConf      LogConfig      `json:"logger"`
	Grpc         GrpcConfig     `json:"grpc,optional"`
	Sink         SinkConfig     `json:"sink"`
	ProgressConf ProgressConfig `json:"progress,optional"`
	Backfill     BackfillConfig `json:"backfill,optional"`

	// Programs 为需要解析的市场 Program 地址（base58），为空时使用内置 Serum/OpenBook 列表
	Programs []string `json:"programs,optional"`
}

// ProgramIDs 解析配置中的 Program 地址；未配置时返回默认列表
func (c *IndexerConfig) ProgramIDs() ([]types.Pubkey, error) {
	if len(c.Programs) == 0 {
		return consts.MarketPrograms, nil
	}
	out := make([]types.Pubkey, 0, len(c.Programs))
	for _, s := range c.Programs {
		p, err := types.TryPubkeyFromBase58(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
