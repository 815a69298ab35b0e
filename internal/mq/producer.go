package mq

import (
	"context"
	"fmt"
	"time"

	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize = 32 * 1024
	defaultLingerMs  = 5
)

// TopicSpec 需要确保存在的 topic 及其分区数
type TopicSpec struct {
	Topic      string
	Partitions int
}

type KafkaProducerOption struct {
	Brokers   string // Kafka broker 地址，多个用英文逗号分隔（如 "localhost:9092,localhost:9093"）
	BatchSize int    // 批处理大小（单位字节），如 32768 = 32KB
	LingerMs  int    // 批处理最大延迟（毫秒），建议 5~20ms 之间
	Topics    []TopicSpec
}

// ProducerConfigMap 构造生产者参数：幂等 + acks=all，批量参数取自配置
func ProducerConfigMap(cfg KafkaProducerOption) *kafka.ConfigMap {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}

	localIP := utils.GetLocalIP()
	if localIP == "" {
		localIP = "unknown"
	}

	return &kafka.ConfigMap{
		// 基础连接
		"bootstrap.servers": cfg.Brokers,
		"client.id":         fmt.Sprintf("serum-indexer-%s", localIP),

		// SASL_SSL: 加密 + 认证，生产环境按需开启
		//"security.protocol":  "SASL_SSL",
		//"sasl.mechanisms":    "SCRAM-SHA-256",
		//"sasl.username":      "user",
		//"sasl.password":      "password",

		// 可靠性保障
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		// 超时与重试
		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		// 性能优化
		"batch.size":       batchSize,
		"linger.ms":        lingerMs,
		"compression.type": "none",

		// 消息大小
		"message.max.bytes": 2 * 1024 * 1024, // 2MB
	}
}

// NewKafkaProducer 确保 topic 存在后创建 Kafka 生产者
func NewKafkaProducer(cfg KafkaProducerOption) (*kafka.Producer, error) {
	if err := ensureTopics(cfg); err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(ProducerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return producer, nil
}

func ensureTopics(cfg KafkaProducerOption) error {
	adminClient, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	meta, err := adminClient.GetMetadata(nil, true, 10000)
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	brokerCount := len(meta.Brokers)

	// replicationFactor 是每个分区副本的数量
	replicationFactor := 1
	if brokerCount > 1 {
		replicationFactor = 2
	}
	logger.Infof("[mq] Kafka broker count = %d, using replication factor = %d", brokerCount, replicationFactor)

	existingTopics := make(map[string]bool, len(meta.Topics))
	for _, topic := range meta.Topics {
		existingTopics[topic.Topic] = true
	}

	var topicsToCreate []kafka.TopicSpecification
	for _, topic := range cfg.Topics {
		if topic.Topic == "" || existingTopics[topic.Topic] {
			continue
		}
		topicsToCreate = append(topicsToCreate, kafka.TopicSpecification{
			Topic:             topic.Topic,
			NumPartitions:     max(topic.Partitions, 1),
			ReplicationFactor: replicationFactor,
		})
	}
	if len(topicsToCreate) == 0 {
		return nil
	}

	results, err := adminClient.CreateTopics(ctx, topicsToCreate)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	for _, result := range results {
		if result.Error.Code() != kafka.ErrNoError && result.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", result.Topic, result.Error)
		}
	}
	return nil
}
