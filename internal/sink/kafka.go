package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/mq"
	"serum-indexer-sol/internal/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/mr-tron/base58"
)

// TypeCoder 将实体类型名映射为消息前缀中的类型编号
type TypeCoder func(entityType string) (uint32, bool)

// KafkaSink 将 Record 编码为 [类型编号 u32][protobuf Struct] 写入 Kafka。
// 同一交易的 Record 落在同一分区，保持交易内顺序。
type KafkaSink struct {
	producer   mq.Producer
	topic      string
	partitions uint32
	timeout    time.Duration
	typeCode   TypeCoder
}

func NewKafkaSink(producer mq.Producer, topic string, partitions int, timeout time.Duration, typeCode TypeCoder) *KafkaSink {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &KafkaSink{
		producer:   producer,
		topic:      topic,
		partitions: uint32(max(partitions, 0)),
		timeout:    timeout,
		typeCode:   typeCode,
	}
}

func (k *KafkaSink) Save(ctx context.Context, entityType string, rec *entity.Record) error {
	job, err := k.BuildJob(entityType, rec)
	if err != nil {
		return err
	}
	if err := mq.SendKafkaJob(ctx, k.producer, job, k.timeout); err != nil {
		return fmt.Errorf("kafka send %s: %w", k.topic, err)
	}
	return nil
}

// BuildJob 构造待发送的消息，不做任何网络操作
func (k *KafkaSink) BuildJob(entityType string, rec *entity.Record) (*mq.KafkaJob, error) {
	var code uint32
	if k.typeCode != nil {
		c, ok := k.typeCode(entityType)
		if !ok {
			return nil, fmt.Errorf("unknown entity type %q", entityType)
		}
		code = c
	}

	value, err := utils.EncodeWithType(code, rec.Envelope())
	if err != nil {
		return nil, err
	}

	var partition int32 = kafka.PartitionAny
	if sig, err := base58.Decode(rec.Meta.Signature); err == nil && k.partitions > 1 && len(sig) >= 28 {
		partition = int32(utils.PartitionHashBytes(sig, k.partitions))
	}

	return &mq.KafkaJob{
		Topic:     k.topic,
		Partition: partition,
		Key:       []byte(rec.ID),
		Value:     value,
		Headers: []kafka.Header{
			{Key: "entity_type", Value: []byte(entityType)},
			{Key: "chain_id", Value: []byte(strconv.FormatUint(uint64(consts.ChainIDSolana), 10))},
		},
	}, nil
}
