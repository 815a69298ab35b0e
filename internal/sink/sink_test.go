package sink

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/logic/ixparser/serumdex"
	"serum-indexer-sol/internal/pkg/sqldb"
	"serum-indexer-sol/internal/types"
	"serum-indexer-sol/internal/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/mr-tron/base58"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func testSignature() string {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = byte(i + 1)
	}
	return base58.Encode(sig)
}

func testRecord(id string) *entity.Record {
	rec := entity.NewRecord("CancelOrderV2", id, 4)
	rec.Set("side", entity.String("Bid"))
	rec.Set("order_id", entity.Uint128(types.Uint128{Hi: 1, Lo: 2}))
	rec.Set("open_orders", entity.String(""))
	rec.Meta = entity.Meta{
		Slot:      350000001,
		BlockTime: 1718000000,
		Signature: testSignature(),
		TxIndex:   3,
		IxIndex:   1,
	}
	return rec
}

type echoProducer struct {
	messages []*kafka.Message
	err      error
}

func (p *echoProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	go func() { deliveryChan <- msg }()
	return nil
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "CancelOrderV2", testRecord("a")))
	require.NoError(t, s.Save(ctx, "SettleFunds", entity.NewRecord("SettleFunds", "b", 0)))

	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.ByType("CancelOrderV2"), 1)
	assert.Empty(t, s.ByType("Prune"))
	assert.Equal(t, "a", s.Records()[0].ID)
	assert.Equal(t, "b", s.Records()[1].ID)
}

func TestMultiSink(t *testing.T) {
	first := NewMemorySink()
	second := NewMemorySink()
	boom := errors.New("boom")
	failing := entity.SinkFunc(func(context.Context, string, *entity.Record) error { return boom })

	m := MultiSink{first, failing, second}
	err := m.Save(context.Background(), "CancelOrderV2", testRecord("a"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// 失败的后端不影响其它后端
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())

	assert.NoError(t, MultiSink{first}.Save(context.Background(), "CancelOrderV2", testRecord("b")))
}

func TestFormatAttributes(t *testing.T) {
	got := FormatAttributes(testRecord("abc"))
	assert.Equal(t, `id=abc open_orders="" order_id=18446744073709551618 side=Bid`, got)
	assert.NoError(t, LogSink{}.Save(context.Background(), "CancelOrderV2", testRecord("abc")))
}

func TestKafkaSinkBuildJob(t *testing.T) {
	k := NewKafkaSink(&echoProducer{}, "serum-market", 8, time.Second, serumdex.EntityTypeCode)
	rec := testRecord("rid")

	job, err := k.BuildJob("CancelOrderV2", rec)
	require.NoError(t, err)
	assert.Equal(t, "serum-market", job.Topic)
	assert.Equal(t, []byte("rid"), job.Key)

	sig, err := base58.Decode(rec.Meta.Signature)
	require.NoError(t, err)
	assert.Equal(t, int32(utils.PartitionHashBytes(sig, 8)), job.Partition)

	headers := make(map[string]string, len(job.Headers))
	for _, h := range job.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "CancelOrderV2", headers["entity_type"])
	assert.Equal(t, "100000", headers["chain_id"])

	var env structpb.Struct
	code, err := utils.DecodeWithType(job.Value, &env)
	require.NoError(t, err)
	assert.Equal(t, uint32(serumdex.TagCancelOrderV2), code)
	assert.Equal(t, "CancelOrderV2", env.Fields["entity_type"].GetStringValue())
	assert.Equal(t, strconv.FormatUint(rec.Meta.Slot, 10), env.Fields["slot"].GetStringValue())
	attrs := env.Fields["attributes"].GetStructValue()
	require.NotNil(t, attrs)
	assert.Equal(t, "18446744073709551618", attrs.Fields["order_id"].GetStringValue())
	assert.Equal(t, "Bid", attrs.Fields["side"].GetStringValue())
}

func TestKafkaSinkBuildJobFallbacks(t *testing.T) {
	k := NewKafkaSink(&echoProducer{}, "t", 8, 0, serumdex.EntityTypeCode)

	_, err := k.BuildJob("NotAnInstruction", testRecord("x"))
	assert.Error(t, err)

	rec := testRecord("x")
	rec.Meta.Signature = "not-base58-0OIl"
	job, err := k.BuildJob("CancelOrderV2", rec)
	require.NoError(t, err)
	assert.Equal(t, int32(kafka.PartitionAny), job.Partition)

	single := NewKafkaSink(&echoProducer{}, "t", 1, 0, nil)
	job, err = single.BuildJob("Anything", testRecord("y"))
	require.NoError(t, err)
	assert.Equal(t, int32(kafka.PartitionAny), job.Partition)
}

func TestKafkaSinkSave(t *testing.T) {
	p := &echoProducer{}
	k := NewKafkaSink(p, "serum-market", 4, time.Second, serumdex.EntityTypeCode)
	require.NoError(t, k.Save(context.Background(), "CancelOrderV2", testRecord("a")))
	require.Len(t, p.messages, 1)
	assert.Equal(t, "serum-market", *p.messages[0].TopicPartition.Topic)

	p.err = errors.New("queue full")
	assert.Error(t, k.Save(context.Background(), "CancelOrderV2", testRecord("b")))
}

func TestSQLSink(t *testing.T) {
	db, dialect, err := sqldb.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewSQLSink(db, dialect, "bad;table")
	assert.Error(t, err)

	s, err := NewSQLSink(db, dialect, "serum_records")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	rec := testRecord("r1")
	require.NoError(t, s.Save(ctx, rec.EntityType, rec))
	// 同一 id 重复写入走 upsert
	require.NoError(t, s.Save(ctx, rec.EntityType, rec))

	var (
		count      int
		entityType string
		slot       uint64
		attrs      string
	)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM serum_records`).Scan(&count))
	assert.Equal(t, 1, count)
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT entity_type, slot, attributes FROM serum_records WHERE id = ?`, "r1").Scan(&entityType, &slot, &attrs))
	assert.Equal(t, "CancelOrderV2", entityType)
	assert.Equal(t, rec.Meta.Slot, slot)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(attrs), &decoded))
	assert.Equal(t, "Bid", decoded["side"])
	assert.Equal(t, "18446744073709551618", decoded["order_id"])
	assert.Equal(t, "", decoded["open_orders"])
}

func TestNewBackends(t *testing.T) {
	b, err := New(context.Background(), config.SinkConfig{})
	require.NoError(t, err)
	assert.IsType(t, LogSink{}, b.Sink)
	assert.Nil(t, b.Memory)
	b.Close()

	b, err = New(context.Background(), config.SinkConfig{
		Kinds: []string{"memory", " SQL ", "memory"},
		SQL:   config.SQLConfig{Driver: "sqlite3", DSN: ":memory:", Table: "records"},
	})
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Memory)
	multi, ok := b.Sink.(MultiSink)
	require.True(t, ok)
	assert.Len(t, multi, 2)

	require.NoError(t, b.Sink.Save(context.Background(), "CancelOrderV2", testRecord("m1")))
	assert.Equal(t, 1, b.Memory.Len())

	_, err = New(context.Background(), config.SinkConfig{Kinds: []string{"s3"}})
	assert.Error(t, err)
	_, err = New(context.Background(), config.SinkConfig{Kinds: []string{"kafka"}})
	assert.Error(t, err)
}

func TestRedisSink(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	prefix := "serum-test-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	s := NewRedisSink(rdb, prefix, time.Minute)
	rec := testRecord("r1")
	require.NoError(t, s.Save(ctx, rec.EntityType, rec))

	key := s.recordKey(rec.EntityType, rec.ID)
	t.Cleanup(func() { rdb.Del(ctx, key, s.indexKey(rec.EntityType)) })

	fields, err := rdb.HGetAll(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "Bid", fields["side"])
	assert.Equal(t, "350000001", fields["_slot"])
	assert.Equal(t, "1.0", fields["_ix_index"])

	score, err := rdb.ZScore(ctx, s.indexKey(rec.EntityType), rec.ID).Result()
	require.NoError(t, err)
	assert.Equal(t, float64(rec.Meta.Slot), score)
}

func TestHashFields(t *testing.T) {
	fields := hashFields(testRecord("r1"))
	assert.Equal(t, "Bid", fields["side"])
	assert.Equal(t, "", fields["open_orders"])
	assert.Equal(t, "r1", fields["id"])
	assert.Equal(t, uint64(350000001), fields["_slot"])
}
