package entity

import (
	"sort"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// IDAttribute 是每条 Record 都携带的主键属性名
const IDAttribute = "id"

// Meta 记录指令在链上的位置，仅用于诊断与存储索引，不参与解码逻辑。
type Meta struct {
	Slot       uint64
	BlockTime  int64
	Signature  string // base58 交易签名
	TxIndex    uint32
	IxIndex    uint16
	InnerIndex uint16
}

// Record 是写入 Sink 的标准化输出单元：实体类型名 + 属性表。
type Record struct {
	EntityType string
	ID         string
	Attributes map[string]Value
	Meta       Meta
}

// NewRecord 创建 Record 并写入主键属性
func NewRecord(entityType, id string, capacity int) *Record {
	attrs := make(map[string]Value, capacity+1)
	attrs[IDAttribute] = String(id)
	return &Record{
		EntityType: entityType,
		ID:         id,
		Attributes: attrs,
	}
}

func (r *Record) Set(name string, v Value) {
	r.Attributes[name] = v
}

func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.Attributes[name]
	return v, ok
}

// Keys 返回排序后的属性名，保证输出稳定
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToStruct 转换为 protobuf Struct，供 Kafka / SQL 序列化使用
func (r *Record) ToStruct() *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(r.Attributes))
	for k, v := range r.Attributes {
		fields[k] = v.ToProto()
	}
	return &structpb.Struct{Fields: fields}
}

// Envelope 在属性之外附带实体类型与链上定位信息，作为对外消息体
func (r *Record) Envelope() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"entity_type": structpb.NewStringValue(r.EntityType),
		"id":          structpb.NewStringValue(r.ID),
		"slot":        structpb.NewStringValue(strconv.FormatUint(r.Meta.Slot, 10)),
		"block_time":  structpb.NewNumberValue(float64(r.Meta.BlockTime)),
		"signature":   structpb.NewStringValue(r.Meta.Signature),
		"tx_index":    structpb.NewNumberValue(float64(r.Meta.TxIndex)),
		"ix_index":    structpb.NewNumberValue(float64(r.Meta.IxIndex)),
		"inner_index": structpb.NewNumberValue(float64(r.Meta.InnerIndex)),
		"attributes":  structpb.NewStructValue(r.ToStruct()),
	}}
}
