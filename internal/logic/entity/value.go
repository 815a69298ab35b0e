package entity

import (
	"strconv"
	"strings"

	"serum-indexer-sol/internal/types"

	"google.golang.org/protobuf/types/known/structpb"
)

// Kind 表示属性值的类型
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindUint
	KindUint128
	KindUint64List
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUint:
		return "uint"
	case KindUint128:
		return "uint128"
	case KindUint64List:
		return "uint64_list"
	default:
		return "invalid"
	}
}

// Value 是 Record 中的属性值，支持字符串、无符号整数（8~128 位）以及 u64 序列。
// 构造后不可修改。
type Value struct {
	kind Kind
	bits uint8 // KindUint 时的原始位宽：8/16/32/64
	str  string
	u64  uint64
	u128 types.Uint128
	list []uint64
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Uint8(v uint8) Value { return Value{kind: KindUint, bits: 8, u64: uint64(v)} }

func Uint16(v uint16) Value { return Value{kind: KindUint, bits: 16, u64: uint64(v)} }

func Uint32(v uint32) Value { return Value{kind: KindUint, bits: 32, u64: uint64(v)} }

func Uint64(v uint64) Value { return Value{kind: KindUint, bits: 64, u64: v} }

func Uint128(v types.Uint128) Value { return Value{kind: KindUint128, bits: 128, u128: v} }

// Uint64List 复制一份输入，避免调用方后续修改影响 Record
func Uint64List(v []uint64) Value {
	list := make([]uint64, len(v))
	copy(list, v)
	return Value{kind: KindUint64List, list: list}
}

func (v Value) Kind() Kind { return v.kind }

// Bits 返回整数位宽，非整数类型为 0
func (v Value) Bits() uint8 { return v.bits }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsUint64() (uint64, bool) {
	return v.u64, v.kind == KindUint
}

func (v Value) AsUint128() (types.Uint128, bool) {
	switch v.kind {
	case KindUint128:
		return v.u128, true
	case KindUint:
		return types.Uint128{Lo: v.u64}, true
	default:
		return types.Uint128{}, false
	}
}

func (v Value) AsUint64List() ([]uint64, bool) {
	if v.kind != KindUint64List {
		return nil, false
	}
	out := make([]uint64, len(v.list))
	copy(out, v.list)
	return out, true
}

// String 返回规范化文本：整数为十进制，序列为 [a,b,c]
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindUint:
		return strconv.FormatUint(v.u64, 10)
	case KindUint128:
		return v.u128.String()
	case KindUint64List:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, n := range v.list {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(n, 10))
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return ""
	}
}

// ToProto 转换为 protobuf 动态值。
// float64 只能无损表示 53 位整数，因此 ≤32 位整数编码为 number，
// 64/128 位整数与 u64 序列元素编码为十进制字符串。
func (v Value) ToProto() *structpb.Value {
	switch v.kind {
	case KindString:
		return structpb.NewStringValue(v.str)
	case KindUint:
		if v.bits <= 32 {
			return structpb.NewNumberValue(float64(v.u64))
		}
		return structpb.NewStringValue(strconv.FormatUint(v.u64, 10))
	case KindUint128:
		return structpb.NewStringValue(v.u128.String())
	case KindUint64List:
		items := make([]*structpb.Value, 0, len(v.list))
		for _, n := range v.list {
			items = append(items, structpb.NewStringValue(strconv.FormatUint(n, 10)))
		}
		return structpb.NewListValue(&structpb.ListValue{Values: items})
	default:
		return structpb.NewNullValue()
	}
}
