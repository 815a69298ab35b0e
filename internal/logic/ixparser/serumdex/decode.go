package serumdex

import (
	"encoding/binary"
	"errors"
	"fmt"

	"serum-indexer-sol/internal/logic/ixparser/common"

	"github.com/near/borsh-go"
)

var (
	ErrShortInstruction = errors.New("instruction shorter than header")
	ErrUnknownTag       = errors.New("unknown instruction tag")
	ErrPayloadLength    = errors.New("payload length mismatch")
)

// headerSize = 1 字节版本前缀（不校验）+ 4 字节 tag
const headerSize = 5

// Decode 解析一条市场指令。
// 未知 tag、长度不符、任一字段校验失败（枚举越界、非零字段为 0）均返回 (nil, false)，
// 调用方无法也无需区分失败原因。
func Decode(data []byte) (Instruction, bool) {
	ix, err := DecodeDetailed(data)
	return ix, err == nil
}

// DecodeDetailed 与 Decode 成败结果完全一致，额外返回失败原因用于日志诊断。
//
// 数据布局：
//
//	[0]      版本前缀，跳过
//	[1:5]    tag（u32 小端序）
//	[5:]     payload，长度必须严格等于该 tag 声明的长度
func DecodeDetailed(data []byte) (Instruction, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: len=%d", ErrShortInstruction, len(data))
	}

	tag := Tag(binary.LittleEndian.Uint32(data[1:headerSize]))
	if !tag.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, uint32(tag))
	}

	payload := data[headerSize:]
	if want := tag.PayloadSize(); len(payload) != want {
		return nil, fmt.Errorf("%w: tag=%s got=%d want=%d", ErrPayloadLength, tag, len(payload), want)
	}

	if tag == TagInitializeMarket {
		return decodeInitializeMarket(payload)
	}

	r := common.NewReader(payload)
	var ix Instruction
	switch tag {
	case TagNewOrder:
		ix = readNewOrder(r)
	case TagMatchOrders:
		ix = MatchOrders{Limit: r.U16("limit")}
	case TagConsumeEvents:
		ix = ConsumeEvents{Limit: r.U16("limit")}
	case TagCancelOrder:
		ix = readCancelOrder(r)
	case TagSettleFunds:
		ix = SettleFunds{}
	case TagCancelOrderByClientID:
		ix = CancelOrderByClientID{ClientID: r.U64("client_id")}
	case TagDisableMarket:
		ix = DisableMarket{}
	case TagSweepFees:
		ix = SweepFees{}
	case TagNewOrderV2:
		ix = readNewOrderV2(r)
	case TagNewOrderV3:
		ix = readNewOrderV3(r)
	case TagCancelOrderV2:
		ix = CancelOrderV2{
			Side:    readSide(r),
			OrderID: r.U128("order_id"),
		}
	case TagCancelOrderByClientIDV2:
		ix = CancelOrderByClientIDV2{ClientID: r.U64("client_id")}
	case TagSendTake:
		ix = readSendTake(r)
	case TagCloseOpenOrders:
		ix = CloseOpenOrders{}
	case TagInitOpenOrders:
		ix = InitOpenOrders{}
	case TagPrune:
		ix = Prune{Limit: r.U16("limit")}
	case TagConsumeEventsPermissioned:
		ix = ConsumeEventsPermissioned{Limit: r.U16("limit")}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, uint32(tag))
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: tag=%s trailing=%d", ErrPayloadLength, tag, r.Remaining())
	}
	return ix, nil
}

// decodeInitializeMarket 的 payload 全部为无条件基础类型，布局与 borsh 一致
func decodeInitializeMarket(payload []byte) (ix Instruction, err error) {
	defer func() {
		if r := recover(); r != nil {
			ix, err = nil, fmt.Errorf("decode %s: borsh panic: %v", TagInitializeMarket, r)
		}
	}()

	var m InitializeMarket
	if err := borsh.Deserialize(&m, payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", TagInitializeMarket, err)
	}
	return m, nil
}

func readSide(r *common.Reader) Side {
	return Side(r.Ordinal32("side", uint32(sideCount)))
}

func readOrderType(r *common.Reader) OrderType {
	return OrderType(r.Ordinal32("order_type", uint32(orderTypeCount)))
}

func readNewOrder(r *common.Reader) NewOrder {
	return NewOrder{
		Side:       readSide(r),
		LimitPrice: r.NonZeroU64("limit_price"),
		MaxQty:     r.NonZeroU64("max_qty"),
		OrderType:  readOrderType(r),
		ClientID:   r.U64("client_id"),
	}
}

func readCancelOrder(r *common.Reader) CancelOrder {
	return CancelOrder{
		Side:      readSide(r),
		OrderID:   r.U128("order_id"),
		Owner:     r.U64Array4("owner"),
		OwnerSlot: r.U8("owner_slot"),
	}
}

func readNewOrderV2(r *common.Reader) NewOrderV2 {
	return NewOrderV2{
		Side:              readSide(r),
		LimitPrice:        r.NonZeroU64("limit_price"),
		MaxQty:            r.NonZeroU64("max_qty"),
		OrderType:         readOrderType(r),
		ClientID:          r.U64("client_id"),
		SelfTradeBehavior: SelfTradeBehavior(r.Ordinal8("self_trade_behavior", uint8(selfTradeBehaviorCount))),
	}
}

func readNewOrderV3(r *common.Reader) NewOrderV3 {
	return NewOrderV3{
		Side:                        readSide(r),
		LimitPrice:                  r.NonZeroU64("limit_price"),
		MaxCoinQty:                  r.NonZeroU64("max_coin_qty"),
		MaxNativePcQtyIncludingFees: r.NonZeroU64("max_native_pc_qty_including_fees"),
		SelfTradeBehavior:           SelfTradeBehavior(r.Ordinal32("self_trade_behavior", uint32(selfTradeBehaviorCount))),
		OrderType:                   readOrderType(r),
		ClientOrderID:               r.U64("client_order_id"),
		Limit:                       r.U16("limit"),
	}
}

func readSendTake(r *common.Reader) SendTake {
	return SendTake{
		Side:                        readSide(r),
		LimitPrice:                  r.NonZeroU64("limit_price"),
		MaxCoinQty:                  r.NonZeroU64("max_coin_qty"),
		MaxNativePcQtyIncludingFees: r.NonZeroU64("max_native_pc_qty_including_fees"),
		MinCoinQty:                  r.U64("min_coin_qty"),
		MinNativePcQty:              r.U64("min_native_pc_qty"),
		Limit:                       r.U16("limit"),
	}
}
