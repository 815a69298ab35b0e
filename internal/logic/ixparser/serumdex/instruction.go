package serumdex

import (
	"serum-indexer-sol/internal/types"
)

// Tag 是指令数据第 1~4 字节（小端序 u32）表示的指令类型
type Tag uint32

// 来源: https://github.com/project-serum/serum-dex/blob/master/dex/src/instruction.rs - MarketInstruction
const (
	TagInitializeMarket Tag = iota
	TagNewOrder
	TagMatchOrders
	TagConsumeEvents
	TagCancelOrder
	TagSettleFunds
	TagCancelOrderByClientID
	TagDisableMarket
	TagSweepFees
	TagNewOrderV2
	TagNewOrderV3
	TagCancelOrderV2
	TagCancelOrderByClientIDV2
	TagSendTake
	TagCloseOpenOrders
	TagInitOpenOrders
	TagPrune
	TagConsumeEventsPermissioned
	tagCount
)

// tagNames 同时作为实体类型名，18 个名称互不相同
var tagNames = [tagCount]string{
	"InitializeMarket",
	"NewOrder",
	"MatchOrders",
	"ConsumeEvents",
	"CancelOrder",
	"SettleFunds",
	"CancelOrderByClientId",
	"DisableMarket",
	"SweepFees",
	"NewOrderV2",
	"NewOrderV3",
	"CancelOrderV2",
	"CancelOrderByClientIdV2",
	"SendTake",
	"CloseOpenOrders",
	"InitOpenOrders",
	"Prune",
	"ConsumeEventsPermissioned",
}

// payloadSizes 每种指令 payload（tag 之后）的固定字节数
var payloadSizes = [tagCount]int{
	TagInitializeMarket:          34, // 8 + 8 + 2 + 8 + 8
	TagNewOrder:                  32, // 4 + 8 + 8 + 4 + 8
	TagMatchOrders:               2,
	TagConsumeEvents:             2,
	TagCancelOrder:               53, // 4 + 16 + 32 + 1
	TagSettleFunds:               0,
	TagCancelOrderByClientID:     8,
	TagDisableMarket:             0,
	TagSweepFees:                 0,
	TagNewOrderV2:                33, // 4 + 8 + 8 + 4 + 8 + 1
	TagNewOrderV3:                46, // 4 + 8 + 8 + 8 + 4 + 4 + 8 + 2
	TagCancelOrderV2:             20, // 4 + 16
	TagCancelOrderByClientIDV2:   8,
	TagSendTake:                  46, // 4 + 8 + 8 + 8 + 8 + 8 + 2
	TagCloseOpenOrders:           0,
	TagInitOpenOrders:            0,
	TagPrune:                     2,
	TagConsumeEventsPermissioned: 2,
}

func (t Tag) Valid() bool {
	return t < tagCount
}

// String 返回指令名（即实体类型名），未知 tag 返回空串
func (t Tag) String() string {
	if !t.Valid() {
		return ""
	}
	return tagNames[t]
}

// PayloadSize 返回 payload 的固定长度，未知 tag 返回 -1
func (t Tag) PayloadSize() int {
	if !t.Valid() {
		return -1
	}
	return payloadSizes[t]
}

// TagByName 按实体类型名反查 tag
func TagByName(name string) (Tag, bool) {
	for t := Tag(0); t < tagCount; t++ {
		if tagNames[t] == name {
			return t, true
		}
	}
	return 0, false
}

// EntityTypeCode 返回实体类型的数值编号（即 tag），未知类型返回 false
func EntityTypeCode(entityType string) (uint32, bool) {
	t, ok := TagByName(entityType)
	return uint32(t), ok
}

// Tags 返回全部已知 tag，按编号升序
func Tags() []Tag {
	out := make([]Tag, 0, tagCount)
	for t := Tag(0); t < tagCount; t++ {
		out = append(out, t)
	}
	return out
}

// Instruction 是解码后的市场指令，每种 tag 对应一个具体类型。
type Instruction interface {
	Tag() Tag
}

type InitializeMarket struct {
	CoinLotSize      uint64
	PcLotSize        uint64
	FeeRateBps       uint16
	VaultSignerNonce uint64
	PcDustThreshold  uint64
}

// NewOrder 即 NewOrderInstructionV1
type NewOrder struct {
	Side       Side
	LimitPrice uint64 // 非零
	MaxQty     uint64 // 非零
	OrderType  OrderType
	ClientID   uint64
}

type MatchOrders struct {
	Limit uint16
}

type ConsumeEvents struct {
	Limit uint16
}

type CancelOrder struct {
	Side      Side
	OrderID   types.Uint128
	Owner     [4]uint64
	OwnerSlot uint8
}

type SettleFunds struct{}

type CancelOrderByClientID struct {
	ClientID uint64
}

type DisableMarket struct{}

type SweepFees struct{}

type NewOrderV2 struct {
	Side              Side
	LimitPrice        uint64 // 非零
	MaxQty            uint64 // 非零
	OrderType         OrderType
	ClientID          uint64
	SelfTradeBehavior SelfTradeBehavior // 单字节序号，与其它枚举不同
}

type NewOrderV3 struct {
	Side                        Side
	LimitPrice                  uint64 // 非零
	MaxCoinQty                  uint64 // 非零
	MaxNativePcQtyIncludingFees uint64 // 非零
	SelfTradeBehavior           SelfTradeBehavior
	OrderType                   OrderType
	ClientOrderID               uint64
	Limit                       uint16
}

type CancelOrderV2 struct {
	Side    Side
	OrderID types.Uint128
}

type CancelOrderByClientIDV2 struct {
	ClientID uint64
}

type SendTake struct {
	Side                        Side
	LimitPrice                  uint64 // 非零
	MaxCoinQty                  uint64 // 非零
	MaxNativePcQtyIncludingFees uint64 // 非零
	MinCoinQty                  uint64
	MinNativePcQty              uint64
	Limit                       uint16
}

type CloseOpenOrders struct{}

type InitOpenOrders struct{}

type Prune struct {
	Limit uint16
}

type ConsumeEventsPermissioned struct {
	Limit uint16
}

func (InitializeMarket) Tag() Tag          { return TagInitializeMarket }
func (NewOrder) Tag() Tag                  { return TagNewOrder }
func (MatchOrders) Tag() Tag               { return TagMatchOrders }
func (ConsumeEvents) Tag() Tag             { return TagConsumeEvents }
func (CancelOrder) Tag() Tag               { return TagCancelOrder }
func (SettleFunds) Tag() Tag               { return TagSettleFunds }
func (CancelOrderByClientID) Tag() Tag     { return TagCancelOrderByClientID }
func (DisableMarket) Tag() Tag             { return TagDisableMarket }
func (SweepFees) Tag() Tag                 { return TagSweepFees }
func (NewOrderV2) Tag() Tag                { return TagNewOrderV2 }
func (NewOrderV3) Tag() Tag                { return TagNewOrderV3 }
func (CancelOrderV2) Tag() Tag             { return TagCancelOrderV2 }
func (CancelOrderByClientIDV2) Tag() Tag   { return TagCancelOrderByClientIDV2 }
func (SendTake) Tag() Tag                  { return TagSendTake }
func (CloseOpenOrders) Tag() Tag           { return TagCloseOpenOrders }
func (InitOpenOrders) Tag() Tag            { return TagInitOpenOrders }
func (Prune) Tag() Tag                     { return TagPrune }
func (ConsumeEventsPermissioned) Tag() Tag { return TagConsumeEventsPermissioned }
