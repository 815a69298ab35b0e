package serumdex

// Side 订单方向
type Side uint8

const (
	SideBid Side = iota
	SideAsk
	sideCount
)

var sideNames = [sideCount]string{"Bid", "Ask"}

func (s Side) String() string {
	if s < sideCount {
		return sideNames[s]
	}
	return ""
}

// OrderType 订单类型
type OrderType uint8

const (
	OrderTypeLimit OrderType = iota
	OrderTypeImmediateOrCancel
	OrderTypePostOnly
	orderTypeCount
)

var orderTypeNames = [orderTypeCount]string{"Limit", "ImmediateOrCancel", "PostOnly"}

func (o OrderType) String() string {
	if o < orderTypeCount {
		return orderTypeNames[o]
	}
	return ""
}

// SelfTradeBehavior 自成交处理策略
type SelfTradeBehavior uint8

const (
	SelfTradeDecrementTake SelfTradeBehavior = iota
	SelfTradeCancelProvide
	SelfTradeAbortTransaction
	selfTradeBehaviorCount
)

var selfTradeBehaviorNames = [selfTradeBehaviorCount]string{"DecrementTake", "CancelProvide", "AbortTransaction"}

func (b SelfTradeBehavior) String() string {
	if b < selfTradeBehaviorCount {
		return selfTradeBehaviorNames[b]
	}
	return ""
}
