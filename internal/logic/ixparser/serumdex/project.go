package serumdex

import (
	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/types"
)

// valueAttribute 单标量指令（MatchOrders、Prune 等）的参数统一记录在该属性下
const valueAttribute = "value"

// Project 将解码后的指令与账户列表投影为 Record。
// 账户按 accountRoles 的位置命名，列表长度不足时对应属性为空串（兼容上游残缺数据）。
func Project(ix Instruction, accounts []types.Pubkey, id string) *entity.Record {
	tag := ix.Tag()
	roles := accountRoles[tag]

	rec := entity.NewRecord(tag.String(), id, len(roles)+8)
	for slot, name := range roles {
		rec.Set(name, entity.String(accountAt(accounts, slot)))
	}
	setPayload(rec, ix)
	return rec
}

func accountAt(accounts []types.Pubkey, slot int) string {
	if slot < len(accounts) {
		return accounts[slot].String()
	}
	return ""
}

// setPayload 按指令类型写入 payload 字段：数值原样，枚举写规范名称，u64 数组写序列
func setPayload(rec *entity.Record, ix Instruction) {
	switch v := ix.(type) {
	case InitializeMarket:
		rec.Set("coin_lot_size", entity.Uint64(v.CoinLotSize))
		rec.Set("pc_lot_size", entity.Uint64(v.PcLotSize))
		rec.Set("fee_rate_bps", entity.Uint16(v.FeeRateBps))
		rec.Set("vault_signer_nonce", entity.Uint64(v.VaultSignerNonce))
		rec.Set("pc_dust_threshold", entity.Uint64(v.PcDustThreshold))

	case NewOrder:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("limit_price", entity.Uint64(v.LimitPrice))
		rec.Set("max_qty", entity.Uint64(v.MaxQty))
		rec.Set("order_type", entity.String(v.OrderType.String()))
		rec.Set("client_id", entity.Uint64(v.ClientID))

	case MatchOrders:
		rec.Set(valueAttribute, entity.Uint16(v.Limit))

	case ConsumeEvents:
		rec.Set(valueAttribute, entity.Uint16(v.Limit))

	case CancelOrder:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("order_id", entity.Uint128(v.OrderID))
		rec.Set("owner", entity.Uint64List(v.Owner[:]))
		rec.Set("owner_slot", entity.Uint8(v.OwnerSlot))

	case CancelOrderByClientID:
		rec.Set(valueAttribute, entity.Uint64(v.ClientID))

	case NewOrderV2:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("limit_price", entity.Uint64(v.LimitPrice))
		rec.Set("max_qty", entity.Uint64(v.MaxQty))
		rec.Set("order_type", entity.String(v.OrderType.String()))
		rec.Set("client_id", entity.Uint64(v.ClientID))
		rec.Set("self_trade_behavior", entity.String(v.SelfTradeBehavior.String()))

	case NewOrderV3:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("limit_price", entity.Uint64(v.LimitPrice))
		rec.Set("max_coin_qty", entity.Uint64(v.MaxCoinQty))
		rec.Set("max_native_pc_qty_including_fees", entity.Uint64(v.MaxNativePcQtyIncludingFees))
		rec.Set("self_trade_behavior", entity.String(v.SelfTradeBehavior.String()))
		rec.Set("order_type", entity.String(v.OrderType.String()))
		rec.Set("client_order_id", entity.Uint64(v.ClientOrderID))
		rec.Set("limit", entity.Uint16(v.Limit))

	case CancelOrderV2:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("order_id", entity.Uint128(v.OrderID))

	case CancelOrderByClientIDV2:
		rec.Set(valueAttribute, entity.Uint64(v.ClientID))

	case SendTake:
		rec.Set("side", entity.String(v.Side.String()))
		rec.Set("limit_price", entity.Uint64(v.LimitPrice))
		rec.Set("max_coin_qty", entity.Uint64(v.MaxCoinQty))
		rec.Set("max_native_pc_qty_including_fees", entity.Uint64(v.MaxNativePcQtyIncludingFees))
		rec.Set("min_coin_qty", entity.Uint64(v.MinCoinQty))
		rec.Set("min_native_pc_qty", entity.Uint64(v.MinNativePcQty))
		rec.Set("limit", entity.Uint16(v.Limit))

	case Prune:
		rec.Set(valueAttribute, entity.Uint16(v.Limit))

	case ConsumeEventsPermissioned:
		rec.Set(valueAttribute, entity.Uint16(v.Limit))

	case SettleFunds, DisableMarket, SweepFees, CloseOpenOrders, InitOpenOrders:
		// 无 payload
	}
}
