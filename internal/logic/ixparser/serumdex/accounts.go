package serumdex

// accountRoles 是每种指令的账户位置表：下标为账户在指令中的位置，值为 Record 属性名。
// 属性名沿用已部署 schema 的命名（包括 owner_openOrders_account、SRM_account 等历史拼写），不得修改。
// ConsumeEvents / ConsumeEventsPermissioned 的账户数量可变，schema 中不记录账户。
var accountRoles = [tagCount][]string{
	TagInitializeMarket: {
		"market",
		"request_queue",
		"event_queue",
		"bids",
		"asks",
		"coin_currency",
		"price_currency",
		"coin_currency_mint",
		"price_currency_mint",
		"rent_sysvar",
		"open_orders_market_authority",
		"prune_authority",
		"crank_authority",
	},
	TagNewOrder: {
		"market",
		"open_orders",
		"request_queue",
		"account_paying",
		"owner_openOrders_account",
		"coin_vault",
		"pc_vault",
		"token_program",
		"rent_sysvar",
		"SRM_account",
	},
	TagMatchOrders: {
		"market",
		"request_queue",
		"event_queue",
		"bids",
		"asks",
		"coin_fee",
		"pc_fee",
	},
	TagConsumeEvents: {},
	TagCancelOrder: {
		"market",
		"open_orders",
		"request_queue",
		"open_orders_owner",
	},
	TagSettleFunds: {
		"market",
		"open_orders",
		"open_orders_owner",
		"coin_vault",
		"pc_vault",
		"coin_wallet",
		"pc_wallet",
		"vault_signer",
		"token_program",
		"referrer_pc_wallet",
	},
	TagCancelOrderByClientID: {
		"market",
		"open_orders",
		"request_queue",
		"open_orders_owner",
	},
	TagDisableMarket: {
		"market",
		"disable_authority",
	},
	TagSweepFees: {
		"market",
		"pc_vault",
		"fee_sweeping_authority",
		"fee_receivable_account",
		"vault_signer",
		"token_program",
	},
	TagNewOrderV2: {
		"market",
		"open_orders",
		"request_queue",
		"account_paying_for_the_order",
		"open_orders_owner",
		"coin_vault",
		"pc_vault",
		"token_program",
		"rent_sysvar",
		"SRM_account",
	},
	TagNewOrderV3: {
		"market",
		"open_orders",
		"request_queue",
		"event_queue",
		"bids",
		"asks",
		"account_paying_for_the_order",
		"open_orders_owner",
		"coin_vault",
		"pc_vault",
		"token_program",
		"rent_sysvar",
	},
	TagCancelOrderV2: {
		"market",
		"bids",
		"asks",
		"open_orders",
		"open_orders_owner",
		"event_queue",
	},
	TagCancelOrderByClientIDV2: {
		"market",
		"bids",
		"asks",
		"open_orders",
	},
	TagSendTake: {
		"market",
		"bids",
		"asks",
		"open_orders",
	},
	TagCloseOpenOrders: {
		"open_orders",
		"open_orders_owner",
		"destination_to_send_rent_exemption_sol",
		"market",
	},
	TagInitOpenOrders: {
		"open_orders",
		"open_orders_owner",
		"market",
		"rent_sysvar",
		"open_orders_market_authority",
	},
	TagPrune: {
		"market",
		"bids",
		"asks",
		"prune_authority",
		"open_orders",
		"open_orders_owner",
		"event_queue",
	},
	TagConsumeEventsPermissioned: {},
}

// AccountRoles 返回 tag 对应账户位置表的副本
func AccountRoles(t Tag) []string {
	if !t.Valid() {
		return nil
	}
	roles := accountRoles[t]
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}
