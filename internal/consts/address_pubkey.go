package consts

import (
	"serum-indexer-sol/internal/types"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对。
var (
	SerumDexV1Program types.Pubkey
	SerumDexV2Program types.Pubkey
	SerumDexV3Program types.Pubkey
	OpenBookV1Program types.Pubkey

	// MarketPrograms 为默认监听的订单簿市场程序列表
	MarketPrograms []types.Pubkey
)

func init() {
	SerumDexV1Program = types.PubkeyFromBase58(SerumDexV1ProgramStr)
	SerumDexV2Program = types.PubkeyFromBase58(SerumDexV2ProgramStr)
	SerumDexV3Program = types.PubkeyFromBase58(SerumDexV3ProgramStr)
	OpenBookV1Program = types.PubkeyFromBase58(OpenBookV1ProgramStr)

	MarketPrograms = []types.Pubkey{
		SerumDexV1Program,
		SerumDexV2Program,
		SerumDexV3Program,
		OpenBookV1Program,
	}
}
