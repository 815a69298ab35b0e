package consts

import "serum-indexer-sol/internal/types"

const (
	MarketSerumV1    = iota + 1 // 1
	MarketSerumV2               // 2
	MarketSerumV3               // 3
	MarketOpenBookV1            // 4
)

var MarketProgramNames = []string{
	"Unknown",    // 0 (保留)
	"SerumV1",    // 1
	"SerumV2",    // 2
	"SerumV3",    // 3
	"OpenBookV1", // 4
}

// MarketProgramName 返回程序 ID 对应的可读名称，用于日志
func MarketProgramName(programID types.Pubkey) string {
	switch programID {
	case SerumDexV1Program:
		return MarketProgramNames[MarketSerumV1]
	case SerumDexV2Program:
		return MarketProgramNames[MarketSerumV2]
	case SerumDexV3Program:
		return MarketProgramNames[MarketSerumV3]
	case OpenBookV1Program:
		return MarketProgramNames[MarketOpenBookV1]
	default:
		return MarketProgramNames[0]
	}
}
