package serumdex

import (
	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/logic/ixparser/common"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/types"
)

// RegisterHandlers 为给定的市场 Program（Serum v1/v2/v3、OpenBook）注册指令解析器。
// 各版本指令布局一致，共用同一 handler。
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler, router *Router, programIDs []types.Pubkey) {
	handler := newHandler(router)
	for _, id := range programIDs {
		m[id] = handler
		logger.Debugf("[serumdex] register program %s (%s)", id, consts.MarketProgramName(id))
	}
}

func newHandler(router *Router) common.InstructionHandler {
	return func(ctx *common.ParserContext, instrs []*core.AdaptedInstruction, current int) int {
		ix := instrs[current]
		rec, err := router.Route(ctx.Ctx, ctx.Meta(ix), ix.Accounts, ix.Data)
		if err != nil {
			ctx.AddError(err)
		} else {
			ctx.AddRecord(rec)
		}
		return current + 1
	}
}
