package ixparser

import (
	"context"
	"fmt"
	"runtime/debug"

	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/logic/entity"
	"serum-indexer-sol/internal/logic/ixparser/common"
	"serum-indexer-sol/internal/logic/ixparser/serumdex"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/types"
	"serum-indexer-sol/pkg/utils"
)

// Parser 持有 ProgramID → 指令 handler 的路由表。
// 路由表只在构造时写入，之后只读，可并发调用 ExtractFromTx。
type Parser struct {
	handlers map[types.Pubkey]common.InstructionHandler
}

// NewParser 为 programIDs 中的每个市场 Program 注册 serumdex handler
func NewParser(sink entity.Sink, programIDs []types.Pubkey, opts ...serumdex.RouterOption) *Parser {
	handlers := make(map[types.Pubkey]common.InstructionHandler, len(programIDs))
	serumdex.RegisterHandlers(handlers, serumdex.NewRouter(sink, opts...), programIDs)
	return &Parser{handlers: handlers}
}

// Handles 判断 programID 是否已注册
func (p *Parser) Handles(programID types.Pubkey) bool {
	_, ok := p.handlers[programID]
	return ok
}

// ExtractFromTx 顺序遍历交易中所有（已展平的）指令，交给对应 handler 处理。
// 返回成功写入的 Record 以及 Sink 写入错误；单笔交易内的 panic 被捕获并以错误返回。
func (p *Parser) ExtractFromTx(ctx context.Context, adaptedTx *core.AdaptedTx) (records []*entity.Record, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			txHash := adaptedTx.SignatureString()
			logger.Errorf("[ixparser::ExtractFromTx] panic tx=%s: %+v\nstack: %s", txHash, r, debug.Stack())
			records = nil
			errs = []error{fmt.Errorf("panic in tx %s: %v", txHash, r)}
		}
	}()

	pctx := common.BuildParserContext(ctx, adaptedTx)
	instrs := adaptedTx.Instructions

	for i := 0; i < len(instrs); {
		ix := instrs[i]
		if handler, ok := p.handlers[ix.ProgramID]; ok {
			if next := handler(pctx, instrs, i); next > i {
				i = next
				continue
			}
		}
		i++
	}
	return pctx.TakeResults()
}

// BlockResult 汇总一个区块内所有交易的解析结果
type BlockResult struct {
	Txs     int
	Records int
	Errs    []error
}

type txResult struct {
	records int
	errs    []error
}

// ExtractFromBlock 使用 workers 个 goroutine 并发解析区块内的交易。
// Sink 需要支持并发写入。
func (p *Parser) ExtractFromBlock(ctx context.Context, txs []*core.AdaptedTx, workers int) BlockResult {
	results := utils.ParallelMap(txs, workers, func(tx *core.AdaptedTx) txResult {
		records, errs := p.ExtractFromTx(ctx, tx)
		return txResult{records: len(records), errs: errs}
	})

	res := BlockResult{Txs: len(txs)}
	for _, r := range results {
		res.Records += r.records
		res.Errs = append(res.Errs, r.errs...)
	}
	return res
}
