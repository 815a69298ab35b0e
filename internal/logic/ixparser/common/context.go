package common

import (
	"context"

	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/logic/entity"
)

// ParserContext 是传入每个指令 handler 的解析上下文。
// 包含当前交易的完整结构，以及 handler 产出的 Record 与写入错误。
type ParserContext struct {
	Ctx       context.Context
	Tx        *core.AdaptedTx // 原始交易，包含 slot、指令、账户等
	TxIndex   uint32          // 当前交易在区块中的位置
	Signature string          // base58 交易签名，构造时计算一次

	records []*entity.Record
	errs    []error
}

// InstructionHandler 定义了统一的指令解析函数签名。
//
// 参数：
//   - ctx:     当前解析上下文
//   - instrs:  当前交易中已展平的指令列表（含主指令与对应 inner 指令）
//   - current: 当前正在处理的指令索引（instrs[current]）
//
// 返回值为下一条待处理的指令索引；返回值 <= current 时由调用方前进一条。
type InstructionHandler func(ctx *ParserContext, instrs []*core.AdaptedInstruction, current int) (next int)

// BuildParserContext 构造解析上下文
func BuildParserContext(ctx context.Context, tx *core.AdaptedTx) *ParserContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ParserContext{
		Ctx:       ctx,
		Tx:        tx,
		TxIndex:   tx.TxIndex,
		Signature: tx.SignatureString(),
	}
}

// Meta 返回指令在链上的定位信息
func (c *ParserContext) Meta(ix *core.AdaptedInstruction) entity.Meta {
	m := entity.Meta{
		TxIndex:    c.TxIndex,
		Signature:  c.Signature,
		IxIndex:    ix.IxIndex,
		InnerIndex: ix.InnerIndex,
	}
	if c.Tx.TxCtx != nil {
		m.Slot = c.Tx.TxCtx.Slot
		m.BlockTime = c.Tx.TxCtx.BlockTime
	}
	return m
}

func (c *ParserContext) AddRecord(rec *entity.Record) {
	if rec != nil {
		c.records = append(c.records, rec)
	}
}

func (c *ParserContext) AddError(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// TakeResults 返回并清空已收集的 Record 与错误
func (c *ParserContext) TakeResults() ([]*entity.Record, []error) {
	records, errs := c.records, c.errs
	c.records, c.errs = nil, nil
	return records, errs
}
