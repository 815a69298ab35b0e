package core

import (
	"serum-indexer-sol/internal/types"

	"github.com/mr-tron/base58"
)

// TxContext 表示交易所属区块的上下文信息，包含时间、高度等元数据。
type TxContext struct {
	BlockTime  int64      // 区块时间戳（Unix 秒）
	Slot       uint64     // 当前 Slot（Solana 高度单位）
	ParentSlot uint64     // 父 Slot（用于分叉检测和回滚）
	BlockHash  types.Hash // 区块哈希（辅助去重与 fork 检测）
}

// AdaptedInstruction 表示一条主指令或 inner 指令，来源于 message.instructions 或 innerInstructions。
// 所有指令在预处理阶段已展平，并补充了位置信息（IxIndex、InnerIndex），以支持顺序遍历与定位。
type AdaptedInstruction struct {
	IxIndex    uint16         // 主指令索引（从 0 开始）
	InnerIndex uint16         // Inner 指令在主指令中的序号，主指令本身为 0，CPI 调用从 1 开始
	ProgramID  types.Pubkey   // 指令对应的程序 ID
	Accounts   []types.Pubkey // 指令涉及的账户列表，保持原始顺序
	Data       []byte         // 指令原始数据
}

// AdaptedTx 表示已解析的链上交易结构，是指令解析流程的核心输入。
type AdaptedTx struct {
	TxCtx     *TxContext // 所属区块上下文
	TxIndex   uint32     // 当前交易在区块中的序号
	Signature []byte     // 交易签名（64 字节原始数据）
	Signers   [][]byte   // 交易签名者列表

	// Instructions 表示交易中的所有指令（包括主指令和 inner 指令），已按 Solana 执行顺序展平。
	Instructions []*AdaptedInstruction
}

// SignatureString 返回 base58 编码的交易签名，仅用于日志与存储
func (tx *AdaptedTx) SignatureString() string {
	return base58.Encode(tx.Signature)
}
