package txadapter

import (
	"fmt"

	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// BuildRpcTxContext 由 RPC getBlock 结果构造区块上下文；blockhash 解析失败时使用零值
func BuildRpcTxContext(slot uint64, block *client.Block) (*core.TxContext, error) {
	txCtx := &core.TxContext{
		Slot:       slot,
		ParentSlot: block.ParentSlot,
	}
	if block.BlockTime != nil {
		txCtx.BlockTime = block.BlockTime.Unix()
	}
	hash, err := types.HashFromBase58(block.Blockhash)
	if err != nil {
		return txCtx, fmt.Errorf("invalid blockhash %q: %w", block.Blockhash, err)
	}
	txCtx.BlockHash = hash
	return txCtx, nil
}

// IsValidRpcTx 过滤缺少签名或执行失败的交易
func IsValidRpcTx(tx *client.BlockTransaction) bool {
	return tx != nil &&
		len(tx.Transaction.Signatures) > 0 &&
		len(tx.Transaction.Signatures[0]) == 64 &&
		tx.Meta != nil &&
		tx.Meta.Err == nil
}

func resolveRpcInstruction(accountKeys []types.Pubkey, ins sdktypes.CompiledInstruction) (types.Pubkey, []types.Pubkey, error) {
	if ins.ProgramIDIndex < 0 || ins.ProgramIDIndex >= len(accountKeys) {
		return types.Pubkey{}, nil, fmt.Errorf("program index %d out of range (%d keys)", ins.ProgramIDIndex, len(accountKeys))
	}
	accounts := make([]types.Pubkey, 0, len(ins.Accounts))
	for _, idx := range ins.Accounts {
		if idx < 0 || idx >= len(accountKeys) {
			return types.Pubkey{}, nil, fmt.Errorf("account index %d out of range (%d keys)", idx, len(accountKeys))
		}
		accounts = append(accounts, accountKeys[idx])
	}
	return accountKeys[ins.ProgramIDIndex], accounts, nil
}

// AdaptRpcTx 将 RPC 区块中的一笔交易解析为 AdaptedTx。
// client.BlockTransaction.AccountKeys 已包含 Address Lookup 加载的地址。
func AdaptRpcTx(txCtx *core.TxContext, txIndex uint32, tx *client.BlockTransaction) (_ *core.AdaptedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("AdaptRpcTx panic: %v", r)
		}
	}()

	if len(tx.Transaction.Signatures) == 0 || len(tx.AccountKeys) == 0 {
		return nil, fmt.Errorf("invalid transaction: missing signature or accountKeys")
	}

	accountKeys := make([]types.Pubkey, len(tx.AccountKeys))
	for i, k := range tx.AccountKeys {
		accountKeys[i] = types.Pubkey(k)
	}

	// 每个 signer 恰好对应一个签名
	signerCount := len(tx.Transaction.Signatures)
	if len(accountKeys) < signerCount {
		return nil, fmt.Errorf("invalid signer count: %d", signerCount)
	}

	rawInstructions := tx.Transaction.Message.Instructions
	var rawInners []client.InnerInstruction
	if tx.Meta != nil {
		rawInners = tx.Meta.InnerInstructions
	}

	instructions := make([]*core.AdaptedInstruction, 0, max(len(rawInstructions)*2, 16))
	innerIndex := 0
	for i, inst := range rawInstructions {
		programID, accounts, err := resolveRpcInstruction(accountKeys, inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		instructions = append(instructions, &core.AdaptedInstruction{
			IxIndex:   uint16(i),
			ProgramID: programID,
			Accounts:  accounts,
			Data:      inst.Data,
		})

		if innerIndex < len(rawInners) && int(rawInners[innerIndex].Index) == i {
			for j, inner := range rawInners[innerIndex].Instructions {
				programID, accounts, err := resolveRpcInstruction(accountKeys, inner)
				if err != nil {
					return nil, fmt.Errorf("instruction %d inner %d: %w", i, j+1, err)
				}
				instructions = append(instructions, &core.AdaptedInstruction{
					IxIndex:    uint16(i),
					InnerIndex: uint16(j + 1),
					ProgramID:  programID,
					Accounts:   accounts,
					Data:       inner.Data,
				})
			}
			innerIndex++
		}
	}

	signers := make([][]byte, signerCount)
	for i := 0; i < signerCount; i++ {
		signers[i] = accountKeys[i][:]
	}

	return &core.AdaptedTx{
		TxCtx:        txCtx,
		TxIndex:      txIndex,
		Signature:    tx.Transaction.Signatures[0],
		Signers:      signers,
		Instructions: instructions,
	}, nil
}
