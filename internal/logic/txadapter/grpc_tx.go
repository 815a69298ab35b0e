package txadapter

import (
	"fmt"

	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/types"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// buildFullAccountKeys 构造交易中完整的账户 Pubkey 列表：
// message.accountKeys 之后依次拼接 Address Lookup Table 的 writable / readonly 地址，
// 与指令中 accountIndex 的编号方式一致。
func buildFullAccountKeys(groups ...[][]byte) ([]types.Pubkey, error) {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	pubkeys := make([]types.Pubkey, total)

	i := 0
	for _, g := range groups {
		for _, b := range g {
			if len(b) != 32 {
				return nil, fmt.Errorf("invalid pubkey length %d at index %d", len(b), i)
			}
			copy(pubkeys[i][:], b)
			i++
		}
	}
	return pubkeys, nil
}

// resolveInstruction 将编号形式的 program / accounts 解析为 Pubkey
func resolveInstruction(accountKeys []types.Pubkey, programIndex uint32, accountIdx []byte) (types.Pubkey, []types.Pubkey, error) {
	if int(programIndex) >= len(accountKeys) {
		return types.Pubkey{}, nil, fmt.Errorf("program index %d out of range (%d keys)", programIndex, len(accountKeys))
	}
	accounts := make([]types.Pubkey, 0, len(accountIdx))
	for _, idx := range accountIdx {
		if int(idx) >= len(accountKeys) {
			return types.Pubkey{}, nil, fmt.Errorf("account index %d out of range (%d keys)", idx, len(accountKeys))
		}
		accounts = append(accounts, accountKeys[idx])
	}
	return accountKeys[programIndex], accounts, nil
}

// buildAdaptedInstructions 扁平化主指令与 inner 指令：
//   - IxIndex：主指令索引；
//   - InnerIndex：0 表示主指令，1 及以上为对应的 inner 指令序号。
func buildAdaptedInstructions(
	tx *pb.SubscribeUpdateTransactionInfo,
	accountKeys []types.Pubkey,
) ([]*core.AdaptedInstruction, error) {
	rawInstructions := tx.Transaction.Message.Instructions
	var rawInners []*pb.InnerInstructions
	if tx.Meta != nil {
		rawInners = tx.Meta.InnerInstructions
	}

	instructions := make([]*core.AdaptedInstruction, 0, max(len(rawInstructions)*2, 16))
	innerIndex := 0

	for i, inst := range rawInstructions {
		programID, accounts, err := resolveInstruction(accountKeys, inst.ProgramIdIndex, inst.Accounts)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		instructions = append(instructions, &core.AdaptedInstruction{
			IxIndex:   uint16(i),
			ProgramID: programID,
			Accounts:  accounts,
			Data:      inst.Data,
		})

		// inner 列表按主指令索引递增排列，顺序匹配即可
		if innerIndex < len(rawInners) && int(rawInners[innerIndex].Index) == i {
			for j, inner := range rawInners[innerIndex].Instructions {
				programID, accounts, err := resolveInstruction(accountKeys, inner.ProgramIdIndex, inner.Accounts)
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
	return instructions, nil
}

// AdaptGrpcTx 将 gRPC 推送的交易数据解析为内部 AdaptedTx 结构。
//  1. 构建 accountKeys（含 Address Lookup）；
//  2. 构建指令（主 + inner）；
//  3. 提取签名与 signer。
func AdaptGrpcTx(txCtx *core.TxContext, tx *pb.SubscribeUpdateTransactionInfo) (_ *core.AdaptedTx, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("AdaptGrpcTx panic: %v", r)
		}
	}()

	if tx.Transaction == nil || tx.Transaction.Message == nil {
		return nil, fmt.Errorf("invalid transaction: missing message")
	}
	msg := tx.Transaction.Message

	var loadedWritable, loadedReadonly [][]byte
	if tx.Meta != nil {
		loadedWritable = tx.Meta.LoadedWritableAddresses
		loadedReadonly = tx.Meta.LoadedReadonlyAddresses
	}
	accountKeys, err := buildFullAccountKeys(msg.AccountKeys, loadedWritable, loadedReadonly)
	if err != nil {
		return nil, fmt.Errorf("buildFullAccountKeys error: %w", err)
	}

	if len(tx.Transaction.Signatures) == 0 || len(accountKeys) == 0 {
		return nil, fmt.Errorf("invalid transaction: missing signature or accountKeys")
	}

	signerCount := 0
	if msg.Header != nil {
		signerCount = int(msg.Header.NumRequiredSignatures)
	}
	if signerCount == 0 || len(accountKeys) < signerCount {
		return nil, fmt.Errorf("invalid signer count: %d", signerCount)
	}

	instructions, err := buildAdaptedInstructions(tx, accountKeys)
	if err != nil {
		return nil, fmt.Errorf("buildAdaptedInstructions error: %w", err)
	}

	signers := make([][]byte, signerCount)
	for i := 0; i < signerCount; i++ {
		signers[i] = accountKeys[i][:]
	}

	return &core.AdaptedTx{
		TxCtx:        txCtx,
		TxIndex:      uint32(tx.Index),
		Signature:    tx.Transaction.Signatures[0],
		Signers:      signers,
		Instructions: instructions,
	}, nil
}
