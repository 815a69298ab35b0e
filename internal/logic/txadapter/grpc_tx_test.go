package txadapter

import (
	"testing"

	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/logic/core"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte {
	k := make([]byte, 32)
	k[0] = b
	return k
}

func sig() []byte {
	s := make([]byte, 64)
	s[0] = 0x11
	return s
}

func grpcTx() *pb.SubscribeUpdateTransactionInfo {
	return &pb.SubscribeUpdateTransactionInfo{
		Index: 7,
		Transaction: &pb.Transaction{
			Signatures: [][]byte{sig()},
			Message: &pb.Message{
				Header:      &pb.MessageHeader{NumRequiredSignatures: 1},
				AccountKeys: [][]byte{key(1), key(2), consts.SerumDexV3Program[:]},
				Instructions: []*pb.CompiledInstruction{
					{ProgramIdIndex: 2, Accounts: []byte{0, 1}, Data: []byte{0x00, 0x05, 0x00, 0x00, 0x00}},
					{ProgramIdIndex: 1, Accounts: []byte{0}, Data: []byte{0x01}},
				},
			},
		},
		Meta: &pb.TransactionStatusMeta{
			InnerInstructions: []*pb.InnerInstructions{
				{
					Index: 1,
					Instructions: []*pb.InnerInstruction{
						{ProgramIdIndex: 2, Accounts: []byte{3}, Data: []byte{0x00, 0x07, 0x00, 0x00, 0x00}},
						{ProgramIdIndex: 4, Accounts: nil, Data: []byte{0x02}},
					},
				},
			},
			LoadedWritableAddresses: [][]byte{key(4)},
			LoadedReadonlyAddresses: [][]byte{key(5)},
		},
	}
}

func TestAdaptGrpcTx(t *testing.T) {
	txCtx := &core.TxContext{Slot: 100, BlockTime: 1700000000}
	tx, err := AdaptGrpcTx(txCtx, grpcTx())
	require.NoError(t, err)

	assert.Same(t, txCtx, tx.TxCtx)
	assert.Equal(t, uint32(7), tx.TxIndex)
	assert.Equal(t, sig(), tx.Signature)
	require.Len(t, tx.Signers, 1)
	assert.Equal(t, key(1), tx.Signers[0])

	require.Len(t, tx.Instructions, 4)
	assert.Equal(t, consts.SerumDexV3Program, tx.Instructions[0].ProgramID)
	assert.Equal(t, uint16(0), tx.Instructions[0].IxIndex)
	assert.Equal(t, uint16(0), tx.Instructions[0].InnerIndex)
	require.Len(t, tx.Instructions[0].Accounts, 2)
	assert.Equal(t, byte(2), tx.Instructions[0].Accounts[1][0])

	// inner 指令：账户编号 3 指向 loaded writable 地址
	inner := tx.Instructions[2]
	assert.Equal(t, uint16(1), inner.IxIndex)
	assert.Equal(t, uint16(1), inner.InnerIndex)
	assert.Equal(t, consts.SerumDexV3Program, inner.ProgramID)
	assert.Equal(t, byte(4), inner.Accounts[0][0])

	assert.Equal(t, uint16(2), tx.Instructions[3].InnerIndex)
	assert.Equal(t, byte(5), tx.Instructions[3].ProgramID[0])
}

func TestAdaptGrpcTxInvalid(t *testing.T) {
	tx := grpcTx()
	tx.Transaction.Message.Instructions[0].Accounts = []byte{9}
	_, err := AdaptGrpcTx(&core.TxContext{}, tx)
	assert.ErrorContains(t, err, "out of range")

	tx = grpcTx()
	tx.Transaction.Message.AccountKeys[0] = []byte{1, 2, 3}
	_, err = AdaptGrpcTx(&core.TxContext{}, tx)
	assert.ErrorContains(t, err, "invalid pubkey")

	tx = grpcTx()
	tx.Transaction.Signatures = nil
	_, err = AdaptGrpcTx(&core.TxContext{}, tx)
	assert.Error(t, err)

	tx = grpcTx()
	tx.Transaction.Message.Header.NumRequiredSignatures = 0
	_, err = AdaptGrpcTx(&core.TxContext{}, tx)
	assert.ErrorContains(t, err, "signer count")

	tx = grpcTx()
	tx.Transaction.Message = nil
	_, err = AdaptGrpcTx(&core.TxContext{}, tx)
	assert.Error(t, err)
}
