package grpc

import (
	"context"
	"errors"
	"time"

	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/logic/ixparser"
	"serum-indexer-sol/internal/logic/progress"
	"serum-indexer-sol/internal/logic/txadapter"
	"serum-indexer-sol/internal/svc"
	"serum-indexer-sol/internal/types"
	"serum-indexer-sol/pkg/utils"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/logx"
)

// GapSubmitter 接收两个连续区块之间缺失的 slot 区间（闭区间）
type GapSubmitter interface {
	Submit(from, to uint64)
}

type BlockProcessor struct {
	parser    *ixparser.Parser
	progress  *progress.ProgressManager
	gaps      GapSubmitter // 可为 nil
	workers   int
	lastSlot  uint64
	blockChan chan *pb.SubscribeUpdateBlock // 接收 block 的 channel
	ctx       context.Context
	cancel    func(err error)
	logx.Logger
}

func NewBlockProcessor(sc *svc.ServiceContext, blockChan chan *pb.SubscribeUpdateBlock, gaps GapSubmitter) *BlockProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &BlockProcessor{
		parser:    sc.Parser,
		progress:  sc.ProgressManager,
		gaps:      gaps,
		workers:   consts.CpuCount + 2,
		blockChan: blockChan,
		Logger:    logx.WithContext(ctx).WithFields(logx.Field("service", "block_processor")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (p *BlockProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return // 退出
		case block, ok := <-p.blockChan:
			if !ok {
				return
			}
			p.ProcessBlock(p.ctx, block)
			if len(p.blockChan) > 10 {
				p.Debugf("block chan len:%v", len(p.blockChan))
			}
		}
	}
}

func (p *BlockProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

// ProcessBlock 解析一个区块并记录处理进度；已处理过的 slot 返回 false
func (p *BlockProcessor) ProcessBlock(ctx context.Context, block *pb.SubscribeUpdateBlock) (ixparser.BlockResult, bool) {
	startTime := time.Now()
	txCtx := buildTxContext(block)
	p.checkGap(block.Slot)

	if p.progress != nil {
		ok, err := p.progress.ShouldProcessSlot(ctx, txCtx.Slot, txCtx.BlockTime)
		if err != nil {
			p.Errorf("查询 slot 进度失败，继续处理: slot=%d, err=%v", txCtx.Slot, err)
		} else if !ok {
			p.Infof("slot %d 已处理，跳过", txCtx.Slot)
			return ixparser.BlockResult{}, false
		}
	}

	// 1. 过滤合法交易并转换为 AdaptedTx
	validTxs := make([]*pb.SubscribeUpdateTransactionInfo, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		if IsValidGrpcTx(tx) {
			validTxs = append(validTxs, tx)
		}
	}
	adapted := utils.ParallelMap(validTxs, p.workers, func(tx *pb.SubscribeUpdateTransactionInfo) *core.AdaptedTx {
		adaptedTx, err := txadapter.AdaptGrpcTx(txCtx, tx)
		if err != nil {
			p.Errorf("交易转换失败: slot=%d, index=%d, err=%v", txCtx.Slot, tx.Index, err)
			return nil
		}
		return adaptedTx
	})
	txs := adapted[:0]
	for _, tx := range adapted {
		if tx != nil {
			txs = append(txs, tx)
		}
	}

	// 2. 并发解析并写入 Sink
	result := p.parser.ExtractFromBlock(ctx, txs, p.workers)
	for _, err := range result.Errs {
		p.Errorf("slot %d 写入失败: %v", txCtx.Slot, err)
	}

	// 3. 记录进度，写入失败的 slot 标记为 invalid 以便回补
	if p.progress != nil {
		status := progress.SlotProcessed
		if len(result.Errs) > 0 {
			status = progress.SlotInvalid
		}
		err := p.progress.MarkSlotStatus(ctx, progress.SlotRecord{
			Slot:      txCtx.Slot,
			Source:    progress.SourceGrpc,
			BlockTime: txCtx.BlockTime,
			Status:    status,
			Records:   result.Records,
		})
		if err != nil {
			p.Errorf("记录 slot 进度失败: slot=%d, err=%v", txCtx.Slot, err)
		}
	}

	p.Infof("区块处理耗时: %v, slot: %d, 总tx数量: %d, 有效tx数量: %d, record数量: %d, 错误数量: %d",
		time.Since(startTime), txCtx.Slot, len(block.Transactions), len(txs), result.Records, len(result.Errs))
	return result, true
}

// checkGap 发现与上一个区块之间有 slot 空洞时提交给检查器
func (p *BlockProcessor) checkGap(slot uint64) {
	last := p.lastSlot
	if slot > last {
		p.lastSlot = slot
	}
	if p.gaps == nil || last == 0 || slot <= last+1 {
		return
	}
	p.gaps.Submit(last+1, slot-1)
}

func buildTxContext(block *pb.SubscribeUpdateBlock) *core.TxContext {
	// blockHash 解析失败只打日志，继续执行
	blockHash, err := types.HashFromBase58(block.Blockhash)
	if err != nil {
		logx.Errorf("[严重] BlockHash 无法解析，将使用零值：slot=%d, blockhash=%s, err=%v",
			block.Slot, block.Blockhash, err)
	}

	var blockTime int64
	if block.BlockTime != nil {
		blockTime = block.BlockTime.Timestamp
	}
	return &core.TxContext{
		BlockTime:  blockTime,
		Slot:       block.Slot,
		BlockHash:  blockHash,
		ParentSlot: block.ParentSlot,
	}
}

func IsValidGrpcTx(tx *pb.SubscribeUpdateTransactionInfo) bool {
	if tx == nil || // - nil transaction info
		tx.Transaction == nil || // - missing Transaction field
		tx.Transaction.Message == nil || // - missing Message field in transaction
		len(tx.Transaction.Signatures) == 0 || // - missing transaction signature
		len(tx.Transaction.Signatures[0]) != 64 || // - invalid transaction signature length
		tx.IsVote || // - vote transaction skipped
		tx.Meta == nil || // - missing transaction meta data
		tx.Meta.Err != nil { // - transaction execution failed
		return false
	}
	return true
}
