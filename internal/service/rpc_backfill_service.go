package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/logic/core"
	"serum-indexer-sol/internal/logic/ixparser"
	"serum-indexer-sol/internal/logic/progress"
	"serum-indexer-sol/internal/logic/txadapter"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/svc"

	"github.com/blocto/solana-go-sdk/client"
)

const (
	backfillQueueSize  = 1024
	backfillListChunk  = 1000 // 单次 getBlocks 查询的 slot 跨度
	backfillMaxRetries = 3
)

// BlockFetcher 按 slot 拉取完整区块，*client.Client 即满足
type BlockFetcher interface {
	GetBlock(ctx context.Context, slot uint64) (*client.Block, error)
}

// SlotLister 返回 [from, to] 内实际出块的 slot
type SlotLister func(ctx context.Context, from, to uint64) ([]uint64, error)

// RpcBackfillService 通过 RPC getBlock 回补 slot：
// 启动时处理配置的区间，之后持续处理 Enqueue 提交的漏扫 slot。
type RpcBackfillService struct {
	fetcher   BlockFetcher
	listSlots SlotLister
	parser    *ixparser.Parser
	progress  *progress.ProgressManager
	workers   int
	timeout   time.Duration
	fromSlot  uint64
	toSlot    uint64
	slotCh    chan uint64
	ctx       context.Context
	cancel    func(err error)
}

func NewRpcBackfillService(cfg config.BackfillConfig, sc *svc.ServiceContext) (*RpcBackfillService, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("backfill endpoint is empty")
	}
	c := client.NewClient(cfg.Endpoint)
	if c == nil {
		return nil, errors.New("rpc client init failed")
	}
	listSlots := func(ctx context.Context, from, to uint64) ([]uint64, error) {
		resp, err := c.RpcClient.GetBlocks(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return resp.Result, nil
	}
	return newRpcBackfillService(cfg, sc, c, listSlots), nil
}

func newRpcBackfillService(cfg config.BackfillConfig, sc *svc.ServiceContext, fetcher BlockFetcher, listSlots SlotLister) *RpcBackfillService {
	ctx, cancel := context.WithCancelCause(context.Background())
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RpcBackfillService{
		fetcher:   fetcher,
		listSlots: listSlots,
		parser:    sc.Parser,
		progress:  sc.ProgressManager,
		workers:   max(cfg.Workers, 1),
		timeout:   timeout,
		fromSlot:  cfg.FromSlot,
		toSlot:    cfg.ToSlot,
		slotCh:    make(chan uint64, backfillQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *RpcBackfillService) Start() {
	if s.toSlot > 0 && s.toSlot >= s.fromSlot {
		n, err := s.BackfillRange(s.ctx, s.fromSlot, s.toSlot)
		if err != nil {
			logger.Errorf("[RpcBackfill] 区间 [%d, %d] 回补中断: %v", s.fromSlot, s.toSlot, err)
		} else {
			logger.Infof("[RpcBackfill] 区间 [%d, %d] 回补完成, 处理 slot 数: %d", s.fromSlot, s.toSlot, n)
		}
	}

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			s.consume()
		}()
	}
	wg.Wait()
}

func (s *RpcBackfillService) Stop() {
	s.cancel(errors.New("RpcBackfillService stop"))
}

// Enqueue 提交需要回补的 slot；队列满时丢弃并告警
func (s *RpcBackfillService) Enqueue(slots []uint64) {
	for _, slot := range slots {
		select {
		case s.slotCh <- slot:
		default:
			logger.Warnf("[RpcBackfill] 队列已满，丢弃 slot %d", slot)
		}
	}
}

func (s *RpcBackfillService) consume() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case slot := <-s.slotCh:
			if _, err := s.ProcessSlot(s.ctx, slot); err != nil {
				logger.Errorf("[RpcBackfill] slot %d 回补失败: %v", slot, err)
			}
		}
	}
}

// BackfillRange 分段列出 [from, to] 内的出块 slot 并逐个处理，返回实际处理的 slot 数
func (s *RpcBackfillService) BackfillRange(ctx context.Context, from, to uint64) (int, error) {
	processed := 0
	for start := from; start <= to; {
		end := min(start+backfillListChunk-1, to)
		slots, err := s.listSlots(ctx, start, end)
		if err != nil {
			return processed, fmt.Errorf("getBlocks [%d, %d]: %w", start, end, err)
		}

		n, err := s.processSlots(ctx, slots)
		processed += n
		if err != nil {
			return processed, err
		}
		if end == to {
			break
		}
		start = end + 1
	}
	return processed, nil
}

func (s *RpcBackfillService) processSlots(ctx context.Context, slots []uint64) (int, error) {
	jobs := make(chan uint64)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go func() {
			defer wg.Done()
			for slot := range jobs {
				ok, err := s.ProcessSlot(ctx, slot)
				if err != nil {
					logger.Errorf("[RpcBackfill] slot %d 回补失败: %v", slot, err)
					continue
				}
				if ok {
					mu.Lock()
					processed++
					mu.Unlock()
				}
			}
		}()
	}

	var err error
loop:
	for _, slot := range slots {
		select {
		case <-ctx.Done():
			err = context.Cause(ctx)
			break loop
		case jobs <- slot:
		}
	}
	close(jobs)
	wg.Wait()
	return processed, err
}

// ProcessSlot 拉取并解析一个 slot；已处理过的 slot 返回 false
func (s *RpcBackfillService) ProcessSlot(ctx context.Context, slot uint64) (_ bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[RpcBackfill] slot %d panic: %v\n%s", slot, r, debug.Stack())
			err = fmt.Errorf("process slot panic: %v", r)
		}
	}()

	if s.progress != nil {
		ok, err := s.progress.ShouldProcessSlot(ctx, slot, 0)
		if err != nil {
			logger.Warnf("[RpcBackfill] 查询 slot %d 进度失败，继续处理: %v", slot, err)
		} else if !ok {
			return false, nil
		}
	}

	block, err := s.getBlockWithRetry(ctx, slot)
	if err != nil {
		return false, err
	}

	txCtx, err := txadapter.BuildRpcTxContext(slot, block)
	if err != nil {
		logger.Errorf("[RpcBackfill] [严重] %v, slot=%d, 将使用零值", err, slot)
	}

	txs := make([]*core.AdaptedTx, 0, len(block.Transactions))
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if !txadapter.IsValidRpcTx(tx) {
			continue
		}
		adapted, err := txadapter.AdaptRpcTx(txCtx, uint32(i), tx)
		if err != nil {
			logger.Errorf("[RpcBackfill] 交易转换失败: slot=%d, index=%d, err=%v", slot, i, err)
			continue
		}
		txs = append(txs, adapted)
	}

	result := s.parser.ExtractFromBlock(ctx, txs, s.workers)
	for _, e := range result.Errs {
		logger.Errorf("[RpcBackfill] slot %d 写入失败: %v", slot, e)
	}

	if s.progress != nil {
		status := progress.SlotProcessed
		if len(result.Errs) > 0 {
			status = progress.SlotInvalid
		}
		if err := s.progress.MarkSlotStatus(ctx, progress.SlotRecord{
			Slot:      slot,
			Source:    progress.SourceRpc,
			BlockTime: txCtx.BlockTime,
			Status:    status,
			Records:   result.Records,
		}); err != nil {
			logger.Errorf("[RpcBackfill] 记录 slot %d 进度失败: %v", slot, err)
		}
	}

	logger.Infof("[RpcBackfill] slot %d 完成, 有效tx数量: %d, record数量: %d, 错误数量: %d",
		slot, len(txs), result.Records, len(result.Errs))
	if len(result.Errs) > 0 {
		return true, errors.Join(result.Errs...)
	}
	return true, nil
}

func (s *RpcBackfillService) getBlockWithRetry(ctx context.Context, slot uint64) (*client.Block, error) {
	delay := 300 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < backfillMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, context.Cause(ctx)
			case <-time.After(delay):
			}
			delay *= 2
		}

		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		block, err := s.fetcher.GetBlock(reqCtx, slot)
		cancel()
		if err == nil {
			if block == nil {
				return nil, fmt.Errorf("getBlock %d: empty result", slot)
			}
			return block, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("getBlock %d failed after %d retries: %w", slot, backfillMaxRetries, lastErr)
}
