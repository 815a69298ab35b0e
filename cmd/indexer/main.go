package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/logic/grpc"
	"serum-indexer-sol/internal/pkg/logger"
	"serum-indexer-sol/internal/service"
	"serum-indexer-sol/internal/svc"
	"serum-indexer-sol/internal/utils"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/indexer.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
		logger.Sync()
	}()

	flag.Parse()

	var c config.IndexerConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}
	logger.Infof("serum indexer starting, host=%s", utils.GetLocalIP())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceContext, err := svc.NewServiceContext(ctx, c)
	if err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	// 进度落库与清理
	flushInterval := time.Duration(c.ProgressConf.FlushIntervalMs) * time.Millisecond
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	flushDone := make(chan struct{})
	go func() {
		serviceContext.ProgressManager.StartFlushLoop(ctx, flushInterval)
		close(flushDone)
	}()
	if c.ProgressConf.GCIntervalSec > 0 {
		serviceContext.ProgressManager.StartGCLoop(ctx, time.Duration(c.ProgressConf.GCIntervalSec)*time.Second)
	}

	sg := zerosvc.NewServiceGroup()

	var onMissing func(slots []uint64)
	if c.Backfill.Enabled {
		backfill, err := service.NewRpcBackfillService(c.Backfill, serviceContext)
		if err != nil {
			panic(err)
		}
		onMissing = backfill.Enqueue
		sg.Add(backfill)
		logger.Infof("rpc backfill enabled, range=[%d, %d]", c.Backfill.FromSlot, c.Backfill.ToSlot)
	}

	if c.Grpc.Enabled {
		var gaps grpc.GapSubmitter
		if c.Backfill.Endpoint != "" {
			checker := grpc.NewSlotChecker(c.Backfill.Endpoint, onMissing)
			sg.Add(checker)
			gaps = checker
		}

		blockChan := make(chan *pb.SubscribeUpdateBlock, max(c.Grpc.BlockChanSize, 1))
		grpcService, err := grpc.NewGrpcStreamManager(c.Grpc, c.Programs, blockChan)
		if err != nil {
			panic(err)
		}
		sg.Add(grpcService)
		sg.Add(grpc.NewBlockProcessor(serviceContext, blockChan, gaps))
		logger.Infof("grpc stream enabled, endpoint=%s", c.Grpc.Endpoint)
	}

	// 启动服务
	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Infof("Shutting down services...")
	sg.Stop()
	cancel()
	<-flushDone
}
