package grpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"serum-indexer-sol/internal/config"
	"serum-indexer-sol/internal/consts"
	"serum-indexer-sol/internal/pkg/logger"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

type GrpcStreamManager struct {
	mu                    sync.Mutex                    // 互斥锁，保护并发安全
	conn                  *grpc.ClientConn              // gRPC 连接对象
	client                pb.GeyserClient               // gRPC 客户端
	stream                pb.Geyser_SubscribeClient     // gRPC 订阅流
	stopped               bool                          // 标记是否已经停止
	reconnectAttempts     int                           // 已重连次数
	reconnectInterval     time.Duration                 // 重连基础间隔
	xToken                string                        // 认证用的 x-token
	accountInclude        []string                      // 订阅过滤的 Program 地址
	streamPingIntervalSec int                           // Stream心跳包发送间隔（秒）
	blockChan             chan *pb.SubscribeUpdateBlock // 区块数据通道
	connCtx               context.Context               // 当前连接的 context
	connCancel            context.CancelFunc            // 当前连接的 cancel 函数
	blockRecvTimeoutSec   int                           // block接收超时时间（秒）
	sendTimeoutSec        int                           // gRPC发送超时时间（秒）
	maxLatencyWarn        time.Duration                 // 区块延迟告警阈值
}

func NewGrpcStreamManager(grpcConf config.GrpcConfig, programs []string, blockChan chan *pb.SubscribeUpdateBlock) (*GrpcStreamManager, error) {
	configTls := &tls.Config{
		InsecureSkipVerify: true,
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(grpcConf.ConnectTimeoutSec)*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		grpcConf.Endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(configTls)),
		grpc.WithInitialWindowSize(int32(grpcConf.InitialWindowSize)),
		grpc.WithInitialConnWindowSize(int32(grpcConf.InitialConnWindowSize)),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallSendMsgSize(grpcConf.MaxCallSendMsgSize),
			grpc.MaxCallRecvMsgSize(grpcConf.MaxCallRecvMsgSize),
		),
		grpc.WithBlock(),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                time.Duration(grpcConf.KeepalivePingIntervalSec) * time.Second,
			Timeout:             time.Duration(grpcConf.KeepalivePingTimeoutSec) * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	if len(programs) == 0 {
		programs = consts.GrpcAccountInclude
	}

	return &GrpcStreamManager{
		conn:                  conn,
		client:                pb.NewGeyserClient(conn),
		reconnectInterval:     time.Duration(grpcConf.ReconnectIntervalSec) * time.Second,
		xToken:                grpcConf.XToken,
		accountInclude:        programs,
		streamPingIntervalSec: grpcConf.StreamPingIntervalSec,
		blockChan:             blockChan,
		blockRecvTimeoutSec:   grpcConf.BlockRecvTimeoutSec,
		sendTimeoutSec:        grpcConf.SendTimeoutSec,
		maxLatencyWarn:        time.Duration(grpcConf.MaxLatencyWarnMs) * time.Millisecond,
	}, nil
}

func (m *GrpcStreamManager) Start() {
	m.mustConnect()
}

func (m *GrpcStreamManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			logger.Warnf("[GrpcStream] close conn: %v", err)
		}
	}
}

// 内部循环直到连接成功
func (m *GrpcStreamManager) mustConnect() {
	for {
		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		if m.reconnectAttempts > 0 {
			if m.reconnectAttempts > 3 {
				time.Sleep(m.reconnectInterval * 2)
			} else {
				time.Sleep(m.reconnectInterval)
			}
		}
		logger.Infof("[GrpcStream] connecting... attempt %d", m.reconnectAttempts+1)
		m.reconnectAttempts++
		err := m.connect()
		if err == nil {
			return // 连接成功
		}
		logger.Warnf("[GrpcStream] connect failed: %v, will retry...", err)
	}
}

// buildSubscribeRequest 只订阅包含市场 Program 调用的已确认区块
func buildSubscribeRequest(accountInclude []string) *pb.SubscribeRequest {
	blocks := make(map[string]*pb.SubscribeRequestFilterBlocks)
	blocks["blocks"] = &pb.SubscribeRequestFilterBlocks{
		AccountInclude:      accountInclude,
		IncludeTransactions: boolPtr(true),
		IncludeAccounts:     boolPtr(false),
		IncludeEntries:      boolPtr(false),
	}
	commitment := pb.CommitmentLevel_CONFIRMED
	return &pb.SubscribeRequest{
		Blocks:     blocks,
		Commitment: &commitment,
	}
}

// connect 只尝试一次连接
func (m *GrpcStreamManager) connect() error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return errors.New("manager is stopped")
	}
	defer m.mu.Unlock()

	// 先关闭旧的 context，优雅退出旧 goroutine
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	m.connCtx, m.connCancel = context.WithCancel(context.Background())

	metaCtx := metadata.NewOutgoingContext(
		m.connCtx,
		metadata.New(map[string]string{"x-token": m.xToken}),
	)
	stream, err := m.client.Subscribe(metaCtx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	req := buildSubscribeRequest(m.accountInclude)
	err = sendWithTimeout(m.connCtx, stream.Send, req, time.Duration(m.sendTimeoutSec)*time.Second)
	if err != nil {
		return fmt.Errorf("send subscribe request: %w", err)
	}

	m.stream = stream
	m.reconnectAttempts = 0
	logger.Infof("[GrpcStream] connection established, programs=%d", len(m.accountInclude))

	go m.pingLoop(m.connCtx, stream)
	go m.blockRecvLoop(m.connCtx, stream)

	return nil
}

func (m *GrpcStreamManager) blockRecvLoop(ctx context.Context, stream pb.Geyser_SubscribeClient) {
	last := time.Now()
	blockTimeout := time.Duration(m.blockRecvTimeoutSec) * time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		update, err := stream.Recv()
		now := time.Now()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				logger.Warnf("[GrpcStream] stream closed by server (EOF), will reconnect")
				m.reconnect()
				return
			}

			logger.Warnf("[GrpcStream] stream error: %v", err)
			if m.reconnectIfBlockTimeout(last, blockTimeout) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if u, ok := update.GetUpdateOneof().(*pb.SubscribeUpdate_Block); ok {
			block := u.Block
			if block.BlockTime != nil {
				latency := now.Sub(time.Unix(block.BlockTime.Timestamp, 0))
				if m.maxLatencyWarn > 0 && latency > m.maxLatencyWarn {
					logger.Warnf("[GrpcStream] slot %d latency to blockTime: %v", block.Slot, latency)
				}
			}

			select {
			case m.blockChan <- block:
			case <-ctx.Done():
				return
			}
			last = now
		}

		if m.reconnectIfBlockTimeout(last, blockTimeout) {
			return
		}
	}
}

// 带超时的 Send
func sendWithTimeout[T any](ctx context.Context, sendFunc func(T) error, req T, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sendFunc(req)
	}()

	select {
	case <-timeoutCtx.Done():
		return timeoutCtx.Err()
	case err := <-done:
		return err
	}
}

// 心跳检测
func (m *GrpcStreamManager) pingLoop(ctx context.Context, stream pb.Geyser_SubscribeClient) {
	ticker := time.NewTicker(time.Duration(m.streamPingIntervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingReq := &pb.SubscribeRequest{
				Ping: &pb.SubscribeRequestPing{Id: 1},
			}
			// 只记录日志，不触发重连
			if err := sendWithTimeout(ctx, stream.Send, pingReq, time.Duration(m.sendTimeoutSec)*time.Second); err != nil {
				logger.Warnf("[GrpcStream] ping failed: %v", err)
			}
		}
	}
}

func (m *GrpcStreamManager) reconnectIfBlockTimeout(last time.Time, timeout time.Duration) bool {
	if timeout > 0 && time.Since(last) > timeout {
		logger.Warnf("[GrpcStream] %v 未收到 block，触发重连", timeout)
		m.reconnect()
		return true
	}
	return false
}

func (m *GrpcStreamManager) reconnect() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	if m.connCancel != nil {
		m.connCancel() // 关闭所有相关 goroutine
		m.connCancel = nil
	}
	m.mu.Unlock()

	go m.mustConnect()
}

func boolPtr(b bool) *bool {
	return &b
}
