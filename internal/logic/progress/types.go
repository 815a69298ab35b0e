package progress

import "context"

// SlotStatus 表示 slot 的处理状态（统一 Redis 与 DB 编码）
type SlotStatus int

const (
	SlotUnknown   SlotStatus = 0 // 不存在
	SlotProcessed SlotStatus = 1 // 已处理成功
	SlotInvalid   SlotStatus = 2 // 处理失败（如 Sink 写入错误），需要回补
	SlotPending   SlotStatus = 3 // 处理中，暂未完成（仅状态缓存使用）
)

func (s SlotStatus) String() string {
	switch s {
	case SlotProcessed:
		return "processed"
	case SlotInvalid:
		return "invalid"
	case SlotPending:
		return "pending"
	default:
		return "unknown"
	}
}

// Source 表示 slot 数据来源（grpc、rpc）
const (
	SourceUnknown int16 = 0
	SourceGrpc    int16 = 1
	SourceRpc     int16 = 2
)

func SourceName(src int16) string {
	switch src {
	case SourceGrpc:
		return "grpc"
	case SourceRpc:
		return "rpc"
	default:
		return "unknown"
	}
}

// SlotRecord 表示一条待写入 DB 的 slot 记录
type SlotRecord struct {
	Slot      uint64     // Solana slot
	Source    int16      // 来源：1=grpc, 2=rpc
	BlockTime int64      // Unix timestamp（秒）
	Status    SlotStatus // 处理状态：1=已处理，2=失败
	Records   int        // 该 slot 产出的 Record 数量
}

// StatusStore 是 slot 状态的快速判重存储（Redis 或进程内）
type StatusStore interface {
	GetSlotStatus(ctx context.Context, slot uint64) (SlotStatus, error)
	MarkSlotStatus(ctx context.Context, slot uint64, status SlotStatus) error
}
