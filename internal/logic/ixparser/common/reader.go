package common

import (
	"encoding/binary"
	"errors"
	"fmt"

	"serum-indexer-sol/internal/types"
)

var (
	ErrShortBuffer    = errors.New("buffer too short")
	ErrZeroValue      = errors.New("zero value in non-zero field")
	ErrInvalidOrdinal = errors.New("ordinal out of range")
)

// Reader 是指令数据的小端序顺序读取器。
// 所有读取都做显式边界检查；第一次失败后错误被保留，后续读取全部返回零值，
// 调用方只需在组装完整个结构后检查一次 Err()，即可实现"任一字段失败则整体失败"。
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err 返回第一次读取失败的原因
func (r *Reader) Err() error {
	return r.err
}

// Offset 返回已消费的字节数
func (r *Reader) Offset() int {
	return r.off
}

// Remaining 返回尚未消费的字节数
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// next 切出接下来的 n 个字节，越界时记录错误并返回 nil
func (r *Reader) next(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Remaining() < n {
		r.err = fmt.Errorf("%w: field=%s offset=%d need=%d have=%d", ErrShortBuffer, field, r.off, n, r.Remaining())
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) Skip(n int, field string) {
	r.next(n, field)
}

func (r *Reader) U8(field string) uint8 {
	b := r.next(1, field)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16(field string) uint16 {
	b := r.next(2, field)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32(field string) uint32 {
	b := r.next(4, field)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64(field string) uint64 {
	b := r.next(8, field)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) U128(field string) types.Uint128 {
	b := r.next(16, field)
	if b == nil {
		return types.Uint128{}
	}
	return types.Uint128FromLE(b)
}

// NonZeroU64 读取 u64，值为 0 视为校验失败
func (r *Reader) NonZeroU64(field string) uint64 {
	v := r.U64(field)
	if r.err == nil && v == 0 {
		r.fail(fmt.Errorf("%w: field=%s offset=%d", ErrZeroValue, field, r.off-8))
	}
	return v
}

// Ordinal32 读取 4 字节小端序枚举序号，序号必须 < count
func (r *Reader) Ordinal32(field string, count uint32) uint32 {
	v := r.U32(field)
	if r.err == nil && v >= count {
		r.fail(fmt.Errorf("%w: field=%s ordinal=%d count=%d", ErrInvalidOrdinal, field, v, count))
		return 0
	}
	return v
}

// Ordinal8 读取 1 字节枚举序号，序号必须 < count
func (r *Reader) Ordinal8(field string, count uint8) uint8 {
	v := r.U8(field)
	if r.err == nil && v >= count {
		r.fail(fmt.Errorf("%w: field=%s ordinal=%d count=%d", ErrInvalidOrdinal, field, v, count))
		return 0
	}
	return v
}

// U64Array4 读取定长 4 个 u64（32 字节）
func (r *Reader) U64Array4(field string) [4]uint64 {
	var out [4]uint64
	b := r.next(32, field)
	if b == nil {
		return out
	}
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return out
}
