package types

import (
	"encoding/binary"
	"math/big"
)

// Uint128 表示链上的 u128（小端序，Lo 为低 64 位）。
// Serum 的 order_id 即为 u128：高 64 位为价格，低 64 位为序列号。
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Uint128FromLE 从 16 字节小端序数据构造 Uint128，调用方保证长度
func Uint128FromLE(b []byte) Uint128 {
	_ = b[15]
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

func (u Uint128) Big() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

// String 返回十进制表示
func (u Uint128) String() string {
	if u.Hi == 0 {
		return new(big.Int).SetUint64(u.Lo).String()
	}
	return u.Big().String()
}
