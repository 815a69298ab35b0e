package utils

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// EncodeWithType 将 protobuf 消息编码为带类型前缀的二进制数据：
// 前 4 字节为类型编号（uint32，小端序），后续为确定性序列化的 protobuf 数据。
func EncodeWithType(typeCode uint32, msg proto.Message) ([]byte, error) {
	size := proto.Size(msg)
	buf := make([]byte, 4, 4+size)
	binary.LittleEndian.PutUint32(buf, typeCode)

	opts := proto.MarshalOptions{Deterministic: true}
	out, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeWithType: marshal %T: %w", msg, err)
	}
	return out, nil
}

// DecodeWithType 是 EncodeWithType 的逆过程，msg 由调用方提供具体类型
func DecodeWithType(data []byte, msg proto.Message) (uint32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("DecodeWithType: data too short: %d", len(data))
	}
	if err := proto.Unmarshal(data[4:], msg); err != nil {
		return 0, fmt.Errorf("DecodeWithType: unmarshal %T: %w", msg, err)
	}
	return binary.LittleEndian.Uint32(data[:4]), nil
}
