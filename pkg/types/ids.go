// Package types 定义 quicwire 公共类型
//
// 本文件定义连接标识类型。
package types

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// ConnectionID QUIC 连接 ID
//
// 不透明字节串，长度 0..MaxConnIDLen。
// 在 accept 时由本端选取（scid）或从对端报文中观察（dcid/odcid）。
type ConnectionID []byte

// NewConnectionID 生成一个 16 字节的随机连接 ID
//
// 用于 accept 前为新连接选取本端 scid。
func NewConnectionID() ConnectionID {
	id := uuid.New()
	return ConnectionID(id[:])
}

// String 返回连接 ID 的十六进制表示
func (id ConnectionID) String() string {
	return hex.EncodeToString(id)
}

// Equal 判断两个连接 ID 是否相等
func (id ConnectionID) Equal(other ConnectionID) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone 返回连接 ID 的拷贝
func (id ConnectionID) Clone() ConnectionID {
	out := make(ConnectionID, len(id))
	copy(out, id)
	return out
}
