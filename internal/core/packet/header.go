// Package packet 实现 QUIC 报文头的解析与整形
//
// 本文件实现头部前缀解析器。解析器纯函数、无状态、从不解密，
// 用于在连接存在之前完成路由决策：按 dcid 找到既有连接，
// 或在无连接时触发 Retry / 版本协商。
package packet

import (
	"encoding/binary"

	"github.com/quic-go/quic-go/quicvarint"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// 头部首字节的结构位
const (
	headerFormLong = 0x80 // 长头部标志
	longTypeMask   = 0x03 // 长头部类型位（右移 4 位后）
)

// Header 解析出的 QUIC 头部前缀
//
// 只含明文可见字段，负载保持加密。
type Header struct {
	// Type 报文类型
	Type types.PacketType

	// Version 版本号（短头部与版本协商报文为 0）
	Version uint32

	// SCID 源连接 ID（短头部为空）
	SCID types.ConnectionID

	// DCID 目的连接 ID
	DCID types.ConnectionID

	// Token 地址验证令牌（仅 Initial 与 Retry，可能为空）
	Token []byte

	// VersionSupported 版本是否被本实现支持
	VersionSupported bool
}

// VersionSupported 判断版本号是否被支持
func VersionSupported(version uint32) bool {
	return version == types.ProtocolVersion
}

// ParseHeader 解析报文头前缀
//
// maxConnIDLen 限定连接 ID 长度上限；短头部按该长度读取 dcid。
// 任何截断或结构错误都返回 ErrBadFormat，不存在部分成功。
func ParseHeader(data []byte, maxConnIDLen int) (*Header, error) {
	if len(data) < 1 {
		return nil, types.ErrBadFormat
	}

	first := data[0]
	rest := data[1:]

	// 短头部：dcid 按约定长度读取，版本与类型字段不存在
	if first&headerFormLong == 0 {
		if len(rest) < maxConnIDLen {
			return nil, types.ErrBadFormat
		}
		return &Header{
			Type:             types.PacketTypeShort,
			DCID:             types.ConnectionID(rest[:maxConnIDLen]).Clone(),
			VersionSupported: false,
		}, nil
	}

	// 长头部：版本 + dcid + scid
	if len(rest) < 4 {
		return nil, types.ErrBadFormat
	}
	version := binary.BigEndian.Uint32(rest[:4])
	rest = rest[4:]

	dcid, rest, err := readConnID(rest, maxConnIDLen)
	if err != nil {
		return nil, err
	}
	scid, rest, err := readConnID(rest, maxConnIDLen)
	if err != nil {
		return nil, err
	}

	hdr := &Header{
		Version:          version,
		SCID:             scid,
		DCID:             dcid,
		VersionSupported: VersionSupported(version),
	}

	// 版本号 0 标识版本协商报文
	if version == 0 {
		hdr.Type = types.PacketTypeVersionNegotiation
		return hdr, nil
	}

	switch (first >> 4) & longTypeMask {
	case 0x00:
		hdr.Type = types.PacketTypeInitial
		tokenLen, n, err := quicvarint.Parse(rest)
		if err != nil {
			return nil, types.ErrBadFormat
		}
		rest = rest[n:]
		if uint64(len(rest)) < tokenLen {
			return nil, types.ErrBadFormat
		}
		hdr.Token = append([]byte(nil), rest[:tokenLen]...)

	case 0x01:
		hdr.Type = types.PacketTypeZeroRTT

	case 0x02:
		hdr.Type = types.PacketTypeHandshake

	case 0x03:
		hdr.Type = types.PacketTypeRetry
		// Retry 的令牌是剩余字节去掉末尾 16 字节完整性标签
		if len(rest) < retryIntegrityTagLen {
			return nil, types.ErrBadFormat
		}
		hdr.Token = append([]byte(nil), rest[:len(rest)-retryIntegrityTagLen]...)
	}

	return hdr, nil
}

// readConnID 读取一个带长度前缀的连接 ID
func readConnID(b []byte, maxConnIDLen int) (types.ConnectionID, []byte, error) {
	if len(b) < 1 {
		return nil, nil, types.ErrBadFormat
	}
	idLen := int(b[0])
	if idLen > maxConnIDLen {
		return nil, nil, types.ErrBadFormat
	}
	b = b[1:]
	if len(b) < idLen {
		return nil, nil, types.ErrBadFormat
	}
	return types.ConnectionID(b[:idLen]).Clone(), b[idLen:], nil
}
