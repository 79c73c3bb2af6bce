// Package packet 实现 QUIC 报文头的解析与整形
//
// 本文件实现 Retry 与版本协商报文的整形函数。
// 两者都是对暂存缓冲的纯格式化：给定连接 ID 与令牌，
// 写入缓冲并返回长度，不触碰任何连接状态。
package packet

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// retryIntegrityTagLen Retry 完整性标签长度（RFC 9001）
const retryIntegrityTagLen = 16

// QUIC v1 的 Retry 完整性保护密钥与随机数（RFC 9001 5.8）
var (
	retryIntegrityKey = []byte{
		0xbe, 0x0c, 0x69, 0x0b, 0x9f, 0x66, 0x57, 0x5a,
		0x1d, 0x76, 0x6b, 0x54, 0xe3, 0x68, 0xc8, 0x4e,
	}
	retryIntegrityNonce = []byte{
		0x46, 0x15, 0x99, 0xd3, 0x5d, 0x63, 0x2b, 0xf2,
		0x23, 0x98, 0x25, 0xbb,
	}
)

// BuildVersionNegotiation 把版本协商报文整形进 buf
//
// scid/dcid 取自触发报文：构造时两者互换，
// 对端的 scid 成为出站报文的 dcid。
func BuildVersionNegotiation(buf []byte, scid, dcid types.ConnectionID) (int, error) {
	need := 1 + 4 + 1 + len(scid) + 1 + len(dcid) + 4
	if len(buf) < need {
		return 0, fmt.Errorf("version negotiation needs %d bytes, buffer has %d", need, len(buf))
	}

	b := buf[:0]
	b = append(b, 0xc0)
	b = binary.BigEndian.AppendUint32(b, 0)
	b = append(b, byte(len(scid)))
	b = append(b, scid...)
	b = append(b, byte(len(dcid)))
	b = append(b, dcid...)
	b = binary.BigEndian.AppendUint32(b, types.ProtocolVersion)
	return len(b), nil
}

// BuildRetry 把 Retry 报文整形进 buf
//
// scid 取自触发报文（成为出站 dcid），odcid 是最初观察到的
// 目的连接 ID（参与完整性标签计算），newSCID 是本端为
// 后续连接选取的新连接 ID，token 由地址验证层铸造。
func BuildRetry(buf []byte, scid, odcid, newSCID types.ConnectionID, token []byte, version uint32) (int, error) {
	need := 1 + 4 + 1 + len(scid) + 1 + len(newSCID) + len(token) + retryIntegrityTagLen
	if len(buf) < need {
		return 0, fmt.Errorf("retry needs %d bytes, buffer has %d", need, len(buf))
	}

	b := buf[:0]
	b = append(b, 0xf0)
	b = binary.BigEndian.AppendUint32(b, version)
	b = append(b, byte(len(scid)))
	b = append(b, scid...)
	b = append(b, byte(len(newSCID)))
	b = append(b, newSCID...)
	b = append(b, token...)

	tag, err := retryIntegrityTag(odcid, b)
	if err != nil {
		return 0, err
	}
	b = append(b, tag...)
	return len(b), nil
}

// retryIntegrityTag 计算 Retry 完整性标签
//
// 伪报文 = odcid 长度 + odcid + 不含标签的 Retry 报文，
// 作为 AAD 喂给固定密钥的 AES-128-GCM，空明文的密文即标签。
func retryIntegrityTag(odcid types.ConnectionID, packet []byte) ([]byte, error) {
	pseudo := make([]byte, 0, 1+len(odcid)+len(packet))
	pseudo = append(pseudo, byte(len(odcid)))
	pseudo = append(pseudo, odcid...)
	pseudo = append(pseudo, packet...)

	block, err := aes.NewCipher(retryIntegrityKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, retryIntegrityNonce, nil, pseudo), nil
}
