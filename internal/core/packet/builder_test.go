package packet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// TestBuildVersionNegotiation 测试版本协商报文的整形与回读
func TestBuildVersionNegotiation(t *testing.T) {
	scid := types.ConnectionID{0x01, 0x02, 0x03}
	dcid := types.ConnectionID{0xaa, 0xbb, 0xcc, 0xdd}
	buf := make([]byte, types.MaxDatagramSize)

	n, err := BuildVersionNegotiation(buf, scid, dcid)
	require.NoError(t, err)
	pkt := buf[:n]

	hdr, err := ParseHeader(pkt, types.MaxConnIDLen)
	require.NoError(t, err)
	assert.Equal(t, types.PacketTypeVersionNegotiation, hdr.Type)
	assert.Equal(t, uint32(0), hdr.Version)

	// 触发报文的 scid 成为出站 dcid，反之亦然
	assert.Equal(t, scid, hdr.DCID)
	assert.Equal(t, dcid, hdr.SCID)

	// 报文尾部携带支持的版本列表
	assert.Equal(t, types.ProtocolVersion, binary.BigEndian.Uint32(pkt[n-4:]))
}

// TestBuildVersionNegotiationBufferTooSmall 测试缓冲不足的报错
func TestBuildVersionNegotiationBufferTooSmall(t *testing.T) {
	scid := types.ConnectionID{0x01, 0x02, 0x03}
	dcid := types.ConnectionID{0xaa, 0xbb}

	_, err := BuildVersionNegotiation(make([]byte, 8), scid, dcid)
	assert.Error(t, err)
}

// TestBuildRetry 测试 Retry 报文的整形、回读与完整性标签
func TestBuildRetry(t *testing.T) {
	scid := types.ConnectionID{0x01, 0x02}
	odcid := types.ConnectionID{0xf0, 0xf1, 0xf2, 0xf3}
	newSCID := types.ConnectionID{0x10, 0x11, 0x12, 0x13, 0x14}
	token := []byte("address-validation-token")
	buf := make([]byte, types.MaxDatagramSize)

	n, err := BuildRetry(buf, scid, odcid, newSCID, token, types.ProtocolVersion)
	require.NoError(t, err)
	pkt := buf[:n]

	hdr, err := ParseHeader(pkt, types.MaxConnIDLen)
	require.NoError(t, err)
	assert.Equal(t, types.PacketTypeRetry, hdr.Type)
	assert.Equal(t, scid, hdr.DCID)
	assert.Equal(t, newSCID, hdr.SCID)
	assert.Equal(t, token, hdr.Token)

	// 末尾 16 字节是对伪报文计算出的完整性标签
	tag, err := retryIntegrityTag(odcid, pkt[:n-retryIntegrityTagLen])
	require.NoError(t, err)
	assert.Equal(t, tag, pkt[n-retryIntegrityTagLen:])
}

// TestBuildRetryBufferTooSmall 测试缓冲不足的报错
func TestBuildRetryBufferTooSmall(t *testing.T) {
	scid := types.ConnectionID{0x01, 0x02}
	odcid := types.ConnectionID{0xf0}
	newSCID := types.ConnectionID{0x10}

	_, err := BuildRetry(make([]byte, 16), scid, odcid, newSCID, []byte("token"), types.ProtocolVersion)
	assert.Error(t, err)
}
