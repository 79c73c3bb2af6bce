package types

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPeerAddressParts 测试地址句柄拆出 IP 字节与端口
func TestPeerAddressParts(t *testing.T) {
	p4 := NewPeer(netip.MustParseAddrPort("192.0.2.7:4433"))
	ip, port := p4.AddressParts()
	assert.Equal(t, []byte{192, 0, 2, 7}, ip)
	assert.Equal(t, uint16(4433), port)

	p6 := NewPeer(netip.MustParseAddrPort("[2001:db8::1]:4433"))
	ip, port = p6.AddressParts()
	assert.Len(t, ip, 16)
	assert.Equal(t, uint16(4433), port)
}

// TestPeerFromUDPAddr 测试从 *net.UDPAddr 创建句柄
func TestPeerFromUDPAddr(t *testing.T) {
	ua := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
	p := NewPeerFromUDPAddr(ua)

	require.True(t, p.IsValid())
	assert.Equal(t, uint16(9000), p.AddrPort().Port())

	var zero Peer
	assert.False(t, zero.IsValid())
}

// TestConnectionID 测试连接 ID 的相等与拷贝语义
func TestConnectionID(t *testing.T) {
	id := NewConnectionID()
	assert.Len(t, id, 16)

	clone := id.Clone()
	assert.True(t, id.Equal(clone))

	clone[0] ^= 0xff
	assert.False(t, id.Equal(clone))

	assert.False(t, id.Equal(id[:8]))
	assert.NotEqual(t, id.String(), NewConnectionID().String())
}
