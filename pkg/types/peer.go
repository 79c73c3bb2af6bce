// Package types 定义 quicwire 公共类型
//
// 本文件定义远端地址句柄。
package types

import (
	"net"
	"net/netip"
)

// Peer 远端端点句柄
//
// 不可变值对象，在收到某地址的第一个报文时创建，
// 之后在各组件间不透明传递，由发送与地址查询操作消费。
type Peer struct {
	addr netip.AddrPort
}

// NewPeer 从地址创建 Peer
func NewPeer(addr netip.AddrPort) Peer {
	return Peer{addr: addr}
}

// NewPeerFromUDPAddr 从 *net.UDPAddr 创建 Peer
func NewPeerFromUDPAddr(ua *net.UDPAddr) Peer {
	return Peer{addr: ua.AddrPort()}
}

// AddrPort 返回底层地址
func (p Peer) AddrPort() netip.AddrPort {
	return p.addr
}

// AddressParts 返回 IP 字节与端口号
//
// IPv4 返回 4 字节，IPv6 返回 16 字节。
func (p Peer) AddressParts() ([]byte, uint16) {
	ip := p.addr.Addr()
	if ip.Is4() {
		b := ip.As4()
		return b[:], p.addr.Port()
	}
	b := ip.As16()
	return b[:], p.addr.Port()
}

// IsValid 判断句柄是否携带合法地址
func (p Peer) IsValid() bool {
	return p.addr.IsValid()
}

// String 返回 "ip:port" 形式的地址
func (p Peer) String() string {
	return p.addr.String()
}
