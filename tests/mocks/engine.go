package mocks

import (
	"time"

	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
)

var _ interfaces.Engine = (*MockEngine)(nil)

// MockEngine 模拟 Engine 接口实现
//
// 零值表现为一个无待发数据的空闲引擎：Recv 全量吞入、
// Send/StreamRecv/DgramRecv 返回 ErrEngineDone、Timeout 无截止。
type MockEngine struct {
	// 状态
	Closed      bool
	Established bool
	EarlyData   bool

	// 预设数据
	Outbound    [][]byte // 默认 Send 逐个弹出的待发报文
	ReadableIDs []uint64 // 默认 Readable 返回的可读流

	// 调用记录
	RecvCalls       [][]byte
	SendCalls       int
	StreamSendCalls []StreamSendCall
	DgramSendCalls  [][]byte
	OnTimeoutCalls  int
	CloseCalls      []CloseCall

	// 可覆盖的方法
	RecvFunc       func(data []byte) (int, error)
	SendFunc       func(buf []byte) (int, error)
	ReadableFunc   func() []uint64
	StreamRecvFunc func(streamID uint64, buf []byte) (int, bool, error)
	StreamSendFunc func(streamID uint64, data []byte, fin bool) (int, error)
	DgramRecvFunc  func(buf []byte) (int, error)
	DgramSendFunc  func(data []byte) error
	OnTimeoutFunc  func()
	TimeoutFunc    func() (time.Duration, bool)
	CloseFunc      func(app bool, errorCode uint64, reason []byte) error
	IsClosedFunc   func() bool
}

// StreamSendCall StreamSend 的一次调用记录
type StreamSendCall struct {
	StreamID uint64
	Data     []byte
	Fin      bool
}

// CloseCall Close 的一次调用记录
type CloseCall struct {
	App    bool
	Code   uint64
	Reason []byte
}

// NewMockEngine 创建一个已完成握手的 MockEngine
func NewMockEngine() *MockEngine {
	return &MockEngine{Established: true}
}

// Recv 吞入一个入站报文
func (m *MockEngine) Recv(data []byte) (int, error) {
	m.RecvCalls = append(m.RecvCalls, append([]byte(nil), data...))
	if m.RecvFunc != nil {
		return m.RecvFunc(data)
	}
	return len(data), nil
}

// Send 写出下一个待发报文
func (m *MockEngine) Send(buf []byte) (int, error) {
	m.SendCalls++
	if m.SendFunc != nil {
		return m.SendFunc(buf)
	}
	if len(m.Outbound) == 0 {
		return 0, interfaces.ErrEngineDone
	}
	pkt := m.Outbound[0]
	m.Outbound = m.Outbound[1:]
	return copy(buf, pkt), nil
}

// Readable 返回有待读数据的流 ID
func (m *MockEngine) Readable() []uint64 {
	if m.ReadableFunc != nil {
		return m.ReadableFunc()
	}
	return m.ReadableIDs
}

// StreamRecv 读取一个流的待读数据
func (m *MockEngine) StreamRecv(streamID uint64, buf []byte) (int, bool, error) {
	if m.StreamRecvFunc != nil {
		return m.StreamRecvFunc(streamID, buf)
	}
	return 0, false, interfaces.ErrEngineDone
}

// StreamSend 向流写入数据
func (m *MockEngine) StreamSend(streamID uint64, data []byte, fin bool) (int, error) {
	m.StreamSendCalls = append(m.StreamSendCalls, StreamSendCall{
		StreamID: streamID,
		Data:     append([]byte(nil), data...),
		Fin:      fin,
	})
	if m.StreamSendFunc != nil {
		return m.StreamSendFunc(streamID, data, fin)
	}
	return len(data), nil
}

// DgramRecv 读取一个入站数据报
func (m *MockEngine) DgramRecv(buf []byte) (int, error) {
	if m.DgramRecvFunc != nil {
		return m.DgramRecvFunc(buf)
	}
	return 0, interfaces.ErrEngineDone
}

// DgramSend 入队一个出站数据报
func (m *MockEngine) DgramSend(data []byte) error {
	m.DgramSendCalls = append(m.DgramSendCalls, append([]byte(nil), data...))
	if m.DgramSendFunc != nil {
		return m.DgramSendFunc(data)
	}
	return nil
}

// OnTimeout 通知定时器到期
func (m *MockEngine) OnTimeout() {
	m.OnTimeoutCalls++
	if m.OnTimeoutFunc != nil {
		m.OnTimeoutFunc()
	}
}

// Timeout 返回距下一次定时器到期的时长
func (m *MockEngine) Timeout() (time.Duration, bool) {
	if m.TimeoutFunc != nil {
		return m.TimeoutFunc()
	}
	return 0, false
}

// Close 关闭引擎
func (m *MockEngine) Close(app bool, errorCode uint64, reason []byte) error {
	m.CloseCalls = append(m.CloseCalls, CloseCall{
		App:    app,
		Code:   errorCode,
		Reason: append([]byte(nil), reason...),
	})
	if m.CloseFunc != nil {
		return m.CloseFunc(app, errorCode, reason)
	}
	m.Closed = true
	return nil
}

// IsClosed 返回引擎是否已关闭
func (m *MockEngine) IsClosed() bool {
	if m.IsClosedFunc != nil {
		return m.IsClosedFunc()
	}
	return m.Closed
}

// IsEstablished 返回握手是否完成
func (m *MockEngine) IsEstablished() bool {
	return m.Established
}

// IsInEarlyData 返回是否处于早期数据阶段
func (m *MockEngine) IsInEarlyData() bool {
	return m.EarlyData
}

// ════════════════════════════════════════════════════════════════════════════

var _ interfaces.EngineFactory = (*MockEngineFactory)(nil)

// MockEngineFactory 模拟 EngineFactory 接口实现
type MockEngineFactory struct {
	// 可覆盖的方法
	AcceptFunc func(cfg *config.TransportConfig, scid, odcid types.ConnectionID) (interfaces.Engine, error)

	// 调用记录
	AcceptCalls []AcceptCall
}

// AcceptCall Accept 的一次调用记录
type AcceptCall struct {
	Cfg   *config.TransportConfig
	SCID  types.ConnectionID
	ODCID types.ConnectionID
}

// Accept 创建一个引擎
func (m *MockEngineFactory) Accept(cfg *config.TransportConfig, scid, odcid types.ConnectionID) (interfaces.Engine, error) {
	m.AcceptCalls = append(m.AcceptCalls, AcceptCall{Cfg: cfg, SCID: scid, ODCID: odcid})
	if m.AcceptFunc != nil {
		return m.AcceptFunc(cfg, scid, odcid)
	}
	return NewMockEngine(), nil
}
