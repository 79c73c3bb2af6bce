package quicwire_test

import (
	"bytes"
	"net/netip"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quicwire "github.com/dep2p/go-quicwire"
	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
	"github.com/dep2p/go-quicwire/tests/mocks"
)

// TestServerAcceptFlow 测试从配置到首包排空的完整服务端路径
//
// 初始化命名空间、设定 ALPN 与空闲超时、接受连接、喂入首个
// 报文，期待至少一个出站 drain 事件且超时不超过配置值。
func TestServerAcceptFlow(t *testing.T) {
	factory := &mocks.MockEngineFactory{}
	factory.AcceptFunc = func(cfg *config.TransportConfig, scid, odcid types.ConnectionID) (interfaces.Engine, error) {
		engine := mocks.NewMockEngine()
		engine.Outbound = [][]byte{[]byte("server initial")}
		engine.TimeoutFunc = func() (time.Duration, bool) {
			return time.Duration(cfg.MaxIdleTimeoutMillis) * time.Millisecond, true
		}
		return engine, nil
	}

	svc := quicwire.New(quicwire.WithEngineFactory(factory))
	svc.Init("svc")

	require.NoError(t, svc.SetApplicationProtos("svc", []string{"h3"}))
	require.NoError(t, svc.SetMaxIdleTimeout("svc", 5000))

	scid := quicwire.NewConnectionID()
	odcid := types.ConnectionID{0x01, 0x02, 0x03, 0x04}
	sink := mocks.NewRecordingSink()

	c, err := svc.AcceptConnection("svc", scid, odcid, sink)
	require.NoError(t, err)

	// 工厂拿到的是设定后的配置快照
	require.Len(t, factory.AcceptCalls, 1)
	assert.Equal(t, []string{"h3"}, factory.AcceptCalls[0].Cfg.ALPN)
	assert.Equal(t, uint64(5000), factory.AcceptCalls[0].Cfg.MaxIdleTimeoutMillis)
	assert.Equal(t, scid, factory.AcceptCalls[0].SCID)
	assert.Equal(t, odcid, factory.AcceptCalls[0].ODCID)

	ms, err := c.OnPacket([]byte("client initial"))
	require.NoError(t, err)
	assert.LessOrEqual(t, ms, uint64(5000))

	var drains int
	for _, ev := range sink.Events() {
		if ev.Kind == quicwire.EventDrain {
			drains++
		}
	}
	assert.GreaterOrEqual(t, drains, 1)

	require.NoError(t, c.Close(true, 0, nil))
	assert.True(t, c.IsClosed())
}

// TestStreamEchoLoopback 测试流数据经两个对接引擎回环后内容等价
//
// A 侧的 drain 报文直接喂给 B 侧连接，B 侧把报文负载作为
// 流数据投递；所有分片拼接后与原始数据一致。
func TestStreamEchoLoopback(t *testing.T) {
	payload := bytes.Repeat([]byte("quicwire loopback "), 200)

	// A 侧引擎：被接纳的流数据切成报文待排空
	var aPending []byte
	engineA := mocks.NewMockEngine()
	engineA.StreamSendFunc = func(streamID uint64, d []byte, fin bool) (int, error) {
		n := len(d)
		if n > 700 {
			n = 700
		}
		aPending = append(aPending, d[:n]...)
		return n, nil
	}
	engineA.SendFunc = func(buf []byte) (int, error) {
		if len(aPending) == 0 {
			return 0, interfaces.ErrEngineDone
		}
		n := copy(buf, aPending)
		aPending = aPending[n:]
		return n, nil
	}

	// B 侧引擎：收到的报文负载成为流 0 的可读数据
	var bIn []byte
	engineB := mocks.NewMockEngine()
	engineB.RecvFunc = func(data []byte) (int, error) {
		bIn = append(bIn, data...)
		return len(data), nil
	}
	engineB.ReadableFunc = func() []uint64 {
		if len(bIn) == 0 {
			return nil
		}
		return []uint64{0}
	}
	engineB.StreamRecvFunc = func(streamID uint64, buf []byte) (int, bool, error) {
		if len(bIn) == 0 {
			return 0, false, interfaces.ErrEngineDone
		}
		n := copy(buf, bIn)
		bIn = bIn[n:]
		return n, len(bIn) == 0, nil
	}

	engines := []interfaces.Engine{engineA, engineB}
	factory := &mocks.MockEngineFactory{}
	factory.AcceptFunc = func(cfg *config.TransportConfig, scid, odcid types.ConnectionID) (interfaces.Engine, error) {
		e := engines[0]
		engines = engines[1:]
		return e, nil
	}

	svc := quicwire.New(quicwire.WithEngineFactory(factory))
	svc.Init("svc")

	var connB *quicwire.Connection
	sinkA := quicwire.SinkFunc(func(ev quicwire.Event) {
		if ev.Kind == quicwire.EventDrain {
			_, err := connB.OnPacket(ev.Data)
			require.NoError(t, err)
		}
	})
	sinkB := mocks.NewRecordingSink()

	connA, err := svc.AcceptConnection("svc", quicwire.NewConnectionID(), nil, sinkA)
	require.NoError(t, err)
	connB, err = svc.AcceptConnection("svc", quicwire.NewConnectionID(), nil, sinkB)
	require.NoError(t, err)

	_, err = connA.StreamSend(0, payload)
	require.NoError(t, err)

	var got []byte
	for _, ev := range sinkB.Events() {
		require.Equal(t, quicwire.EventStreamRecv, ev.Kind)
		require.LessOrEqual(t, len(ev.Data), types.MaxDatagramSize)
		got = append(got, ev.Data...)
	}
	assert.Equal(t, payload, got)
}

// TestInitIdempotent 测试命名空间初始化不重置已有配置
func TestInitIdempotent(t *testing.T) {
	svc := quicwire.New()
	svc.Init("svc")

	require.NoError(t, svc.SetCCAlgorithm("svc", "bbr"))
	svc.Init("svc")

	factory := &mocks.MockEngineFactory{}
	svc2 := quicwire.New(quicwire.WithEngineFactory(factory))
	svc2.Init("svc")
	require.NoError(t, svc2.SetCCAlgorithm("svc", "bbr"))
	svc2.Init("svc")

	_, err := svc2.AcceptConnection("svc", quicwire.NewConnectionID(), nil, mocks.NewRecordingSink())
	require.NoError(t, err)
	assert.Equal(t, "bbr", factory.AcceptCalls[0].Cfg.CCAlgorithm)
}

// TestSettersBeforeInit 测试未初始化命名空间的配置写入
func TestSettersBeforeInit(t *testing.T) {
	svc := quicwire.New()

	assert.ErrorIs(t, svc.SetVerifyPeer("missing", true), quicwire.ErrNotFound)
	assert.ErrorIs(t, svc.SetMaxIdleTimeout("missing", 1000), quicwire.ErrNotFound)
	assert.ErrorIs(t, svc.EnableEarlyData("missing"), quicwire.ErrNotFound)
	assert.ErrorIs(t, svc.EnableDgram("missing", true, 32, 32), quicwire.ErrNotFound)
}

// TestAcceptWithoutFactory 测试未注入引擎工厂时接受失败
func TestAcceptWithoutFactory(t *testing.T) {
	svc := quicwire.New()
	svc.Init("svc")

	_, err := svc.AcceptConnection("svc", quicwire.NewConnectionID(), nil, mocks.NewRecordingSink())
	assert.ErrorIs(t, err, quicwire.ErrSystem)
}

// TestAcceptNamespaceNotFound 测试未初始化命名空间的接受
func TestAcceptNamespaceNotFound(t *testing.T) {
	svc := quicwire.New(quicwire.WithEngineFactory(&mocks.MockEngineFactory{}))

	_, err := svc.AcceptConnection("missing", quicwire.NewConnectionID(), nil, mocks.NewRecordingSink())
	assert.ErrorIs(t, err, quicwire.ErrNotFound)
}

// TestNegotiateVersionAndRetry 测试无状态报文整形经暂存缓冲完成
func TestNegotiateVersionAndRetry(t *testing.T) {
	svc := quicwire.New()

	scid := types.ConnectionID{0x01, 0x02}
	dcid := types.ConnectionID{0xaa, 0xbb, 0xcc}

	_, err := svc.NegotiateVersion("svc", scid, dcid)
	assert.ErrorIs(t, err, quicwire.ErrNotFound)

	svc.Init("svc")

	vn, err := svc.NegotiateVersion("svc", scid, dcid)
	require.NoError(t, err)
	hdr, err := svc.ParseHeader(vn)
	require.NoError(t, err)
	assert.Equal(t, quicwire.PacketTypeVersionNegotiation, hdr.Type)
	assert.Equal(t, scid, hdr.DCID)

	newSCID := quicwire.NewConnectionID()
	retry, err := svc.Retry("svc", scid, dcid, newSCID, []byte("token"), types.ProtocolVersion)
	require.NoError(t, err)
	hdr, err = svc.ParseHeader(retry)
	require.NoError(t, err)
	assert.Equal(t, quicwire.PacketTypeRetry, hdr.Type)
	assert.Equal(t, newSCID, hdr.SCID)
	assert.Equal(t, []byte("token"), hdr.Token)
}

// TestParseHeaderBadFormat 测试残缺报文的解析报错
func TestParseHeaderBadFormat(t *testing.T) {
	svc := quicwire.New()

	_, err := svc.ParseHeader([]byte{0xc0, 0x00})
	assert.ErrorIs(t, err, quicwire.ErrBadFormat)
}

// TestTokenMinterFromService 测试服务时钟贯通到令牌铸造器
func TestTokenMinterFromService(t *testing.T) {
	clk := clock.NewMock()
	svc := quicwire.New(quicwire.WithClock(clk))

	m, err := svc.NewTokenMinter([]byte("secret"), time.Minute)
	require.NoError(t, err)

	peer := types.NewPeer(netip.MustParseAddrPort("192.0.2.1:4433"))
	odcid := types.ConnectionID{0x01, 0x02}
	token := m.Mint(peer, odcid)

	got, err := m.Validate(peer, token)
	require.NoError(t, err)
	assert.Equal(t, odcid, got)
}

// TestSocketLifecycle 测试 socket 的开启、发送与关闭
func TestSocketLifecycle(t *testing.T) {
	svc := quicwire.New()
	t.Cleanup(func() { _ = svc.Close() })

	sink := mocks.NewRecordingSink()
	require.NoError(t, svc.OpenSocket("svc", "127.0.0.1:0", sink, 0, 0))
	assert.ErrorIs(t, svc.OpenSocket("svc", "127.0.0.1:0", sink, 0, 0), quicwire.ErrAlreadyExists)

	addr, err := svc.SocketAddr("svc")
	require.NoError(t, err)
	peer := types.NewPeer(netip.MustParseAddrPort(addr))

	require.NoError(t, svc.SendTo("svc", peer, []byte("loopback packet")))
	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, quicwire.EventPacket, sink.Events()[0].Kind)

	assert.ErrorIs(t, svc.SendTo("missing", peer, []byte("x")), quicwire.ErrNotFound)

	require.NoError(t, svc.CloseSocket("svc"))
	assert.ErrorIs(t, svc.CloseSocket("svc"), quicwire.ErrNotFound)
	_, err = svc.SocketAddr("svc")
	assert.ErrorIs(t, err, quicwire.ErrNotFound)
}

// TestServiceClose 测试 Close 关闭全部 socket 且可重复调用
func TestServiceClose(t *testing.T) {
	svc := quicwire.New()

	require.NoError(t, svc.OpenSocket("a", "127.0.0.1:0", mocks.NewRecordingSink(), 0, 0))
	require.NoError(t, svc.OpenSocket("b", "127.0.0.1:0", mocks.NewRecordingSink(), 0, 0))
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
}

// TestVersionInfo 测试版本信息字符串
func TestVersionInfo(t *testing.T) {
	assert.Contains(t, quicwire.VersionInfo(), quicwire.Version)
}
