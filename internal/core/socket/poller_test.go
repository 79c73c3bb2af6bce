package socket

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicwire/pkg/types"
	"github.com/dep2p/go-quicwire/tests/mocks"
)

func openTestPoller(t *testing.T, sink *mocks.RecordingSink, opts Options) *Poller {
	t.Helper()
	p, err := Open("127.0.0.1:0", sink, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func dialPoller(t *testing.T, p *Poller) *net.UDPConn {
	t.Helper()
	c, err := net.DialUDP("udp", nil, p.LocalAddr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestPollerReceive 测试入站报文作为 packet 事件投递
func TestPollerReceive(t *testing.T) {
	sink := mocks.NewRecordingSink()
	p := openTestPoller(t, sink, Options{})
	client := dialPoller(t, p)

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}
	_, err := client.Write(payload)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ev := sink.Events()[0]
	assert.Equal(t, types.EventPacket, ev.Kind)
	assert.Equal(t, payload, ev.Data)
	require.True(t, ev.Peer.IsValid())
	assert.Equal(t, uint16(client.LocalAddr().(*net.UDPAddr).Port), ev.Peer.AddrPort().Port())
}

// TestPollerDropsMalformed 测试过短与超长报文被静默丢弃
func TestPollerDropsMalformed(t *testing.T) {
	sink := mocks.NewRecordingSink()
	p := openTestPoller(t, sink, Options{})
	client := dialPoller(t, p)

	_, err := client.Write([]byte{0x01, 0x02}) // 短于最小头部
	require.NoError(t, err)
	_, err = client.Write(make([]byte, types.MaxDatagramSize+1))
	require.NoError(t, err)

	valid := make([]byte, types.MinHeaderLen)
	_, err = client.Write(valid)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sink.Events()) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// 仅合法报文到达 sink
	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, valid, events[0].Data)
}

// TestPollerSend 测试发送路径对向投递
func TestPollerSend(t *testing.T) {
	sinkA := mocks.NewRecordingSink()
	sinkB := mocks.NewRecordingSink()
	a := openTestPoller(t, sinkA, Options{})
	b := openTestPoller(t, sinkB, Options{})

	peer := types.NewPeer(b.LocalAddr().AddrPort())
	payload := []byte("ping-pong")
	require.True(t, a.Send(peer, payload))

	require.Eventually(t, func() bool {
		return len(sinkB.Events()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, payload, sinkB.Events()[0].Data)
}

// TestPollerPollInterval 测试带读超时的轮询变体仍能收包
func TestPollerPollInterval(t *testing.T) {
	sink := mocks.NewRecordingSink()
	p := openTestPoller(t, sink, Options{PollInterval: 10 * time.Millisecond})
	client := dialPoller(t, p)

	// 先让循环空转几轮超时
	time.Sleep(50 * time.Millisecond)

	_, err := client.Write(make([]byte, 64))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// TestPollerClose 测试关闭幂等且停止发送
func TestPollerClose(t *testing.T) {
	sink := mocks.NewRecordingSink()
	p, err := Open("127.0.0.1:0", sink, Options{})
	require.NoError(t, err)

	peer := types.NewPeer(p.LocalAddr().AddrPort())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.False(t, p.Send(peer, []byte("late")))
}

// TestPollerOpenBadAddr 测试非法绑定地址报错
func TestPollerOpenBadAddr(t *testing.T) {
	_, err := Open("not-an-addr", mocks.NewRecordingSink(), Options{})
	assert.Error(t, err)
}
