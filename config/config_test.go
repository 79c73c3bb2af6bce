package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultTransportConfig 测试默认传输参数
func TestDefaultTransportConfig(t *testing.T) {
	cfg := DefaultTransportConfig()

	assert.True(t, cfg.Grease)
	assert.False(t, cfg.VerifyPeer)
	assert.Equal(t, uint64(60000), cfg.MaxIdleTimeoutMillis)
	assert.Equal(t, uint64(1350), cfg.MaxUDPPayloadSize)
	assert.Equal(t, uint64(3), cfg.AckDelayExponent)
	assert.Equal(t, uint64(25), cfg.MaxAckDelayMillis)
	assert.Equal(t, "cubic", cfg.CCAlgorithm)
	assert.False(t, cfg.EnableDgram)
}

// TestTransportConfigValidate 测试参数一致性校验
func TestTransportConfigValidate(t *testing.T) {
	cfg := DefaultTransportConfig()
	require.NoError(t, cfg.Validate())

	small := DefaultTransportConfig()
	small.MaxUDPPayloadSize = 1000
	assert.Error(t, small.Validate())

	exp := DefaultTransportConfig()
	exp.AckDelayExponent = 21
	assert.Error(t, exp.Validate())

	dgram := DefaultTransportConfig()
	dgram.EnableDgram = true
	dgram.DgramRecvQueueLen = -1
	assert.Error(t, dgram.Validate())
}

// TestTransportConfigClone 测试克隆后互不影响
func TestTransportConfigClone(t *testing.T) {
	cfg := DefaultTransportConfig()
	cfg.ALPN = []string{"h3", "hq-interop"}

	clone := cfg.Clone()
	require.Equal(t, cfg, clone)

	clone.ALPN[0] = "changed"
	clone.MaxIdleTimeoutMillis = 1

	assert.Equal(t, "h3", cfg.ALPN[0])
	assert.Equal(t, uint64(60000), cfg.MaxIdleTimeoutMillis)
}
