// Package packet 实现 QUIC 报文头的解析与整形
//
// 本文件实现 Retry 地址验证令牌的铸造与校验。
// 令牌绑定对端地址与最初的目的连接 ID（odcid），带过期时间，
// 校验通过后返回 odcid 供 accept 使用。
package packet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/hkdf"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// 令牌相关错误
var (
	// ErrTokenInvalid 令牌格式或签名错误
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenReplayed 令牌已被使用过
	ErrTokenReplayed = errors.New("token replayed")
)

const (
	tokenKeyLen    = 32
	tokenMacLen    = sha256.Size
	tokenExpiryLen = 8

	// replayCacheSize 单次使用校验的回放缓存容量
	replayCacheSize = 4096
)

// hkdfInfo 令牌密钥派生的用途标识
var hkdfInfo = []byte("quicwire retry token v1")

// TokenMinter Retry 令牌的铸造与校验器
//
// 密钥由宿主提供的种子经 HKDF-SHA256 派生；
// 已通过校验的令牌进入 LRU 回放缓存，重复提交被拒绝。
type TokenMinter struct {
	key  []byte
	ttl  time.Duration
	clk  clock.Clock
	seen *lru.Cache[string, struct{}]
}

// NewTokenMinter 创建令牌铸造器
//
// secret 是进程级种子；ttl 是令牌有效期；clk 为 nil 时使用真实时钟。
func NewTokenMinter(secret []byte, ttl time.Duration, clk clock.Clock) (*TokenMinter, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if clk == nil {
		clk = clock.New()
	}

	key := make([]byte, tokenKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, hkdfInfo), key); err != nil {
		return nil, fmt.Errorf("derive token key: %w", err)
	}

	seen, err := lru.New[string, struct{}](replayCacheSize)
	if err != nil {
		return nil, err
	}

	return &TokenMinter{
		key:  key,
		ttl:  ttl,
		clk:  clk,
		seen: seen,
	}, nil
}

// Mint 为对端地址铸造一个绑定 odcid 的令牌
//
// 布局：odcid 长度(1) | odcid | 过期时刻(8, unix 秒) | HMAC(32)。
func (m *TokenMinter) Mint(peer types.Peer, odcid types.ConnectionID) []byte {
	expiry := m.clk.Now().Add(m.ttl).Unix()

	body := make([]byte, 0, 1+len(odcid)+tokenExpiryLen)
	body = append(body, byte(len(odcid)))
	body = append(body, odcid...)
	body = binary.BigEndian.AppendUint64(body, uint64(expiry))

	return append(body, m.mac(peer, body)...)
}

// Validate 校验令牌并返回其中的 odcid
//
// 检查顺序：结构、签名、有效期、单次使用。
// 任何一步失败都不会把令牌计入回放缓存。
func (m *TokenMinter) Validate(peer types.Peer, token []byte) (types.ConnectionID, error) {
	if len(token) < 1+tokenExpiryLen+tokenMacLen {
		return nil, ErrTokenInvalid
	}

	odcidLen := int(token[0])
	bodyLen := 1 + odcidLen + tokenExpiryLen
	if odcidLen > types.MaxConnIDLen || len(token) != bodyLen+tokenMacLen {
		return nil, ErrTokenInvalid
	}

	body := token[:bodyLen]
	if !hmac.Equal(token[bodyLen:], m.mac(peer, body)) {
		return nil, ErrTokenInvalid
	}

	expiry := int64(binary.BigEndian.Uint64(body[1+odcidLen:]))
	if m.clk.Now().Unix() > expiry {
		return nil, ErrTokenExpired
	}

	if _, replayed := m.seen.Get(string(token)); replayed {
		return nil, ErrTokenReplayed
	}
	m.seen.Add(string(token), struct{}{})

	return types.ConnectionID(body[1 : 1+odcidLen]).Clone(), nil
}

// mac 计算绑定对端地址的消息认证码
func (m *TokenMinter) mac(peer types.Peer, body []byte) []byte {
	ip, port := peer.AddressParts()

	h := hmac.New(sha256.New, m.key)
	h.Write(ip)
	h.Write(binary.BigEndian.AppendUint16(nil, port))
	h.Write(body)
	return h.Sum(nil)
}
