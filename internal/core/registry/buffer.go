// Package registry 提供按命名空间索引的注册表
//
// 本文件定义暂存缓冲注册表。
package registry

import (
	"sync"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// BufferRegistry 命名空间到暂存缓冲的注册表
//
// 每个命名空间持有一块 1350 字节的固定缓冲，在 Retry /
// 版本协商报文的整形调用间复用，避免每报文分配。
// 条目锁保证使用期间的独占访问。
type BufferRegistry struct {
	mu      sync.RWMutex
	entries map[string]*scratchBuffer
}

type scratchBuffer struct {
	mu  sync.Mutex
	buf [types.MaxDatagramSize]byte
}

// NewBufferRegistry 创建暂存缓冲注册表
func NewBufferRegistry() *BufferRegistry {
	return &BufferRegistry{
		entries: make(map[string]*scratchBuffer),
	}
}

// Init 初始化命名空间的缓冲（幂等）
func (r *BufferRegistry) Init(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[namespace]; ok {
		return
	}
	r.entries[namespace] = &scratchBuffer{}
}

// Has 判断命名空间是否已初始化
func (r *BufferRegistry) Has(namespace string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[namespace]
	return ok
}

// With 在独占访问下用命名空间的缓冲执行整形函数
//
// fn 把结果写入缓冲并返回长度，With 返回结果的独立拷贝，
// 缓冲本身立即可被下一次整形复用。
// 命名空间未初始化时返回 ErrNotFound。
func (r *BufferRegistry) With(namespace string, fn func(buf []byte) (int, error)) ([]byte, error) {
	r.mu.RLock()
	e, ok := r.entries[namespace]
	r.mu.RUnlock()

	if !ok {
		return nil, types.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := fn(e.buf[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, e.buf[:n])
	return out, nil
}
