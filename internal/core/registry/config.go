// Package registry 提供按命名空间索引的配置与暂存缓冲注册表
//
// 两张注册表共用同一套锁模型：注册表整体用读写锁保护结构变更，
// 每个条目再带一把互斥锁保护字段变更。配置命名空间 A 不会阻塞
// 命名空间 B 的读取（读锁之外无竞争）。
//
// 注册表操作是"查找或不存在"语义：读取从不隐式创建条目。
package registry

import (
	"sync"

	"github.com/dep2p/go-quicwire/config"
	"github.com/dep2p/go-quicwire/pkg/types"
)

// ConfigRegistry 命名空间到传输参数集的注册表
type ConfigRegistry struct {
	mu      sync.RWMutex
	entries map[string]*configEntry
}

type configEntry struct {
	mu  sync.Mutex
	cfg *config.TransportConfig
}

// NewConfigRegistry 创建配置注册表
func NewConfigRegistry() *ConfigRegistry {
	return &ConfigRegistry{
		entries: make(map[string]*configEntry),
	}
}

// Init 初始化命名空间（幂等）
//
// 仅在条目不存在时插入默认配置，重复调用不会重置已有配置。
func (r *ConfigRegistry) Init(namespace string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[namespace]; ok {
		return
	}
	r.entries[namespace] = &configEntry{cfg: config.DefaultTransportConfig()}
}

// Has 判断命名空间是否已初始化
func (r *ConfigRegistry) Has(namespace string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[namespace]
	return ok
}

// Update 在条目锁下修改命名空间的配置
//
// 命名空间未初始化时返回 ErrNotFound。
func (r *ConfigRegistry) Update(namespace string, fn func(cfg *config.TransportConfig)) error {
	r.mu.RLock()
	e, ok := r.entries[namespace]
	r.mu.RUnlock()

	if !ok {
		return types.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.cfg)
	return nil
}

// Snapshot 返回命名空间当前配置的深拷贝
//
// accept 路径用快照调用引擎工厂，避免工厂执行期间持有条目锁。
func (r *ConfigRegistry) Snapshot(namespace string) (*config.TransportConfig, error) {
	r.mu.RLock()
	e, ok := r.entries[namespace]
	r.mu.RUnlock()

	if !ok {
		return nil, types.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone(), nil
}
