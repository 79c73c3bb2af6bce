// Package conn 实现单连接的引擎驱动
//
// 本文件实现按目的连接 ID 索引的连接表，
// 支持在报文头解析后把入站报文路由到既有连接。
package conn

import (
	"errors"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-quicwire/pkg/types"
)

// Table 目的连接 ID 到连接的并发安全映射
type Table struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

// NewTable 创建连接表
func NewTable() *Table {
	return &Table{
		conns: make(map[string]*Connection),
	}
}

// Register 登记一个连接
//
// dcid 已被占用时返回 ErrAlreadyExists。
func (t *Table) Register(dcid types.ConnectionID, c *Connection) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := string(dcid)
	if _, ok := t.conns[key]; ok {
		return types.ErrAlreadyExists
	}
	t.conns[key] = c
	return nil
}

// Lookup 按目的连接 ID 查找连接
func (t *Table) Lookup(dcid types.ConnectionID) (*Connection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.conns[string(dcid)]
	return c, ok
}

// Remove 移除一个连接
func (t *Table) Remove(dcid types.ConnectionID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, string(dcid))
}

// Len 返回当前登记的连接数
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

// CloseAll 关闭所有连接并清空表
//
// 已终止的连接跳过，其余关闭失败聚合返回。
func (t *Table) CloseAll(app bool, errorCode uint64, reason []byte) error {
	t.mu.Lock()
	conns := make([]*Connection, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	t.conns = make(map[string]*Connection)
	t.mu.Unlock()

	var err error
	for _, c := range conns {
		if cerr := c.Close(app, errorCode, reason); cerr != nil && !errors.Is(cerr, types.ErrAlreadyClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	return err
}
