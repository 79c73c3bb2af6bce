// Package socket 实现 UDP socket 的轮询与发送
//
// 本文件实现按命名空间索引的 socket 服务。
// 单 socket 场景用只含一个命名空间的服务覆盖，不另设耦合式句柄。
package socket

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	pkgif "github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
)

// Service 命名空间到 socket 轮询器的注册表
type Service struct {
	mu      sync.RWMutex
	pollers map[string]*Poller
}

// NewService 创建 socket 服务
func NewService() *Service {
	return &Service{
		pollers: make(map[string]*Poller),
	}
}

// Open 为命名空间绑定地址并启动轮询
//
// 命名空间已绑定时返回 ErrAlreadyExists。
func (s *Service) Open(namespace, bind string, sink pkgif.EventSink, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pollers[namespace]; ok {
		return types.ErrAlreadyExists
	}

	p, err := Open(bind, sink, opts)
	if err != nil {
		return err
	}
	s.pollers[namespace] = p
	return nil
}

// Send 经命名空间的 socket 向对端发送报文
//
// UDP 投递本身尽力而为；返回的错误只是建议性的，
// 命名空间未绑定时返回 ErrNotFound。
func (s *Service) Send(namespace string, peer types.Peer, pkt []byte) error {
	s.mu.RLock()
	p, ok := s.pollers[namespace]
	s.mu.RUnlock()

	if !ok {
		return types.ErrNotFound
	}
	if !p.Send(peer, pkt) {
		return fmt.Errorf("%w: send to %s failed", types.ErrSystem, peer)
	}
	return nil
}

// Lookup 返回命名空间的轮询器
func (s *Service) Lookup(namespace string) (*Poller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pollers[namespace]
	return p, ok
}

// Len 返回当前绑定的 socket 数
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pollers)
}

// Close 关闭并移除命名空间的 socket
func (s *Service) Close(namespace string) error {
	s.mu.Lock()
	p, ok := s.pollers[namespace]
	if ok {
		delete(s.pollers, namespace)
	}
	s.mu.Unlock()

	if !ok {
		return types.ErrNotFound
	}
	return p.Close()
}

// CloseAll 并行关闭所有 socket 并清空注册表
func (s *Service) CloseAll() error {
	s.mu.Lock()
	pollers := make([]*Poller, 0, len(s.pollers))
	for _, p := range s.pollers {
		pollers = append(pollers, p)
	}
	s.pollers = make(map[string]*Poller)
	s.mu.Unlock()

	var g errgroup.Group
	for _, p := range pollers {
		p := p
		g.Go(p.Close)
	}
	return g.Wait()
}
