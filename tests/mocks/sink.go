package mocks

import (
	"sync"

	"github.com/dep2p/go-quicwire/pkg/interfaces"
	"github.com/dep2p/go-quicwire/pkg/types"
)

var _ interfaces.EventSink = (*RecordingSink)(nil)

// RecordingSink 记录收到的全部事件
//
// 并发安全，可直接交给 socket 轮询器使用。
type RecordingSink struct {
	mu     sync.Mutex
	events []types.Event
}

// NewRecordingSink 创建事件记录器
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Deliver 记录一个事件
func (s *RecordingSink) Deliver(ev types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events 返回已记录事件的快照
func (s *RecordingSink) Events() []types.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Event(nil), s.events...)
}

// Kinds 返回已记录事件的类型序列
func (s *RecordingSink) Kinds() []types.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]types.EventKind, len(s.events))
	for i, ev := range s.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Reset 清空记录
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
