// Package signal 单槽信号: 只保存最后一次写入的值, 不缓冲中间值.
package signal

import (
	"context"
	"sync"
)

// Signal 写覆盖的单值邮箱. 零值不可用, 用 New 创建.
// Signal/TryTake/Signaled 都是非阻塞的, 可以在临界区内调用.
type Signal[T any] struct {
	mu    sync.Mutex
	value T
	has   bool
	ready chan struct{} // 容量1, 有未读值时持有一个令牌
}

func New[T any]() *Signal[T] {
	return &Signal[T]{ready: make(chan struct{}, 1)}
}

// Signal 写入新值, 覆盖未读的旧值
func (s *Signal[T]) Signal(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.has = true
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Signaled 是否有未读值
func (s *Signal[T]) Signaled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

// TryTake 取走未读值, 同时回收令牌
func (s *Signal[T]) TryTake() (v T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return
	}
	v, ok = s.value, true
	s.has = false
	var zero T
	s.value = zero
	select {
	case <-s.ready:
	default:
	}
	return
}

// Ready 有未读值时可读, 用于和其它事件一起 select.
// 读到令牌后应调用 TryTake 取值.
func (s *Signal[T]) Ready() <-chan struct{} {
	return s.ready
}

// Wait 阻塞直到有值可取
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	for {
		if v, ok := s.TryTake(); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-s.ready:
		}
	}
}
