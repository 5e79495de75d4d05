package lock

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Section 临界区. fn 内部只允许做有界的非阻塞操作:
// 不能等待channel, 不能sleep, 不能再次进入同一个 Section.
type Section interface {
	With(fn func())
}

// Spin 自旋锁, 零值可用
type Spin uint32

const maxBackoff = 16

func (sl *Spin) Lock() {
	backoff := 1
	for !sl.TryLock() {
		// 指数退避
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < maxBackoff {
			backoff <<= 1
		}
	}
}

func (sl *Spin) TryLock() bool {
	return atomic.CompareAndSwapUint32((*uint32)(sl), 0, 1)
}

func (sl *Spin) Unlock() {
	atomic.StoreUint32((*uint32)(sl), 0)
}

func (sl *Spin) With(fn func()) {
	sl.Lock()
	defer sl.Unlock()
	fn()
}

type lockerSection struct {
	l sync.Locker
}

func (s lockerSection) With(fn func()) {
	s.l.Lock()
	defer s.l.Unlock()
	fn()
}

// NewSpinSection 自旋锁临界区, 持有时间极短时比互斥锁更合适
func NewSpinSection() Section {
	return new(Spin)
}

func NewMutexSection() Section {
	return lockerSection{l: new(sync.Mutex)}
}

// Checked 带运行时断言的临界区, 测试时注入.
// 记录进入次数和最长持有时间, 持有超过 Limit 视为违规(临界区里有阻塞).
type Checked struct {
	Inner Section
	Limit time.Duration

	inside  atomic.Bool
	entered atomic.Int64
	longest atomic.Int64
	mu      sync.Mutex
	reports []string
}

func NewChecked(inner Section, limit time.Duration) *Checked {
	return &Checked{Inner: inner, Limit: limit}
}

func (c *Checked) With(fn func()) {
	c.Inner.With(func() {
		c.inside.Store(true)
		c.entered.Add(1)
		start := time.Now()
		defer func() {
			held := time.Since(start)
			for {
				old := c.longest.Load()
				if int64(held) <= old || c.longest.CompareAndSwap(old, int64(held)) {
					break
				}
			}
			if c.Limit > 0 && held > c.Limit {
				c.report(fmt.Sprintf("section held %v, limit %v", held, c.Limit))
			}
			c.inside.Store(false)
		}()
		fn()
	})
}

// Inside 当前是否有人处于临界区内
func (c *Checked) Inside() bool {
	return c.inside.Load()
}

func (c *Checked) Entered() int64 {
	return c.entered.Load()
}

func (c *Checked) Longest() time.Duration {
	return time.Duration(c.longest.Load())
}

// Violations 违规描述, 为空表示没有发现阻塞
func (c *Checked) Violations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.reports...)
}

func (c *Checked) report(msg string) {
	c.mu.Lock()
	c.reports = append(c.reports, msg)
	c.mu.Unlock()
}
