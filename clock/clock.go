// Package clock 单调时钟源. 硬件时钟寄存器之上只暴露三件事:
// 启动一次, 随时非阻塞读取当前tick, 以及在某个时刻触发一次的闹钟.
package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
)

// Monotonic 单调不减的tick时钟
type Monotonic interface {
	// Start 只能调用一次
	Start() error
	// Now 任何上下文都可以调用, 包括临界区内
	Now() tick.Tick
	// NewAlarm 在 at 时刻(或之后)向 C 投递一次当前tick
	NewAlarm(at tick.Tick) Alarm
}

// Alarm 一次性闹钟
type Alarm interface {
	C() <-chan tick.Tick
	// Stop 返回 true 表示闹钟在触发前被停止
	Stop() bool
}

// System 基于进程单调时间的时钟, Start 时刻为 tick 0
type System struct {
	anchor atomic.Pointer[time.Time]
}

var _ Monotonic = (*System)(nil)

func NewSystem() *System {
	return &System{}
}

func (c *System) Start() error {
	now := time.Now()
	if !c.anchor.CompareAndSwap(nil, &now) {
		return errs.ClockStarted
	}
	return nil
}

// Now 未启动时恒为0
func (c *System) Now() tick.Tick {
	anchor := c.anchor.Load()
	if anchor == nil {
		return 0
	}
	return tick.Elapsed(time.Since(*anchor))
}

func (c *System) NewAlarm(at tick.Tick) Alarm {
	a := &systemAlarm{
		clock: c,
		at:    at,
		ch:    make(chan tick.Tick, 1),
	}
	a.mu.Lock()
	a.t = time.AfterFunc(c.until(at), a.fire)
	a.mu.Unlock()
	return a
}

func (c *System) until(at tick.Tick) time.Duration {
	return tick.Sub(at, c.Now()).Until()
}

type systemAlarm struct {
	clock   *System
	at      tick.Tick
	ch      chan tick.Tick
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
}

func (a *systemAlarm) fire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	now := a.clock.Now()
	if now < a.at {
		// 系统定时器比tick换算早醒, 补足剩余部分
		a.t.Reset(a.clock.until(a.at))
		return
	}
	a.stopped = true
	select {
	case a.ch <- now:
	default:
	}
}

func (a *systemAlarm) C() <-chan tick.Tick {
	return a.ch
}

func (a *systemAlarm) Stop() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.stopped = true
	a.t.Stop()
	return true
}
