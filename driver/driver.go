// Package driver 把单个硬件闹钟虚拟成任意多个并发挂起的截止时间.
//
// 调用方通过 ScheduleWake 登记 (deadline, waker), 驱动在临界区内维护截止时间队列,
// 最早的deadline变化时发布到单槽信号; 后台的闹钟管理协程是唯一真正等待时间的实体,
// 它让"闹钟到期"与"信号更新"赛跑, 到期后回到驱动重新结算队列并布置下一个闹钟.
package driver

import (
	"context"
	"sync/atomic"

	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/lock"
	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/queue"
	"github.com/fixkme/tickdriver/signal"
	"github.com/fixkme/tickdriver/tick"
	"github.com/panjf2000/ants/v2"
)

// 驱动状态
const (
	StateNone     = iota // 未初始化
	StateStarting        // 正在初始化
	StateRunning         // 运行中
	StateStopped         // 已停止, 不能再次初始化
)

// Spawner 启动闹钟管理协程
type Spawner interface {
	Spawn(task func()) error
}

type SpawnerFunc func(task func()) error

func (f SpawnerFunc) Spawn(task func()) error {
	return f(task)
}

// GoSpawner 每个任务一个goroutine
var GoSpawner Spawner = SpawnerFunc(func(task func()) error {
	go task()
	return nil
})

// PoolSpawner 在 ants 协程池里运行任务, 管理循环会长期占用池中一个worker
func PoolSpawner(p *ants.Pool) Spawner {
	return SpawnerFunc(p.Submit)
}

type Option func(*Driver)

// WithSection 替换默认的自旋锁临界区
func WithSection(s lock.Section) Option {
	return func(d *Driver) {
		d.section = s
	}
}

type Driver struct {
	state   atomic.Int32
	clock   clock.Monotonic
	section lock.Section
	queue   *queue.Queue
	alarm   *signal.Signal[tick.Tick]
	target  atomic.Uint64 // 最近一次发布的闹钟时刻
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(opts ...Option) *Driver {
	d := &Driver{
		section: lock.NewSpinSection(),
		queue:   queue.New(),
		alarm:   signal.New[tick.Tick](),
		done:    make(chan struct{}),
	}
	d.target.Store(uint64(tick.Max))
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init 启动时钟并拉起闹钟管理协程, 只能成功调用一次
func (d *Driver) Init(clk clock.Monotonic, sp Spawner) error {
	if !d.state.CompareAndSwap(StateNone, StateStarting) {
		return errs.AlreadyInitialized
	}
	d.clock = clk
	// 先给管理协程一个"无闹钟"的初值, 它启动后直接进入等待
	d.alarm.Signal(tick.Max)
	if err := clk.Start(); err != nil {
		d.state.Store(StateNone)
		return errs.ClockStart.Wrap(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	err := sp.Spawn(func() {
		defer close(d.done)
		d.manage(ctx)
	})
	if err != nil {
		cancel()
		d.state.Store(StateNone)
		return errs.WrapError(err)
	}
	d.cancel = cancel
	d.state.Store(StateRunning)
	mlog.Infof("timer driver started, now=%d", clk.Now())
	return nil
}

// Stop 停止闹钟管理协程并等待其退出. 停止后不能再 ScheduleWake
func (d *Driver) Stop() {
	if !d.state.CompareAndSwap(StateRunning, StateStopped) {
		return
	}
	d.cancel()
	<-d.done
	mlog.Infof("timer driver stopped, pending=%d", d.Pending())
}

func (d *Driver) State() int32 {
	return d.state.Load()
}

// Now 当前tick, 不阻塞, 可在任意上下文(包括临界区内)调用
func (d *Driver) Now() tick.Tick {
	if s := d.state.Load(); s != StateRunning && s != StateStopped {
		panic(errs.NotInitialized)
	}
	return d.clock.Now()
}

// ScheduleWake 登记一个在 at 时刻(或之后)唤醒 w 的请求.
// at 已经过去时 w 在本次调用内就被唤醒.
func (d *Driver) ScheduleWake(at tick.Tick, w queue.Waker) {
	if d.state.Load() != StateRunning {
		panic(errs.NotInitialized.Printf("schedule wake at %d", at))
	}
	d.section.With(func() {
		if d.queue.Insert(at, w) {
			d.rearm()
		}
	})
}

// Pending 队列里尚未触发的请求数
func (d *Driver) Pending() (n int) {
	d.section.With(func() {
		n = d.queue.Len()
	})
	return
}

// Target 最近一次发布给管理协程的闹钟时刻, tick.Max 表示没有闹钟
func (d *Driver) Target() tick.Tick {
	return tick.Tick(d.target.Load())
}

// rearm 结算到期请求并布置下一个闹钟, 直到布置成功或队列为空. 只能在临界区内调用
func (d *Driver) rearm() {
	next := d.queue.NextExpiration(d.clock.Now())
	for !d.setAlarm(next) {
		next = d.queue.NextExpiration(d.clock.Now())
	}
}

// setAlarm 先发布再校验: 发布后时间已经越过 at, 改发 tick.Max 并返回 false,
// 由调用方换下一个deadline重试
func (d *Driver) setAlarm(at tick.Tick) bool {
	d.publish(at)
	if at <= d.clock.Now() {
		d.publish(tick.Max)
		return false
	}
	return true
}

func (d *Driver) publish(at tick.Tick) {
	d.target.Store(uint64(at))
	d.alarm.Signal(at)
}

// triggerAlarm 闹钟到期后由管理协程调用
func (d *Driver) triggerAlarm() {
	d.section.With(d.rearm)
}
