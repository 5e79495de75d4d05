package clock

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
)

// Simulated 虚拟时钟, 只有调用 Set/Advance 时间才会前进.
// 用于测试, 可以观察当前挂着哪些闹钟.
type Simulated struct {
	mu      sync.Mutex
	cond    *sync.Cond
	started bool
	now     tick.Tick
	alarms  simAlarmHeap
	created int // 累计创建的闹钟数
}

var _ Monotonic = (*Simulated)(nil)

func NewSimulated(start tick.Tick) *Simulated {
	s := &Simulated{now: start}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Simulated) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errs.ClockStarted
	}
	s.started = true
	return nil
}

func (s *Simulated) Now() tick.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Simulated) NewAlarm(at tick.Tick) Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &simAlarm{s: s, at: at, index: -1, ch: make(chan tick.Tick, 1)}
	s.created++
	if at <= s.now {
		a.ch <- s.now
	} else {
		heap.Push(&s.alarms, a)
	}
	s.cond.Broadcast()
	return a
}

// Set 把时间拨到 t 并触发所有到期闹钟, 时间不会倒退
func (s *Simulated) Set(t tick.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t <= s.now {
		return
	}
	s.now = t
	for len(s.alarms) > 0 && s.alarms[0].at <= t {
		a := heap.Pop(&s.alarms).(*simAlarm)
		a.ch <- t
	}
	s.cond.Broadcast()
}

func (s *Simulated) Advance(d tick.Tick) {
	s.Set(tick.Add(s.Now(), d))
}

// ActiveAlarms 未触发也未停止的闹钟时刻, 升序
func (s *Simulated) ActiveAlarms() []tick.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// Created 累计创建过的闹钟数
func (s *Simulated) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *Simulated) activeLocked() []tick.Tick {
	ats := make([]tick.Tick, 0, len(s.alarms))
	for _, a := range s.alarms {
		ats = append(ats, a.at)
	}
	sort.Slice(ats, func(i, j int) bool { return ats[i] < ats[j] })
	return ats
}

// WaitFor 等待挂起闹钟满足 pred, 超时返回 false
func (s *Simulated) WaitFor(timeout time.Duration, pred func(active []tick.Tick) bool) bool {
	deadline := time.Now().Add(timeout)
	wake := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer wake.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for !pred(s.activeLocked()) {
		if !time.Now().Before(deadline) {
			return false
		}
		s.cond.Wait()
	}
	return true
}

type simAlarm struct {
	s     *Simulated
	at    tick.Tick
	index int
	ch    chan tick.Tick
}

func (a *simAlarm) C() <-chan tick.Tick {
	return a.ch
}

func (a *simAlarm) Stop() bool {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if a.index < 0 {
		return false
	}
	heap.Remove(&a.s.alarms, a.index)
	a.s.cond.Broadcast()
	return true
}

type simAlarmHeap []*simAlarm

func (h simAlarmHeap) Len() int {
	return len(h)
}

func (h simAlarmHeap) Less(i, j int) bool {
	return h[i].at < h[j].at
}

func (h simAlarmHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *simAlarmHeap) Push(x any) {
	a := x.(*simAlarm)
	a.index = len(*h)
	*h = append(*h, a)
}

func (h *simAlarmHeap) Pop() any {
	end := len(*h) - 1
	a := (*h)[end]
	a.index = -1
	(*h)[end] = nil
	*h = (*h)[:end]
	return a
}
