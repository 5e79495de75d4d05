package g

import (
	"context"
	"sync"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
	"github.com/fixkme/tickdriver/timer"
	"github.com/rs/xid"
)

// RoutineAgent 单协程actor: 任务和到期定时器都在 Run 所在的协程上处理
type RoutineAgent struct {
	*Go
	closeSig    chan struct{}
	isClosed    bool
	mutex       sync.RWMutex
	timerCh     chan *timer.Promise
	timerCb     TimerCb
	beforeClose func()
}

type TimerCb func(tid xid.ID, now tick.Tick, data any)

func NewRoutineAgent(taskChSize, timerChSize int) *RoutineAgent {
	a := &RoutineAgent{
		Go:       NewGoChan(taskChSize),
		closeSig: make(chan struct{}),
		timerCh:  make(chan *timer.Promise, timerChSize),
	}
	return a
}

func (a *RoutineAgent) Init(timerCb TimerCb, beforeClose func()) {
	a.timerCb = timerCb
	a.beforeClose = beforeClose
}

func (a *RoutineAgent) GetTimerReciver() chan<- *timer.Promise {
	return a.timerCh
}

// AtTick 在 at 时刻回调 timerCb
func (a *RoutineAgent) AtTick(src timer.Source, at tick.Tick, data any) xid.ID {
	return timer.NewTimer(src, at, data, a.timerCh, a.closeSig)
}

// AfterTicks 从现在起 d 个tick后回调 timerCb
func (a *RoutineAgent) AfterTicks(src timer.Source, d tick.Tick, data any) xid.ID {
	return a.AtTick(src, tick.Add(src.Now(), d), data)
}

func (a *RoutineAgent) Run() {
	defer a.onClose()

	for {
		select {
		case <-a.closeSig:
			return
		case cb := <-a.Go.ChanCb:
			a.Go.Exec(cb)
		case p := <-a.timerCh:
			if a.timerCb != nil {
				a.Go.Exec(func() { a.timerCb(p.TimerId, p.Now, p.Data) })
			}
		}
	}
}

func (a *RoutineAgent) onClose() {
	if a.beforeClose != nil {
		a.beforeClose()
	}
	a.mutex.Lock()
	a.Go.Close()
	a.mutex.Unlock()
	for cb := range a.Go.ChanCb {
		a.Go.Exec(cb)
	}
}

func (a *RoutineAgent) Close() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.isClosed {
		return
	}

	a.isClosed = true
	close(a.closeSig)
}

func (a *RoutineAgent) SyncRunFunc(f func()) (err error) {
	a.mutex.RLock()
	if a.isClosed {
		a.mutex.RUnlock()
		return errs.RoutineClosed
	}

	errCh := a.Go.SubmitWithResult(f)
	a.mutex.RUnlock()
	return <-errCh
}

func (a *RoutineAgent) CtxRunFunc(ctx context.Context, f func()) error {
	a.mutex.RLock()
	if a.isClosed {
		a.mutex.RUnlock()
		return errs.RoutineClosed
	}

	errCh := a.Go.SubmitWithResult(f)
	a.mutex.RUnlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (a *RoutineAgent) TryRunFunc(f func()) error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	if a.isClosed {
		return errs.RoutineClosed
	}

	if !a.Go.TrySubmit(f) {
		return errs.GoChanFull
	}
	return nil
}

func (a *RoutineAgent) MustRunFunc(f func()) error {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	if a.isClosed {
		return errs.RoutineClosed
	}

	a.Go.MustSubmit(f)
	return nil
}
