package g

import (
	"sync/atomic"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/mlog"
)

// Go 任务队列, 由持有者所在的协程逐个执行
type Go struct {
	ChanCb       chan func()
	panicHandler func(r any)
	closed       atomic.Bool
}

func NewGoChan(size int) *Go {
	if size < 1024 {
		size = 1024
	} else if size > 102400 {
		size = 102400
	}

	g := new(Go)
	g.ChanCb = make(chan func(), size)
	g.panicHandler = func(r any) {
		mlog.Errorf("go run panic: %v", r)
	}
	return g
}

func (g *Go) SetPanicHandler(f func(r any)) {
	if f != nil {
		g.panicHandler = f
	}
}

func (g *Go) Close() {
	if g.closed.CompareAndSwap(false, true) {
		close(g.ChanCb)
	}
}

func (g *Go) SubmitWithResult(f func()) (errCh chan error) {
	errCh = make(chan error, 1)
	call := func() {
		defer close(errCh)
		f()
	}
	if g.closed.Load() {
		errCh <- errs.GoChanClosed
		return
	}
	select {
	case g.ChanCb <- call:
	default:
		errCh <- errs.GoChanFull
	}
	return
}

func (g *Go) TrySubmit(f func()) (ok bool) {
	if g.closed.Load() {
		return false
	}
	select {
	case g.ChanCb <- f:
		return true
	default:
		return false
	}
}

func (g *Go) MustSubmit(f func()) {
	if g.closed.Load() {
		return
	}
	g.ChanCb <- f
}

func (g *Go) Exec(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			g.panicHandler(r)
		}
	}()

	cb()
}
