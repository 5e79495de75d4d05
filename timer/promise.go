package timer

import (
	"github.com/fixkme/tickdriver/queue"
	"github.com/fixkme/tickdriver/tick"
	"github.com/rs/xid"
)

// Promise 定时器到期通知
type Promise struct {
	TimerId  xid.ID
	Deadline tick.Tick
	Now      tick.Tick // 触发时的时间
	Data     any
}

// PromiseWaker 到期时把 Promise 投递给 receiver.
// Wake 在临界区内执行, receiver 满了就转交给新协程发送, done 关闭后放弃投递.
type PromiseWaker struct {
	src      Source
	promise  Promise
	receiver chan<- *Promise
	done     <-chan struct{}
}

func (w *PromiseWaker) Wake() {
	p := w.promise
	p.Now = w.src.Now()
	select {
	case w.receiver <- &p:
	default:
		go w.deliver(&p)
	}
}

// deliver 阻塞投递, 返回 false 表示接收方已关闭
func (w *PromiseWaker) deliver(p *Promise) bool {
	select {
	case w.receiver <- p:
		return true
	case <-w.done:
		return false
	}
}

// NewTimer 登记一个 at 时刻到期的定时器, 到期后 receiver 收到携带 data 的 Promise.
// done 是接收方的关闭信号; 传 nil 时调用方需保证 receiver 一直有人读.
func NewTimer(src Source, at tick.Tick, data any, receiver chan<- *Promise, done <-chan struct{}) xid.ID {
	w := &PromiseWaker{
		src:      src,
		promise:  Promise{TimerId: xid.New(), Deadline: at, Data: data},
		receiver: receiver,
		done:     done,
	}
	src.ScheduleWake(at, w)
	return w.promise.TimerId
}

var _ queue.Waker = (*PromiseWaker)(nil)
