package queue

// Waker 挂起任务的唤醒句柄. Wake 在临界区内被调用, 必须立即返回.
type Waker interface {
	Wake()
}

// WakerFunc 函数适配为 Waker, 函数本身不能阻塞
type WakerFunc func()

func (f WakerFunc) Wake() {
	f()
}

// ChanWaker 向带缓冲的channel投递一个信号, channel满时丢弃(已经有待处理的唤醒)
type ChanWaker chan struct{}

func NewChanWaker() ChanWaker {
	return make(ChanWaker, 1)
}

func (w ChanWaker) Wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}
