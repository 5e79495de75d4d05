package server

import (
	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/queue"
	"github.com/fixkme/tickdriver/tick"
	"github.com/fixkme/tickdriver/timer"
)

// ReplyFunc 把回复写回客户端, 会在驱动临界区内调用, 不能阻塞
type ReplyFunc func(rep *Reply)

// Handler 与传输无关的请求处理
type Handler struct {
	src timer.Source
}

func NewHandler(src timer.Source) *Handler {
	return &Handler{src: src}
}

// Serve 查询请求立即回复, 等待请求在截止时间到达后回复
func (h *Handler) Serve(req *Request, reply ReplyFunc) error {
	now := h.src.Now()
	var at tick.Tick
	switch req.Kind {
	case KindNow:
		reply(&Reply{Seq: req.Seq, Now: now})
		return nil
	case KindWaitRelative:
		at = tick.Add(now, req.Ticks)
	case KindWaitAbsolute:
		at = req.Ticks
	default:
		return errs.BadFrame.Printf("unknown kind %d", req.Kind)
	}
	seq := req.Seq
	h.src.ScheduleWake(at, queue.WakerFunc(func() {
		reply(&Reply{Seq: seq, Now: h.src.Now(), Deadline: at})
	}))
	return nil
}
