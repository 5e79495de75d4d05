// Package queue 截止时间队列: 按deadline排序保存所有未触发的唤醒请求.
// 非并发安全, 由调用方在临界区内使用.
package queue

import (
	"github.com/fixkme/tickdriver/ds/skiplist"
	"github.com/fixkme/tickdriver/tick"
)

type Entry struct {
	Deadline tick.Tick
	Waker    Waker
	seq      uint64 // 插入序号
}

// Compare deadline 升序, 相同deadline后插入的排前面.
// 这样新请求与队首并列时也排在队首; 同deadline之间的触发顺序不做承诺
func (e *Entry) Compare(o *Entry) int {
	if e.Deadline != o.Deadline {
		if e.Deadline < o.Deadline {
			return -1
		}
		return 1
	}
	if e.seq > o.seq {
		return -1
	} else if e.seq < o.seq {
		return 1
	}
	return 0
}

type Queue struct {
	sl  *skiplist.SkipList[*Entry]
	seq uint64
}

func New() *Queue {
	return &Queue{sl: skiplist.NewSkipList[*Entry]()}
}

// Insert 加入唤醒请求, 返回 true 表示新请求成为(或并列)最早的deadline
func (q *Queue) Insert(at tick.Tick, w Waker) bool {
	q.seq++
	return q.sl.Insert(&Entry{Deadline: at, Waker: w, seq: q.seq}) == 1
}

// NextExpiration 唤醒并移除所有 deadline <= now 的请求, 返回剩余最早的deadline,
// 队列为空时返回 tick.Max
func (q *Queue) NextExpiration(now tick.Tick) tick.Tick {
	for {
		head, ok := q.sl.First()
		if !ok {
			return tick.Max
		}
		if head.Deadline > now {
			return head.Deadline
		}
		q.sl.PopFront()
		head.Waker.Wake()
	}
}

// Peek 最早的deadline
func (q *Queue) Peek() (tick.Tick, bool) {
	head, ok := q.sl.First()
	if !ok {
		return tick.Max, false
	}
	return head.Deadline, true
}

func (q *Queue) Len() int {
	return q.sl.Len()
}

// Deadlines 按顺序列出所有挂起的deadline
func (q *Queue) Deadlines() []tick.Tick {
	ds := make([]tick.Tick, 0, q.sl.Len())
	q.sl.Foreach(func(e *Entry, _ int) bool {
		ds = append(ds, e.Deadline)
		return true
	})
	return ds
}
