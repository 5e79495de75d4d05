// Package timer 基于驱动的定时原语: 单次等待, 周期Ticker, 以及投递Promise的定时器.
package timer

import (
	"context"

	"github.com/fixkme/tickdriver/queue"
	"github.com/fixkme/tickdriver/tick"
)

// Source 提供时间和唤醒登记, driver.Driver 实现了它
type Source interface {
	Now() tick.Tick
	ScheduleWake(at tick.Tick, w queue.Waker)
}

// At 返回的channel在 at 时刻(或之后)被关闭
func At(src Source, at tick.Tick) <-chan struct{} {
	ch := make(chan struct{})
	src.ScheduleWake(at, queue.WakerFunc(func() { close(ch) }))
	return ch
}

// After 从现在起 d 个tick之后
func After(src Source, d tick.Tick) <-chan struct{} {
	return At(src, tick.Add(src.Now(), d))
}

func SleepUntil(ctx context.Context, src Source, at tick.Tick) error {
	if at <= src.Now() {
		return ctx.Err()
	}
	select {
	case <-At(src, at):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func Sleep(ctx context.Context, src Source, d tick.Tick) error {
	return SleepUntil(ctx, src, tick.Add(src.Now(), d))
}

// Ticker 按固定周期触发, 以上一次的deadline为基准累加所以不会漂移.
// 调用方落后时, 错过的周期会立即连续触发.
type Ticker struct {
	src    Source
	period tick.Tick
	next   tick.Tick
}

func NewTicker(src Source, period tick.Tick) *Ticker {
	if period == 0 {
		period = 1
	}
	return &Ticker{
		src:    src,
		period: period,
		next:   tick.Add(src.Now(), period),
	}
}

// Next 等到下一个周期点并返回它
func (t *Ticker) Next(ctx context.Context) (tick.Tick, error) {
	at := t.next
	if err := SleepUntil(ctx, t.src, at); err != nil {
		return 0, err
	}
	t.next = tick.Add(at, t.period)
	return at, nil
}

// Reset 从当前时间重新开始计周期
func (t *Ticker) Reset() {
	t.next = tick.Add(t.src.Now(), t.period)
}

func (t *Ticker) Period() tick.Tick {
	return t.period
}
