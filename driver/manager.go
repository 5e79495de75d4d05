package driver

import (
	"context"

	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/tick"
)

// manage 闹钟管理循环, 整个进程里唯一等待硬件时间的地方.
// 每轮让当前闹钟和信号更新赛跑, 先到的一方获胜, 输的一方直接丢弃.
func (d *Driver) manage(ctx context.Context) {
	var (
		expected tick.Tick
		armed    bool // 启动后是否收到过闹钟时刻
	)
	for {
		if v, ok := d.alarm.TryTake(); ok {
			expected, armed = v, true
		}
		if !armed {
			v, err := d.alarm.Wait(ctx)
			if err != nil {
				return
			}
			expected, armed = v, true
			continue
		}

		at := expected
		if at.IsMax() {
			// 时钟无法等到 tick.Max, 改为等一百年
			at = tick.Add(d.clock.Now(), tick.Century)
		}
		mlog.Tracef("alarm manager waiting until %d (expected %d)", at, expected)
		alarm := d.clock.NewAlarm(at)
		select {
		case <-ctx.Done():
			alarm.Stop()
			return
		case now := <-alarm.C():
			mlog.Tracef("alarm expired at %d, target %d", now, expected)
			d.triggerAlarm()
		case <-d.alarm.Ready():
			// 新的闹钟时刻在下一轮开头取走
			alarm.Stop()
		}
	}
}
