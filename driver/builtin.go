package driver

import (
	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/queue"
	"github.com/fixkme/tickdriver/tick"
)

// 进程级单例, 启动时由 Init 激活一次
var builtin = New()

func Default() *Driver {
	return builtin
}

func Init(clk clock.Monotonic, sp Spawner) error {
	return builtin.Init(clk, sp)
}

// MustInit 初始化失败(包括重复初始化)直接panic
func MustInit(clk clock.Monotonic, sp Spawner) {
	if err := builtin.Init(clk, sp); err != nil {
		panic(err)
	}
}

func Now() tick.Tick {
	return builtin.Now()
}

func ScheduleWake(at tick.Tick, w queue.Waker) {
	builtin.ScheduleWake(at, w)
}
