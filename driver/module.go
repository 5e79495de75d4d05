package driver

import (
	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/errs"
)

// Module 把驱动挂到 app 生命周期上: OnInit 初始化驱动,
// 闹钟管理循环运行在 app 为模块分配的协程里, Destroy 时停止.
type Module struct {
	name  string
	drv   *Driver
	clk   clock.Monotonic
	tasks chan func()
	quit  chan struct{}
}

func NewModule(name string, drv *Driver, clk clock.Monotonic) *Module {
	return &Module{
		name:  name,
		drv:   drv,
		clk:   clk,
		tasks: make(chan func(), 1),
		quit:  make(chan struct{}),
	}
}

func (m *Module) Driver() *Driver {
	return m.drv
}

func (m *Module) OnInit() error {
	return m.drv.Init(m.clk, SpawnerFunc(func(task func()) error {
		select {
		case m.tasks <- task:
			return nil
		default:
			return errs.AlreadyInitialized.Print(m.name)
		}
	}))
}

// Run 执行闹钟管理循环, 直到 Destroy
func (m *Module) Run() {
	select {
	case task := <-m.tasks:
		task()
	case <-m.quit:
	}
}

func (m *Module) Destroy() {
	select {
	case task := <-m.tasks:
		// 还没 Run 过(其他模块初始化失败), 让管理循环在别处退出
		go task()
	default:
	}
	close(m.quit)
	m.drv.Stop()
}

func (m *Module) Name() string {
	return m.name
}
