package g

import (
	"testing"
	"time"

	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/driver"
	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/tick"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

type fired struct {
	id   xid.ID
	now  tick.Tick
	data any
}

func TestRoutineAgentTimers(t *testing.T) {
	sim := clock.NewSimulated(0)
	d := driver.New()
	require.NoError(t, d.Init(sim, driver.GoSpawner))
	defer d.Stop()

	var order []string // 只在agent协程里访问
	got := make(chan fired, 4)
	a := NewRoutineAgent(16, 16)
	a.Init(func(tid xid.ID, now tick.Tick, data any) {
		order = append(order, data.(string))
		got <- fired{tid, now, data}
	}, nil)
	go a.Run()
	defer a.Close()

	late := a.AfterTicks(d, 200, "late")
	early := a.AtTick(d, 100, "early")
	require.True(t, sim.WaitFor(3*time.Second, func(active []tick.Tick) bool {
		return len(active) == 1 && active[0] == 100
	}))

	sim.Set(100)
	f := <-got
	require.Equal(t, early, f.id)
	require.Equal(t, tick.Tick(100), f.now)

	sim.Set(300)
	f = <-got
	require.Equal(t, late, f.id)
	require.Equal(t, "late", f.data)

	var snapshot []string
	require.NoError(t, a.SyncRunFunc(func() { snapshot = append(snapshot, order...) }))
	require.Equal(t, []string{"early", "late"}, snapshot)
}

func TestRoutineAgentClose(t *testing.T) {
	a := NewRoutineAgent(0, 1)
	var ran []int
	closed := make(chan struct{})
	a.Init(nil, func() { close(closed) })

	require.NoError(t, a.TryRunFunc(func() { ran = append(ran, 1) }))
	done := make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()
	require.NoError(t, a.SyncRunFunc(func() { ran = append(ran, 2) }))

	a.Close()
	<-done
	<-closed
	require.Equal(t, []int{1, 2}, ran)
	require.ErrorIs(t, a.SyncRunFunc(func() {}), errs.RoutineClosed)
	require.ErrorIs(t, a.TryRunFunc(func() {}), errs.RoutineClosed)
}

func TestGoExecRecovers(t *testing.T) {
	g := NewGoChan(1)
	var recovered any
	g.SetPanicHandler(func(r any) { recovered = r })
	g.Exec(func() { panic("boom") })
	require.Equal(t, "boom", recovered)

	g.Close()
	require.False(t, g.TrySubmit(func() {}))
	require.ErrorIs(t, <-g.SubmitWithResult(func() {}), errs.GoChanClosed)
}
