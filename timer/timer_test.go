package timer

import (
	"context"
	"testing"
	"time"

	"github.com/fixkme/tickdriver/clock"
	"github.com/fixkme/tickdriver/driver"
	"github.com/fixkme/tickdriver/tick"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

func startDriver(t *testing.T, start tick.Tick) (*driver.Driver, *clock.Simulated) {
	t.Helper()
	sim := clock.NewSimulated(start)
	d := driver.New()
	require.NoError(t, d.Init(sim, driver.GoSpawner))
	t.Cleanup(d.Stop)
	return d, sim
}

func waitArmed(t *testing.T, sim *clock.Simulated, at tick.Tick) {
	t.Helper()
	require.True(t, sim.WaitFor(waitTimeout, func(active []tick.Tick) bool {
		return len(active) == 1 && active[0] == at
	}), "alarm at %d never armed", at)
}

func TestAtAndAfter(t *testing.T) {
	d, sim := startDriver(t, 100)
	at := At(d, 150)
	after := After(d, 20)
	waitArmed(t, sim, 120)

	sim.Set(130)
	select {
	case <-after:
	case <-time.After(waitTimeout):
		t.Fatal("after never fired")
	}
	select {
	case <-at:
		t.Fatal("at fired early")
	default:
	}

	waitArmed(t, sim, 150)
	sim.Set(150)
	select {
	case <-at:
	case <-time.After(waitTimeout):
		t.Fatal("at never fired")
	}
}

func TestSleep(t *testing.T) {
	d, sim := startDriver(t, 0)
	done := make(chan error, 1)
	go func() { done <- Sleep(context.Background(), d, 64) }()
	waitArmed(t, sim, 64)
	sim.Set(64)
	require.NoError(t, <-done)

	// 已经过去的时刻直接返回
	require.NoError(t, SleepUntil(context.Background(), d, 10))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { done <- Sleep(ctx, d, tick.Hour) }()
	waitArmed(t, sim, 64+tick.Hour)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestTickerCatchesUp(t *testing.T) {
	d, sim := startDriver(t, 0)
	tk := NewTicker(d, 10)
	require.Equal(t, tick.Tick(10), tk.Period())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan tick.Tick, 8)
	go func() {
		for {
			at, err := tk.Next(ctx)
			if err != nil {
				return
			}
			got <- at
		}
	}()

	waitArmed(t, sim, 10)
	sim.Set(10)
	require.Equal(t, tick.Tick(10), <-got)

	// 落后一个周期, 20 和 30 连续触发
	waitArmed(t, sim, 20)
	sim.Set(35)
	require.Equal(t, tick.Tick(20), <-got)
	require.Equal(t, tick.Tick(30), <-got)
	waitArmed(t, sim, 40)
}

func TestNewTimerDeliversPromise(t *testing.T) {
	d, sim := startDriver(t, 0)
	receiver := make(chan *Promise, 1)
	id1 := NewTimer(d, 50, "first", receiver, nil)
	id2 := NewTimer(d, 50, "second", receiver, nil)
	require.NotEqual(t, id1, id2)

	waitArmed(t, sim, 50)
	sim.Set(51)
	// receiver 只有一个缓冲位, 第二个由后台协程补发
	seen := map[string]*Promise{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-receiver:
			seen[p.Data.(string)] = p
		case <-time.After(waitTimeout):
			t.Fatal("promise never delivered")
		}
	}
	require.Equal(t, id1, seen["first"].TimerId)
	require.Equal(t, id2, seen["second"].TimerId)
	require.Equal(t, tick.Tick(50), seen["first"].Deadline)
	require.Equal(t, tick.Tick(51), seen["second"].Now)
}

func TestPromiseDeliveryStopsWhenReceiverClosed(t *testing.T) {
	d, _ := startDriver(t, 0)
	receiver := make(chan *Promise)
	done := make(chan struct{})
	w := &PromiseWaker{src: d, receiver: receiver, done: done}

	delivered := make(chan bool, 1)
	go func() { delivered <- w.deliver(&Promise{Data: "late"}) }()
	close(done)
	select {
	case ok := <-delivered:
		require.False(t, ok)
	case <-time.After(waitTimeout):
		t.Fatal("delivery goroutine never gave up")
	}
}
