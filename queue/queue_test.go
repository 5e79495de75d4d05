package queue

import (
	"testing"

	"github.com/fixkme/tickdriver/tick"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	fired []tick.Tick
}

func (r *recorder) waker(d tick.Tick) Waker {
	return WakerFunc(func() { r.fired = append(r.fired, d) })
}

func TestInsertReportsNewMinimum(t *testing.T) {
	q := New()
	r := &recorder{}
	require.True(t, q.Insert(100, r.waker(100)))
	require.True(t, q.Insert(50, r.waker(50)))
	require.False(t, q.Insert(200, r.waker(200)))
	// 并列最小也算
	require.True(t, q.Insert(50, r.waker(50)))
	require.Equal(t, 4, q.Len())
	require.Equal(t, []tick.Tick{50, 50, 100, 200}, q.Deadlines())
	at, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, tick.Tick(50), at)
}

func TestNextExpirationFiresDue(t *testing.T) {
	q := New()
	r := &recorder{}
	for _, d := range []tick.Tick{100, 50, 200} {
		q.Insert(d, r.waker(d))
	}
	require.Equal(t, tick.Tick(50), q.NextExpiration(0))
	require.Empty(t, r.fired)

	require.Equal(t, tick.Tick(100), q.NextExpiration(50))
	require.Equal(t, []tick.Tick{50}, r.fired)

	require.Equal(t, tick.Max, q.NextExpiration(1000))
	require.Equal(t, []tick.Tick{50, 100, 200}, r.fired)
	require.Equal(t, 0, q.Len())
	_, ok := q.Peek()
	require.False(t, ok)
}

func TestTiesAllFire(t *testing.T) {
	q := New()
	count := 0
	for i := 0; i < 10; i++ {
		q.Insert(30, WakerFunc(func() { count++ }))
	}
	require.Equal(t, tick.Tick(30), q.NextExpiration(29))
	require.Equal(t, 0, count)
	// 相同deadline之间的顺序不做保证, 只要求全部触发
	require.Equal(t, tick.Max, q.NextExpiration(30))
	require.Equal(t, 10, count)
}

func TestInsertTieAfterPops(t *testing.T) {
	q := New()
	for i := 0; i < 100; i++ {
		require.Equal(t, i == 0, q.Insert(tick.Tick(1000+i), WakerFunc(func() {})))
	}
	require.Equal(t, tick.Tick(1050), q.NextExpiration(1049))
	// 与队首并列或更早都算新的最小值
	require.True(t, q.Insert(1050, WakerFunc(func() {})))
	require.True(t, q.Insert(1050, WakerFunc(func() {})))
	require.True(t, q.Insert(7, WakerFunc(func() {})))
	require.False(t, q.Insert(1051, WakerFunc(func() {})))
	require.Equal(t, 54, q.Len())
}

func TestMaxNeverFires(t *testing.T) {
	q := New()
	fired := false
	q.Insert(tick.Max, WakerFunc(func() { fired = true }))
	require.Equal(t, tick.Max, q.NextExpiration(tick.Century))
	require.False(t, fired)
	require.Equal(t, 1, q.Len())
}

func TestChanWakerNonBlocking(t *testing.T) {
	w := NewChanWaker()
	w.Wake()
	w.Wake()
	require.Len(t, w, 1)
}
