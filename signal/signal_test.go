package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLastWriteWins(t *testing.T) {
	s := New[uint64]()
	require.False(t, s.Signaled())
	_, ok := s.TryTake()
	require.False(t, ok)

	s.Signal(1)
	s.Signal(2)
	s.Signal(3)
	require.True(t, s.Signaled())
	require.Len(t, s.Ready(), 1)

	v, ok := s.TryTake()
	require.True(t, ok)
	require.Equal(t, uint64(3), v)
	// 中间值不缓冲
	_, ok = s.TryTake()
	require.False(t, ok)
	require.Len(t, s.Ready(), 0)
}

func TestWaitReceivesLaterSignal(t *testing.T) {
	s := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Signal("armed")
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	v, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, "armed", v)
	require.False(t, s.Signaled())
}

func TestWaitReturnsPendingValue(t *testing.T) {
	s := New[int]()
	s.Signal(7)
	v, err := s.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestWaitCanceled(t *testing.T) {
	s := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadyInSelect(t *testing.T) {
	s := New[int]()
	never := make(chan struct{})
	go s.Signal(9)
	select {
	case <-s.Ready():
	case <-never:
	case <-time.After(2 * time.Second):
		t.Fatal("ready token never arrived")
	}
	v, ok := s.TryTake()
	require.True(t, ok)
	require.Equal(t, 9, v)
}
