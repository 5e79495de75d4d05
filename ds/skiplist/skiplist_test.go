package skiplist

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Int64 升序
type Int64 int64

var _ ElemType[Int64] = Int64(0)

func (v Int64) Compare(o Int64) int {
	if v < o {
		return -1
	} else if v > o {
		return 1
	}
	return 0
}

// 先按 score 升序, score 相同按 id
type _Data struct {
	id    int64
	score int64
}

func (d *_Data) Compare(o *_Data) int {
	if d.score != o.score {
		if d.score < o.score {
			return -1
		}
		return 1
	}
	return int(d.id - o.id)
}

func shuffled(size int) []int {
	pool := make([]int, 0, size)
	for i := 1; i <= size; i++ {
		pool = append(pool, i)
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

// ranks 通过遍历校验元素有序且rank连续
func ranks[T ElemType[T]](t *testing.T, sl *SkipList[T]) []T {
	t.Helper()
	var all []T
	sl.Foreach(func(v T, rank int) bool {
		require.Equal(t, len(all)+1, rank)
		if len(all) > 0 {
			require.Negative(t, all[len(all)-1].Compare(v))
		}
		all = append(all, v)
		return true
	})
	require.Len(t, all, sl.Len())
	return all
}

func TestSkiplistInsertRank(t *testing.T) {
	sl := NewSkipList[Int64]()
	pool := shuffled(200)
	seen := make([]int, 0, len(pool))
	for _, i := range pool {
		rk := sl.Insert(Int64(i))
		// rank 等于已有元素中比它小的个数+1
		want := 1
		for _, v := range seen {
			if v < i {
				want++
			}
		}
		require.Equal(t, want, rk)
		seen = append(seen, i)
	}
	require.Equal(t, 200, sl.Len())
	all := ranks(t, sl)
	for i, v := range all {
		require.Equal(t, Int64(i+1), v)
	}
	first, ok := sl.First()
	require.True(t, ok)
	require.Equal(t, Int64(1), first)
}

func TestSkiplistPopFront(t *testing.T) {
	sl := NewSkipList[*_Data]()
	for _, i := range shuffled(100) {
		sl.Insert(&_Data{id: int64(i), score: int64(i % 10)})
	}
	var popped []*_Data
	for {
		d, ok := sl.PopFront()
		if !ok {
			break
		}
		popped = append(popped, d)
		// 弹出后剩余元素依然有序, rank 连续
		if sl.Len()%17 == 0 {
			ranks(t, sl)
		}
		// 弹出后再插入仍能得到正确的rank
		if sl.Len() == 50 {
			require.Equal(t, 1, sl.Insert(&_Data{id: -1, score: -1}))
			head, _ := sl.PopFront()
			require.Equal(t, int64(-1), head.id)
		}
	}
	require.Len(t, popped, 100)
	require.Equal(t, 0, sl.Len())
	require.True(t, sort.SliceIsSorted(popped, func(i, j int) bool {
		return popped[i].Compare(popped[j]) < 0
	}))
	_, ok := sl.First()
	require.False(t, ok)
}
