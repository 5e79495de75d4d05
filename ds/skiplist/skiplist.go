package skiplist

import (
	"math/rand"
	"time"
)

const (
	maxLevel  = 32   // 跳跃表最大层数
	skipListP = 0.25 // 随机概率
)

// ElemType 参与排序的元素, Compare 返回负数表示排在 o 前面.
// 表内元素必须两两不等, 由上层保证(例如附带唯一id)
type ElemType[T any] interface {
	Compare(o T) int
}

func randomLevel(r *rand.Rand) int {
	level := 1
	for r.Float32() < skipListP && level < maxLevel {
		level++
	}
	return level
}

type Node[T ElemType[T]] struct {
	Data  T
	level []skiplistLevel[T]
}

type skiplistLevel[T ElemType[T]] struct {
	next *Node[T]
	span int
}

type SkipList[T ElemType[T]] struct {
	header *Node[T]
	level  int
	length int
	rand   *rand.Rand
}

func NewSkipList[T ElemType[T]]() *SkipList[T] {
	header := &Node[T]{}
	header.level = make([]skiplistLevel[T], maxLevel)
	return &SkipList[T]{
		header: header,
		level:  1,
		length: 0,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// 插入新的元素，返回rank, rank=1 表示成为新的表头;
// 这里假设data不在表中，由上层保证data不重复
func (sl *SkipList[T]) Insert(data T) int {
	var update [maxLevel]*Node[T]
	var rank [maxLevel]int
	var i, level int

	x := sl.header
	for i = sl.level - 1; i >= 0; i-- {
		if i == sl.level-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for x.level[i].next != nil && (x.level[i].next.Data.Compare(data) < 0) {
			rank[i] += x.level[i].span
			x = x.level[i].next
		}
		update[i] = x
	}
	level = randomLevel(sl.rand)
	if level > sl.level {
		for i = sl.level; i < level; i++ {
			rank[i] = 0
			update[i] = sl.header
			update[i].level[i].span = sl.length
		}
		sl.level = level
	}
	x = &Node[T]{Data: data, level: make([]skiplistLevel[T], level)}
	for i = 0; i < level; i++ {
		x.level[i].next = update[i].level[i].next
		update[i].level[i].next = x

		/* update span covered by update[i] as x is inserted here */
		x.level[i].span = update[i].level[i].span - (rank[0] - rank[i])
		update[i].level[i].span = (rank[0] - rank[i]) + 1
	}

	/* increment span for untouched levels */
	for i = level; i < sl.level; i++ {
		update[i].level[i].span++
	}

	sl.length++
	return rank[0] + 1 //从1开始
}

func (sl *SkipList[T]) unlink(x *Node[T], update *[maxLevel]*Node[T]) {
	for i := 0; i < sl.level; i++ {
		if update[i].level[i].next == x {
			update[i].level[i].span += x.level[i].span - 1
			update[i].level[i].next = x.level[i].next
		} else {
			update[i].level[i].span -= 1
		}
	}
	for sl.level > 1 && sl.header.level[sl.level-1].next == nil {
		sl.level--
	}
	sl.length--
}

// First 表头元素, 即最小的元素
func (sl *SkipList[T]) First() (T, bool) {
	x := sl.header.level[0].next
	if x == nil {
		return *new(T), false
	}
	return x.Data, true
}

// PopFront 删除并返回表头元素, 表头的前驱在每一层都是header
func (sl *SkipList[T]) PopFront() (T, bool) {
	x := sl.header.level[0].next
	if x == nil {
		return *new(T), false
	}
	var update [maxLevel]*Node[T]
	for i := 0; i < sl.level; i++ {
		update[i] = sl.header
	}
	sl.unlink(x, &update)
	return x.Data, true
}

// 遍历
func (sl *SkipList[T]) Foreach(f func(T, int) bool) {
	rank := 1
	for x := sl.header.level[0].next; x != nil; x = x.level[0].next {
		if !f(x.Data, rank) {
			break
		}
		rank++
	}
}

func (sl *SkipList[T]) Len() int {
	return sl.length
}
