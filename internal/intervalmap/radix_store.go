package intervalmap

import (
	"log"

	"github.com/akmistry/go-util/radix-tree"
)

var _ = (breakpointStore[uint64, int])((*radixStore[int])(nil))

type radixItem[V any] struct {
	key   uint64
	value V
}

func (i *radixItem[V]) Key() uint64 {
	return i.key
}

func (i *radixItem[V]) breakpoint() Breakpoint[uint64, V] {
	return Breakpoint[uint64, V]{Key: i.key, Value: i.value}
}

// radixStore keeps uint64-keyed breakpoints in a radix tree. The tree does not
// track its size, so the store does.
type radixStore[V any] struct {
	tree  radix.Tree
	count int
}

func newRadixStore[V any]() *radixStore[V] {
	return &radixStore[V]{}
}

func (s *radixStore[V]) Floor(k uint64) (bp Breakpoint[uint64, V], ok bool) {
	s.tree.DescendLessOrEqualI(k, func(i radix.Item) bool {
		bp = i.(*radixItem[V]).breakpoint()
		ok = true
		return false
	})
	return
}

func (s *radixStore[V]) Lower(k uint64) (bp Breakpoint[uint64, V], ok bool) {
	if k == 0 {
		return
	}
	return s.Floor(k - 1)
}

func (s *radixStore[V]) Set(k uint64, v V) error {
	old := s.tree.ReplaceOrInsert(&radixItem[V]{key: k, value: v})
	if old == nil {
		s.count++
	}
	return nil
}

func (s *radixStore[V]) Delete(k uint64) bool {
	if s.tree.Delete(&radixItem[V]{key: k}) == nil {
		return false
	}
	s.count--
	return true
}

func (s *radixStore[V]) AscendGreaterOrEqual(k uint64, fn func(Breakpoint[uint64, V]) bool) {
	s.tree.AscendGreaterOrEqualI(k, func(i radix.Item) bool {
		return fn(i.(*radixItem[V]).breakpoint())
	})
}

func (s *radixStore[V]) Ascend(fn func(Breakpoint[uint64, V]) bool) {
	s.tree.Ascend(func(i radix.Item) bool {
		return fn(i.(*radixItem[V]).breakpoint())
	})
}

func (s *radixStore[V]) Len() int {
	return s.count
}

func (s *radixStore[V]) Clone() breakpointStore[uint64, V] {
	c := newRadixStore[V]()
	s.Ascend(func(bp Breakpoint[uint64, V]) bool {
		c.Set(bp.Key, bp.Value)
		return true
	})
	if c.count != s.count {
		log.Panicf("intervalmap: radix clone has %d breakpoints, expected %d", c.count, s.count)
	}
	return c
}
