package intervalmap

import (
	"github.com/tidwall/btree"
)

var _ = (breakpointStore[int, int])((*tidwallStore[int, int])(nil))

type tidwallStore[K, V any] struct {
	tree *btree.BTreeG[Breakpoint[K, V]]
	less LessFunc[K]
}

func newTidwallStore[K, V any](degree int, less LessFunc[K]) *tidwallStore[K, V] {
	byKey := func(a, b Breakpoint[K, V]) bool {
		return less(a.Key, b.Key)
	}
	return &tidwallStore[K, V]{
		// Map is not safe for concurrent use, so the tree needs no locking.
		tree: btree.NewBTreeGOptions(byKey, btree.Options{Degree: degree, NoLocks: true}),
		less: less,
	}
}

func (s *tidwallStore[K, V]) Floor(k K) (bp Breakpoint[K, V], ok bool) {
	s.tree.Descend(pivot[K, V](k), func(item Breakpoint[K, V]) bool {
		bp = item
		ok = true
		return false
	})
	return
}

func (s *tidwallStore[K, V]) Lower(k K) (bp Breakpoint[K, V], ok bool) {
	s.tree.Descend(pivot[K, V](k), func(item Breakpoint[K, V]) bool {
		if !s.less(item.Key, k) {
			return true
		}
		bp = item
		ok = true
		return false
	})
	return
}

func (s *tidwallStore[K, V]) Set(k K, v V) error {
	s.tree.Set(Breakpoint[K, V]{Key: k, Value: v})
	return nil
}

func (s *tidwallStore[K, V]) Delete(k K) bool {
	_, ok := s.tree.Delete(pivot[K, V](k))
	return ok
}

func (s *tidwallStore[K, V]) AscendGreaterOrEqual(k K, fn func(Breakpoint[K, V]) bool) {
	s.tree.Ascend(pivot[K, V](k), fn)
}

func (s *tidwallStore[K, V]) Ascend(fn func(Breakpoint[K, V]) bool) {
	s.tree.Scan(fn)
}

func (s *tidwallStore[K, V]) Len() int {
	return s.tree.Len()
}

func (s *tidwallStore[K, V]) Clone() breakpointStore[K, V] {
	return &tidwallStore[K, V]{
		tree: s.tree.Copy(),
		less: s.less,
	}
}
