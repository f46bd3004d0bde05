package intervalmap

import (
	"log"

	"github.com/google/btree"
)

// breakpointStore is the ordered map primitive holding the breakpoints.
type breakpointStore[K, V any] interface {
	// Greatest breakpoint with key <= k.
	Floor(k K) (Breakpoint[K, V], bool)
	// Greatest breakpoint with key < k.
	Lower(k K) (Breakpoint[K, V], bool)

	// Insert or overwrite. On error the store must be unchanged.
	Set(k K, v V) error
	Delete(k K) bool

	AscendGreaterOrEqual(k K, fn func(Breakpoint[K, V]) bool)
	Ascend(fn func(Breakpoint[K, V]) bool)

	Len() int
	Clone() breakpointStore[K, V]
}

func newStore[K, V any](opts Options[K, V]) breakpointStore[K, V] {
	switch opts.Backend {
	case BackendBTree:
		return newBTreeStore[K, V](opts.Degree, opts.Less)
	case BackendTidwall:
		return newTidwallStore[K, V](opts.Degree, opts.Less)
	case BackendRadix:
		s, ok := any(newRadixStore[V]()).(breakpointStore[K, V])
		if !ok {
			log.Panicf("intervalmap: %v backend requires uint64 keys", opts.Backend)
		}
		return s
	}
	log.Panicf("intervalmap: unknown backend %v", opts.Backend)
	return nil
}

var _ = (breakpointStore[int, int])((*btreeStore[int, int])(nil))

type btreeStore[K, V any] struct {
	tree *btree.BTreeG[Breakpoint[K, V]]
	less LessFunc[K]
}

func newBTreeStore[K, V any](degree int, less LessFunc[K]) *btreeStore[K, V] {
	return &btreeStore[K, V]{
		tree: btree.NewG(degree, func(a, b Breakpoint[K, V]) bool {
			return less(a.Key, b.Key)
		}),
		less: less,
	}
}

func pivot[K, V any](k K) Breakpoint[K, V] {
	return Breakpoint[K, V]{Key: k}
}

func (s *btreeStore[K, V]) Floor(k K) (bp Breakpoint[K, V], ok bool) {
	s.tree.DescendLessOrEqual(pivot[K, V](k), func(item Breakpoint[K, V]) bool {
		bp = item
		ok = true
		return false
	})
	return
}

func (s *btreeStore[K, V]) Lower(k K) (bp Breakpoint[K, V], ok bool) {
	s.tree.DescendLessOrEqual(pivot[K, V](k), func(item Breakpoint[K, V]) bool {
		if !s.less(item.Key, k) {
			return true
		}
		bp = item
		ok = true
		return false
	})
	return
}

func (s *btreeStore[K, V]) Set(k K, v V) error {
	s.tree.ReplaceOrInsert(Breakpoint[K, V]{Key: k, Value: v})
	return nil
}

func (s *btreeStore[K, V]) Delete(k K) bool {
	_, ok := s.tree.Delete(pivot[K, V](k))
	return ok
}

func (s *btreeStore[K, V]) AscendGreaterOrEqual(k K, fn func(Breakpoint[K, V]) bool) {
	s.tree.AscendGreaterOrEqual(pivot[K, V](k), fn)
}

func (s *btreeStore[K, V]) Ascend(fn func(Breakpoint[K, V]) bool) {
	s.tree.Ascend(fn)
}

func (s *btreeStore[K, V]) Len() int {
	return s.tree.Len()
}

func (s *btreeStore[K, V]) Clone() breakpointStore[K, V] {
	return &btreeStore[K, V]{
		tree: s.tree.Clone(),
		less: s.less,
	}
}
