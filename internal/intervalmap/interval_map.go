package intervalmap

import (
	"cmp"
	"iter"
	"log"
)

type LessFunc[K any] func(a, b K) bool

type EqualFunc[V any] func(a, b V) bool

// CloneFunc copies a value into the map. A non-nil error aborts the Assign
// that requested the copy, leaving the map unchanged.
type CloneFunc[V any] func(v V) (V, error)

type Breakpoint[K, V any] struct {
	Key   K
	Value V
}

// Map associates every key of a totally ordered domain with a value. Only the
// keys where the value changes are stored; everything below the first stored
// key maps to the base value.
//
// Stored breakpoints are always canonical: no breakpoint carries the same
// value as the run immediately before it.
//
// A Map is not safe for concurrent use.
type Map[K, V any] struct {
	base  V
	less  LessFunc[K]
	equal EqualFunc[V]
	copyf CloneFunc[V]

	store breakpointStore[K, V]
}

// New returns a map from ordered keys to comparable values, with every key
// mapped to base.
func New[K cmp.Ordered, V comparable](base V) *Map[K, V] {
	return NewWithOptions(base, OrderedOptions[K, V]())
}

// NewFunc returns a map over arbitrary key and value types. less must be a
// strict total order on K.
func NewFunc[K, V any](base V, less LessFunc[K], equal EqualFunc[V]) *Map[K, V] {
	return NewWithOptions(base, Options[K, V]{Less: less, Equal: equal})
}

func NewWithOptions[K, V any](base V, opts Options[K, V]) *Map[K, V] {
	if opts.Less == nil || opts.Equal == nil {
		panic("intervalmap: Less and Equal must be set")
	}
	opts.setDefaults()

	return &Map[K, V]{
		base:  base,
		less:  opts.Less,
		equal: opts.Equal,
		copyf: opts.Clone,
		store: newStore[K, V](opts),
	}
}

// Get returns the value associated with key.
func (m *Map[K, V]) Get(key K) V {
	if bp, ok := m.store.Floor(key); ok {
		return bp.Value
	}
	return m.base
}

// valueBefore returns the value of the run ending just before key.
func (m *Map[K, V]) valueBefore(key K) V {
	if bp, ok := m.store.Lower(key); ok {
		return bp.Value
	}
	return m.base
}

func (m *Map[K, V]) copyValue(v V) (V, error) {
	if m.copyf == nil {
		return v, nil
	}
	c, err := m.copyf(v)
	if err != nil {
		return c, wrapValueError(err)
	}
	return c, nil
}

func (m *Map[K, V]) set(key K, v V) error {
	if err := m.store.Set(key, v); err != nil {
		return wrapValueError(err)
	}
	return nil
}

// Assign associates value with every key in [begin, end). Keys outside that
// range keep their current value. If !(begin < end), Assign does nothing.
//
// Assign either fully succeeds or, if copying a value or writing a breakpoint
// fails, returns an error wrapping ErrValueOperation and leaves the map exactly
// as it was.
func (m *Map[K, V]) Assign(begin, end K, value V) error {
	if !m.less(begin, end) {
		return nil
	}

	// The end boundary is resolved against the map before anything in
	// [begin, end) is removed.
	tailValue := m.base
	endExists := false
	if bp, ok := m.store.Floor(end); ok {
		tailValue = bp.Value
		endExists = !m.less(bp.Key, end)
	}
	endInserted := false
	if !endExists && !m.equal(tailValue, value) {
		v, err := m.copyValue(tailValue)
		if err != nil {
			return err
		}
		if err := m.set(end, v); err != nil {
			return err
		}
		endInserted = true
	}

	// Breakpoints strictly before begin are untouched, so the run ending at
	// begin is already known.
	writeBegin := !m.equal(m.valueBefore(begin), value)
	if writeBegin {
		v, err := m.copyValue(value)
		if err == nil {
			err = m.set(begin, v)
		}
		if err != nil {
			if endInserted && !m.store.Delete(end) {
				log.Panicf("intervalmap: staged end breakpoint %v missing", end)
			}
			return err
		}
	}

	// Nothing below can fail.
	var doomed []K
	m.store.AscendGreaterOrEqual(begin, func(bp Breakpoint[K, V]) bool {
		if !m.less(bp.Key, end) {
			return false
		}
		if writeBegin && !m.less(begin, bp.Key) {
			return true
		}
		doomed = append(doomed, bp.Key)
		return true
	})
	m.store.AscendGreaterOrEqual(end, func(bp Breakpoint[K, V]) bool {
		if !m.equal(bp.Value, value) {
			return false
		}
		doomed = append(doomed, bp.Key)
		return true
	})
	for _, k := range doomed {
		m.store.Delete(k)
	}
	return nil
}

// Base returns the value of every key below the first breakpoint.
func (m *Map[K, V]) Base() V {
	return m.base
}

// Len returns the number of stored breakpoints.
func (m *Map[K, V]) Len() int {
	return m.store.Len()
}

// Ascend calls fn for every breakpoint in increasing key order, until fn
// returns false. It is intended for inspection and debugging; fn must not
// modify the map.
func (m *Map[K, V]) Ascend(fn func(Breakpoint[K, V]) bool) {
	m.store.Ascend(fn)
}

// All returns an iterator over the stored breakpoints in increasing key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.store.Ascend(func(bp Breakpoint[K, V]) bool {
			return yield(bp.Key, bp.Value)
		})
	}
}

// Breakpoints returns a snapshot of the stored breakpoints.
func (m *Map[K, V]) Breakpoints() []Breakpoint[K, V] {
	bps := make([]Breakpoint[K, V], 0, m.store.Len())
	m.store.Ascend(func(bp Breakpoint[K, V]) bool {
		bps = append(bps, bp)
		return true
	})
	return bps
}

// CheckCanonical verifies that keys are strictly increasing and that no
// breakpoint repeats the value of the run before it.
func (m *Map[K, V]) CheckCanonical() error {
	var err error
	prev := Breakpoint[K, V]{Value: m.base}
	i := 0
	m.store.Ascend(func(bp Breakpoint[K, V]) bool {
		if i > 0 && !m.less(prev.Key, bp.Key) {
			err = &CanonicalError[K, V]{Index: i, Breakpoint: bp, reason: "key not increasing"}
			return false
		}
		if m.equal(prev.Value, bp.Value) {
			err = &CanonicalError[K, V]{Index: i, Breakpoint: bp, reason: "redundant breakpoint"}
			return false
		}
		prev = bp
		i++
		return true
	})
	return err
}

// Clone returns an independent copy of the map. Values are shared as by
// assignment; the clone function is not called.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := *m
	c.store = m.store.Clone()
	return &c
}
