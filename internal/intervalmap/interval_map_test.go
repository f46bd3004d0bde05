package intervalmap

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/exp/constraints"
)

type intBP = Breakpoint[int, byte]

// canonicalFromValues derives the expected breakpoints from a flat array of
// per-key values. Keys past the end of values map to base.
func canonicalFromValues[K constraints.Integer](base byte, values []byte) []Breakpoint[K, byte] {
	var bps []Breakpoint[K, byte]
	prev := base
	for i, v := range values {
		if v != prev {
			bps = append(bps, Breakpoint[K, byte]{Key: K(i), Value: v})
			prev = v
		}
	}
	if prev != base {
		bps = append(bps, Breakpoint[K, byte]{Key: K(len(values)), Value: base})
	}
	return bps
}

func checkBreakpoints[K constraints.Integer](t *testing.T, m *Map[K, byte], exp []Breakpoint[K, byte]) {
	t.Helper()
	if diff := cmp.Diff(exp, m.Breakpoints(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Breakpoints() mismatch %v (-want +got):\n%s", m, diff)
	}
	if err := m.CheckCanonical(); err != nil {
		t.Error(err)
	}
}

func TestMap_Scenario(t *testing.T) {
	const Domain = 8
	m := New[int, byte]('A')
	values := bytes.Repeat([]byte{'A'}, Domain)

	steps := []struct {
		begin, end int
		value      byte
	}{
		{0, 4, 'B'},
		{1, 3, 'A'},
		{0, 2, 'A'},
		{3, 4, 'A'},
		{2, 6, 'C'},
		{6, 8, 'C'},
		{0, 8, 'A'},
	}
	for _, s := range steps {
		if err := m.Assign(s.begin, s.end, s.value); err != nil {
			t.Fatalf("Assign(%d, %d, %c) error %v", s.begin, s.end, s.value, err)
		}
		for k := s.begin; k < s.end; k++ {
			values[k] = s.value
		}
		checkBreakpoints(t, m, canonicalFromValues[int]('A', values))
	}
}

func TestMap_ScenarioLiteral(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(0, 4, 'B')
	checkBreakpoints(t, m, []intBP{{0, 'B'}, {4, 'A'}})
	m.Assign(1, 3, 'A')
	checkBreakpoints(t, m, []intBP{{0, 'B'}, {1, 'A'}, {3, 'B'}, {4, 'A'}})
	m.Assign(0, 2, 'A')
	checkBreakpoints(t, m, []intBP{{3, 'B'}, {4, 'A'}})
}

func TestMap_EmptyRange(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(2, 6, 'B')
	before := m.Breakpoints()

	tests := []struct {
		begin, end int
	}{
		{0, 0},
		{4, 4},
		{5, 3},
		{10, -10},
	}
	for _, tc := range tests {
		if err := m.Assign(tc.begin, tc.end, 'C'); err != nil {
			t.Errorf("Assign(%d, %d) error %v", tc.begin, tc.end, err)
		}
		if diff := cmp.Diff(before, m.Breakpoints()); diff != "" {
			t.Errorf("Assign(%d, %d) changed map (-want +got):\n%s", tc.begin, tc.end, diff)
		}
	}
}

func TestMap_GetBase(t *testing.T) {
	m := New[int, byte]('A')
	for _, k := range []int{-1 << 40, -1, 0, 1, 1 << 40} {
		if v := m.Get(k); v != 'A' {
			t.Errorf("Get(%d) %c != A", k, v)
		}
	}
	if m.Len() != 0 {
		t.Errorf("Len() %d != 0", m.Len())
	}

	m.Assign(-5, 5, 'B')
	tests := []struct {
		key int
		exp byte
	}{
		{-6, 'A'},
		{-5, 'B'},
		{0, 'B'},
		{4, 'B'},
		{5, 'A'},
		{1 << 40, 'A'},
	}
	for _, tc := range tests {
		if v := m.Get(tc.key); v != tc.exp {
			t.Errorf("Get(%d) %c != %c", tc.key, v, tc.exp)
		}
	}
	if m.Base() != 'A' {
		t.Errorf("Base() %c != A", m.Base())
	}
}

func TestMap_Idempotent(t *testing.T) {
	m := New[int, byte]('A')
	for i := 0; i < 1000; i++ {
		begin := rand.Intn(50)
		end := rand.Intn(50)
		v := byte('A' + rand.Intn(4))
		m.Assign(begin, end, v)
		once := m.Breakpoints()
		m.Assign(begin, end, v)
		if diff := cmp.Diff(once, m.Breakpoints()); diff != "" {
			t.Fatalf("Assign(%d, %d, %c) not idempotent (-want +got):\n%s", begin, end, v, diff)
		}
	}
}

func testDifferential[K constraints.Integer](t *testing.T, m *Map[K, byte]) {
	const Domain = 20
	const Iterations = 5000
	values := bytes.Repeat([]byte{'A'}, Domain+1)

	for i := 0; i < Iterations; i++ {
		begin := rand.Intn(Domain)
		end := rand.Intn(Domain + 1)
		v := byte('A' + rand.Intn(6))

		if err := m.Assign(K(begin), K(end), v); err != nil {
			t.Fatalf("Assign(%d, %d, %c) error %v", begin, end, v, err)
		}
		for k := begin; k < end; k++ {
			values[k] = v
		}

		for k, exp := range values {
			if got := m.Get(K(k)); got != exp {
				t.Fatalf("%d: after Assign(%d, %d, %c): Get(%d) %c != %c (%c)",
					i, begin, end, v, k, got, exp, m)
			}
		}
		if err := m.CheckCanonical(); err != nil {
			t.Fatalf("%d: after Assign(%d, %d, %c): %v", i, begin, end, v, err)
		}
	}
	checkBreakpoints(t, m, canonicalFromValues[K]('A', values[:Domain]))
}

func TestMap_Differential(t *testing.T) {
	for _, b := range []Backend{BackendBTree, BackendTidwall} {
		t.Run(b.String(), func(t *testing.T) {
			opts := OrderedOptions[int, byte]()
			opts.Backend = b
			testDifferential(t, NewWithOptions('A', opts))
		})
	}
	for _, b := range []Backend{BackendBTree, BackendTidwall, BackendRadix} {
		t.Run(b.String()+"/uint64", func(t *testing.T) {
			opts := OrderedOptions[uint64, byte]()
			opts.Backend = b
			opts.Degree = 2
			testDifferential(t, NewWithOptions('A', opts))
		})
	}
}

func TestMap_RadixRequiresUint64(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for radix backend with int keys")
		}
	}()
	opts := OrderedOptions[int, byte]()
	opts.Backend = BackendRadix
	NewWithOptions('A', opts)
}

type version struct {
	major, minor int
}

func versionLess(a, b version) bool {
	if a.major != b.major {
		return a.major < b.major
	}
	return a.minor < b.minor
}

func TestMap_CustomTypes(t *testing.T) {
	// Neither the key nor the value type is usable with < or ==.
	m := NewFunc[version, []byte]([]byte("none"), versionLess, bytes.Equal)

	m.Assign(version{1, 0}, version{2, 0}, []byte("v1"))
	m.Assign(version{1, 5}, version{3, 0}, []byte("v1"))
	m.Assign(version{2, 2}, version{2, 4}, []byte("v2"))

	tests := []struct {
		key version
		exp string
	}{
		{version{0, 9}, "none"},
		{version{1, 0}, "v1"},
		{version{2, 1}, "v1"},
		{version{2, 2}, "v2"},
		{version{2, 3}, "v2"},
		{version{2, 4}, "v1"},
		{version{3, 0}, "none"},
	}
	for _, tc := range tests {
		if got := string(m.Get(tc.key)); got != tc.exp {
			t.Errorf("Get(%v) %q != %q", tc.key, got, tc.exp)
		}
	}
	if m.Len() != 4 {
		t.Errorf("Len() %d != 4: %s", m.Len(), m)
	}
	if err := m.CheckCanonical(); err != nil {
		t.Error(err)
	}
}

func TestMap_CheckCanonical(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(0, 4, 'B')
	if err := m.CheckCanonical(); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	// Corrupt the store directly.
	m.store.Set(2, 'B')
	err := m.CheckCanonical()
	if !errors.Is(err, ErrNotCanonical) {
		t.Fatalf("error %v is not ErrNotCanonical", err)
	}
	var cerr *CanonicalError[int, byte]
	if !errors.As(err, &cerr) {
		t.Fatalf("error %v is not a CanonicalError", err)
	}
	if cerr.Index != 1 || cerr.Breakpoint.Key != 2 {
		t.Errorf("unexpected violation %+v", cerr)
	}

	m = New[int, byte]('A')
	m.store.Set(7, 'A')
	if err := m.CheckCanonical(); !errors.Is(err, ErrNotCanonical) {
		t.Errorf("breakpoint equal to base not detected: %v", err)
	}
}

func TestMap_Clone(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(0, 10, 'B')
	c := m.Clone()
	c.Assign(5, 15, 'C')
	m.Assign(2, 3, 'D')

	checkBreakpoints(t, m, []intBP{{0, 'B'}, {2, 'D'}, {3, 'B'}, {10, 'A'}})
	checkBreakpoints(t, c, []intBP{{0, 'B'}, {5, 'C'}, {15, 'A'}})
}

func TestMap_Iterate(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(0, 4, 'B')
	m.Assign(6, 8, 'C')

	var keys []int
	var vals []byte
	for k, v := range m.All() {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	if diff := cmp.Diff([]int{0, 4, 6, 8}, keys); diff != "" {
		t.Errorf("All() keys (-want +got):\n%s", diff)
	}
	if string(vals) != "BACA" {
		t.Errorf("All() values %q != BACA", vals)
	}

	count := 0
	m.Ascend(func(Breakpoint[int, byte]) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("Ascend stopped after %d != 2", count)
	}
}

func TestMap_Format(t *testing.T) {
	m := New[int, byte]('A')
	m.Assign(0, 4, 'B')
	if s := fmt.Sprintf("%c", m); s != "{base: A, 0: B, 4: A}" {
		t.Errorf("Format %q", s)
	}
	if s := m.String(); s != "{base: 65, 0: 66, 4: 65}" {
		t.Errorf("String() %q", s)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		str    string
		exp    Backend
		expErr bool
	}{
		{"btree", BackendBTree, false},
		{"tidwall", BackendTidwall, false},
		{"Radix", BackendRadix, false},
		{"", 0, true},
		{"skiplist", 0, true},
	}
	for _, tc := range tests {
		b, err := ParseBackend(tc.str)
		if b != tc.exp {
			t.Errorf("ParseBackend(%s) %v != %v", tc.str, b, tc.exp)
		}
		if tc.expErr != (err != nil) {
			t.Errorf("ParseBackend(%s) unexpected error %v", tc.str, err)
		}
	}
}

func benchmarkAssign(b *testing.B, backend Backend) {
	const RangeLength = 1000000
	const MaxLength = 512

	opts := OrderedOptions[int, int]()
	opts.Backend = backend
	m := NewWithOptions(0, opts)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		off := rand.Intn(RangeLength - MaxLength)
		length := rand.Intn(MaxLength) + 1
		m.Assign(off, off+length, i%8)
	}
}

func BenchmarkMap_Assign_BTree(b *testing.B) {
	benchmarkAssign(b, BackendBTree)
}

func BenchmarkMap_Assign_Tidwall(b *testing.B) {
	benchmarkAssign(b, BackendTidwall)
}

func BenchmarkMap_Get(b *testing.B) {
	const RangeLength = 1000000
	const MaxLength = 1000
	const Iterations = 1000

	m := New[int, int](0)
	for i := 1; i < Iterations; i++ {
		off := rand.Intn(RangeLength - MaxLength)
		m.Assign(off, off+rand.Intn(MaxLength)+1, i)
	}
	randOffsets := make([]int, b.N)
	for i := range randOffsets {
		randOffsets[i] = rand.Intn(RangeLength)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Get(randOffsets[i])
	}
}
