package fuzz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/bits-and-blooms/bitset"
	"github.com/dustin/go-humanize"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/exp/constraints"

	"github.com/geraintbjones/think-cell/internal/intervalmap"
	"github.com/geraintbjones/think-cell/internal/trace"
)

const progressInterval = 100000

var (
	ErrMismatch      = errors.New("fuzz: map diverged from reference")
	ErrOpOutOfDomain = errors.New("fuzz: op outside key domain")
)

// Mismatch describes the first step at which the map disagreed with the
// reference or broke canonical form.
type Mismatch struct {
	Step   int
	Op     trace.Op
	Reason string
	// Keys whose value differs from the reference.
	Keys []uint
	// Formatted map.
	Map string
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%v: step %d: %v: %s (keys %v, map %s)",
		ErrMismatch, m.Step, m.Op, m.Reason, m.Keys, m.Map)
}

func (m *Mismatch) Unwrap() error {
	return ErrMismatch
}

type Result struct {
	// Non-empty assignments attempted.
	Iterations int
	// Empty or inverted ranges, checked to be no-ops.
	Skipped int
	// Assignments that failed on an injected fault.
	Failures int
	// Breakpoints stored at the end of the run.
	Breakpoints int
}

// Harness replays random assignments against a Map and a flat Reference,
// checking every key and the canonical form after each one.
type Harness[K constraints.Integer] struct {
	cfg      Config
	rng      *rand.Rand
	faults   *faultInjector
	m        *intervalmap.Map[K, byte]
	ref      *Reference
	reporter *Reporter

	step   int
	result Result
}

func New[K constraints.Integer](cfg Config) (*Harness[K], error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Harness[K]{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		faults: &faultInjector{
			rng:  rand.New(rand.NewSource(cfg.Seed + 1)),
			rate: cfg.FailureRate,
		},
		// Key Domain is never assigned, so it checks the end sentinel.
		ref: NewReference(cfg.Domain+1, cfg.Base),
	}
	opts := intervalmap.OrderedOptions[K, byte]()
	opts.Backend = cfg.Backend
	opts.Clone = h.faults.clone
	h.m = intervalmap.NewWithOptions(cfg.Base, opts)
	if cfg.Report != nil {
		h.reporter = NewReporter(cfg.Report, cfg.Domain)
	}
	return h, nil
}

// Map returns the map under test.
func (h *Harness[K]) Map() *intervalmap.Map[K, byte] {
	return h.m
}

func (h *Harness[K]) Result() Result {
	h.result.Breakpoints = h.m.Len()
	return h.result
}

func (h *Harness[K]) randomOp() trace.Op {
	return trace.Op{
		Begin: int64(h.rng.Intn(h.cfg.Domain)),
		End:   int64(h.rng.Intn(h.cfg.Domain + 1)),
		Value: h.cfg.Values[h.rng.Intn(len(h.cfg.Values))],
	}
}

// Run performs cfg.Iterations random non-empty assignments. It stops at the
// first mismatch, returning an error wrapping ErrMismatch.
func (h *Harness[K]) Run(ctx context.Context) (Result, error) {
	slog.Debug("fuzz: starting run", "iterations", h.cfg.Iterations, "domain", h.cfg.Domain,
		"seed", h.cfg.Seed, "backend", h.cfg.Backend, "failure_rate", h.cfg.FailureRate)

	for h.result.Iterations < h.cfg.Iterations {
		if err := ctx.Err(); err != nil {
			return h.Result(), err
		}
		if err := h.Apply(h.randomOp(), false); err != nil {
			return h.Result(), err
		}
		if h.result.Iterations%progressInterval == 0 && h.result.Iterations > 0 {
			slog.Debug("fuzz: progress", "iterations", humanize.Comma(int64(h.result.Iterations)),
				"failures", h.result.Failures, "breakpoints", h.m.Len())
		}
	}
	res := h.Result()
	slog.Debug("fuzz: run complete", "copies", h.faults.copies, "injected", h.faults.injected,
		"empty_ranges", res.Skipped, "breakpoints", res.Breakpoints)
	if h.reporter != nil {
		h.reporter.Summary(&res)
	}
	return res, nil
}

// Replay applies recorded ops in order. Ops recorded as failed are failed
// again by forcing their first value copy to fail.
func Replay[K constraints.Integer](ctx context.Context, cfg Config, ops []trace.Op) (Result, error) {
	cfg.FailureRate = 0
	cfg.Iterations = 0
	for _, op := range ops {
		if op.Begin < op.End {
			cfg.Iterations++
		}
	}
	h, err := New[K](cfg)
	if err != nil {
		return Result{}, err
	}
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return h.Result(), err
		}
		if err := h.Apply(op, op.Failed); err != nil {
			return h.Result(), err
		}
	}
	return h.Result(), nil
}

func (h *Harness[K]) inDomain(k int64) bool {
	return k >= 0 && k <= int64(h.cfg.Domain)
}

// diffKeys returns the set of keys whose map value differs from the
// reference, along with the map's values.
func (h *Harness[K]) diffKeys() (*bitset.BitSet, []byte) {
	diff := bitset.New(uint(h.ref.Len()))
	actual := make([]byte, h.ref.Len())
	for k := range actual {
		actual[k] = h.m.Get(K(k))
		if actual[k] != h.ref.Get(k) {
			diff.Set(uint(k))
		}
	}
	return diff, actual
}

func (h *Harness[K]) mismatch(op trace.Op, reason string, diff *bitset.BitSet) *Mismatch {
	m := &Mismatch{
		Step:   h.step,
		Op:     op,
		Reason: reason,
		Map:    fmt.Sprintf("%c", h.m),
	}
	if diff != nil {
		for k, ok := diff.NextSet(0); ok; k, ok = diff.NextSet(k + 1) {
			m.Keys = append(m.Keys, k)
		}
	}
	slog.Error("fuzz: mismatch", "step", m.Step, "op", op.String(), "reason", reason, "map", m.Map)
	if h.reporter != nil {
		h.reporter.Mismatch(m)
	}
	return m
}

// Apply performs one assignment against both the map and the reference and
// verifies the result. If forceFailure is set, the first value copy of the
// assignment fails.
func (h *Harness[K]) Apply(op trace.Op, forceFailure bool) error {
	if !h.inDomain(op.Begin) || !h.inDomain(op.End) {
		return fmt.Errorf("%w: %v, domain [0, %d]", ErrOpOutOfDomain, op, h.cfg.Domain)
	}
	h.step++
	empty := !(op.Begin < op.End)
	if h.reporter != nil && !empty {
		h.reporter.Op(h.cfg.Iterations-h.result.Iterations, op)
	}

	before := h.m.Breakpoints()
	h.faults.forced = forceFailure
	err := h.m.Assign(K(op.Begin), K(op.End), op.Value)
	h.faults.forced = false
	if err != nil && !errors.Is(err, intervalmap.ErrValueOperation) {
		return err
	}
	op.Failed = err != nil

	if h.cfg.Trace != nil {
		if terr := h.cfg.Trace.Append(op); terr != nil {
			return fmt.Errorf("fuzz: writing trace: %w", terr)
		}
	}

	if empty {
		h.result.Skipped++
	} else {
		h.result.Iterations++
	}

	switch {
	case op.Failed:
		h.result.Failures++
		if h.reporter != nil {
			h.reporter.Failed(err)
		}
		if d := cmp.Diff(before, h.m.Breakpoints(), cmpopts.EquateEmpty()); d != "" {
			return h.mismatch(op, "failed assign modified breakpoints:\n"+d, nil)
		}
	case empty:
		if d := cmp.Diff(before, h.m.Breakpoints(), cmpopts.EquateEmpty()); d != "" {
			return h.mismatch(op, "empty range modified breakpoints:\n"+d, nil)
		}
	default:
		h.ref.Assign(int(op.Begin), int(op.End), op.Value)
	}
	if forceFailure && !op.Failed {
		return h.mismatch(op, "recorded failure not reproduced", nil)
	}

	diff, actual := h.diffKeys()
	if h.reporter != nil && !empty {
		h.reportIntervals()
		h.reporter.Ruler()
		h.reporter.Actual(actual, diff)
		h.reporter.Expected(h.ref.values)
	}
	if diff.Any() {
		return h.mismatch(op, "values differ from reference", diff)
	}
	if err := h.m.CheckCanonical(); err != nil {
		return h.mismatch(op, err.Error(), nil)
	}
	return nil
}

func (h *Harness[K]) reportIntervals() {
	keys := make([]int64, 0, h.m.Len())
	values := make([]byte, 0, h.m.Len())
	for k, v := range h.m.All() {
		keys = append(keys, int64(k))
		values = append(values, v)
	}
	h.reporter.Intervals(keys, values)
}
