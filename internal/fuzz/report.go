package fuzz

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/geraintbjones/think-cell/internal/trace"
)

// Reporter prints each step the way a person debugging the map wants to see
// it: the op, the stored intervals, and the per-key values against the
// reference.
type Reporter struct {
	w      io.Writer
	domain int

	bad  *color.Color
	warn *color.Color
	good *color.Color
}

func NewReporter(w io.Writer, domain int) *Reporter {
	return &Reporter{
		w:      w,
		domain: domain,
		bad:    color.New(color.FgRed),
		warn:   color.New(color.FgYellow),
		good:   color.New(color.FgGreen),
	}
}

func (r *Reporter) Op(remaining int, op trace.Op) {
	fmt.Fprintf(r.w, "%d:    assign( %d, %d, %c )\n", remaining, op.Begin, op.End, op.Value)
}

func (r *Reporter) Failed(err error) {
	r.warn.Fprintf(r.w, "Assign failed (%v), checking map is unchanged.\n", err)
}

func (r *Reporter) Intervals(keys []int64, values []byte) {
	fmt.Fprint(r.w, "Intervals:{ ")
	for i, k := range keys {
		fmt.Fprintf(r.w, "{ %d, %c } ", k, values[i])
	}
	fmt.Fprintln(r.w, "}")
}

func (r *Reporter) Ruler() {
	fmt.Fprint(r.w, "            0")
	for k := 1; k < r.domain; k++ {
		fmt.Fprintf(r.w, "  %d", k%10)
	}
	fmt.Fprintln(r.w, " }")
}

// Actual prints the map's values, highlighting keys set in diff.
func (r *Reporter) Actual(values []byte, diff *bitset.BitSet) {
	fmt.Fprint(r.w, "Actual    { ")
	for k := 0; k < r.domain; k++ {
		if k > 0 {
			fmt.Fprint(r.w, ", ")
		}
		if diff.Test(uint(k)) {
			r.bad.Fprintf(r.w, "%c", values[k])
		} else {
			fmt.Fprintf(r.w, "%c", values[k])
		}
	}
	fmt.Fprintln(r.w, " }")
}

func (r *Reporter) Expected(values []byte) {
	fmt.Fprint(r.w, "Expected: { ")
	for k := 0; k < r.domain; k++ {
		if k > 0 {
			fmt.Fprint(r.w, ", ")
		}
		fmt.Fprintf(r.w, "%c", values[k])
	}
	fmt.Fprint(r.w, " }\n\n")
}

func (r *Reporter) Mismatch(m *Mismatch) {
	r.bad.Fprintf(r.w, "MISMATCH: %s\n", m.Reason)
}

func (r *Reporter) Summary(res *Result) {
	r.good.Fprintf(r.w, "%s assignments, %s failed, %s empty ranges, %d breakpoints\n",
		humanize.Comma(int64(res.Iterations)), humanize.Comma(int64(res.Failures)),
		humanize.Comma(int64(res.Skipped)), res.Breakpoints)
}
