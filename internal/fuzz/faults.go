package fuzz

import (
	"errors"
	"math/rand"
)

var (
	ErrInjectedFault = errors.New("fuzz: injected value copy failure")
)

// faultInjector is installed as the map's clone function.
type faultInjector struct {
	rng  *rand.Rand
	rate float64

	// Fail the next copy regardless of rate.
	forced bool

	copies, injected int
}

func (f *faultInjector) clone(v byte) (byte, error) {
	f.copies++
	if f.forced || (f.rate > 0 && f.rng.Float64() < f.rate) {
		f.forced = false
		f.injected++
		return 0, ErrInjectedFault
	}
	return v, nil
}
