package fuzz

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/geraintbjones/think-cell/internal/intervalmap"
	"github.com/geraintbjones/think-cell/internal/trace"
	"github.com/geraintbjones/think-cell/internal/util"
)

const (
	defaultDomain = 20
	defaultValues = "ABCDEF"
	defaultBase   = 'A'

	maxDomain = 1 << 20
)

var (
	ErrInvalidConfig = errors.New("fuzz: invalid config")
)

type Config struct {
	// Number of non-empty assignments to perform.
	Iterations int
	// Keys are drawn from [0, Domain).
	Domain int
	// Values are drawn from these bytes.
	Values string
	Base   byte

	// Fraction of value copies that fail, in [0, 1).
	FailureRate float64
	// Zero picks a time-based seed.
	Seed int64

	Backend intervalmap.Backend

	// Optional. Every applied op is appended to Trace.
	Trace *trace.Writer
	// Optional. Per-step console report.
	Report io.Writer
}

func (c *Config) setDefaults() {
	util.SetDefaultIfZero(&c.Domain, defaultDomain)
	util.SetDefaultIfZero(&c.Values, defaultValues)
	util.SetDefaultIfZero(&c.Base, defaultBase)
	util.SetDefaultIfZero(&c.Seed, time.Now().UnixNano())
}

func (c *Config) validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations %d < 0", ErrInvalidConfig, c.Iterations)
	}
	if c.Domain < 2 || c.Domain > maxDomain {
		return fmt.Errorf("%w: domain %d not in [2, %d]", ErrInvalidConfig, c.Domain, maxDomain)
	}
	if c.FailureRate < 0 || c.FailureRate >= 1 {
		return fmt.Errorf("%w: failure rate %v not in [0, 1)", ErrInvalidConfig, c.FailureRate)
	}
	return nil
}
