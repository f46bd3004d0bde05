package intervalmap

import (
	"cmp"
	"errors"
	"fmt"
	"strings"

	"github.com/geraintbjones/think-cell/internal/util"
)

type Backend int

const (
	// BackendBTree stores breakpoints in a github.com/google/btree B-tree.
	BackendBTree Backend = iota
	// BackendTidwall stores breakpoints in a github.com/tidwall/btree B-tree.
	BackendTidwall
	// BackendRadix stores breakpoints in a radix tree. Only valid for uint64
	// keys.
	BackendRadix
)

const defaultDegree = 32

var (
	ErrUnknownBackend = errors.New("intervalmap: unknown backend")

	backendNames = []string{"btree", "tidwall", "radix"}
)

func (b Backend) String() string {
	if b < 0 || int(b) >= len(backendNames) {
		return fmt.Sprintf("Backend(%d)", int(b))
	}
	return backendNames[b]
}

func ParseBackend(name string) (Backend, error) {
	for i, n := range backendNames {
		if strings.EqualFold(name, n) {
			return Backend(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

type Options[K, V any] struct {
	// Required.
	Less  LessFunc[K]
	Equal EqualFunc[V]

	// Optional. If nil, values are copied by assignment.
	Clone CloneFunc[V]

	Backend Backend
	// B-tree degree. Ignored by BackendRadix.
	Degree int
}

// OrderedOptions returns options using < and == on K and V.
func OrderedOptions[K cmp.Ordered, V comparable]() Options[K, V] {
	return Options[K, V]{
		Less:  cmp.Less[K],
		Equal: func(a, b V) bool { return a == b },
	}
}

func (o *Options[K, V]) setDefaults() {
	util.SetDefaultIfZero(&o.Degree, defaultDegree)
}
