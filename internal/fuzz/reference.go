package fuzz

import (
	"bytes"
)

// Reference is the naive model: one value per key of [0, Len()).
type Reference struct {
	values []byte
}

func NewReference(size int, base byte) *Reference {
	return &Reference{values: bytes.Repeat([]byte{base}, size)}
}

func (r *Reference) Assign(begin, end int, value byte) {
	for k := begin; k < end; k++ {
		r.values[k] = value
	}
}

func (r *Reference) Get(key int) byte {
	return r.values[key]
}

func (r *Reference) Len() int {
	return len(r.values)
}
