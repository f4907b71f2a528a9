//go:build !unix

// Package sysmem acquires raw memory regions from the operating system for
// the growable heap. On platforms without an mmap-style reservation the
// region is a single Go allocation; the runtime commits pages on first
// touch, so an untouched reservation stays cheap.
package sysmem

import "fmt"

// Region is a contiguous memory span backed by one Go allocation. The base
// never moves; Grow only widens the usable prefix.
type Region struct {
	raw []byte
	n   int
}

// Reserve allocates a span of max bytes.
func Reserve(max int) (*Region, error) {
	if max <= 0 {
		return nil, fmt.Errorf("sysmem: invalid reservation size %d", max)
	}
	return &Region{raw: make([]byte, max)}, nil
}

// Cap returns the total reserved capacity in bytes.
func (r *Region) Cap() int { return len(r.raw) }

// Len returns the committed prefix length in bytes.
func (r *Region) Len() int { return r.n }

// Grow widens the usable prefix to at least n bytes and returns it.
func (r *Region) Grow(n int) ([]byte, error) {
	if n <= r.n {
		return r.raw[:r.n], nil
	}
	if n > len(r.raw) {
		return nil, fmt.Errorf("sysmem: grow to %d exceeds reservation of %d", n, len(r.raw))
	}
	r.n = n
	return r.raw[:n], nil
}

// Release drops the reservation.
func (r *Region) Release() error {
	r.raw, r.n = nil, 0
	return nil
}
