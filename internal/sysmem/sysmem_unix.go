//go:build unix

package sysmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Region is a contiguous anonymous memory span. The full span is reserved
// up front with PROT_NONE so the base address never moves; pages are
// committed (made readable and writable) as the usable prefix grows.
type Region struct {
	raw []byte // the whole reservation
	n   int    // committed prefix length
}

// Reserve maps an anonymous span of max bytes with no access permissions.
// Nothing is committed until the first Grow call.
func Reserve(max int) (*Region, error) {
	if max <= 0 {
		return nil, fmt.Errorf("sysmem: invalid reservation size %d", max)
	}
	raw, err := unix.Mmap(-1, 0, max, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sysmem: reserve %d bytes: %w", max, err)
	}
	return &Region{raw: raw}, nil
}

// Cap returns the total reserved capacity in bytes.
func (r *Region) Cap() int { return len(r.raw) }

// Len returns the committed prefix length in bytes.
func (r *Region) Len() int { return r.n }

// Grow commits pages so that at least n bytes are usable and returns the
// usable prefix. The committed prefix only ever advances; a Grow to a
// smaller n returns the current prefix unchanged.
func (r *Region) Grow(n int) ([]byte, error) {
	if n <= r.n {
		return r.raw[:r.n], nil
	}
	if n > len(r.raw) {
		return nil, fmt.Errorf("sysmem: grow to %d exceeds reservation of %d", n, len(r.raw))
	}
	// The mapping base is page-aligned, so protecting the whole prefix
	// keeps the mprotect address aligned regardless of n.
	if err := unix.Mprotect(r.raw[:n], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return nil, fmt.Errorf("sysmem: commit %d bytes: %w", n-r.n, err)
	}
	r.n = n
	return r.raw[:n], nil
}

// Release unmaps the reservation. Double release is a no-op.
func (r *Region) Release() error {
	if r.raw == nil {
		return nil
	}
	err := unix.Munmap(r.raw)
	r.raw, r.n = nil, 0
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
