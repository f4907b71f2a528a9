package buddy

import (
	"math"

	"github.com/joshuapare/buddymem/internal/format"
)

// Realloc resizes the allocation named by ref to hold at least size bytes.
//
// The block is resized in place whenever possible: shrinking peels buddies
// off the right, and growing absorbs free right-hand buddies, so in both
// cases the same ref (and payload base) is returned. Only when the forward
// buddy chain cannot satisfy the request is the block relocated, copying
// the first min(old, new) payload bytes. A failed relocation leaves the
// original allocation intact and returns its error.
//
// Realloc(NilRef, size) is Alloc(size). Realloc(ref, 0) frees the block
// and returns the failure sentinel with ErrSizeZero.
func (a *Arena) Realloc(ref Ref, size int) (Ref, []byte, error) {
	a.stats.ReallocCalls++
	if ref == NilRef {
		return a.Alloc(size)
	}
	if size <= 0 {
		if err := a.Free(ref); err != nil {
			return NilRef, nil, err
		}
		return NilRef, nil, ErrSizeZero
	}
	if size > math.MaxInt-format.HeaderSize {
		return NilRef, nil, ErrSizeRange
	}
	off := ref
	if err := a.checkRef(off); err != nil {
		return NilRef, nil, err
	}
	cur, used := a.header(off)
	if !used {
		return NilRef, nil, ErrNotUsed
	}
	need := format.BlockSize(size)
	if need <= 0 { // power-of-two rounding overflowed
		return NilRef, nil, ErrSizeRange
	}
	if need < a.min {
		need = a.min
	}

	// Shrink (or keep) in place.
	if cur >= need {
		got := a.shrinkTo(off, need)
		return off, a.payload(off, got), nil
	}

	// Grow in place by absorbing free right-hand buddies.
	if got := a.growForward(off, cur, need); got > 0 {
		return off, a.payload(off, got), nil
	}

	return a.relocate(off, cur, size)
}

// growForward tries to extend the used block at off from cur to at least
// need bytes by merging with buddies to its right. A merge step is only
// legal while the block is a left sibling at the candidate size and the
// forward buddy is free and exactly candidate-sized; merging leftward is
// never attempted, so the payload base stays put. The chain is checked in
// full before anything is written: either the whole merge commits or
// nothing changes. Returns the new size, or 0 when the chain falls short.
func (a *Arena) growForward(off, cur, need int) int {
	cand := cur
	for cand < need {
		if !isLeft(off, cand) {
			return 0
		}
		buddy := off + cand
		if buddy >= len(a.data) {
			return 0
		}
		bsize, bused := a.header(buddy)
		if bused || bsize != cand {
			return 0
		}
		cand *= 2
	}

	// Commit: the absorbed headers become payload bytes.
	for s := cur; s < cand; s *= 2 {
		a.stats.Merges++
	}
	a.setHeader(off, cand, true)

	// The cursor may have pointed at an absorbed buddy; move it off the
	// block interior.
	if a.next > off && a.next < off+cand {
		a.next = off + cand
		if a.next >= len(a.data) {
			a.next = 0
		}
	}
	return cand
}

// relocate frees the block at off, allocates a fresh block for size bytes,
// and copies the old payload across. On allocation failure the original
// block is carved back out of the free space at its old offset and the
// allocation error returned, so the caller's data is never lost.
func (a *Arena) relocate(off, oldSize, size int) (Ref, []byte, error) {
	a.setHeader(off, oldSize, false)
	merged := a.coalesce(off)
	a.next = merged

	newRef, payload, err := a.Alloc(size)
	if err != nil {
		a.recarve(merged, off, oldSize)
		return NilRef, nil, err
	}
	a.stats.BytesFreed += int64(oldSize)

	// Safe even though the new block may overlap the old one: relocation
	// only happens on growth, so every header written by Alloc lands on a
	// boundary of at least oldSize bytes, never inside the old payload,
	// and copy has memmove semantics.
	copy(payload, a.data[off+format.HeaderSize:off+oldSize])
	return newRef, payload, nil
}

// recarve splits the free block at from back down until the span
// [off, off+size) is a block of its own again, then marks it used. Inverts
// the free+coalesce half of a failed relocation.
func (a *Arena) recarve(from, off, size int) {
	cur := from
	for {
		csize, _ := a.header(cur)
		if cur == off && csize == size {
			break
		}
		half := csize / 2
		a.setHeader(cur, half, false)
		a.setHeader(cur+half, half, false)
		a.stats.Splits++
		if off >= cur+half {
			cur += half
		}
	}
	a.setHeader(off, size, true)
	a.next = off + size
	if a.next >= len(a.data) {
		a.next = 0
	}
}
