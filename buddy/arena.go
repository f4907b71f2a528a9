package buddy

import (
	"math"
	"math/bits"

	"github.com/joshuapare/buddymem/internal/format"
)

// Ref names an allocation by the byte offset of its block header from the
// region start. Refs are stable for the lifetime of the allocation.
type Ref = int

// NilRef is the failure sentinel. Freeing it is a no-op; reallocating it is
// a fresh allocation.
const NilRef Ref = -1

// Arena is a buddy allocator over a caller-supplied fixed region. It never
// grows and performs no locking; use Heap for a growable, goroutine-safe
// allocator.
//
// The managed prefix of the supplied memory is tiled by blocks at all
// times: walking from offset 0 by each block's size lands exactly on the
// region end.
type Arena struct {
	data []byte
	next int // next-fit cursor: header offset where the next search starts
	min  int // minimum block size

	// grow is invoked after a failed full-wrap search to extend data with
	// a free block of at least the given size. Nil for fixed arenas; set
	// by Heap.
	grow func(need int) error

	stats Stats
}

// NewArena initializes a fixed arena over mem. The managed region is
// len(mem) rounded down to a power of two, set up as one free block; the
// remainder of mem is untouched. Only the MinBlockSize field of cfg is
// used; nil selects DefaultConfig.
func NewArena(mem []byte, cfg *Config) (*Arena, error) {
	conf := DefaultConfig
	if cfg != nil {
		conf = *cfg
	}
	conf, err := conf.withDefaults()
	if err != nil {
		return nil, err
	}
	size := format.FloorPow2(len(mem))
	if size < conf.MinBlockSize {
		return nil, ErrArenaSmall
	}
	a := &Arena{data: mem[:size], min: conf.MinBlockSize}
	a.setHeader(0, size, false)
	return a, nil
}

// Size returns the managed region size in bytes.
func (a *Arena) Size() int { return len(a.data) }

// Alloc reserves a block with payload capacity of at least size bytes and
// returns its ref and payload. The payload content is unspecified.
func (a *Arena) Alloc(size int) (Ref, []byte, error) {
	a.stats.AllocCalls++
	if size <= 0 {
		return NilRef, nil, ErrSizeZero
	}
	if size > math.MaxInt-format.HeaderSize {
		return NilRef, nil, ErrSizeRange
	}
	need := format.BlockSize(size)
	if need <= 0 { // power-of-two rounding overflowed
		return NilRef, nil, ErrSizeRange
	}
	if need < a.min {
		need = a.min
	}

	off, ok := a.findFree(need)
	if !ok {
		if a.grow == nil {
			return NilRef, nil, ErrNoSpace
		}
		if err := a.grow(need); err != nil {
			return NilRef, nil, err
		}
		if off, ok = a.findFree(need); !ok {
			return NilRef, nil, ErrNoSpace
		}
	}

	got := a.shrinkTo(off, need)
	a.setHeader(off, got, true)
	a.stats.BytesAllocated += int64(got)

	// Advance the cursor past the block just handed out, wrapping at the
	// region end, so consecutive allocations rotate through the region.
	a.next = off + got
	if a.next >= len(a.data) {
		a.next = 0
	}
	debugLogf("alloc: ref=%d block=%d request=%d", off, got, size)
	return off, a.payload(off, got), nil
}

// AllocZero reserves a block holding count elements of size bytes each and
// zero-fills its payload. A count*size overflow is reported as
// ErrSizeRange.
func (a *Arena) AllocZero(count, size int) (Ref, []byte, error) {
	if count <= 0 || size <= 0 {
		return NilRef, nil, ErrSizeZero
	}
	hi, total := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || total > uint64(math.MaxInt-format.HeaderSize) {
		return NilRef, nil, ErrSizeRange
	}
	ref, buf, err := a.Alloc(int(total))
	if err != nil {
		return NilRef, nil, err
	}
	clear(buf)
	return ref, buf, nil
}

// Free releases the block named by ref and coalesces it with its free
// buddies. Freeing NilRef is a no-op. Frees of refs that do not name a
// used block fail with ErrBadRef or ErrNotUsed on a best-effort basis.
func (a *Arena) Free(ref Ref) error {
	if ref == NilRef {
		return nil
	}
	off := ref
	if err := a.checkRef(off); err != nil {
		return err
	}
	size, used := a.header(off)
	if !used {
		return ErrNotUsed
	}
	a.stats.FreeCalls++
	a.stats.BytesFreed += int64(size)
	a.setHeader(off, size, false)

	// Restart the next search at the freed (and possibly merged) block.
	a.next = a.coalesce(off)
	debugLogf("free: ref=%d block=%d merged=%d", off, size, a.next)
	return nil
}

// Payload re-resolves the payload slice of a live allocation.
func (a *Arena) Payload(ref Ref) ([]byte, error) {
	if err := a.checkRef(ref); err != nil {
		return nil, err
	}
	size, used := a.header(ref)
	if !used {
		return nil, ErrNotUsed
	}
	return a.payload(ref, size), nil
}

// payload returns the payload slice of the block at off. The capacity is
// clipped to the block end so an in-capacity append cannot reach past the
// block into a neighboring header.
func (a *Arena) payload(off, size int) []byte {
	return a.data[off+format.HeaderSize : off+size : off+size]
}

// header decodes the block header at off.
func (a *Arena) header(off int) (size int, used bool) {
	w := format.ReadWord(a.data, off)
	if w < 0 {
		return int(-w), true
	}
	return int(w), false
}

// setHeader encodes the block header at off.
func (a *Arena) setHeader(off, size int, used bool) {
	w := int64(size)
	if used {
		w = -w
	}
	format.PutWord(a.data, off, w)
}

// checkRef rejects refs that cannot name a block of this region: out of
// range, misaligned for the minimum block size, or carrying a header that
// violates the power-of-two invariant.
func (a *Arena) checkRef(off int) error {
	if off < 0 || off%a.min != 0 || off+a.min > len(a.data) {
		return ErrBadRef
	}
	size, _ := a.header(off)
	if size < a.min || !format.IsPow2(size) || off+size > len(a.data) || off%size != 0 {
		return ErrBadRef
	}
	return nil
}

// findFree runs the next-fit scan: starting at the cursor, step from header
// to header, wrapping at the region end, until a free block of at least
// need bytes turns up or the scan arrives back where it started.
func (a *Arena) findFree(need int) (int, bool) {
	start := a.next
	off := start
	for {
		size, used := a.header(off)
		if !used && size >= need {
			return off, true
		}
		off += size
		if off >= len(a.data) {
			off = 0
		}
		if off == start {
			return 0, false
		}
	}
}

// shrinkTo halves the block at off while the halved block would still hold
// need bytes, writing a free header for each peeled right buddy. The
// block's own header keeps its current used flag. Returns the final size.
//
// need must already be a power of two >= the minimum block size, so the
// halving can never produce an undersized block.
func (a *Arena) shrinkTo(off, need int) int {
	size, used := a.header(off)
	for size/2 >= need {
		size /= 2
		a.setHeader(off+size, size, false)
		a.stats.Splits++
	}
	a.setHeader(off, size, used)
	return size
}

// coalesce merges the free block at off with its buddy repeatedly until
// the buddy is out of range, in use, or of a different size. Returns the
// offset of the final merged block.
func (a *Arena) coalesce(off int) int {
	for {
		size, _ := a.header(off)
		if size >= len(a.data) {
			return off
		}
		buddy := buddyOf(off, size)
		if buddy < 0 || buddy >= len(a.data) {
			return off
		}
		bsize, bused := a.header(buddy)
		if bused || bsize != size {
			return off
		}
		if buddy < off {
			off = buddy
		}
		a.setHeader(off, 2*size, false)
		a.stats.Merges++
	}
}
