package buddy

import (
	"fmt"

	"github.com/joshuapare/buddymem/internal/format"
)

// Stats holds allocator counters for instrumentation and tests.
type Stats struct {
	AllocCalls     int   // Alloc invocations (including those made by Realloc)
	FreeCalls      int   // blocks released by Free; rejected frees do not count
	ReallocCalls   int   // Realloc invocations
	GrowCalls      int   // region growth operations
	GrowBytes      int64 // total bytes added by growth
	Splits         int   // block splits
	Merges         int   // buddy merges
	BytesAllocated int64 // total block bytes handed out
	BytesFreed     int64 // total block bytes released
}

// Stats returns a snapshot of the allocator counters.
func (a *Arena) Stats() Stats { return a.stats }

// Block describes one block of the region as seen by Blocks.
type Block struct {
	Ref  Ref  // offset of the block header
	Size int  // total size, header included
	Used bool // true while the payload is handed out
}

// Blocks calls fn for every block in region order, stopping early when fn
// returns false. The walk reads live headers; do not mutate the allocator
// from fn.
func (a *Arena) Blocks(fn func(Block) bool) {
	for off := 0; off < len(a.data); {
		size, used := a.header(off)
		if size <= 0 {
			return // corrupt header; CheckInvariants reports this
		}
		if !fn(Block{Ref: off, Size: size, Used: used}) {
			return
		}
		off += size
	}
}

// CheckInvariants walks the region and verifies its structural invariants:
// blocks tile the region exactly with no gaps or overlaps, every size is a
// power of two no smaller than the minimum and aligned to its own size,
// and the search cursor names a block start.
func (a *Arena) CheckInvariants() error {
	off := 0
	cursorOK := false
	for off < len(a.data) {
		if off == a.next {
			cursorOK = true
		}
		size, _ := a.header(off)
		if size < a.min || !format.IsPow2(size) {
			return fmt.Errorf("%w: block at %d has size %d", ErrCorrupt, off, size)
		}
		if off%size != 0 {
			return fmt.Errorf("%w: block at %d is misaligned for size %d", ErrCorrupt, off, size)
		}
		if off+size > len(a.data) {
			return fmt.Errorf("%w: block at %d overruns region end", ErrCorrupt, off)
		}
		off += size
	}
	if off != len(a.data) {
		return fmt.Errorf("%w: blocks tile %d bytes of a %d byte region", ErrCorrupt, off, len(a.data))
	}
	if !cursorOK {
		return fmt.Errorf("%w: cursor %d is not a block start", ErrCorrupt, a.next)
	}
	return nil
}
