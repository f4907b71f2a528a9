// Package buddy implements a binary buddy-system memory manager over a flat
// byte region.
//
// # Overview
//
// The region is tiled by blocks whose sizes are always powers of two. Every
// block starts with an 8-byte header holding its size and used flag; the
// payload handed to callers begins immediately after the header. Allocation
// finds a free block with a next-fit scan and splits it down to the
// smallest power of two that fits. Freeing merges the block with its buddy
// recursively, so any two adjacent free buddies always collapse back into
// their parent size class.
//
// A block's buddy is never stored; it is re-derived from the block's size
// and its offset from the region start. A block of size s at offset o is a
// left sibling iff o is an even multiple of s, and its buddy sits at o+s
// (left) or o-s (right). This is what lets blocks split and merge freely
// without parent or sibling pointers to keep in sync.
//
// # Variants
//
// Arena manages a caller-supplied fixed region. It never grows and performs
// no locking; it suits single-goroutine use and tests that need many
// independent regions.
//
// Heap manages an OS-backed region that is acquired lazily on first use and
// grows on demand, up to a configurable reservation. Every public Heap
// method takes a single mutex for its whole duration, so a Heap is safe for
// concurrent use. The package-level Alloc, AllocZero, Realloc, Free, and
// Payload functions operate on a process-wide default Heap.
//
// # References and payloads
//
// Allocations return a Ref (the byte offset of the block inside its region)
// together with the payload slice. The Ref is the durable name of the
// allocation: pass it to Free, Realloc, and Payload. Payload slices remain
// valid for the lifetime of the allocation (the region base never moves,
// even when a Heap grows), but a Realloc may relocate the block, in which
// case the slice returned by Realloc replaces the old one.
//
// # Usage Example
//
//	ref, buf, err := buddy.Alloc(256)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Grow the allocation in place when possible, relocating otherwise.
//	ref, buf, err = buddy.Realloc(ref, 1024)
//	if err != nil {
//	    return err
//	}
//
//	// Later, exactly once:
//	err = buddy.Free(ref)
//
// # Caller contract
//
// This is a manual allocator. Each live allocation must be freed exactly
// once, with the Ref it was issued under. Double frees and frees of foreign
// refs are contract violations; the allocator detects the cheap cases
// (out-of-range refs, frees of blocks already free) and returns ErrBadRef
// or ErrNotUsed, but this is best-effort debugging aid, not a guarantee.
//
// # Thread Safety
//
// Heap and the package-level functions are safe for concurrent use. Arena
// is not; callers must synchronize access externally.
package buddy
