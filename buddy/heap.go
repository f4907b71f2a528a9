package buddy

import (
	"sync"

	"github.com/joshuapare/buddymem/internal/sysmem"
)

// Heap is a growable buddy allocator over an OS-backed region. The region
// is acquired lazily on the first operation and grows on demand up to the
// configured reservation; the region base never moves, so payload slices
// stay valid across growth.
//
// Every public method takes a single mutex for its whole duration, so a
// Heap is safe for concurrent use. Internal helpers run on the unlocked
// Arena with the mutex already held; nothing re-acquires it.
type Heap struct {
	mu     sync.Mutex
	cfg    Config
	region *sysmem.Region
	a      *Arena // nil until the first successful ensureInit
}

// NewHeap returns a heap with the given configuration. No OS memory is
// touched until the first allocation. nil selects DefaultConfig.
func NewHeap(cfg *Config) (*Heap, error) {
	conf := DefaultConfig
	if cfg != nil {
		conf = *cfg
	}
	conf, err := conf.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Heap{cfg: conf}, nil
}

// ensureInit reserves the virtual span and materializes the initial region
// as one free block. Called with h.mu held from every public entry point;
// idempotent, and a failure is retried on the next call.
func (h *Heap) ensureInit() error {
	if h.a != nil {
		return nil
	}
	region, err := sysmem.Reserve(h.cfg.MaxSize)
	if err != nil {
		return err
	}
	data, err := region.Grow(h.cfg.InitialSize)
	if err != nil {
		region.Release()
		return err
	}
	a := &Arena{data: data, min: h.cfg.MinBlockSize}
	a.setHeader(0, h.cfg.InitialSize, false)
	a.grow = h.growRegion
	h.region, h.a = region, a
	debugLogf("heap init: region=%d reserved=%d", h.cfg.InitialSize, h.cfg.MaxSize)
	return nil
}

// growRegion extends the managed region until a free block of at least
// need bytes exists. Invoked by the arena only after a failed full-wrap
// search. Each policy commits from the reservation with a single call, so
// a failed growth attempt leaves every existing block untouched.
func (h *Heap) growRegion(need int) error {
	a := h.a
	total := len(a.data)
	if need > h.cfg.MaxSize {
		debugLogf("grow denied: need=%d exceeds reservation=%d", need, h.cfg.MaxSize)
		return ErrGrowFail
	}

	// A pristine region - one giant free block - is doubled in place
	// rather than fragmented with appended blocks.
	if size, used := a.header(0); !used && size == total {
		newSize := total
		for newSize < need {
			newSize *= 2
		}
		data, err := h.region.Grow(newSize)
		if err != nil {
			debugLogf("grow denied: need=%d want=%d: %v", need, newSize, err)
			return ErrGrowFail
		}
		a.data = data
		a.setHeader(0, newSize, false)
		h.noteGrowth(int64(newSize - total))
		debugLogf("grow: pristine region %d -> %d", total, newSize)
		return nil
	}

	// Otherwise double the region, materializing each added span as one
	// free block, until the last appended block fits the request. The
	// appended block at offset o always has size o, so sizes stay powers
	// of two and the largest appended block is newTotal/2.
	newTotal := 2 * total
	for newTotal/2 < need {
		newTotal *= 2
	}
	data, err := h.region.Grow(newTotal)
	if err != nil {
		debugLogf("grow denied: need=%d want=%d: %v", need, newTotal, err)
		return ErrGrowFail
	}
	a.data = data
	for off := total; off < newTotal; off *= 2 {
		a.setHeader(off, off, false)
	}
	h.noteGrowth(int64(newTotal - total))
	debugLogf("grow: appended blocks, region %d -> %d", total, newTotal)
	return nil
}

func (h *Heap) noteGrowth(delta int64) {
	h.a.stats.GrowCalls++
	h.a.stats.GrowBytes += delta
}

// Alloc reserves a block with payload capacity of at least size bytes,
// growing the region if no free block fits.
func (h *Heap) Alloc(size int) (Ref, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ensureInit(); err != nil {
		return NilRef, nil, err
	}
	return h.a.Alloc(size)
}

// AllocZero reserves a zero-filled block holding count elements of size
// bytes each.
func (h *Heap) AllocZero(count, size int) (Ref, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ensureInit(); err != nil {
		return NilRef, nil, err
	}
	return h.a.AllocZero(count, size)
}

// Free releases the block named by ref. Freeing NilRef is a no-op.
func (h *Heap) Free(ref Ref) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	// A heap that never allocated holds no blocks; don't commit a region
	// just to reject the ref.
	if h.a == nil {
		if ref == NilRef {
			return nil
		}
		return ErrBadRef
	}
	return h.a.Free(ref)
}

// Realloc resizes the allocation named by ref; see Arena.Realloc for the
// in-place and relocation rules.
func (h *Heap) Realloc(ref Ref, size int) (Ref, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.ensureInit(); err != nil {
		return NilRef, nil, err
	}
	return h.a.Realloc(ref, size)
}

// Payload re-resolves the payload slice of a live allocation.
func (h *Heap) Payload(ref Ref) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.a == nil {
		return nil, ErrBadRef
	}
	return h.a.Payload(ref)
}

// Size returns the current managed region size; zero before first use.
func (h *Heap) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.a == nil {
		return 0
	}
	return h.a.Size()
}

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.a == nil {
		return Stats{}
	}
	return h.a.Stats()
}

// Blocks calls fn for every block in region order while holding the heap
// lock; fn must not call back into the heap.
func (h *Heap) Blocks(fn func(Block) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.a == nil {
		return
	}
	h.a.Blocks(fn)
}

// CheckInvariants verifies the structural invariants of the region.
func (h *Heap) CheckInvariants() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.a == nil {
		return nil
	}
	return h.a.CheckInvariants()
}

// Close releases the heap's OS region. All outstanding refs and payload
// slices become invalid. A process-lifetime heap never needs Close; it
// exists for tests and embedding programs. The heap reinitializes on the
// next operation.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.region == nil {
		return nil
	}
	err := h.region.Release()
	h.region, h.a = nil, nil
	return err
}
