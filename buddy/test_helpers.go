package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestArena builds a fixed arena over a fresh region of the given size,
// using the default configuration.
func newTestArena(t testing.TB, size int) *Arena {
	t.Helper()
	a, err := NewArena(make([]byte, size), nil)
	require.NoError(t, err)
	return a
}

// newTestHeap builds a growable heap with a small region and reservation
// so growth paths are cheap to exercise.
func newTestHeap(t testing.TB, initial, maxSize int) *Heap {
	t.Helper()
	h, err := NewHeap(&Config{InitialSize: initial, MaxSize: maxSize})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// blocker abstracts the two allocator variants for shape helpers.
type blocker interface {
	Blocks(func(Block) bool)
	CheckInvariants() error
}

// regionShape returns every block of the region in address order.
func regionShape(b blocker) []Block {
	var bs []Block
	b.Blocks(func(blk Block) bool {
		bs = append(bs, blk)
		return true
	})
	return bs
}

// assertInvariants fails the test when the tiling, power-of-two, or cursor
// invariants do not hold.
func assertInvariants(t testing.TB, b blocker) {
	t.Helper()
	require.NoError(t, b.CheckInvariants())
}

// assertMaximalCoalescing fails the test when two free buddies of equal
// size coexist - coalescing must always run to its fixed point.
func assertMaximalCoalescing(t testing.TB, b blocker) {
	t.Helper()
	shape := regionShape(b)
	bySize := make(map[int]Block, len(shape))
	for _, blk := range shape {
		bySize[blk.Ref] = blk
	}
	for _, blk := range shape {
		if blk.Used {
			continue
		}
		buddy, ok := bySize[buddyOf(blk.Ref, blk.Size)]
		if ok && !buddy.Used && buddy.Size == blk.Size {
			t.Fatalf("mergeable free pair left behind: %d and %d (size %d)",
				blk.Ref, buddy.Ref, blk.Size)
		}
	}
}

// assertSingleFreeBlock fails the test unless the region is exactly one
// maximal free block - the shape of a freshly initialized region.
func assertSingleFreeBlock(t testing.TB, b blocker, size int) {
	t.Helper()
	shape := regionShape(b)
	require.Len(t, shape, 1)
	require.False(t, shape[0].Used)
	require.Equal(t, size, shape[0].Size)
}

// fillPattern writes a recognizable, offset-dependent pattern.
func fillPattern(buf []byte, seed byte) {
	for i := range buf {
		buf[i] = seed + byte(i)
	}
}

// checkPattern verifies the first n bytes of a fillPattern write.
func checkPattern(t testing.TB, buf []byte, seed byte, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if buf[i] != seed+byte(i) {
			t.Fatalf("payload corrupted at byte %d: got %#x, want %#x", i, buf[i], seed+byte(i))
		}
	}
}
