package buddy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealloc_NilRefAllocates(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Realloc(NilRef, 100)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.GreaterOrEqual(t, len(buf), 100)
}

func TestRealloc_ZeroSizeFreesAndFails(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, _, err := a.Alloc(100)
	require.NoError(t, err)

	got, buf, err := a.Realloc(ref, 0)
	require.ErrorIs(t, err, ErrSizeZero)
	require.Equal(t, NilRef, got)
	require.Nil(t, buf)
	assertSingleFreeBlock(t, a, 1024)
}

func TestRealloc_ShrinkInPlace(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(200) // block size 256
	require.NoError(t, err)
	fillPattern(buf, 0x5A)

	got, smaller, err := a.Realloc(ref, 50) // block size 64
	require.NoError(t, err)
	require.Equal(t, ref, got, "shrink must stay in place")
	require.GreaterOrEqual(t, len(smaller), 50)
	checkPattern(t, smaller, 0x5A, 50)

	shape := regionShape(a)
	require.Equal(t, 64, shape[0].Size)
	require.True(t, shape[0].Used)
	assertInvariants(t, a)

	require.NoError(t, a.Free(got))
	assertSingleFreeBlock(t, a, 1024)
}

func TestRealloc_SameSizeKeepsBlock(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(100)
	require.NoError(t, err)
	fillPattern(buf, 0x21)

	got, again, err := a.Realloc(ref, 120) // still fits the 128 block
	require.NoError(t, err)
	require.Equal(t, ref, got)
	checkPattern(t, again, 0x21, 100)
}

func TestRealloc_GrowInPlaceForward(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(50) // block 0, size 64; right buddy 64..128 free
	require.NoError(t, err)
	fillPattern(buf, 0x33)

	got, grown, err := a.Realloc(ref, 100) // needs 128: absorbs the buddy
	require.NoError(t, err)
	require.Equal(t, ref, got, "forward merge must keep the payload base")
	require.GreaterOrEqual(t, len(grown), 100)
	checkPattern(t, grown, 0x33, 50)

	shape := regionShape(a)
	require.Equal(t, 128, shape[0].Size)
	require.True(t, shape[0].Used)
	assertInvariants(t, a)
}

func TestRealloc_GrowInPlaceAcrossLevels(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(20) // block 0, size 32
	require.NoError(t, err)
	fillPattern(buf, 0x44)

	// 32 -> 512 absorbs the free buddies at 32, 64..128, 128..256, 256..512.
	got, grown, err := a.Realloc(ref, 500)
	require.NoError(t, err)
	require.Equal(t, ref, got)
	require.GreaterOrEqual(t, len(grown), 500)
	checkPattern(t, grown, 0x44, 20)

	shape := regionShape(a)
	require.Equal(t, []Block{
		{Ref: 0, Size: 512, Used: true},
		{Ref: 512, Size: 512, Used: false},
	}, shape)
}

func TestRealloc_RelocatesWhenForwardBlocked(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(50) // block 0, size 64
	require.NoError(t, err)
	blocker, _, err := a.Alloc(50) // block 64, size 64: blocks the forward merge
	require.NoError(t, err)
	fillPattern(buf, 0x66)

	got, moved, err := a.Realloc(ref, 200) // needs 256: must relocate
	require.NoError(t, err)
	require.NotEqual(t, ref, got, "blocked forward chain forces relocation")
	require.GreaterOrEqual(t, len(moved), 200)
	checkPattern(t, moved, 0x66, 50)
	assertInvariants(t, a)

	require.NoError(t, a.Free(got))
	require.NoError(t, a.Free(blocker))
	assertSingleFreeBlock(t, a, 1024)
}

// A right sibling must never merge leftward, even when its left buddy is
// free: the payload base has to stay put or relocation has to happen.
func TestRealloc_NeverMergesLeftward(t *testing.T) {
	a := newTestArena(t, 1024)
	left, _, err := a.Alloc(50) // block 0, size 64
	require.NoError(t, err)
	right, buf, err := a.Alloc(50) // block 64, size 64
	require.NoError(t, err)
	require.NoError(t, a.Free(left)) // left buddy now free
	fillPattern(buf, 0x29)

	got, moved, err := a.Realloc(right, 100)
	require.NoError(t, err)
	require.NotEqual(t, right, got, "right sibling cannot grow in place")
	checkPattern(t, moved, 0x29, 50)
	assertInvariants(t, a)
}

func TestRealloc_FailureRestoresOriginal(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, buf, err := a.Alloc(100)
	require.NoError(t, err)
	fillPattern(buf, 0x7E)

	got, _, err := a.Realloc(ref, 5000) // larger than the arena can ever hold
	require.ErrorIs(t, err, ErrNoSpace)
	require.Equal(t, NilRef, got)

	// The original allocation must still be live, same place, same bytes.
	again, err := a.Payload(ref)
	require.NoError(t, err)
	checkPattern(t, again, 0x7E, 100)
	assertInvariants(t, a)

	shape := regionShape(a)
	require.True(t, shape[0].Used)
	require.Equal(t, 128, shape[0].Size)

	require.NoError(t, a.Free(ref))
	assertSingleFreeBlock(t, a, 1024)
}

func TestRealloc_PayloadCapacityEndsAtBlock(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, _, err := a.Alloc(50)
	require.NoError(t, err)

	_, buf, err := a.Realloc(ref, 100) // grows in place
	require.NoError(t, err)
	require.Equal(t, len(buf), cap(buf))

	_, buf, err = a.Realloc(ref, 30) // shrinks in place
	require.NoError(t, err)
	require.Equal(t, len(buf), cap(buf))

	_ = append(buf, make([]byte, 8)...)
	assertInvariants(t, a)
}

func TestRealloc_DoubleFreeDetected(t *testing.T) {
	a := newTestArena(t, 1024)
	ref, _, err := a.Alloc(100)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	_, _, err = a.Realloc(ref, 200)
	require.Error(t, err)
}
