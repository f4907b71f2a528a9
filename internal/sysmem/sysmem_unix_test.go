//go:build unix

package sysmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveGrowRelease(t *testing.T) {
	r, err := Reserve(1 << 20)
	require.NoError(t, err)
	defer r.Release()

	require.Equal(t, 1<<20, r.Cap())
	require.Equal(t, 0, r.Len())

	data, err := r.Grow(4096)
	require.NoError(t, err)
	require.Len(t, data, 4096)

	// Committed pages must be writable and stable across further growth.
	data[0] = 0xAB
	data[4095] = 0xCD

	bigger, err := r.Grow(65536)
	require.NoError(t, err)
	require.Len(t, bigger, 65536)
	require.Equal(t, byte(0xAB), bigger[0])
	require.Equal(t, byte(0xCD), bigger[4095])
	bigger[65535] = 0xEF

	// The base address never moves, so earlier slices stay valid.
	require.Equal(t, &data[0], &bigger[0])
}

func TestGrowNeverShrinks(t *testing.T) {
	r, err := Reserve(1 << 16)
	require.NoError(t, err)
	defer r.Release()

	_, err = r.Grow(8192)
	require.NoError(t, err)

	data, err := r.Grow(4096)
	require.NoError(t, err)
	require.Len(t, data, 8192)
}

func TestGrowBeyondReservationFails(t *testing.T) {
	r, err := Reserve(4096)
	require.NoError(t, err)
	defer r.Release()

	_, err = r.Grow(8192)
	require.Error(t, err)
	require.Equal(t, 0, r.Len())
}

func TestReserveInvalidSize(t *testing.T) {
	_, err := Reserve(0)
	require.Error(t, err)
	_, err = Reserve(-1)
	require.Error(t, err)
}

func TestReleaseTwice(t *testing.T) {
	r, err := Reserve(4096)
	require.NoError(t, err)
	require.NoError(t, r.Release())
	require.NoError(t, r.Release())
}
