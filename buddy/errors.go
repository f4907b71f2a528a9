package buddy

import "errors"

var (
	// ErrSizeZero indicates a zero-byte (or negative) allocation request.
	ErrSizeZero = errors.New("buddy: size must be positive")

	// ErrSizeRange indicates a request whose total size overflows.
	ErrSizeRange = errors.New("buddy: size out of range")

	// ErrNoSpace indicates that no free block fits the request and the
	// region cannot grow.
	ErrNoSpace = errors.New("buddy: no free block large enough")

	// ErrGrowFail indicates that the backing store could not supply more
	// memory.
	ErrGrowFail = errors.New("buddy: grow failed")

	// ErrBadRef indicates a reference that does not name a block of the
	// region.
	ErrBadRef = errors.New("buddy: bad block reference")

	// ErrNotUsed indicates an operation on a block that is not in use,
	// such as a double free.
	ErrNotUsed = errors.New("buddy: block is not in use")

	// ErrArenaSmall indicates an arena too small to hold a single block.
	ErrArenaSmall = errors.New("buddy: arena below minimum block size")

	// ErrCorrupt indicates that a structural invariant of the region does
	// not hold. Returned only by CheckInvariants.
	ErrCorrupt = errors.New("buddy: region corrupt")
)
