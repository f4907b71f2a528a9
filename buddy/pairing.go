package buddy

// Buddy pairing is derived, never stored: a block of size s at offset o
// from the region start is a left sibling iff o is an even multiple of s.
// The buddy of a left sibling is the block at o+s; the buddy of a right
// sibling is the block at o-s. Re-deriving sidedness on every merge is what
// allows blocks to split and coalesce without parent or sibling pointers.

// isLeft reports whether the block at off is the left sibling of its pair.
func isLeft(off, size int) bool {
	return off%(2*size) == 0
}

// buddyOf returns the offset of the buddy of the block at off. The result
// may lie outside the region; callers must range-check it.
func buddyOf(off, size int) int {
	if isLeft(off, size) {
		return off + size
	}
	return off - size
}
