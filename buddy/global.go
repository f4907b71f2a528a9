package buddy

// Default is the process-wide growable heap behind the package-level
// functions. Its region is acquired from the operating system lazily, on
// the first allocation.
var Default = &Heap{cfg: DefaultConfig}

// Alloc reserves size bytes from the default heap.
func Alloc(size int) (Ref, []byte, error) {
	return Default.Alloc(size)
}

// AllocZero reserves count*size zeroed bytes from the default heap.
func AllocZero(count, size int) (Ref, []byte, error) {
	return Default.AllocZero(count, size)
}

// Realloc resizes an allocation of the default heap.
func Realloc(ref Ref, size int) (Ref, []byte, error) {
	return Default.Realloc(ref, size)
}

// Free releases an allocation of the default heap.
func Free(ref Ref) error {
	return Default.Free(ref)
}

// Payload re-resolves the payload slice of a default-heap allocation.
func Payload(ref Ref) ([]byte, error) {
	return Default.Payload(ref)
}
