package buddy

import (
	"fmt"
	"os"
)

// Runtime debug flag for allocation tracing - controlled by the
// BUDDY_LOG_ALLOC environment variable.
var logAlloc = os.Getenv("BUDDY_LOG_ALLOC") != ""

// debugLogf prints a trace line to stderr when tracing is enabled.
func debugLogf(format string, args ...any) {
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[BUDDY] "+format+"\n", args...)
	}
}
