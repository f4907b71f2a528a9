package buddy

import (
	"fmt"

	"github.com/joshuapare/buddymem/internal/format"
)

const (
	// DefaultMinBlockSize is the smallest block the splitter produces by
	// default: the 8-byte header plus three payload words.
	DefaultMinBlockSize = 32

	// DefaultInitialSize is the default size of the first region a Heap
	// commits.
	DefaultInitialSize = 64 * 1024

	// DefaultMaxSize is the default cap on Heap growth (1 GiB of virtual
	// reservation; physical pages are only committed as the heap grows).
	DefaultMaxSize = 1 << 30
)

// Config carries the build-time knobs of an allocator. The zero value of
// any field selects its default.
type Config struct {
	// MinBlockSize is the smallest block the splitter may produce. Must be
	// a power of two no smaller than twice the header size.
	MinBlockSize int

	// InitialSize is the size of the first region a Heap commits. Must be
	// a power of two no smaller than MinBlockSize. Ignored by Arena.
	InitialSize int

	// MaxSize caps region growth; a Heap reserves this much virtual
	// address space up front. Must be a power of two no smaller than
	// InitialSize. Ignored by Arena.
	MaxSize int
}

// DefaultConfig is the configuration used when a constructor receives nil.
var DefaultConfig = Config{
	MinBlockSize: DefaultMinBlockSize,
	InitialSize:  DefaultInitialSize,
	MaxSize:      DefaultMaxSize,
}

// withDefaults fills zero fields and validates the result.
func (c Config) withDefaults() (Config, error) {
	if c.MinBlockSize == 0 {
		c.MinBlockSize = DefaultMinBlockSize
	}
	if c.InitialSize == 0 {
		c.InitialSize = DefaultInitialSize
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	if !format.IsPow2(c.MinBlockSize) || c.MinBlockSize < 2*format.HeaderSize {
		return c, fmt.Errorf("buddy: MinBlockSize must be a power of two >= %d; got %d",
			2*format.HeaderSize, c.MinBlockSize)
	}
	if !format.IsPow2(c.InitialSize) || c.InitialSize < c.MinBlockSize {
		return c, fmt.Errorf("buddy: InitialSize must be a power of two >= MinBlockSize (%d); got %d",
			c.MinBlockSize, c.InitialSize)
	}
	if !format.IsPow2(c.MaxSize) || c.MaxSize < c.InitialSize {
		return c, fmt.Errorf("buddy: MaxSize must be a power of two >= InitialSize (%d); got %d",
			c.InitialSize, c.MaxSize)
	}
	return c, nil
}
