package macho

import (
	"io"
	"os"
	"runtime"
)

type config struct {
	offset      int64
	size        int64 // -1 when unknown
	strict      bool
	concurrency int
}

// An Option configures Parse, NewFile and NewFatFile.
type Option func(*config)

// WithOffset parses the image found at off in the source instead of 0.
func WithOffset(off int64) Option {
	return func(c *config) { c.offset = off }
}

// WithSize bounds the source. Without it the size is taken from the reader
// when it exposes one (Size() or Length()).
func WithSize(n int64) Option {
	return func(c *config) { c.size = n }
}

// WithStrictSubtypes makes an unknown ARM or x86 cpu subtype a parse error.
func WithStrictSubtypes(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithConcurrency bounds FatFile.ParseAll. Values < 1 mean GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

func newConfig(r io.ReaderAt, opts []Option) config {
	c := config{size: -1}
	for _, opt := range opts {
		opt(&c)
	}
	if c.size < 0 {
		c.size = sourceSize(r)
		if c.size >= 0 {
			c.size -= c.offset
		}
	}
	if c.concurrency < 1 {
		c.concurrency = runtime.GOMAXPROCS(0)
	}
	return c
}

func sourceSize(r io.ReaderAt) int64 {
	switch s := r.(type) {
	case interface{ Size() int64 }:
		return s.Size()
	case interface{ Length() (int64, error) }:
		if n, err := s.Length(); err == nil {
			return n
		}
	case *os.File:
		if fi, err := s.Stat(); err == nil {
			return fi.Size()
		}
	}
	return -1
}
