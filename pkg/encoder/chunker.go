package encoder

import (
	"bytes"
	"sync"
)

// Chunker is the sink for the muxed stream. The muxer writes a continuous
// byte stream into it; the session cuts that stream into segments on a
// fixed interval. Concatenating every cut in order restores the stream
// byte for byte.
type Chunker struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func NewChunker() *Chunker { return &Chunker{} }

func (c *Chunker) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Cut returns the bytes accumulated since the previous cut, nil when none.
func (c *Chunker) Cut() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	c.buf.Reset()
	return out
}

// Close marks the stream finished. The muxer calls it after flushing its
// trailing data, so a Drain that follows Close is guaranteed to observe
// every byte ever written. The session's stop path relies on that ordering.
func (c *Chunker) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Drain returns the remainder after Close.
func (c *Chunker) Drain() []byte { return c.Cut() }

// Closed reports whether the producing muxer has finished.
func (c *Chunker) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
