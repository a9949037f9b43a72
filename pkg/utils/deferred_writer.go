package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter holds output while a full screen program owns the terminal.
// Writes are buffered until Release; after that they go straight to the
// released writer. Safe for concurrent use.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	out io.Writer
}

// Write buffers p, or forwards it once the writer has been released.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.out != nil {
		return d.out.Write(p)
	}
	return d.buf.Write(p)
}

// Release writes the buffered output to w and forwards later writes to it.
// Releasing twice flushes nothing new and switches the target.
func (d *DeferredWriter) Release(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.out = w
	if d.buf.Len() == 0 {
		return nil
	}
	_, err := d.buf.WriteTo(w)
	return err
}

// Buffered reports how many bytes are waiting for Release.
func (d *DeferredWriter) Buffered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}
