// Package counter measures the size of request and response bodies.
package counter

import (
	"errors"
	"io"
)

// ReadCloser wraps an io.ReadCloser (response body) to count bytes read from the reader.
// Optionally, an OnClose callback can be registered.
type ReadCloser struct {
	wrapped io.ReadCloser
	onClose OnClose
	bytes   int64
	readErr error
	closed  bool
}

// OnClose callback receives the number of read bytes and the first meaningful error.
type OnClose func(bytes int64, err error)

func NewReadCloser(wrapped io.ReadCloser, onClose OnClose) *ReadCloser {
	return &ReadCloser{wrapped: wrapped, onClose: onClose}
}

// Bytes returns number of bytes read so far.
func (w *ReadCloser) Bytes() int64 {
	return w.bytes
}

// Err returns the last read error, io.EOF is not an error.
func (w *ReadCloser) Err() error {
	if errors.Is(w.readErr, io.EOF) {
		return nil
	}
	return w.readErr
}

func (w *ReadCloser) Read(b []byte) (int, error) {
	n, err := w.wrapped.Read(b)
	w.bytes += int64(n)
	w.readErr = err
	return n, err
}

// Close closes the wrapped reader, the OnClose callback is called only once.
func (w *ReadCloser) Close() error {
	closeErr := w.wrapped.Close()
	if w.onClose != nil && !w.closed {
		// Prefer read error before close error for onClose callback, it is usually more useful
		onCloseErr := w.Err()
		if onCloseErr == nil {
			onCloseErr = closeErr
		}
		w.onClose(w.bytes, onCloseErr)
	}
	w.closed = true
	return closeErr
}
