package kfmt

import "io"

// ringBufferSize defines the capacity of the early output buffer. It holds
// the contents of a full 80x25 text screen and must be a power of 2.
const ringBufferSize = 2048

// ringBuffer is a fixed-size FIFO that overwrites its oldest bytes when
// full.
type ringBuffer struct {
	buffer      [ringBufferSize]byte
	start, size int
}

// Write appends p to the buffer, discarding the oldest data on overflow.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[(rb.start+rb.size)&(ringBufferSize-1)] = b
		if rb.size == ringBufferSize {
			rb.start = (rb.start + 1) & (ringBufferSize - 1)
			continue
		}
		rb.size++
	}

	return len(p), nil
}

// Read drains up to len(p) bytes from the buffer. It returns io.EOF once the
// buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.size == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && rb.size > 0 {
		// Copy the contiguous run that starts at rb.start.
		run := ringBufferSize - rb.start
		if run > rb.size {
			run = rb.size
		}

		c := copy(p[n:], rb.buffer[rb.start:rb.start+run])
		n += c
		rb.size -= c
		rb.start = (rb.start + c) & (ringBufferSize - 1)
	}

	return n, nil
}
