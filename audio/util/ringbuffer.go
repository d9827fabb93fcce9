package util

import (
	"sync"
)

// RingBuffer implements a circular buffer of samples. It is safe to Push from a capture
// goroutine while the render loop reads with Get.
type RingBuffer struct {
	sync.RWMutex
	buf    []float64
	index  int
	filled int
}

// NewRingBuffer creates a new ring buffer with the given size.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]float64, size)}
}

// Cap is the number of values the buffer holds.
func (r *RingBuffer) Cap() int {
	return len(r.buf)
}

// Len is the number of values pushed so far, saturating at Cap.
func (r *RingBuffer) Len() int {
	r.RLock()
	defer r.RUnlock()
	return r.filled
}

// Reset zeroes the buffer and forgets how much of it was filled.
func (r *RingBuffer) Reset() {
	r.Lock()
	defer r.Unlock()
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.index = 0
	r.filled = 0
}

// Push data onto the ring buffer.
func (r *RingBuffer) Push(data ...float64) {
	if len(data) > len(r.buf) {
		panic("cant push data longer than size of buffer")
	}

	r.Lock()
	defer r.Unlock()

	wrap := false
	en := r.index + len(data)
	if en > len(r.buf) {
		en = len(r.buf)
		wrap = true
	}
	for i := r.index; i < en; i++ {
		r.buf[i] = data[i-r.index]
	}
	if wrap {
		os := len(r.buf) - r.index
		for i := 0; i < len(data)-os; i++ {
			r.buf[i] = data[i+os]
		}
	}

	r.index = (r.index + len(data)) % len(r.buf)
	r.filled += len(data)
	if r.filled > len(r.buf) {
		r.filled = len(r.buf)
	}
}

// Get the most recent N data points from the buffer.
func (r *RingBuffer) Get(size int) []float64 {
	return r.GetOffset(size, 0)
}

// Recent returns up to the last N values that were actually pushed, oldest first.
func (r *RingBuffer) Recent(size int) []float64 {
	n := r.Len()
	if size > n {
		size = n
	}
	return r.Get(size)
}

// GetOffset gets the most recent N data points from the buffer, offset minus M samples.
func (r *RingBuffer) GetOffset(size, offset int) []float64 {
	if size > len(r.buf) {
		panic("cant get size greater than size of buffer")
	}

	r.RLock()
	defer r.RUnlock()

	ret := make([]float64, size)

	wrap := false
	index := r.index - offset
	st := index - size
	en := index
	if st < 0 {
		st = len(r.buf) + st
		en = len(r.buf)
		wrap = true
	}
	for i := st; i < en; i++ {
		ret[i-st] = r.buf[i]
	}
	if wrap {
		for i := 0; i < index; i++ {
			ret[i+en-st] = r.buf[i]
		}
	}

	return ret
}
