package fft

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// ErrSize is returned for FFT sizes that are not a positive power of two.
var ErrSize = errors.New("fft size must be a positive power of 2")

// Processor turns time domain frames into a normalized magnitude spectrum. A full scale
// sine lands at a magnitude of ~1 in its bin.
type Processor struct {
	Size int

	window []float64
	scale  float64
	frame  []float64
}

// NewProcessor creates a Processor for frames of @size samples using a Hamming window.
func NewProcessor(size int) (*Processor, error) {
	if !PowerOf2(size) {
		return nil, ErrSize
	}
	w := window.Hamming(size)
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return &Processor{
		Size:   size,
		window: w,
		scale:  2 / sum,
		frame:  make([]float64, size),
	}, nil
}

// Bins is the number of magnitudes produced for each frame.
func (p *Processor) Bins() int {
	return p.Size / 2
}

// Magnitudes windows the most recent Size samples of @x and writes Size/2 magnitudes to
// dst. Shorter input is zero padded at the front so the newest samples stay aligned.
func (p *Processor) Magnitudes(dst, x []float64) []float64 {
	if len(dst) < p.Bins() {
		dst = make([]float64, p.Bins())
	}
	dst = dst[:p.Bins()]

	for i := range p.frame {
		p.frame[i] = 0
	}
	if len(x) >= p.Size {
		copy(p.frame, x[len(x)-p.Size:])
	} else {
		copy(p.frame[p.Size-len(x):], x)
	}
	for i := range p.frame {
		p.frame[i] *= p.window[i]
	}

	fx := fft.FFTReal(p.frame)
	for i := range dst {
		dst[i] = cmplx.Abs(fx[i]) * p.scale
	}
	return dst
}

// PowerOf2 reports whether x is a positive power of two.
func PowerOf2(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// NextPowerOf2 returns the smallest power of two >= x.
func NextPowerOf2(x int) int {
	n := 1
	for n < x {
		n <<= 1
	}
	return n
}
