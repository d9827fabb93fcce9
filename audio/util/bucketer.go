package util

import (
	"math"
)

// Scale maps frequencies onto a perceptual axis and back.
type Scale interface {
	To(float64) float64
	From(float64) float64
}

type melScale struct{}

// MelScale spaces buckets evenly in mels.
var MelScale Scale = melScale{}

func (melScale) To(val float64) float64 {
	return 1127 * math.Log(1+val/700)
}

func (melScale) From(val float64) float64 {
	return 700 * (math.Exp(val/1127.0) - 1)
}

type logScale2 struct{}

// LogScale2 spaces buckets evenly in octaves.
var LogScale2 Scale = logScale2{}

func (logScale2) To(val float64) float64 {
	if val < 1 {
		val = 1
	}
	return math.Log2(val)
}

func (logScale2) From(val float64) float64 {
	return math.Exp2(val)
}

// BinRange is the half open range [Lo, Hi) of spectrum bins that make up one bucket.
type BinRange struct {
	Lo, Hi int
}

// Bucketer puts the spectrum into N buckets using a perceptual frequency scale. Bucket
// widths grow with frequency, and every bucket owns at least one bin.
type Bucketer struct {
	Buckets int
	Size    int
	Scale   Scale

	ranges []BinRange
}

// NewBucketer creates a Bucketer for a magnitude spectrum of @bins values spanning
// 0 .. sampleRate/2, splitting [fMin, fMax] into @buckets ranges.
func NewBucketer(scale Scale, buckets, bins int, sampleRate, fMin, fMax float64) *Bucketer {
	nyquist := sampleRate / 2
	if fMax > nyquist {
		fMax = nyquist
	}
	if fMin <= 0 {
		fMin = 1
	}
	binWidth := nyquist / float64(bins)

	sMin := scale.To(fMin)
	sMax := scale.To(fMax)
	space := (sMax - sMin) / float64(buckets)

	ranges := make([]BinRange, buckets)
	prev := int(math.Floor(fMin / binWidth))
	for i := range ranges {
		edge := scale.From(sMin + float64(i+1)*space)
		hi := int(math.Ceil(edge / binWidth))
		lo := prev
		if hi <= lo {
			hi = lo + 1
		}
		ranges[i] = BinRange{Lo: lo, Hi: hi}
		prev = hi
	}
	// squeezing the top buckets keeps every range non-empty even when there are
	// barely more bins than buckets
	for i := len(ranges) - 1; i >= 0; i-- {
		limit := bins - (len(ranges) - 1 - i)
		if ranges[i].Hi > limit {
			ranges[i].Hi = limit
		}
		if ranges[i].Lo >= ranges[i].Hi {
			ranges[i].Lo = ranges[i].Hi - 1
		}
		if i > 0 && ranges[i-1].Hi > ranges[i].Lo {
			ranges[i-1].Hi = ranges[i].Lo
		}
	}
	return &Bucketer{
		Buckets: buckets,
		Size:    bins,
		Scale:   scale,
		ranges:  ranges,
	}
}

// Ranges returns the bin range of each bucket.
func (b *Bucketer) Ranges() []BinRange {
	out := make([]BinRange, len(b.ranges))
	copy(out, b.ranges)
	return out
}

// Bucket averages the bins of each bucket into a new slice.
func (b *Bucketer) Bucket(frame []float64) []float64 {
	return b.BucketInto(make([]float64, b.Buckets), frame)
}

// BucketInto averages the bins of each bucket into dst. Bins missing from a short frame
// count as zero.
func (b *Bucketer) BucketInto(dst, frame []float64) []float64 {
	for i, r := range b.ranges {
		var sum float64
		for j := r.Lo; j < r.Hi && j < len(frame); j++ {
			sum += frame[j]
		}
		dst[i] = sum / float64(r.Hi-r.Lo)
	}
	return dst
}
