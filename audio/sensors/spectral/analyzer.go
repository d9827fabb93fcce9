// Package spectral turns windows of time domain audio into normalized band levels.
package spectral

import (
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/peragwin/vuzicshader/audio"
	"github.com/peragwin/vuzicshader/audio/fft"
	"github.com/peragwin/vuzicshader/audio/util"
)

// Frame is one analysis result. Every field is in [0,1] except Balance, which runs
// from -1 (all left) to +1 (all right). A Frame is never mutated after Analyze returns it.
type Frame struct {
	Bass, Mid, Treble, Volume float64

	// Bands is the mean of Left and Right.
	Bands   []float64
	Left    []float64
	Right   []float64
	Balance []float64
}

// Zero returns an all zero Frame with @bands measured bands.
func Zero(bands int) Frame {
	return Frame{
		Bands:   make([]float64, bands),
		Left:    make([]float64, bands),
		Right:   make([]float64, bands),
		Balance: make([]float64, bands),
	}
}

// channel keeps the per channel smoothing state.
type channel struct {
	raw      []float64
	smoothed *mat.VecDense
	levels   []float64
}

// stage is everything that depends on the FFT size and sample rate.
type stage struct {
	size       int
	sampleRate float64
	proc       *fft.Processor
	bucketer   *util.Bucketer
	bass       util.BinRange
	mid        util.BinRange
	treble     util.BinRange
	channels   [2]*channel
}

// Analyzer turns audio samples into frames. It is not safe for concurrent use; the scheduler
// calls it once per frame.
type Analyzer struct {
	cfg     Config
	stages  map[int]*stage
	current *stage
	pregain *util.PreGain
}

// New creates an Analyzer. Missing fields fall back to DefaultConfig.
func New(cfg *Config) *Analyzer {
	c := *DefaultConfig()
	if cfg != nil {
		c = *cfg
		def := DefaultConfig()
		if c.Bands <= 0 {
			c.Bands = def.Bands
		}
		if c.Scale == nil {
			c.Scale = def.Scale
		}
		if !fft.PowerOf2(c.FFTSize) {
			c.FFTSize = def.FFTSize
		}
		if !fft.PowerOf2(c.MinFFTSize) || c.MinFFTSize > c.FFTSize {
			c.MinFFTSize = c.FFTSize
		}
		if c.MaxDecibels <= c.MinDecibels {
			c.MinDecibels, c.MaxDecibels = def.MinDecibels, def.MaxDecibels
		}
		if c.Smoothing < 0 || c.Smoothing >= 1 {
			c.Smoothing = def.Smoothing
		}
	}
	a := &Analyzer{
		cfg:    c,
		stages: make(map[int]*stage),
	}
	if c.AutoGain {
		a.pregain = util.NewPreGain(util.DefaultPreGainParams)
	}
	return a
}

// Bands is the number of measured bands in every Frame.
func (a *Analyzer) Bands() int {
	return a.cfg.Bands
}

// FFTSize reports the transform size for the given quality scalar.
func (a *Analyzer) FFTSize(quality float64) int {
	if quality > 1 || math.IsNaN(quality) {
		quality = 1
	}
	size := fft.NextPowerOf2(int(quality * float64(a.cfg.FFTSize)))
	if size < a.cfg.MinFFTSize {
		size = a.cfg.MinFFTSize
	}
	if size > a.cfg.FFTSize {
		size = a.cfg.FFTSize
	}
	return size
}

// Reset forgets all smoothing state, for example between tracks.
func (a *Analyzer) Reset() {
	for _, st := range a.stages {
		st.reset()
	}
	if a.pregain != nil {
		a.pregain.Reset()
	}
}

// Analyze measures @s. Silent or missing audio yields an all zero Frame. Non-finite
// samples are read as 0.
func (a *Analyzer) Analyze(s audio.Sample, quality float64) Frame {
	s.Left = sanitize(s.Left)
	s.Right = sanitize(s.Right)
	if len(s.Left) == 0 || s.SampleRate <= 0 || a.silent(s) {
		a.Reset()
		return Zero(a.cfg.Bands)
	}

	st := a.stage(a.FFTSize(quality), s.SampleRate)
	if st != a.current {
		// the bins mean something else at a new size, so start over
		st.reset()
		a.current = st
	}

	left := a.gain(s.Left)
	right := left
	if s.Stereo() {
		right = a.gain(s.Right)
	}
	st.measure(st.channels[0], left, &a.cfg)
	if s.Stereo() {
		st.measure(st.channels[1], right, &a.cfg)
	} else {
		st.channels[1].copyFrom(st.channels[0])
	}

	f := Zero(a.cfg.Bands)
	l, r := st.channels[0], st.channels[1]
	st.bucketer.BucketInto(f.Left, l.levels)
	st.bucketer.BucketInto(f.Right, r.levels)
	for i := range f.Bands {
		f.Bands[i] = (f.Left[i] + f.Right[i]) / 2
		if sum := f.Left[i] + f.Right[i]; sum > 1e-6 {
			f.Balance[i] = (f.Right[i] - f.Left[i]) / sum
		}
	}
	f.Bass = (meanRange(l.levels, st.bass) + meanRange(r.levels, st.bass)) / 2
	f.Mid = (meanRange(l.levels, st.mid) + meanRange(r.levels, st.mid)) / 2
	f.Treble = (meanRange(l.levels, st.treble) + meanRange(r.levels, st.treble)) / 2
	f.Volume = clamp((rms(s.Left)+rms(s.Right))/volumeDivisor(s)*math.Sqrt2, 0, 1)

	if glog.V(3) {
		glog.Infof("spectral: fft=%d bass=%.3f mid=%.3f treble=%.3f vol=%.3f",
			st.size, f.Bass, f.Mid, f.Treble, f.Volume)
	}
	return f
}

func (a *Analyzer) silent(s audio.Sample) bool {
	peak := math.Max(floats.Max(s.Left), -floats.Min(s.Left))
	if s.Stereo() {
		peak = math.Max(peak, math.Max(floats.Max(s.Right), -floats.Min(s.Right)))
	}
	return peak < a.cfg.SilenceFloor
}

func (a *Analyzer) gain(x []float64) []float64 {
	if a.pregain == nil {
		return x
	}
	y := make([]float64, len(x))
	copy(y, x)
	a.pregain.Apply(y)
	return y
}

func (a *Analyzer) stage(size int, sampleRate float64) *stage {
	key := size
	st, ok := a.stages[key]
	if ok && st.sampleRate == sampleRate {
		return st
	}
	proc, err := fft.NewProcessor(size)
	if err != nil {
		// sizes are always powers of 2 here
		panic(err)
	}
	bins := proc.Bins()
	binWidth := sampleRate / 2 / float64(bins)
	st = &stage{
		size:       size,
		sampleRate: sampleRate,
		proc:       proc,
		bucketer: util.NewBucketer(a.cfg.Scale, a.cfg.Bands, bins, sampleRate,
			a.cfg.MinFrequency, a.cfg.MaxFrequency),
		bass:   binRange(a.cfg.Bass, binWidth, bins),
		mid:    binRange(a.cfg.Mid, binWidth, bins),
		treble: binRange(a.cfg.Treble, binWidth, bins),
	}
	for i := range st.channels {
		st.channels[i] = &channel{
			raw:      make([]float64, bins),
			smoothed: mat.NewVecDense(bins, nil),
			levels:   make([]float64, bins),
		}
	}
	a.stages[key] = st
	glog.V(2).Infof("spectral: new stage fft=%d rate=%.0f bins=%d", size, sampleRate, bins)
	return st
}

func (st *stage) reset() {
	for _, ch := range st.channels {
		ch.smoothed.Zero()
		for i := range ch.levels {
			ch.levels[i] = 0
		}
	}
}

// measure runs the FFT, smooths the magnitudes against the previous frame, and maps
// them onto [0,1] through the decibel window.
func (st *stage) measure(ch *channel, x []float64, cfg *Config) {
	st.proc.Magnitudes(ch.raw, x)

	cur := mat.NewVecDense(len(ch.raw), ch.raw)
	ch.smoothed.ScaleVec(cfg.Smoothing, ch.smoothed)
	ch.smoothed.AddScaledVec(ch.smoothed, 1-cfg.Smoothing, cur)

	span := cfg.MaxDecibels - cfg.MinDecibels
	for i := range ch.levels {
		m := ch.smoothed.AtVec(i)
		if m <= 0 {
			ch.levels[i] = 0
			continue
		}
		db := 20 * math.Log10(m)
		ch.levels[i] = clamp((db-cfg.MinDecibels)/span, 0, 1)
	}
}

func (ch *channel) copyFrom(o *channel) {
	ch.smoothed.CopyVec(o.smoothed)
	copy(ch.levels, o.levels)
}

func binRange(r Range, binWidth float64, bins int) util.BinRange {
	lo := int(math.Floor(r.Low / binWidth))
	hi := int(math.Ceil(r.High / binWidth))
	if lo < 0 {
		lo = 0
	}
	if hi > bins {
		hi = bins
	}
	if lo >= hi {
		lo = hi - 1
	}
	return util.BinRange{Lo: lo, Hi: hi}
}

func meanRange(x []float64, r util.BinRange) float64 {
	if r.Hi <= r.Lo {
		return 0
	}
	return floats.Sum(x[r.Lo:r.Hi]) / float64(r.Hi-r.Lo)
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

func volumeDivisor(s audio.Sample) float64 {
	if s.Stereo() {
		return 2
	}
	return 1
}

// sanitize returns @x, or a copy with every NaN or Inf replaced by 0.
func sanitize(x []float64) []float64 {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			y := make([]float64, len(x))
			copy(y, x)
			for j := i; j < len(y); j++ {
				if math.IsNaN(y[j]) || math.IsInf(y[j], 0) {
					y[j] = 0
				}
			}
			return y
		}
	}
	return x
}

// clamp maps NaN to @lo.
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
