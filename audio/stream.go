package audio

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"

	"github.com/peragwin/vuzicshader/audio/util"
)

// Config represents a config that is used to open a new Stream.
type Config struct {
	// BlockSize refers to the buffer size for each block
	BlockSize int
	// Channels is the number of input channels, 1 or 2.
	Channels int
	// SampleRate is the sample rate (Fs).
	SampleRate float64
	// WindowSize is how many of the most recent samples each Pull returns.
	WindowSize int
}

// StreamSource captures audio with portaudio on its own goroutine and keeps the most
// recent samples in ring buffers, so Pull never waits on the device.
type StreamSource struct {
	cfg   Config
	left  *util.RingBuffer
	right *util.RingBuffer
	bpm   uint64
}

// NewStreamSource opens the default input device. Capture stops when ctx is cancelled.
// Device errors are reported on the returned channel.
func NewStreamSource(ctx context.Context, cfg *Config) (*StreamSource, <-chan error) {
	s := &StreamSource{
		cfg:  *cfg,
		left: util.NewRingBuffer(2 * cfg.WindowSize),
	}
	if cfg.Channels > 1 {
		s.right = util.NewRingBuffer(2 * cfg.WindowSize)
	}
	errc := make(chan error, 1)
	go s.capture(ctx, errc)
	return s, errc
}

func (s *StreamSource) capture(ctx context.Context, errc chan<- error) {
	done := ctx.Done()

	if err := portaudio.Initialize(); err != nil {
		errc <- fmt.Errorf("initializing portaudio: %w", err)
		return
	}
	defer portaudio.Terminate()

	channels := s.cfg.Channels
	if channels < 1 {
		channels = 1
	}
	in := make([]float32, s.cfg.BlockSize*channels)
	stream, err := portaudio.OpenDefaultStream(
		channels, 0, s.cfg.SampleRate, s.cfg.BlockSize, in)
	if err != nil {
		errc <- fmt.Errorf("opening stream: %w", err)
		return
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		errc <- fmt.Errorf("starting stream: %w", err)
		return
	}
	glog.Infof("audio capture started: %d channel(s) at %.0f Hz", channels, s.cfg.SampleRate)

	left := make([]float64, s.cfg.BlockSize)
	right := make([]float64, s.cfg.BlockSize)
	for {
		select {
		case <-done:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			errc <- fmt.Errorf("reading from stream: %w", err)
			return
		}

		for i := 0; i < s.cfg.BlockSize; i++ {
			left[i] = float64(in[i*channels])
			if channels > 1 {
				right[i] = float64(in[i*channels+1])
			}
		}
		s.left.Push(left...)
		if s.right != nil {
			s.right.Push(right...)
		}
	}
}

// SetTempo sets the tempo reported with each sample. Safe to call from any goroutine.
func (s *StreamSource) SetTempo(bpm float64) {
	atomic.StoreUint64(&s.bpm, math.Float64bits(bpm))
}

// Pull implements Source.
func (s *StreamSource) Pull() (Sample, bool) {
	if s.left.Len() < s.cfg.WindowSize {
		return Sample{}, false
	}
	smp := Sample{
		Left:       s.left.Get(s.cfg.WindowSize),
		SampleRate: s.cfg.SampleRate,
		BPM:        math.Float64frombits(atomic.LoadUint64(&s.bpm)),
	}
	if s.right != nil {
		smp.Right = s.right.Get(s.cfg.WindowSize)
	}
	return smp, true
}
