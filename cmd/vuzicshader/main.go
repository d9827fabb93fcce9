package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicshader/audio"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/control"
	"github.com/peragwin/vuzicshader/gfx"
	"github.com/peragwin/vuzicshader/render/scheduler"
)

var (
	width      = flag.Int("width", 1200, "width of window")
	height     = flag.Int("height", 800, "height of window")
	fullscreen = flag.Bool("fullscreen", false, "open the window fullscreen on the primary monitor")
	headless   = flag.Bool("headless", false, "run without initializing OpenGL display")
	frameRate  = flag.Int("frame-rate", 60, "frame rate to target when running headless")

	effect      = flag.String("effect", "", "effect to start with, overrides saved preferences")
	paletteName = flag.String("palette", "", "palette to start with, overrides saved preferences")
	prefsPath   = flag.String("prefs", "vuzicshader.json", "where preferences are kept")

	channels    = flag.Int("channels", 2, "number of input channels")
	sampleRate  = flag.Float64("sample-rate", 48000, "capture sample rate")
	blockSize   = flag.Int("block-size", 256, "capture block size")
	fftSize     = flag.Int("fft-size", 2048, "largest FFT size, used at full quality")
	bpm         = flag.Float64("bpm", 120, "tempo of the track; 0 when unknown")
	autoGain    = flag.Bool("auto-gain", false, "normalize input level before analysis")
	listDevices = flag.Bool("list-devices", false, "print the audio devices and exit")

	addr    = flag.String("addr", ":8080", "address of the tuning api")
	httpDir = flag.String("http-dir", "", "where to host static client gui files")

	broker   = flag.String("mqtt", "", "url of an mqtt broker to publish onsets to")
	entities = flag.String("entities", "entities.json", "positions onsets are published at")

	statsEvery = flag.Duration("stats", 0, "how often to log performance stats, 0 to disable")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if *listDevices {
		desc, err := audio.DescribeDevices()
		if err != nil {
			glog.Exit(err)
		}
		fmt.Println(desc)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The graphics have to be the first thing we initialize on macOS, the context is
	// bound to the main thread.
	var surface scheduler.Surface = &scheduler.NullSurface{}
	var display *gfx.Surface
	if !*headless {
		var err error
		display, err = gfx.NewSurface(&gfx.WindowConfig{
			Width: *width, Height: *height, Fullscreen: *fullscreen,
			Title: "vuzicshader", VSync: true,
		})
		if err != nil {
			glog.Exit("error creating display: ", err)
		}
		defer display.Terminate()
		surface = display
	}

	analysis := spectral.DefaultConfig()
	analysis.FFTSize = *fftSize
	analysis.AutoGain = *autoGain

	source, errc := audio.NewStreamSource(ctx, &audio.Config{
		BlockSize:  *blockSize,
		Channels:   *channels,
		SampleRate: *sampleRate,
		WindowSize: *fftSize,
	})
	source.SetTempo(*bpm)
	go func() {
		select {
		case err := <-errc:
			glog.Errorf("audio: %v", err)
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg := scheduler.DefaultConfig()
	cfg.Spectral = analysis
	cfg.Source = source
	cfg.Surface = surface
	if *broker != "" {
		noc, err := NewNocturne(ctx, *broker, *entities)
		if err != nil {
			glog.Exit("error connecting to mqtt: ", err)
		}
		defer noc.Close()
		cfg.OnOnset = noc.Bang
	}

	sch, err := scheduler.New(cfg)
	if err != nil {
		glog.Exit(err)
	}

	prefs, err := control.LoadPreferences(*prefsPath)
	if err != nil {
		glog.Warningf("ignoring preferences: %v", err)
		prefs = control.DefaultPreferences()
	}
	if *effect != "" {
		prefs.Effect = *effect
	}
	if *paletteName != "" {
		prefs.Palette = *paletteName
	}
	srv, err := control.NewServer(sch, &control.Config{PrefsPath: *prefsPath, Preferences: prefs})
	if err != nil {
		glog.Exit(err)
	}
	if err := srv.Apply(prefs); err != nil {
		glog.Warningf("preferences: %v", err)
	}

	go serve(ctx, srv)
	if *statsEvery > 0 {
		go logStats(ctx, sch, *statsEvery)
	}

	if display == nil {
		if *frameRate <= 0 {
			glog.Exitf("frame rate must be positive, got %d", *frameRate)
		}
		ticker := time.NewTicker(time.Second / time.Duration(*frameRate))
		defer ticker.Stop()
		if err := sch.Run(ctx, ticker.C); err != nil && err != context.Canceled {
			glog.Error(err)
		}
		return
	}
	renderLoop(ctx, sch, display)
}

// renderLoop ticks the scheduler on the main thread until the window closes. Buffer
// swaps wait for vsync, which paces the loop.
func renderLoop(ctx context.Context, sch *scheduler.Scheduler, display *gfx.Surface) {
	sch.Start()
	defer sch.Stop()

	idle := time.NewTicker(time.Second / 60)
	defer idle.Stop()

	last := time.Now()
	for !display.ShouldClose() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		now := time.Now()
		drew := sch.Tick(now.Sub(last).Seconds())
		last = now
		if !drew {
			// nothing was presented, keep the window responsive
			display.Window.Poll()
			<-idle.C
		}
	}
}

func serve(ctx context.Context, srv *control.Server) {
	mux := http.NewServeMux()
	mux.Handle("/api/", srv.Handler())
	if *httpDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*httpDir)))
	}
	hs := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		hs.Shutdown(shutdown)
	}()
	glog.Infof("tuning api listening on %s", *addr)
	if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		glog.Errorf("http: %v", err)
	}
}
