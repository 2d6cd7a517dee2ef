// Package screencam is a video input backed by screen grabs. It serves as the
// camera on machines without a V4L2 device, e.g. pointing at a leaf photo shown
// on another window during demos.
package screencam

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vova616/screenshot"

	"github.com/soocke/leaf-health-go/domain/capture"
)

const statsLogInterval = 5 * time.Second

// GrabFunc returns one frame. A nil region means the whole screen.
type GrabFunc func(region *image.Rectangle) (*image.RGBA, error)

// Grab captures the active monitor, or region when non-nil.
func Grab(region *image.Rectangle) (*image.RGBA, error) {
	if region != nil && !region.Empty() {
		return screenshot.CaptureRect(*region)
	}
	return screenshot.CaptureScreen()
}

// Opener starts one grab loop per Open. Facing is ignored since a screen has
// only one side.
type Opener struct {
	Region func() *image.Rectangle
	Logger *slog.Logger
	grab   GrabFunc
}

// NewOpener returns an Opener grabbing the screen (or region when set).
func NewOpener(region func() *image.Rectangle, logger *slog.Logger) *Opener {
	return &Opener{Region: region, Logger: logger, grab: Grab}
}

// Stats summarises grab loop behaviour.
type Stats struct {
	Captures   uint64
	Skipped    uint64
	AvgCapture time.Duration
	Sequence   uint64
}

// Open grabs one frame synchronously so a broken display fails the open, then
// keeps grabbing at the requested frame rate until Close.
func (o *Opener) Open(ctx context.Context, c capture.Constraints) (capture.Device, error) {
	grab := o.grab
	if grab == nil {
		grab = Grab
	}
	d := &device{grab: grab, region: o.Region, logger: o.Logger, stop: make(chan struct{})}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.grabOnce() {
		return nil, errors.Join(capture.ErrNoDevice, d.lastErr())
	}
	interval := time.Second / 15
	if c.FrameRate > 0 {
		interval = time.Second / time.Duration(c.FrameRate)
	}
	d.wg.Add(1)
	go d.loop(interval)
	return d, nil
}

type device struct {
	grab     GrabFunc
	region   func() *image.Rectangle
	logger   *slog.Logger
	latest   atomic.Pointer[image.RGBA]
	errMu    sync.Mutex
	err      error
	captures atomic.Uint64
	skipped  atomic.Uint64
	nanos    atomic.Uint64
	stop     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func (d *device) grabOnce() bool {
	var r *image.Rectangle
	if d.region != nil {
		r = d.region()
	}
	start := time.Now()
	img, err := d.grab(r)
	if err != nil || img == nil {
		d.errMu.Lock()
		d.err = err
		d.errMu.Unlock()
		d.skipped.Add(1)
		return false
	}
	d.nanos.Add(uint64(time.Since(start).Nanoseconds()))
	d.captures.Add(1)
	d.latest.Store(img)
	return true
}

func (d *device) lastErr() error {
	d.errMu.Lock()
	defer d.errMu.Unlock()
	return d.err
}

func (d *device) loop(interval time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(statsLogInterval)
	defer logTicker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			if !d.grabOnce() && d.logger != nil {
				d.logger.Error("screen grab", "error", d.lastErr())
			}
		case <-logTicker.C:
			if d.logger != nil {
				s := d.Stats()
				d.logger.Debug("screencam.stats", "captures", s.Captures, "skipped", s.Skipped, "avg_capture", s.AvgCapture)
			}
		}
	}
}

func (d *device) Stats() Stats {
	captures := d.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(d.nanos.Load() / captures)
	}
	return Stats{Captures: captures, Skipped: d.skipped.Load(), AvgCapture: avg, Sequence: captures}
}

func (d *device) Frame() (image.Image, bool) {
	img := d.latest.Load()
	if img == nil {
		return nil, false
	}
	return img, true
}

func (d *device) Size() (int, int) {
	img := d.latest.Load()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func (d *device) Close() error {
	d.once.Do(func() { close(d.stop) })
	d.wg.Wait()
	return nil
}
