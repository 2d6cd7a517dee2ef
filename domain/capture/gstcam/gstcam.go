// Package gstcam opens V4L2 cameras through a GStreamer pipeline:
//
//	v4l2src → videoconvert → videoscale → videorate → capsfilter(RGBA) → appsink
//
// The appsink keeps only the newest buffer; each sample is copied into a
// heap-owned *image.RGBA published through an atomic slot.
package gstcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/soocke/leaf-health-go/domain/capture"
)

const startTimeout = 5 * time.Second

var initOnce sync.Once

// Opener maps facing preferences to device nodes and builds one pipeline per Open.
type Opener struct {
	FrontDevice string
	RearDevice  string
	Logger      *slog.Logger
}

// NewOpener returns an Opener for the given device nodes.
func NewOpener(front, rear string, logger *slog.Logger) *Opener {
	return &Opener{FrontDevice: front, RearDevice: rear, Logger: logger}
}

func (o *Opener) devicePath(f capture.Facing) string {
	if f == capture.FacingUser {
		return o.FrontDevice
	}
	return o.RearDevice
}

// Open probes the node, builds the pipeline and waits until it plays or fails.
func (o *Opener) Open(ctx context.Context, c capture.Constraints) (capture.Device, error) {
	path := o.devicePath(c.Facing)
	if err := capture.ProbeDevice(path); err != nil {
		return nil, err
	}
	initOnce.Do(func() { gst.Init(nil) })

	d := &device{path: path, width: c.Width, height: c.Height, logger: o.Logger}
	if err := d.build(c); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := d.play(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

type device struct {
	path     string
	width    int
	height   int
	logger   *slog.Logger
	pipeline *gst.Pipeline
	sink     *app.Sink
	latest   atomic.Pointer[image.RGBA]
	frames   atomic.Uint64
	closed   atomic.Bool
}

func (d *device) build(c capture.Constraints) error {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("gstcam: create pipeline: %w", err)
	}
	d.pipeline = pipeline

	src, err := gst.NewElement("v4l2src")
	if err != nil {
		return fmt.Errorf("gstcam: create v4l2src: %w", err)
	}
	src.SetProperty("device", d.path)

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("gstcam: create videoconvert: %w", err)
	}
	scale, err := gst.NewElement("videoscale")
	if err != nil {
		return fmt.Errorf("gstcam: create videoscale: %w", err)
	}
	rate, err := gst.NewElement("videorate")
	if err != nil {
		return fmt.Errorf("gstcam: create videorate: %w", err)
	}
	rate.SetProperty("drop-only", true)

	filter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("gstcam: create capsfilter: %w", err)
	}
	fps := c.FrameRate
	if fps <= 0 {
		fps = 15
	}
	caps := fmt.Sprintf("video/x-raw,format=RGBA,width=%d,height=%d,framerate=%d/1", c.Width, c.Height, fps)
	filter.SetProperty("caps", gst.NewCapsFromString(caps))

	sink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("gstcam: create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 1)
	sink.SetProperty("drop", true)
	d.sink = sink

	pipeline.AddMany(src, convert, scale, rate, filter, sink.Element)
	if err := gst.ElementLinkMany(src, convert, scale, rate, filter, sink.Element); err != nil {
		return fmt.Errorf("gstcam: link pipeline: %w", err)
	}

	sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(s *app.Sink) gst.FlowReturn { return d.onSample(s) },
	})
	return nil
}

func (d *device) onSample(s *app.Sink) gst.FlowReturn {
	sample := s.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}
	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	want := d.width * d.height * 4
	if len(data) < want {
		buffer.Unmap()
		return gst.FlowOK
	}
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	copy(img.Pix, data[:want])
	buffer.Unmap()
	d.latest.Store(img)
	d.frames.Add(1)
	return gst.FlowOK
}

func (d *device) play(ctx context.Context) error {
	if err := d.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("gstcam: start pipeline: %w", err)
	}
	bus := d.pipeline.GetPipelineBus()
	deadline := time.Now().Add(startTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageError:
			return classify(d.path, msg.ParseError())
		case gst.MessageStateChanged:
			if msg.Source() != d.pipeline.GetName() {
				continue
			}
			_, next := msg.ParseStateChanged()
			if next == gst.StatePlaying {
				if d.logger != nil {
					d.logger.Info("gstcam playing", "device", d.path, "width", d.width, "height", d.height)
				}
				return nil
			}
		}
	}
	return fmt.Errorf("gstcam: %s did not start within %s", d.path, startTimeout)
}

func classify(path string, gerr *gst.GError) error {
	if gerr == nil {
		return fmt.Errorf("gstcam: %s: unknown pipeline error", path)
	}
	msg := strings.ToLower(gerr.Error())
	switch {
	case strings.Contains(msg, "permission denied"):
		return fmt.Errorf("%s: %w", path, capture.ErrPermissionDenied)
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "cannot identify device"):
		return fmt.Errorf("%s: %w", path, capture.ErrNoDevice)
	default:
		return fmt.Errorf("gstcam: %s: %w", path, errors.New(gerr.Error()))
	}
}

func (d *device) Frame() (image.Image, bool) {
	img := d.latest.Load()
	if img == nil {
		return nil, false
	}
	return img, true
}

func (d *device) Size() (int, int) { return d.width, d.height }

// Close sets the pipeline to NULL, which releases the V4L2 node.
func (d *device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if d.pipeline == nil {
		return nil
	}
	if err := d.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("gstcam: stop pipeline: %w", err)
	}
	if d.logger != nil {
		d.logger.Debug("gstcam released", "device", d.path, "frames", d.frames.Load())
	}
	return nil
}
