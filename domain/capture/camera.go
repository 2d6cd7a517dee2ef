package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

var (
	errCameraClosed = errors.New("capture: camera closed")
	errNoFrame      = errors.New("capture: no frame available yet")
)

// CameraOptions configure a Camera.
type CameraOptions struct {
	Facing         Facing
	IdealWidth     int
	IdealHeight    int
	FrameRate      int
	SnapshotWidth  int
	SnapshotHeight int
	JPEGQuality    int
}

// Camera is the live capture acquisition strategy. It owns at most one open
// Device and serialises start, switch, snapshot and teardown.
//
// Opening a device can block (permission prompts, driver warm-up), so the lock
// is released while Open runs. A generation counter invalidates opens that were
// overtaken by a later Start, SwitchDevice, Stop or Close; such devices are
// closed immediately instead of being installed.
type Camera struct {
	mu      sync.Mutex
	opener  DeviceOpener
	opts    CameraOptions
	logger  *slog.Logger
	facing  Facing
	device  Device
	state   CameraState
	still   *CapturedImage
	lastErr error
	gen     uint64
	stats   CameraStats
}

// NewCamera constructs an idle camera. Call Start to request the device.
func NewCamera(opener DeviceOpener, opts CameraOptions, logger *slog.Logger) *Camera {
	if opts.IdealWidth <= 0 || opts.IdealHeight <= 0 {
		opts.IdealWidth, opts.IdealHeight = 1920, 1080
	}
	if opts.SnapshotWidth <= 0 || opts.SnapshotHeight <= 0 {
		opts.SnapshotWidth, opts.SnapshotHeight = 1280, 720
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 80
	}
	return &Camera{opener: opener, opts: opts, logger: logger, facing: opts.Facing, state: CameraIdle}
}

// Start requests the video input for the current facing. It is a no-op while a
// feed is already active. Denial or absence of the device moves the camera to
// CameraPermissionDenied; calling Start again retries.
func (c *Camera) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case CameraClosed:
		c.mu.Unlock()
		return errCameraClosed
	case CameraStreaming, CameraCaptured, CameraStarting:
		c.mu.Unlock()
		return nil
	}
	c.releaseLocked()
	gen := c.beginOpenLocked()
	c.mu.Unlock()
	return c.open(ctx, gen)
}

// SwitchDevice toggles between the front and rear inputs. The current handle
// is released before the opposite one is requested, and stays released if the
// new request fails.
func (c *Camera) SwitchDevice(ctx context.Context) error {
	c.mu.Lock()
	if c.state == CameraClosed {
		c.mu.Unlock()
		return errCameraClosed
	}
	c.releaseLocked()
	c.facing = c.facing.Opposite()
	gen := c.beginOpenLocked()
	c.mu.Unlock()
	if c.logger != nil {
		c.logger.Info("camera switch", "facing", c.Facing().String())
	}
	return c.open(ctx, gen)
}

func (c *Camera) beginOpenLocked() uint64 {
	c.gen++
	c.still = nil
	c.lastErr = nil
	c.state = CameraStarting
	return c.gen
}

func (c *Camera) open(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	cons := Constraints{Facing: c.facing, Width: c.opts.IdealWidth, Height: c.opts.IdealHeight, FrameRate: c.opts.FrameRate}
	c.mu.Unlock()

	dev, err := c.opener.Open(ctx, cons)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Overtaken by a newer request or teardown.
		if dev != nil {
			_ = dev.Close()
		}
		return nil
	}
	if err != nil {
		c.stats.Failures++
		c.lastErr = err
		c.state = CameraPermissionDenied
		if c.logger != nil {
			c.logger.Warn("camera open failed", "facing", cons.Facing.String(), "error", err)
		}
		return fmt.Errorf("open camera: %w", err)
	}
	c.device = dev
	c.stats.Opens++
	c.state = CameraStreaming
	if c.logger != nil {
		w, h := dev.Size()
		c.logger.Info("camera streaming", "facing", cons.Facing.String(), "width", w, "height", h)
	}
	return nil
}

// Snapshot renders the current frame to the configured raster and encodes it.
// Without an active feed it does nothing and returns ErrNotStreaming.
func (c *Camera) Snapshot() (*CapturedImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CameraStreaming || c.device == nil {
		return nil, ErrNotStreaming
	}
	frame, ok := c.device.Frame()
	if !ok || frame == nil {
		return nil, errNoFrame
	}
	data, raster, err := EncodeSnapshot(frame, c.opts.SnapshotWidth, c.opts.SnapshotHeight, c.opts.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	img := NewCapturedImage(data, SnapshotContentType, DefaultFilename, raster)
	c.still = img
	c.state = CameraCaptured
	c.stats.Snapshots++
	if c.logger != nil {
		c.logger.Debug("snapshot taken", "id", img.ID(), "size", humanize.Bytes(uint64(img.Size())))
	}
	return img, nil
}

// Retake discards the held snapshot and resumes the live preview without
// requesting the device again.
func (c *Camera) Retake() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CameraCaptured {
		return
	}
	c.still = nil
	c.state = CameraStreaming
}

// Confirm hands over the held snapshot and clears it.
func (c *Camera) Confirm() (*CapturedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CameraCaptured || c.still == nil {
		return nil, false
	}
	img := c.still
	c.still = nil
	c.state = CameraStreaming
	return img, true
}

// Stop releases the device and returns to idle; Start may be called again.
func (c *Camera) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CameraClosed {
		return
	}
	c.gen++
	c.releaseLocked()
	c.still = nil
	c.state = CameraIdle
}

// Close releases the device for good. It is idempotent.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CameraClosed {
		return nil
	}
	c.gen++
	err := c.releaseLocked()
	c.still = nil
	c.state = CameraClosed
	return err
}

func (c *Camera) releaseLocked() error {
	if c.device == nil {
		return nil
	}
	err := c.device.Close()
	c.device = nil
	c.stats.Releases++
	if err != nil && c.logger != nil {
		c.logger.Error("camera release", "error", err)
	}
	return err
}

// Frame returns what the preview should show: the held still when captured,
// else the latest live frame.
func (c *Camera) Frame() (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case CameraCaptured:
		if c.still != nil {
			return c.still.Preview(), true
		}
	case CameraStreaming:
		if c.device != nil {
			return c.device.Frame()
		}
	}
	return nil, false
}

func (c *Camera) State() CameraState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Camera) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// LastError is the error of the most recent failed open, if any.
func (c *Camera) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Camera) Stats() CameraStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
