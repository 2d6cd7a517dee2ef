package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeDevice struct {
	frame  image.Image
	closed int
}

func (d *fakeDevice) Frame() (image.Image, bool) { return d.frame, d.frame != nil }
func (d *fakeDevice) Size() (int, int)           { return 64, 48 }
func (d *fakeDevice) Close() error               { d.closed++; return nil }

// fakeOpener hands out devices and records the requested facings.
type fakeOpener struct {
	mu      sync.Mutex
	facings []Facing
	devices []*fakeDevice
	fail    error
}

func (o *fakeOpener) Open(_ context.Context, c Constraints) (Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.facings = append(o.facings, c.Facing)
	if o.fail != nil {
		return nil, o.fail
	}
	d := &fakeDevice{frame: solidFrame(64, 48)}
	o.devices = append(o.devices, d)
	return d, nil
}

func solidFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{40, 160, 60, 255})
		}
	}
	return img
}

func newTestCamera(o DeviceOpener) *Camera {
	return NewCamera(o, CameraOptions{SnapshotWidth: 32, SnapshotHeight: 24}, discardLogger)
}

func TestCamera_StartStreamsRearByDefault(t *testing.T) {
	o := &fakeOpener{}
	c := newTestCamera(o)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.State() != CameraStreaming {
		t.Fatalf("expected streaming, got %v", c.State())
	}
	if len(o.facings) != 1 || o.facings[0] != FacingEnvironment {
		t.Fatalf("expected one rear open, got %v", o.facings)
	}
	// second Start while streaming is a no-op
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if len(o.facings) != 1 {
		t.Fatalf("start while streaming reopened device")
	}
}

func TestCamera_PermissionDeniedThenRetry(t *testing.T) {
	o := &fakeOpener{fail: ErrPermissionDenied}
	c := newTestCamera(o)
	err := c.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if c.State() != CameraPermissionDenied {
		t.Fatalf("expected permission-denied state, got %v", c.State())
	}
	if !errors.Is(c.LastError(), ErrPermissionDenied) {
		t.Fatalf("last error not recorded: %v", c.LastError())
	}
	o.fail = nil
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.State() != CameraStreaming || c.LastError() != nil {
		t.Fatalf("retry did not recover: state=%v err=%v", c.State(), c.LastError())
	}
	if st := c.Stats(); st.Failures != 1 || st.Opens != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCamera_SnapshotWithoutFeedIsNoop(t *testing.T) {
	c := newTestCamera(&fakeOpener{})
	img, err := c.Snapshot()
	if !errors.Is(err, ErrNotStreaming) || img != nil {
		t.Fatalf("expected ErrNotStreaming, got img=%v err=%v", img, err)
	}
	if c.State() != CameraIdle {
		t.Fatalf("state changed: %v", c.State())
	}
}

func TestCamera_SnapshotRetakeConfirm(t *testing.T) {
	o := &fakeOpener{}
	c := newTestCamera(o)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	img, err := c.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if img.ContentType() != "image/jpeg" || img.Filename() != DefaultFilename || img.Size() == 0 {
		t.Fatalf("unexpected snapshot %q %q %d", img.ContentType(), img.Filename(), img.Size())
	}
	if b := img.Preview().Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Fatalf("snapshot raster = %v", b)
	}
	if c.State() != CameraCaptured {
		t.Fatalf("expected captured, got %v", c.State())
	}

	c.Retake()
	if c.State() != CameraStreaming {
		t.Fatalf("retake should resume streaming, got %v", c.State())
	}
	if len(o.facings) != 1 {
		t.Fatalf("retake must not reopen device")
	}
	if _, ok := c.Confirm(); ok {
		t.Fatalf("confirm without a held snapshot should fail")
	}

	first, _ := c.Snapshot()
	got, ok := c.Confirm()
	if !ok || got.ID() != first.ID() {
		t.Fatalf("confirm returned %v %v", got, ok)
	}
	if _, ok := c.Confirm(); ok {
		t.Fatalf("snapshot handed over twice")
	}
}

func TestCamera_SwitchReleasesBeforeRequesting(t *testing.T) {
	o := &fakeOpener{}
	c := newTestCamera(o)
	_ = c.Start(context.Background())
	first := o.devices[0]
	if err := c.SwitchDevice(context.Background()); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if first.closed != 1 {
		t.Fatalf("previous device closed %d times", first.closed)
	}
	if c.Facing() != FacingUser || o.facings[1] != FacingUser {
		t.Fatalf("switch did not toggle facing: %v", o.facings)
	}

	// a failing switch leaves nothing held and still releases exactly once
	second := o.devices[1]
	o.fail = ErrNoDevice
	if err := c.SwitchDevice(context.Background()); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
	if second.closed != 1 {
		t.Fatalf("device closed %d times on failing switch", second.closed)
	}
	if st := c.Stats(); st.Releases != 2 {
		t.Fatalf("expected 2 releases, got %d", st.Releases)
	}
	if _, ok := c.Frame(); ok {
		t.Fatalf("frame available without a device")
	}
}

func TestCamera_CloseIsIdempotentAndReleases(t *testing.T) {
	o := &fakeOpener{}
	c := newTestCamera(o)
	_ = c.Start(context.Background())
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if o.devices[0].closed != 1 {
		t.Fatalf("device closed %d times", o.devices[0].closed)
	}
	if err := c.Start(context.Background()); err == nil {
		t.Fatalf("start after close should fail")
	}
}

func TestCamera_StaleOpenIsClosed(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	dev := &fakeDevice{frame: solidFrame(8, 8)}
	opener := DeviceOpenerFunc(func(ctx context.Context, c Constraints) (Device, error) {
		close(entered)
		<-release
		return dev, nil
	})
	c := newTestCamera(opener)
	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background()) }()
	<-entered
	c.Stop()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("start: %v", err)
	}
	if dev.closed != 1 {
		t.Fatalf("stale device not closed")
	}
	if c.State() != CameraIdle {
		t.Fatalf("expected idle after stop, got %v", c.State())
	}
}
