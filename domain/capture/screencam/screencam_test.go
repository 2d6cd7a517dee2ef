package screencam

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/leaf-health-go/domain/capture"
)

func TestOpenFailsWhenFirstGrabFails(t *testing.T) {
	o := &Opener{grab: func(*image.Rectangle) (*image.RGBA, error) { return nil, errors.New("no display") }}
	_, err := o.Open(context.Background(), capture.Constraints{FrameRate: 30})
	if !errors.Is(err, capture.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestDeviceServesLatestFrameUntilClosed(t *testing.T) {
	var calls atomic.Int32
	var gotRegion atomic.Bool
	region := image.Rect(0, 0, 8, 4)
	o := &Opener{
		Region: func() *image.Rectangle { return &region },
		grab: func(r *image.Rectangle) (*image.RGBA, error) {
			if r != nil && *r == region {
				gotRegion.Store(true)
			}
			calls.Add(1)
			return image.NewRGBA(region), nil
		},
	}
	dev, err := o.Open(context.Background(), capture.Constraints{FrameRate: 200})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := dev.Frame(); !ok {
		t.Fatalf("expected frame right after open")
	}
	if w, h := dev.Size(); w != 8 || h != 4 {
		t.Fatalf("size = %dx%d", w, h)
	}
	deadline := time.Now().Add(time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatalf("grab loop did not run, calls=%d", calls.Load())
	}
	if !gotRegion.Load() {
		t.Fatalf("region provider not used")
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("grab loop still running after close")
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
