package presenter

import (
	"image"
	"time"

	"github.com/soocke/leaf-health-go/domain/scan"
)

// FrameSource supplies what the live preview should show.
type FrameSource interface {
	Frame() (image.Image, bool)
}

// PhaseSource reports the controller state.
type PhaseSource interface {
	Current() scan.State
}

// PreviewView receives preview frames.
type PreviewView interface {
	UpdatePreview(img image.Image)
}

const defaultPreviewInterval = 66 * time.Millisecond

// PreviewPresenter pushes camera frames to the preview while capturing.
type PreviewPresenter struct {
	Enabled  func() bool
	Source   FrameSource
	Phase    PhaseSource
	View     PreviewView
	interval time.Duration
	last     time.Time
}

func NewPreviewPresenter(enabled func() bool, source FrameSource, phase PhaseSource, view PreviewView) *PreviewPresenter {
	return &PreviewPresenter{Enabled: enabled, Source: source, Phase: phase, View: view, interval: defaultPreviewInterval}
}

// ProcessFrame forwards the latest frame, at most once per interval.
func (p *PreviewPresenter) ProcessFrame(now time.Time) {
	if p == nil || p.Enabled == nil || p.Source == nil || p.View == nil {
		return
	}
	if !p.Enabled() {
		return
	}
	if p.Phase != nil && p.Phase.Current().Phase() != scan.PhaseCapturing {
		return
	}
	if !p.last.IsZero() && now.Sub(p.last) < p.interval {
		return
	}
	frame, ok := p.Source.Frame()
	if !ok || frame == nil {
		return
	}
	p.last = now
	p.View.UpdatePreview(frame)
}
