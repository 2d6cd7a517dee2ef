package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/leaf-health-go/domain/diagnosis"
	"github.com/soocke/leaf-health-go/domain/scan"
)

// FailureTitle heads the blocking notice for a failed prediction.
const FailureTitle = "Prediction failed"

// StateView switches between the capture, loading and result panes.
type StateView interface {
	ShowCapture()
	ShowLoading(message string)
	ShowResult(preview image.Image, d diagnosis.Descriptor)
	Notice(title, message string)
}

// StatePresenter receives controller transitions and failures from the
// controller goroutine and reflects them on the Tk tick.
type StatePresenter struct {
	view   StateView
	logger *slog.Logger

	mu       sync.Mutex
	pending  []scan.State
	failures []error

	shown   bool
	latest  scan.Phase
	imageID string
}

func NewStatePresenter(view StateView, logger *slog.Logger) *StatePresenter {
	return &StatePresenter{view: view, logger: logger}
}

// OnState queues a transitioned state from the controller listener.
//
// The latest queued state will be reflected on the next Tick.
func (p *StatePresenter) OnState(prev, next scan.State) {
	if p == nil || next == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// OnFailure queues a blocking notice for a failed prediction.
func (p *StatePresenter) OnFailure(err error) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.failures = append(p.failures, err)
	p.mu.Unlock()
}

// Tick renders the most recent queued state, then any failure notices.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	var last scan.State
	if n := len(p.pending); n > 0 {
		last = p.pending[n-1]
		p.pending = p.pending[:0]
	}
	failures := p.failures
	p.failures = nil
	p.mu.Unlock()

	if !p.shown && last == nil {
		last = scan.Capturing{}
	}
	if last != nil {
		p.render(last)
	}
	for _, err := range failures {
		if p.logger != nil {
			p.logger.Info("prediction failure shown", "error", err)
		}
		p.view.Notice(FailureTitle, diagnosis.FailureNotice)
	}
}

func (p *StatePresenter) render(s scan.State) {
	id := ""
	switch st := s.(type) {
	case scan.Submitting:
		id = st.Image.ID()
	case scan.Showing:
		id = st.Image.ID()
	}
	if p.shown && s.Phase() == p.latest && id == p.imageID {
		return
	}
	p.shown, p.latest, p.imageID = true, s.Phase(), id
	switch st := s.(type) {
	case scan.Capturing:
		p.view.ShowCapture()
	case scan.Submitting:
		p.view.ShowLoading(diagnosis.LoadingMessage)
	case scan.Showing:
		var preview image.Image
		if st.Image != nil {
			preview = st.Image.Preview()
		}
		p.view.ShowResult(preview, diagnosis.Describe(st.Result))
	}
}
