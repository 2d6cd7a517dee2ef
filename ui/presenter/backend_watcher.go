package presenter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/leaf-health-go/domain/scan"
)

// BackendStatusView shows whether the prediction service answers.
type BackendStatusView interface {
	SetBackendStatus(online bool, detail string)
}

// BackendWatcher polls the service health endpoint while the user is
// capturing, so an unreachable backend is visible before a scan is submitted.
// It starts and stops from controller transitions.
type BackendWatcher struct {
	Check    func(ctx context.Context) error
	View     BackendStatusView
	Logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	done    chan struct{}
	running atomic.Bool

	// last probe outcome: 0 unknown, 1 online, 2 offline
	status   atomic.Int32
	detail   atomic.Value // string
	reported int32
}

// NewBackendWatcher constructs a watcher polling every interval (default 5s).
func NewBackendWatcher(check func(ctx context.Context) error, view BackendStatusView, logger *slog.Logger, interval time.Duration) *BackendWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &BackendWatcher{Check: check, View: view, Logger: logger, interval: interval, timeout: 2 * time.Second}
}

// OnState should be called from a controller listener. Polling runs only in
// Capturing.
func (w *BackendWatcher) OnState(prev, next scan.State) {
	if w == nil || next == nil {
		return
	}
	if next.Phase() == scan.PhaseCapturing {
		w.Start()
		return
	}
	w.Stop()
}

// Start begins polling immediately. Idempotent.
func (w *BackendWatcher) Start() {
	if w == nil || w.Check == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running.Load() {
		return
	}
	w.done = make(chan struct{})
	w.running.Store(true)
	go w.loop(w.done)
}

// Stop halts polling. Idempotent.
func (w *BackendWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running.Load() {
		return
	}
	close(w.done)
	w.running.Store(false)
}

func (w *BackendWatcher) loop(done chan struct{}) {
	defer recoverLog(w.Logger, "backend watcher panic")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.poll()
	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-done:
			return
		}
	}
}

func (w *BackendWatcher) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	err := w.Check(ctx)
	next := int32(1)
	detail := "online"
	if err != nil {
		next, detail = 2, err.Error()
	}
	w.detail.Store(detail)
	if prev := w.status.Swap(next); prev != next && w.Logger != nil {
		w.Logger.Info("backend status", "online", next == 1, "detail", detail)
	}
}

// Online reports the last probe outcome; known is false before the first probe.
func (w *BackendWatcher) Online() (online, known bool) {
	if w == nil {
		return false, false
	}
	s := w.status.Load()
	return s == 1, s != 0
}

// Tick pushes status changes to the view. Call from the UI thread.
func (w *BackendWatcher) Tick(now time.Time) {
	if w == nil || w.View == nil {
		return
	}
	s := w.status.Load()
	if s == 0 || s == w.reported {
		return
	}
	w.reported = s
	detail, _ := w.detail.Load().(string)
	w.View.SetBackendStatus(s == 1, detail)
}
