package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Capture  *CapturePresenter
	State    *StatePresenter
	Preview  *PreviewPresenter
	Loading  *LoadingPresenter
	Backend  *BackendWatcher
	Schedule func()
}

func NewLoop(capture *CapturePresenter, state *StatePresenter, preview *PreviewPresenter, loading *LoadingPresenter, schedule func()) *Loop {
	return &Loop{Capture: capture, State: state, Preview: preview, Loading: loading, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// State first so panes exist before capture and preview update them.
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Capture != nil {
		l.Capture.Tick(now)
	}
	if l.Loading != nil {
		l.Loading.Tick(now)
	}
	if l.Backend != nil {
		l.Backend.Tick(now)
	}
	if l.Preview != nil {
		l.Preview.ProcessFrame(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
