package model

import (
	"time"
)

// LoadingModel tracks how long the current submission has been outstanding
// and the total time spent waiting on predictions this run.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type LoadingModel struct {
	active      bool
	started     time.Time
	elapsed     time.Duration
	accumulated time.Duration
	completed   int
}

// NewLoadingModel returns a pointer to a ready-to-use LoadingModel.
func NewLoadingModel() *LoadingModel { return &LoadingModel{} }

// OnTick updates the model from whether a prediction is outstanding at now.
func (m *LoadingModel) OnTick(submitting bool, now time.Time) {
	if m == nil {
		return
	}
	if submitting {
		if !m.active { // idle -> waiting
			m.active = true
			m.started = now
			m.elapsed = 0
		}
		m.elapsed = now.Sub(m.started)
	} else if m.active { // waiting -> idle
		m.elapsed = now.Sub(m.started)
		m.accumulated += m.elapsed
		m.completed++
		m.active = false
	}
}

// Values returns the current wait and the total wait including the current one.
func (m *LoadingModel) Values() (current, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	current = m.elapsed
	total = m.accumulated
	if m.active {
		total += current
	}
	return
}

// Average returns the mean duration of completed submissions.
func (m *LoadingModel) Average() time.Duration {
	if m == nil || m.completed == 0 {
		return 0
	}
	return m.accumulated / time.Duration(m.completed)
}
