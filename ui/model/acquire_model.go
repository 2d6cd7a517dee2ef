package model

import (
	"sync/atomic"
)

// Mode selects the acquisition strategy shown in the capture pane.
type Mode int32

const (
	ModeCamera Mode = iota
	ModeUpload
)

func (m Mode) String() string {
	if m == ModeUpload {
		return "upload"
	}
	return "camera"
}

// AcquireModel tracks the selected acquisition mode and whether the camera is
// wanted. The zero value is camera mode, disabled, and usable.
// Concurrency-safe via atomics because UI callbacks and worker goroutines may race.
type AcquireModel struct {
	mode          atomic.Int32
	cameraEnabled atomic.Bool
}

// Mode reports the selected acquisition mode.
func (m *AcquireModel) Mode() Mode {
	if m == nil {
		return ModeCamera
	}
	return Mode(m.mode.Load())
}

// SetMode stores the mode and reports whether it changed.
func (m *AcquireModel) SetMode(mode Mode) bool {
	if m == nil {
		return false
	}
	return m.mode.Swap(int32(mode)) != int32(mode)
}

// Enabled reports whether the camera is enabled.
func (m *AcquireModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.cameraEnabled.Load()
}

// SetEnabled stores the camera enabled flag.
func (m *AcquireModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	m.cameraEnabled.Store(b)
}
