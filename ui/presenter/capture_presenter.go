package presenter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/ui/model"
)

// Notice texts shown by the capture pane.
const (
	NoticeCameraTitle  = "Camera Access Required"
	NoticeCameraDenied = "Please allow camera access to take photos of your cocoa leaves"
	NoticeFileTitle    = "Unable to open image"
)

// CaptureModel provides acquisition mode and camera enabled state.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool)
	Mode() model.Mode
	SetMode(model.Mode) bool
}

// CameraControl narrows what the presenter needs from capture.Camera.
type CameraControl interface {
	Start(ctx context.Context) error
	Stop()
	SwitchDevice(ctx context.Context) error
	Snapshot() (*capture.CapturedImage, error)
	Retake()
	Confirm() (*capture.CapturedImage, bool)
	State() capture.CameraState
}

// FileSource is the picker acquisition path.
type FileSource interface {
	SelectPath(ctx context.Context, path string) (*capture.CapturedImage, bool, error)
}

// ImageSink receives exactly one image per user action.
type ImageSink interface {
	Acquire(img *capture.CapturedImage)
}

// CaptureView updates UI elements affected by acquisition.
type CaptureView interface {
	SetCameraState(state capture.CameraState, enabled bool)
	SetMode(model.Mode)
	PreviewReset()
	Notice(title, message string)
}

type notice struct{ title, message string }

// CapturePresenter owns presentation logic for both acquisition strategies.
// Device requests and file decoding block, so they run on worker goroutines;
// their outcomes are queued and reflected on the next Tick.
type CapturePresenter struct {
	model  CaptureModel
	camera CameraControl
	files  FileSource
	sink   ImageSink
	view   CaptureView
	logger *slog.Logger
	ctx    context.Context

	mu        sync.Mutex
	pending   []notice
	lastState capture.CameraState
	lastOn    bool
	synced    bool
	wg        sync.WaitGroup
}

func NewCapturePresenter(ctx context.Context, model CaptureModel, camera CameraControl, files FileSource, sink ImageSink, view CaptureView, logger *slog.Logger) *CapturePresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CapturePresenter{ctx: ctx, model: model, camera: camera, files: files, sink: sink, view: view, logger: logger}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.camera != nil && c.view != nil && c.sink != nil
}

// EnableCamera requests the device. Idempotent.
func (c *CapturePresenter) EnableCamera() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.model.SetEnabled(true)
	c.run("camera start", cameraNotice, func() error { return c.camera.Start(c.ctx) })
}

// RetryCamera requests the device again after a denial.
func (c *CapturePresenter) RetryCamera() {
	if !c.ready() {
		return
	}
	c.model.SetEnabled(true)
	c.run("camera retry", cameraNotice, func() error { return c.camera.Start(c.ctx) })
}

// DisableCamera releases the device and resets the preview. Idempotent.
func (c *CapturePresenter) DisableCamera() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.camera.Stop()
	c.model.SetEnabled(false)
	c.view.PreviewReset()
}

// ToggleCamera flips enabled state delegating to EnableCamera/DisableCamera.
func (c *CapturePresenter) ToggleCamera() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.DisableCamera()
		return
	}
	c.EnableCamera()
}

// SwitchCamera toggles front and rear inputs.
func (c *CapturePresenter) SwitchCamera() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.run("camera switch", cameraNotice, func() error { return c.camera.SwitchDevice(c.ctx) })
}

// TakeSnapshot freezes the current frame. Without a feed it does nothing.
func (c *CapturePresenter) TakeSnapshot() {
	if !c.ready() {
		return
	}
	img, err := c.camera.Snapshot()
	if err != nil {
		if !errors.Is(err, capture.ErrNotStreaming) && c.logger != nil {
			c.logger.Warn("snapshot failed", "error", err)
		}
		return
	}
	if c.logger != nil {
		c.logger.Debug("snapshot held", "id", img.ID())
	}
}

// Retake discards the held snapshot.
func (c *CapturePresenter) Retake() {
	if !c.ready() {
		return
	}
	c.camera.Retake()
}

// Analyze hands the held snapshot to the scan flow.
func (c *CapturePresenter) Analyze() {
	if !c.ready() {
		return
	}
	if img, ok := c.camera.Confirm(); ok {
		c.sink.Acquire(img)
	}
}

// ChooseFile selects a picked path. Non-image files are ignored silently.
func (c *CapturePresenter) ChooseFile(path string) {
	if !c.ready() || c.files == nil || path == "" {
		return
	}
	c.run("file select", fileNotice, func() error {
		img, ok, err := c.files.SelectPath(c.ctx, path)
		if err != nil {
			return err
		}
		if ok {
			c.sink.Acquire(img)
		}
		return nil
	})
}

// SetMode switches between camera and upload. Leaving camera mode releases
// the device.
func (c *CapturePresenter) SetMode(m model.Mode) {
	if !c.ready() || !c.model.SetMode(m) {
		return
	}
	if m == model.ModeUpload {
		c.DisableCamera()
	}
	c.view.SetMode(m)
}

func cameraNotice(err error) notice {
	if errors.Is(err, capture.ErrPermissionDenied) || errors.Is(err, capture.ErrNoDevice) {
		return notice{title: NoticeCameraTitle, message: NoticeCameraDenied}
	}
	return notice{title: NoticeCameraTitle, message: err.Error()}
}

func fileNotice(err error) notice { return notice{title: NoticeFileTitle, message: err.Error()} }

func (c *CapturePresenter) run(op string, toNotice func(error) notice, fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer recoverLog(c.logger, op+" panic")
		err := fn()
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		if c.logger != nil {
			c.logger.Warn(op, "error", err)
		}
		c.mu.Lock()
		c.pending = append(c.pending, toNotice(err))
		c.mu.Unlock()
	}()
}

// Tick flushes queued notices and reflects camera state changes.
func (c *CapturePresenter) Tick(now time.Time) {
	if !c.ready() {
		return
	}
	c.mu.Lock()
	queued := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, n := range queued {
		c.view.Notice(n.title, n.message)
	}
	state, on := c.camera.State(), c.model.Enabled()
	if !c.synced || state != c.lastState || on != c.lastOn {
		c.synced = true
		c.lastState, c.lastOn = state, on
		c.view.SetCameraState(state, on)
	}
}

// Wait blocks until worker goroutines finish. Used on shutdown and in tests.
func (c *CapturePresenter) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
