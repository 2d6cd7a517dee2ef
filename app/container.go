package app

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/leaf-health-go/config"
	"github.com/soocke/leaf-health-go/debug"
	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/capture/gstcam"
	"github.com/soocke/leaf-health-go/domain/capture/screencam"
	"github.com/soocke/leaf-health-go/domain/predict"
	"github.com/soocke/leaf-health-go/domain/scan"
	"github.com/soocke/leaf-health-go/ui/model"
	"github.com/soocke/leaf-health-go/ui/presenter"
	"github.com/soocke/leaf-health-go/ui/view"
)

const backendPollInterval = 5 * time.Second

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Acquire *model.AcquireModel
	Loading *model.LoadingModel

	Camera     *capture.Camera
	Files      *capture.FileSelector
	Predictor  *predict.Holder
	Controller *scan.Controller

	RootView *view.RootView
	Region   view.RegionOverlay

	// Presenters
	CapturePresenter *presenter.CapturePresenter
	StatePresenter   *presenter.StatePresenter
	PreviewPresenter *presenter.PreviewPresenter
	LoadingPresenter *presenter.LoadingPresenter
	Backend          *presenter.BackendWatcher
	Loop             *presenter.Loop

	ctx    context.Context
	cancel context.CancelFunc
}

// BuildContainer constructs all components. No device is opened until the
// user enables the camera.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	client, err := predict.NewClient(cfg.APIBaseURL, predict.NewHTTPClient(cfg.RequestTimeout()), logger)
	if err != nil {
		return nil, err
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.Acquire = &model.AcquireModel{}
	c.Loading = model.NewLoadingModel()
	c.Predictor = predict.NewHolder(client)
	c.Files = capture.NewFileSelector(cfg.MaxUploadBytes, logger)
	c.Region = view.NewRegionOverlay(cfg, cfgPath, logger)
	c.Camera = capture.NewCamera(newOpener(cfg, c.Region.ActiveRect, logger), capture.CameraOptions{
		Facing:         capture.ParseFacing(cfg.FacingMode),
		IdealWidth:     cfg.IdealWidth,
		IdealHeight:    cfg.IdealHeight,
		FrameRate:      cfg.FrameRate,
		SnapshotWidth:  cfg.SnapshotWidth,
		SnapshotHeight: cfg.SnapshotHeight,
		JPEGQuality:    cfg.JPEGQuality,
	}, logger)
	c.Controller = scan.NewController(c.Predictor, logger)

	// View
	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	// Presenters
	c.CapturePresenter = presenter.NewCapturePresenter(c.ctx, c.Acquire, c.Camera, c.Files, c.Controller, c.RootView, logger)
	c.StatePresenter = presenter.NewStatePresenter(c.RootView, logger)
	c.PreviewPresenter = presenter.NewPreviewPresenter(func() bool {
		return c.Acquire.Enabled() && c.Acquire.Mode() == model.ModeCamera
	}, c.Camera, c.Controller, c.RootView)
	c.LoadingPresenter = presenter.NewLoadingPresenter(c.Loading, c.Controller, c.RootView)
	c.Backend = presenter.NewBackendWatcher(c.Predictor.Health, c.RootView, logger, backendPollInterval)

	c.Controller.AddListener(c.StatePresenter.OnState)
	c.Controller.AddListener(c.Backend.OnState)
	c.Controller.AddFailureListener(c.StatePresenter.OnFailure)
	return c, nil
}

func newOpener(cfg *config.Config, region func() *image.Rectangle, logger *slog.Logger) capture.DeviceOpener {
	if cfg.CameraBackend == config.BackendScreen {
		return screencam.NewOpener(region, logger)
	}
	return gstcam.NewOpener(cfg.FrontDevice, cfg.RearDevice, logger)
}

// ApplyConfig swaps the prediction client after the settings window saved.
// Camera options take effect on the next start of the application.
func (c *AppContainer) ApplyConfig(cfg *config.Config) {
	client, err := predict.NewClient(cfg.APIBaseURL, predict.NewHTTPClient(cfg.RequestTimeout()), c.Logger)
	if err != nil {
		c.Logger.Error("prediction client", "error", err)
		return
	}
	prev := c.Predictor.Swap(client)
	if prev == nil || prev.BaseURL() != client.BaseURL() {
		c.Logger.Info("prediction service changed", "url", client.BaseURL())
	}
}

// StartDebug begins periodic stats logging tied to the container lifetime.
func (c *AppContainer) StartDebug(interval time.Duration) {
	debug.StartStatsLogger(c.ctx, interval, c.Logger,
		func() []any {
			st := c.Camera.Stats()
			return []any{"camera_state", c.Camera.State().String(), "camera_opens", st.Opens, "camera_releases", st.Releases, "snapshots", st.Snapshots}
		},
		func() []any {
			st := c.Controller.Stats()
			return []any{"phase", c.Controller.Current().Phase().String(), "submitted", st.Submitted, "failed", st.Failed, "discarded", st.Discarded}
		},
	)
}

// Close releases the camera and stops background work. Safe to call twice.
func (c *AppContainer) Close() {
	c.cancel()
	c.Backend.Stop()
	c.CapturePresenter.Wait()
	if err := c.Camera.Close(); err != nil {
		c.Logger.Error("camera close", "error", err)
	}
	c.Controller.Close()
}
