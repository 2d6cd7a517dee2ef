package app

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/leaf-health-go/ui/presenter"
	"github.com/soocke/leaf-health-go/ui/theme"
	"github.com/soocke/leaf-health-go/ui/view"
)

const (
	tick       = 50 * time.Millisecond
	debugEvery = 10 * time.Second
)

type app struct {
	c       *AppContainer
	afterID string
	closed  bool
}

// NewApp prepares the main window around an assembled container.
func NewApp(title string, width, height int, c *AppContainer) *app {
	a := &app{c: c}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the views, starts the tick loop and blocks in the Tk main loop.
func (a *app) Start() {
	c := a.c
	theme.InitStyles()
	cp := c.CapturePresenter
	c.RootView.Build(view.Handlers{
		ModeChanged:  cp.SetMode,
		EnableCamera: cp.EnableCamera,
		RetryCamera:  cp.RetryCamera,
		StopCamera:   cp.DisableCamera,
		Snapshot:     cp.TakeSnapshot,
		Retake:       cp.Retake,
		Analyze:      cp.Analyze,
		SwitchCamera: cp.SwitchCamera,
		ChooseFile:   cp.ChooseFile,
		NewScan:      c.Controller.NewScan,
		SelectRegion: c.Region.OpenOrFocus,
		Settings:     c.RootView.OpenSettings,
		Exit:         a.exitHandler,
	})
	c.RootView.ConfigPanel.OnApply(c.ApplyConfig)
	c.Loop = presenter.NewLoop(c.CapturePresenter, c.StatePresenter, c.PreviewPresenter, c.LoadingPresenter, a.scheduleUpdate)
	c.Loop.Backend = c.Backend
	if c.Config.Debug {
		c.StartDebug(debugEvery)
	}
	// Capturing is the initial state; no transition announces it.
	c.Backend.Start()
	if c.Logger != nil {
		c.Logger.Info("ui started", "api", c.Predictor.Client().BaseURL(), "backend", c.Config.CameraBackend)
	}

	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
}

func (a *app) scheduleUpdate() {
	if a.closed {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.c.Loop.Tick() })
}

func (a *app) exitHandler() {
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) shutdown() {
	a.closed = true
	a.c.Close()
	if a.c.Logger != nil {
		a.c.Logger.Info("shutdown complete")
	}
}
