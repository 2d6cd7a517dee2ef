package view

import (
	"image"
	"log/slog"
	"strconv"
	"time"

	"github.com/soocke/leaf-health-go/config"
	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/diagnosis"
	"github.com/soocke/leaf-health-go/ui/model"
	"github.com/soocke/leaf-health-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions. Nil handlers are ignored.
type Handlers struct {
	ModeChanged  func(m model.Mode)
	EnableCamera func()
	RetryCamera  func()
	StopCamera   func()
	Snapshot     func()
	Retake       func()
	Analyze      func()
	SwitchCamera func()
	ChooseFile   func(path string)
	NewScan      func()
	SelectRegion func()
	Settings     func()
	Exit         func()
}

// modeTitles index matches model.Mode values.
var modeTitles = []string{"Take Photo", "Upload Image"}

// RootView composes the top-level layout. The body row holds exactly one of
// the capture, loading or result panes; switching destroys the old pane.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	h       Handlers

	StatusLabel *TLabelWidget
	ModeSelect  *TComboboxWidget
	ConfigPanel ConfigPanel

	mode    model.Mode
	pane    *FrameWidget
	capture *capturePane
	loading *loadingPane
	result  *resultPane
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the header row and the initial capture pane.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	rv.h = h
	header := TLabel(Txt("Cocoa Leaf Health"), Style(theme.StyleHeaderLabel), Anchor("w"))
	Grid(header, Row(0), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	rv.StatusLabel = TLabel(Txt("Backend: checking..."), Style(theme.StyleStatusLabel))
	Grid(rv.StatusLabel, Row(0), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.ModeSelect = TCombobox(Values(modeTitles), Width(14))
	Grid(rv.ModeSelect, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ModeSelect.Current(0)
	Bind(rv.ModeSelect, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.ModeSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(modeTitles) {
			if rv.logger != nil {
				rv.logger.Error("mode selection parse error", "error", err)
			}
			return
		}
		if rv.h.ModeChanged != nil {
			rv.h.ModeChanged(model.Mode(idx))
		}
	}))
	if rv.cfg != nil && rv.cfg.CameraBackend == config.BackendScreen {
		regionBtn := Button(Txt("Select Region"), Command(call(h.SelectRegion)))
		Grid(regionBtn, In(btnFrame), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	settingsBtn := Button(Txt("Settings"), Command(call(h.Settings)))
	Grid(settingsBtn, In(btnFrame), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := Button(Txt("Exit"), Command(call(h.Exit)))
	Grid(exitBtn, In(btnFrame), Row(0), Column(3), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	GridColumnConfigure(App, 1, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.ShowCapture()
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}

// swapPane destroys the current body pane and grids a fresh frame.
func (rv *RootView) swapPane() *FrameWidget {
	rv.capture.dispose()
	rv.result.dispose()
	if rv.pane != nil {
		Destroy(rv.pane)
	}
	rv.capture, rv.loading, rv.result = nil, nil, nil
	rv.pane = Frame(Borderwidth(1), Relief("groove"))
	Grid(rv.pane, Row(1), Column(0), Columnspan(3), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	return rv.pane
}

// --- StateView ---

func (rv *RootView) ShowCapture() {
	if rv == nil {
		return
	}
	rv.capture = newCapturePane(rv.swapPane(), rv.mode, rv.h, rv.logger)
}

func (rv *RootView) ShowLoading(message string) {
	if rv == nil {
		return
	}
	rv.loading = newLoadingPane(rv.swapPane(), message)
}

func (rv *RootView) ShowResult(preview image.Image, d diagnosis.Descriptor) {
	if rv == nil {
		return
	}
	rv.result = newResultPane(rv.swapPane(), preview, d, call(rv.h.NewScan))
}

// Notice shows a blocking message box.
func (rv *RootView) Notice(title, message string) {
	MessageBox(Icon("warning"), Title(title), Msg(message))
}

// --- CaptureView ---

func (rv *RootView) SetCameraState(state capture.CameraState, enabled bool) {
	if rv != nil && rv.capture != nil {
		rv.capture.setCameraState(state, enabled)
	}
}

// SetMode records the mode and rebuilds the capture pane if it is showing.
func (rv *RootView) SetMode(m model.Mode) {
	if rv == nil {
		return
	}
	rv.mode = m
	if rv.ModeSelect != nil {
		rv.ModeSelect.Current(int(m))
	}
	if rv.capture != nil {
		rv.ShowCapture()
	}
}

func (rv *RootView) PreviewReset() {
	if rv != nil && rv.capture != nil {
		rv.capture.reset()
	}
}

// --- PreviewView ---

func (rv *RootView) UpdatePreview(img image.Image) {
	if rv != nil && rv.capture != nil {
		rv.capture.updatePreview(img)
	}
}

// --- LoadingView ---

func (rv *RootView) SetElapsed(current, average time.Duration) {
	if rv != nil && rv.loading != nil {
		rv.loading.setElapsed(current, average)
	}
}

// --- BackendStatusView ---

func (rv *RootView) SetBackendStatus(online bool, detail string) {
	if rv == nil || rv.StatusLabel == nil {
		return
	}
	if online {
		rv.StatusLabel.Configure(Txt("Backend: online"))
		return
	}
	rv.StatusLabel.Configure(Txt("Backend: offline"))
	if rv.logger != nil {
		rv.logger.Debug("backend offline", "detail", detail)
	}
}

// OpenSettings shows the configuration window.
func (rv *RootView) OpenSettings() {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.OpenOrFocus()
	}
}
