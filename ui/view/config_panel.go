package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/soocke/leaf-health-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the settings window and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	OpenOrFocus()
	ApplyChanges() // parses widget text into underlying config and persists
	// OnApply registers a callback run after a successful save.
	OnApply(fn func(cfg *config.Config))
}

type configPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	win     *ToplevelWidget
	widgets map[string]*TextWidget // keyed by internal field id
	onApply func(cfg *config.Config)
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) OnApply(fn func(cfg *config.Config)) { v.onApply = fn }

func (v *configPanel) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	if v.cfg == nil {
		return
	}
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Settings")
	v.win = win
	c := v.cfg
	row := 0
	makeRow := func(id, label, value string) {
		lbl := win.Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := win.Text(Height(1), Width(28))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("apiBaseURL", "Prediction API URL", c.APIBaseURL)
	makeRow("requestTimeout", "Request Timeout Seconds (0 = none)", fmt.Sprintf("%d", c.RequestTimeoutSeconds))
	makeRow("jpegQuality", "JPEG Quality (1-100)", fmt.Sprintf("%d", c.JPEGQuality))
	makeRow("snapshotWidth", "Snapshot Width", fmt.Sprintf("%d", c.SnapshotWidth))
	makeRow("snapshotHeight", "Snapshot Height", fmt.Sprintf("%d", c.SnapshotHeight))
	makeRow("frameRate", "Frame Rate", fmt.Sprintf("%d", c.FrameRate))
	makeRow("facingMode", "Facing (user/environment)", c.FacingMode)
	makeRow("frontDevice", "Front Device", c.FrontDevice)
	makeRow("rearDevice", "Rear Device", c.RearDevice)
	makeRow("cameraBackend", "Camera Backend (v4l2/screen)", c.CameraBackend)
	makeRow("maxUpload", "Max Upload Size (e.g. 10 MB)", humanize.Bytes(uint64(c.MaxUploadBytes)))
	apply := win.Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges(); v.close() }))
	Grid(apply, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.close))
	Grid(cancel, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Bind(win, "<Escape>", Command(v.close))
}

func (v *configPanel) close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
	v.widgets = make(map[string]*TextWidget)
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	s := strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
	return s, s != ""
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignInt := func(id string, dst *int) {
		if s, ok := v.text(id); ok {
			if i, ok := parseIntField(s); ok {
				*dst = i
			}
		}
	}
	assignString := func(id string, dst *string) {
		if s, ok := v.text(id); ok {
			*dst = s
		}
	}
	assignString("apiBaseURL", &cfg.APIBaseURL)
	assignInt("requestTimeout", &cfg.RequestTimeoutSeconds)
	assignInt("jpegQuality", &cfg.JPEGQuality)
	assignInt("snapshotWidth", &cfg.SnapshotWidth)
	assignInt("snapshotHeight", &cfg.SnapshotHeight)
	assignInt("frameRate", &cfg.FrameRate)
	assignString("facingMode", &cfg.FacingMode)
	assignString("frontDevice", &cfg.FrontDevice)
	assignString("rearDevice", &cfg.RearDevice)
	assignString("cameraBackend", &cfg.CameraBackend)
	if s, ok := v.text("maxUpload"); ok {
		if n, err := humanize.ParseBytes(s); err == nil {
			cfg.MaxUploadBytes = int64(n)
		}
	}
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		return
	}
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApply != nil {
		v.onApply(v.cfg)
	}
}

func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
