package view

import (
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/soocke/leaf-health-go/config"
	"github.com/soocke/leaf-health-go/ui/layout"
	"github.com/soocke/leaf-health-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// RegionOverlay is a translucent window the user drags over the part of the
// screen the screen camera backend grabs, e.g. a microscope viewer.
type RegionOverlay interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type regionOverlay struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	rect    atomic.Pointer[image.Rectangle] // nil grabs the whole screen
	win     *ToplevelWidget
	current *TLabelWidget
}

// NewRegionOverlay restores the leaf region stored in cfg.
func NewRegionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger) RegionOverlay {
	v := &regionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath}
	v.rect.Store(cfg.Region())
	return v
}

// ActiveRect is read by the camera goroutine on every grab.
func (v *regionOverlay) ActiveRect() *image.Rectangle {
	if r := v.rect.Load(); r != nil {
		cp := *r
		return &cp
	}
	return nil
}

func (v *regionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window, layout.FormatGeometry(v.placement()))
		return
	}
	v.win = App.Toplevel(Borderwidth(3), Background(theme.ColorPrimary))
	v.win.WmTitle("Leaf Region")
	WmGeometry(v.win.Window, layout.FormatGeometry(v.placement()))
	WmAttributes(v.win.Window, "-topmost", 1)
	WmAttributes(v.win.Window, "-alpha", 0.35)

	GridRowConfigure(v.win.Window, 0, Weight(1))
	GridColumnConfigure(v.win.Window, 0, Weight(1))
	hint := v.win.TLabel(Txt("Move and resize this window over the leaf, then confirm."),
		Style(theme.StyleMutedLabel), Anchor("center"))
	Grid(hint, Row(0), Column(0), Sticky("nsew"))

	bar := v.win.Frame()
	Grid(bar, Row(1), Column(0), Sticky("we"))
	v.current = bar.TLabel(Txt("Current: "+layout.Describe(v.ActiveRect())), Style(theme.StyleStatusLabel))
	Grid(v.current, Row(0), Column(0), Sticky("w"), Padx("1m"))
	GridColumnConfigure(bar.Window, 0, Weight(1))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"Use This Area", theme.StylePrimaryButton, v.confirm},
		{"Full Screen", theme.StyleDangerButton, v.Clear},
		{"Close", "", v.close},
	}
	for i, b := range buttons {
		opts := []Opt{Txt(b.text), Command(b.fn)}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(bar.TButton(opts...), Row(0), Column(i+1), Padx("0.5m"), Pady("0.5m"))
	}
	Bind(v.win, "<Return>", Command(v.confirm))
	Bind(v.win, "<Escape>", Command(v.close))
}

// placement opens over the saved leaf region, or centered on the real
// display when there is none.
func (v *regionOverlay) placement() image.Rectangle {
	screen := layout.ParseScreen(WinfoScreenWidth(App), WinfoScreenHeight(App))
	return layout.InitialRegion(screen, v.ActiveRect())
}

// Clear drops the leaf region so the backend grabs the full screen.
func (v *regionOverlay) Clear() {
	v.store(nil)
}

func (v *regionOverlay) confirm() {
	if v.win == nil {
		return
	}
	rect, ok := layout.ParseGeometry(WmGeometry(v.win.Window))
	if !ok {
		if v.logger != nil {
			v.logger.Warn("unreadable region geometry")
		}
		return
	}
	v.store(&rect)
	v.close()
}

func (v *regionOverlay) store(r *image.Rectangle) {
	v.rect.Store(r)
	if v.current != nil {
		v.current.Configure(Txt("Current: " + layout.Describe(r)))
	}
	if v.logger != nil {
		v.logger.Info("leaf region set", "region", layout.Describe(r))
	}
	if v.cfg == nil {
		return
	}
	if r == nil {
		v.cfg.RegionX, v.cfg.RegionY, v.cfg.RegionW, v.cfg.RegionH = 0, 0, 0, 0
	} else {
		v.cfg.RegionX, v.cfg.RegionY = r.Min.X, r.Min.Y
		v.cfg.RegionW, v.cfg.RegionH = r.Dx(), r.Dy()
	}
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
	}
}

func (v *regionOverlay) close() {
	if v.win == nil {
		return
	}
	Destroy(v.win)
	v.win, v.current = nil, nil
}
