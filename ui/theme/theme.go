package theme

// Centralized theming for the leaf health UI. Palette constants plus
// InitStyles to activate a base theme and configure semantic widget styles.

import (
	"github.com/soocke/leaf-health-go/domain/diagnosis"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets.
const (
	ColorBg          = "#f6faf5" // app background
	ColorSurface     = "#ffffff" // panels, cards
	ColorBorder      = "#d0d7de"
	ColorPrimary     = "#15803d" // buttons, accents
	ColorSuccess     = "#16a34a"
	ColorDestructive = "#dc2626"
	ColorWarning     = "#d97706"
	ColorText        = "#1e293b"
	ColorTextMuted   = "#64748b"
)

// PaletteSnapshot represents resolved colors for the active mode.
type PaletteSnapshot struct {
	AppBg       string
	Surface     string
	Border      string
	Primary     string
	Success     string
	Destructive string
	Warning     string
	Text        string
	TextMuted   string
}

// CurrentPalette returns colors for the current dark/light mode.
func CurrentPalette() PaletteSnapshot {
	if darkMode {
		return PaletteSnapshot{
			AppBg:       "#0f172a",
			Surface:     "#1e293b",
			Border:      "#334155",
			Primary:     "#22c55e",
			Success:     "#4ade80",
			Destructive: "#f87171",
			Warning:     "#fbbf24",
			Text:        "#f1f5f9",
			TextMuted:   "#94a3b8",
		}
	}
	return PaletteSnapshot{
		AppBg:       ColorBg,
		Surface:     ColorSurface,
		Border:      ColorBorder,
		Primary:     ColorPrimary,
		Success:     ColorSuccess,
		Destructive: ColorDestructive,
		Warning:     ColorWarning,
		Text:        ColorText,
		TextMuted:   ColorTextMuted,
	}
}

// MarkerColor maps a diagnosis marker to its palette tone.
func (p PaletteSnapshot) MarkerColor(m diagnosis.Marker) string {
	switch m {
	case diagnosis.MarkerSuccess:
		return p.Success
	case diagnosis.MarkerFailure:
		return p.Destructive
	case diagnosis.MarkerWarning:
		return p.Warning
	default:
		return p.Text
	}
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleHeaderLabel   = "header.TLabel"
	StyleMutedLabel    = "muted.TLabel"
	StyleStatusLabel   = "status.TLabel"
)

// internal flag for current mode
var darkMode bool

// InitStyles (re)applies styles for the current darkMode value.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetDark toggles dark mode and reapplies styles. Returns new mode value.
func SetDark(dark bool) bool {
	darkMode = dark
	applyStyles(CurrentPalette())
	return darkMode
}

// IsDark reports current mode.
func IsDark() bool { return darkMode }

func applyStyles(p PaletteSnapshot) {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(p.AppBg))

	StyleConfigure(StylePrimaryButton,
		Background(p.Primary),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleDangerButton,
		Background(p.Destructive),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleHeaderLabel,
		Foreground(p.Primary),
		Background(p.AppBg),
		Padding("2p 1p"),
	)
	StyleConfigure(StyleMutedLabel,
		Foreground(p.TextMuted),
		Background(p.AppBg),
	)
	StyleConfigure(StyleStatusLabel,
		Foreground(p.Text),
		Background(p.Surface),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
}
