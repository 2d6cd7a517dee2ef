// Package layout holds window geometry helpers that do not need a Tk
// interpreter.
package layout

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
)

// FallbackScreen is used when the display size cannot be queried.
var FallbackScreen = image.Pt(1920, 1080)

// minRegionSide keeps a restored region grabbable on screen.
const minRegionSide = 64

var geometryRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry converts a Tk "WxH+X+Y" string into a rectangle in screen
// coordinates. Negative offsets are written "+-10" by Tk.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geometryRe.FindStringSubmatch(strings.TrimSpace(g))
	if m == nil {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}

// FormatGeometry is the inverse of ParseGeometry.
func FormatGeometry(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

// ParseScreen reads the integer strings returned by winfo screenwidth and
// screenheight, falling back to FallbackScreen on bad input.
func ParseScreen(w, h string) image.Point {
	sw, errW := strconv.Atoi(strings.TrimSpace(w))
	sh, errH := strconv.Atoi(strings.TrimSpace(h))
	if errW != nil || errH != nil || sw <= 0 || sh <= 0 {
		return FallbackScreen
	}
	return image.Pt(sw, sh)
}

// Centered returns a window two thirds wide and five ninths high in the
// middle of the screen.
func Centered(screen image.Point) image.Rectangle {
	w, h := max(screen.X*2/3, 1), max(screen.Y*5/9, 1)
	x, y := (screen.X-w)/2, (screen.Y-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// InitialRegion picks where the region window opens: over the saved region
// when it still fits the screen, otherwise centered.
func InitialRegion(screen image.Point, saved *image.Rectangle) image.Rectangle {
	if saved == nil {
		return Centered(screen)
	}
	r := saved.Canon()
	if r.Dx() < minRegionSide || r.Dy() < minRegionSide {
		return Centered(screen)
	}
	bounds := image.Rectangle{Max: screen}
	if !r.In(bounds) {
		return Centered(screen)
	}
	return r
}

// Describe renders a region for status text.
func Describe(r *image.Rectangle) string {
	if r == nil || r.Empty() {
		return "Full screen"
	}
	return fmt.Sprintf("%dx%d at %d,%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}
