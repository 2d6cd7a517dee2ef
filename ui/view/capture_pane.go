package view

import (
	"image"
	"log/slog"

	"github.com/soocke/leaf-health-go/assets"
	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/ui/images"
	"github.com/soocke/leaf-health-go/ui/model"
	"github.com/soocke/leaf-health-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	maxPreviewW = 480
	maxPreviewH = 360
)

// imageFileTypes restricts the picker to formats the decoder understands.
var imageFileTypes = []FileType{
	{TypeName: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}},
	{TypeName: "All files", Extensions: []string{"*"}},
}

// capturePane shows the live preview with camera controls, or the upload
// control, depending on mode.
type capturePane struct {
	preview *LabelWidget
	photo   *Img
	hint    *TLabelWidget
	logger  *slog.Logger

	enable  *TButtonWidget
	snap    *TButtonWidget
	retake  *TButtonWidget
	analyze *TButtonWidget
	swap    *TButtonWidget
	action  func()
	h       Handlers
}

func newCapturePane(parent *FrameWidget, mode model.Mode, h Handlers, logger *slog.Logger) *capturePane {
	p := &capturePane{logger: logger}
	p.photo = NewPhoto(Data(assets.LeafPlaceholderPNG))
	p.preview = parent.Label(Image(p.photo), Borderwidth(1), Relief("sunken"))
	Grid(p.preview, Row(0), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))

	if mode == model.ModeUpload {
		p.hint = parent.TLabel(Txt("Choose a clear photo of a single cocoa leaf"), Style(theme.StyleMutedLabel))
		Grid(p.hint, Row(1), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"))
		choose := parent.TButton(Txt("Choose Image"), Style(theme.StylePrimaryButton), Command(func() {
			paths := GetOpenFile(Title("Select a leaf image"), Filetypes(imageFileTypes))
			if len(paths) == 0 || paths[0] == "" || h.ChooseFile == nil {
				return
			}
			h.ChooseFile(paths[0])
		}))
		Grid(choose, Row(2), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
		return p
	}

	p.hint = parent.TLabel(Txt("Camera is off"), Style(theme.StyleMutedLabel))
	Grid(p.hint, Row(1), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"))
	p.enable = parent.TButton(Txt("Enable Camera"), Style(theme.StylePrimaryButton), Command(func() { call(p.action)() }))
	p.snap = parent.TButton(Txt("Capture"), Command(call(h.Snapshot)))
	p.retake = parent.TButton(Txt("Retake"), Command(call(h.Retake)))
	p.analyze = parent.TButton(Txt("Analyze Leaf"), Style(theme.StylePrimaryButton), Command(call(h.Analyze)))
	p.swap = parent.TButton(Txt("Switch Camera"), Command(call(h.SwitchCamera)))
	for i, b := range []*TButtonWidget{p.enable, p.snap, p.retake, p.analyze, p.swap} {
		Grid(b, Row(2), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.3m"))
	}
	p.h = h
	p.setCameraState(capture.CameraIdle, false)
	return p
}

func setEnabled(b *TButtonWidget, on bool) {
	if b == nil {
		return
	}
	if on {
		b.Configure(State("normal"))
		return
	}
	b.Configure(State("disabled"))
}

func (p *capturePane) setCameraState(state capture.CameraState, enabled bool) {
	if p == nil || p.enable == nil {
		return
	}
	// The first button doubles as retry after a denial and stop while live.
	hint, enableText, action := "Camera is off", "Enable Camera", p.h.EnableCamera
	switch state {
	case capture.CameraStarting:
		hint = "Starting camera..."
	case capture.CameraStreaming:
		hint, enableText, action = "Position the leaf in the frame", "Stop Camera", p.h.StopCamera
	case capture.CameraCaptured:
		hint, enableText, action = "Analyze this photo or retake it", "Stop Camera", p.h.StopCamera
	case capture.CameraPermissionDenied:
		hint, enableText, action = "Camera access was denied", "Try Again", p.h.RetryCamera
	}
	p.action = action
	p.hint.Configure(Txt(hint))
	p.enable.Configure(Txt(enableText))
	setEnabled(p.enable, state != capture.CameraStarting)
	setEnabled(p.snap, enabled && state == capture.CameraStreaming)
	setEnabled(p.retake, state == capture.CameraCaptured)
	setEnabled(p.analyze, state == capture.CameraCaptured)
	setEnabled(p.swap, enabled && (state == capture.CameraStreaming || state == capture.CameraCaptured))
}

func (p *capturePane) updatePreview(img image.Image) {
	if p == nil || p.preview == nil || img == nil {
		return
	}
	scaled := images.ScaleToFit(img, maxPreviewW, maxPreviewH)
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if p.photo != nil {
		p.photo.Delete()
	}
	p.photo = NewPhoto(Data(images.EncodePNG(scaled)))
	p.preview.Configure(Image(p.photo))
}

func (p *capturePane) reset() {
	if p == nil || p.preview == nil {
		return
	}
	if p.photo != nil {
		p.photo.Delete()
	}
	p.photo = NewPhoto(Data(assets.LeafPlaceholderPNG))
	p.preview.Configure(Image(p.photo))
}

func (p *capturePane) dispose() {
	if p != nil && p.photo != nil {
		p.photo.Delete()
		p.photo = nil
	}
}
