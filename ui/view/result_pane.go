package view

import (
	"fmt"
	"image"
	"strings"

	"github.com/soocke/leaf-health-go/domain/diagnosis"
	"github.com/soocke/leaf-health-go/ui/images"
	"github.com/soocke/leaf-health-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const thumbSide = 160

// resultPane renders a diagnosis descriptor next to the analysed image.
type resultPane struct {
	photo *Img
}

func newResultPane(parent *FrameWidget, preview image.Image, d diagnosis.Descriptor, onNewScan func()) *resultPane {
	p := &resultPane{}
	palette := theme.CurrentPalette()
	color := palette.MarkerColor(d.Marker)
	row := 0

	if thumb := images.Thumbnail(preview, thumbSide, thumbSide); thumb != nil {
		p.photo = NewPhoto(Data(images.EncodePNG(thumb)))
		img := parent.Label(Image(p.photo), Borderwidth(1), Relief("sunken"))
		Grid(img, Row(row), Column(0), Columnspan(2), Padx("0.4m"), Pady("0.4m"))
		row++
	}

	marker := parent.Label(Txt(d.Marker.Symbol()), Foreground(color))
	Grid(marker, Row(row), Column(0), Sticky("e"), Padx("0.2m"))
	status := parent.Label(Txt(d.Status), Foreground(color), Anchor("w"))
	Grid(status, Row(row), Column(1), Sticky("w"), Padx("0.2m"), Pady("0.3m"))
	row++

	conf := parent.Label(Txt(fmt.Sprintf("Confidence: %d%%  %s", d.ConfidencePercent, d.Bar(20))), Anchor("w"))
	Grid(conf, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
	row++

	advice := parent.Label(Txt(d.Advice), Anchor("w"), Justify("left"), Wraplength("120m"))
	Grid(advice, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	row++

	if d.ShowRecommendations() {
		head := parent.TLabel(Txt("Recommendations"), Style(theme.StyleHeaderLabel), Anchor("w"))
		Grid(head, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
		row++
		for _, r := range d.Recommendations {
			item := parent.Label(Txt("• "+r), Anchor("w"), Justify("left"), Wraplength("120m"))
			Grid(item, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.8m"))
			row++
		}
	}
	if len(d.Alternatives) > 0 {
		alt := parent.TLabel(Txt("Other possibilities: "+strings.Join(d.Alternatives, ", ")), Style(theme.StyleMutedLabel), Anchor("w"))
		Grid(alt, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
		row++
	}

	again := parent.TButton(Txt("Scan Another Leaf"), Style(theme.StylePrimaryButton), Command(onNewScan))
	Grid(again, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	row++
	disclaimer := parent.TLabel(Txt(diagnosis.Disclaimer), Style(theme.StyleMutedLabel), Justify("left"), Wraplength("120m"))
	Grid(disclaimer, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	return p
}

func (p *resultPane) dispose() {
	if p != nil && p.photo != nil {
		p.photo.Delete()
		p.photo = nil
	}
}
