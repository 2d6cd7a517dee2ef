package view

import (
	"fmt"
	"time"

	"github.com/soocke/leaf-health-go/ui/theme"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// loadingPane is shown while a prediction is outstanding.
type loadingPane struct {
	elapsedLbl *TLabelWidget
	averageLbl *TLabelWidget
}

func newLoadingPane(parent *FrameWidget, message string) *loadingPane {
	title := parent.TLabel(Txt("Checking Leaf Health"), Style(theme.StyleHeaderLabel))
	Grid(title, Row(0), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.6m"))
	msg := parent.Label(Txt(message))
	Grid(msg, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	p := &loadingPane{elapsedLbl: parent.TLabel(Width(16)), averageLbl: parent.TLabel(Width(16), Style(theme.StyleMutedLabel))}
	Grid(p.elapsedLbl, Row(2), Column(0), Sticky("w"), Padx("0.2m"))
	Grid(p.averageLbl, Row(2), Column(1), Sticky("w"), Padx("0.2m"))
	p.setElapsed(0, 0)
	return p
}

func mmss(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (p *loadingPane) setElapsed(current, average time.Duration) {
	if p == nil || p.elapsedLbl == nil {
		return
	}
	p.elapsedLbl.Configure(Txt("Elapsed: " + mmss(current)))
	if average > 0 {
		p.averageLbl.Configure(Txt("Usually: " + mmss(average)))
	}
}
