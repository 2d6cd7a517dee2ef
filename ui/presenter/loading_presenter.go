package presenter

import (
	"time"

	"github.com/soocke/leaf-health-go/domain/scan"
	"github.com/soocke/leaf-health-go/ui/model"
)

// LoadingView displays how long the prediction has been outstanding.
type LoadingView interface {
	SetElapsed(current, average time.Duration)
}

// LoadingPresenter advances the loading model and pushes values to the view.
type LoadingPresenter struct {
	model *model.LoadingModel
	src   PhaseSource
	view  LoadingView
}

func NewLoadingPresenter(m *model.LoadingModel, src PhaseSource, view LoadingView) *LoadingPresenter {
	return &LoadingPresenter{model: m, src: src, view: view}
}

// Tick updates the model from the controller phase and refreshes the view
// while a prediction is outstanding.
func (p *LoadingPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.src == nil || p.view == nil {
		return
	}
	submitting := p.src.Current().Phase() == scan.PhaseSubmitting
	p.model.OnTick(submitting, now)
	if submitting {
		cur, _ := p.model.Values()
		p.view.SetElapsed(cur, p.model.Average())
	}
}
