package diagnosis

import (
	"math"
	"strings"
	"testing"

	"github.com/soocke/leaf-health-go/domain/predict"
)

func TestConfidencePercent_Clamps(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{-0.3, 0},
		{0.5, 50},
		{1.4, 100},
		{0.874, 87},
		{0.875, 88},
		{math.NaN(), 0},
		{math.Inf(1), 100},
		{math.Inf(-1), 0},
	}
	for _, c := range cases {
		if got := ConfidencePercent(c.in); got != c.want {
			t.Fatalf("ConfidencePercent(%v)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestDescribe_MarkerAndMessage(t *testing.T) {
	healthy := Describe(predict.Result{Label: "Healthy", Confidence: 0.94, IsHealthy: true})
	if healthy.Marker != MarkerSuccess || healthy.Status != StatusHealthy || healthy.Advice != AdviceHealthy {
		t.Fatalf("healthy: %+v", healthy)
	}

	disease := Describe(predict.Result{Label: "Black Pod Disease", Confidence: 0.87})
	if disease.Marker != MarkerFailure || disease.Status != "Disease detected: Black Pod Disease" || disease.Advice != AdviceFailure {
		t.Fatalf("disease: %+v", disease)
	}

	maybe := Describe(predict.Result{Label: "Frosty Pod Rot", Confidence: 0.5})
	if maybe.Marker != MarkerWarning || maybe.Status != "Possible issue detected: Frosty Pod Rot" || maybe.Advice != AdviceWarning {
		t.Fatalf("warning: %+v", maybe)
	}
}

func TestDescribe_ThresholdIsStrict(t *testing.T) {
	if m := MarkerFor(predict.Result{Label: "X", Confidence: DiseaseThreshold}); m != MarkerWarning {
		t.Fatalf("confidence at threshold should warn, got %v", m)
	}
	if m := MarkerFor(predict.Result{Label: "X", Confidence: 0.71}); m != MarkerFailure {
		t.Fatalf("confidence above threshold should fail, got %v", m)
	}
	if m := MarkerFor(predict.Result{Label: "X", Confidence: 0.1, IsHealthy: true}); m != MarkerSuccess {
		t.Fatalf("healthy wins regardless of confidence, got %v", m)
	}
}

func TestDescribe_Recommendations(t *testing.T) {
	d := Describe(predict.Result{Label: "X", Confidence: 0.9})
	if d.ShowRecommendations() {
		t.Fatalf("absent recommendations must hide the section")
	}
	d = Describe(predict.Result{Label: "X", Confidence: 0.9, Recommendations: []string{}})
	if d.ShowRecommendations() {
		t.Fatalf("empty recommendations must hide the section")
	}
	in := []string{"b first", "a second"}
	d = Describe(predict.Result{Label: "X", Confidence: 0.9, Recommendations: in})
	if !d.ShowRecommendations() || d.Recommendations[0] != "b first" || d.Recommendations[1] != "a second" {
		t.Fatalf("order not kept: %v", d.Recommendations)
	}
	in[0] = "mutated"
	if d.Recommendations[0] != "b first" {
		t.Fatalf("descriptor aliases input slice")
	}
}

func TestDescribe_Alternatives(t *testing.T) {
	d := Describe(predict.Result{Label: "X", Confidence: 0.6, Alternatives: []predict.Candidate{
		{Label: "Healthy", Confidence: 0.3},
		{Label: "Witches Broom", Confidence: 1.2},
	}})
	if len(d.Alternatives) != 2 || d.Alternatives[0] != "Healthy (30%)" || d.Alternatives[1] != "Witches Broom (100%)" {
		t.Fatalf("alternatives %v", d.Alternatives)
	}
}

func TestBar(t *testing.T) {
	d := Describe(predict.Result{Label: "X", Confidence: 1.4})
	if got := d.Bar(10); got != strings.Repeat("█", 10) {
		t.Fatalf("clamped bar %q", got)
	}
	d = Describe(predict.Result{Label: "X", Confidence: -2})
	if got := d.Bar(4); got != strings.Repeat("░", 4) {
		t.Fatalf("empty bar %q", got)
	}
	d = Describe(predict.Result{Label: "X", Confidence: 0.5})
	if got := d.Bar(4); got != "██░░" {
		t.Fatalf("half bar %q", got)
	}
	if d.Bar(0) != "" {
		t.Fatalf("zero width bar should be empty")
	}
}

func TestText_IncludesSections(t *testing.T) {
	d := Describe(predict.Result{Label: "Black Pod Disease", Confidence: 0.87, Recommendations: []string{"Prune"}})
	out := d.Text()
	for _, want := range []string{"Disease detected: Black Pod Disease", "87%", "Recommendations:", "Prune", Disclaimer} {
		if !strings.Contains(out, want) {
			t.Fatalf("text missing %q:\n%s", want, out)
		}
	}
}
