// Package diagnosis turns a prediction into display text. Everything here is a
// pure function of predict.Result.
package diagnosis

import (
	"fmt"
	"math"
	"strings"

	"github.com/soocke/leaf-health-go/domain/predict"
)

// DiseaseThreshold splits confident disease findings from tentative ones.
// Confidence must be strictly greater to count as a detected disease.
const DiseaseThreshold = 0.7

// Marker is the icon and colour class of a diagnosis.
type Marker int

const (
	MarkerSuccess Marker = iota
	MarkerFailure
	MarkerWarning
)

func (m Marker) String() string {
	switch m {
	case MarkerSuccess:
		return "success"
	case MarkerFailure:
		return "failure"
	case MarkerWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Symbol is a text stand-in for the marker icon.
func (m Marker) Symbol() string {
	switch m {
	case MarkerSuccess:
		return "✔"
	case MarkerFailure:
		return "✖"
	default:
		return "⚠"
	}
}

const (
	StatusHealthy = "Your leaf appears healthy!"
	AdviceHealthy = "Keep up the good care! Your cocoa plant is thriving."
	AdviceFailure = "We recommend taking action to treat this condition."
	AdviceWarning = "Monitor your plant closely and consider consulting an expert."
	Disclaimer    = "For serious plant health concerns, please consult with a local agricultural expert."
	// LoadingMessage is shown while a prediction is outstanding.
	LoadingMessage = "Analyzing your leaf..."
	// FailureNotice is the blocking notice for any failed prediction.
	FailureNotice = "Prediction failed. Please ensure the backend is running and try again."
)

// Descriptor is everything the result view renders.
type Descriptor struct {
	Label             string
	Marker            Marker
	Status            string
	Advice            string
	ConfidencePercent int
	// Recommendations in received order; empty means the section is hidden.
	Recommendations []string
	// Alternatives are formatted "label (NN%)".
	Alternatives []string
}

// ShowRecommendations reports whether the recommendations section is rendered.
func (d Descriptor) ShowRecommendations() bool { return len(d.Recommendations) > 0 }

// Describe maps a prediction to its display descriptor.
func Describe(r predict.Result) Descriptor {
	d := Descriptor{
		Label:             r.Label,
		Marker:            MarkerFor(r),
		ConfidencePercent: ConfidencePercent(r.Confidence),
	}
	switch d.Marker {
	case MarkerSuccess:
		d.Status, d.Advice = StatusHealthy, AdviceHealthy
	case MarkerFailure:
		d.Status, d.Advice = "Disease detected: "+r.Label, AdviceFailure
	default:
		d.Status, d.Advice = "Possible issue detected: "+r.Label, AdviceWarning
	}
	if len(r.Recommendations) > 0 {
		d.Recommendations = append([]string(nil), r.Recommendations...)
	}
	for _, a := range r.Alternatives {
		d.Alternatives = append(d.Alternatives, fmt.Sprintf("%s (%d%%)", a.Label, ConfidencePercent(a.Confidence)))
	}
	return d
}

// MarkerFor selects the marker: healthy wins, then the disease threshold.
func MarkerFor(r predict.Result) Marker {
	if r.IsHealthy {
		return MarkerSuccess
	}
	if r.Confidence > DiseaseThreshold {
		return MarkerFailure
	}
	return MarkerWarning
}

// ConfidencePercent rounds confidence to a whole percentage clamped to
// [0, 100]. NaN maps to 0.
func ConfidencePercent(c float64) int {
	if math.IsNaN(c) {
		return 0
	}
	p := math.Round(c * 100)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// Bar renders the clamped percentage as a fixed-width text bar.
func (d Descriptor) Bar(width int) string {
	if width <= 0 {
		return ""
	}
	filled := d.ConfidencePercent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Text renders the descriptor as plain text for terminals.
func (d Descriptor) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", d.Marker.Symbol(), d.Status)
	fmt.Fprintf(&b, "Confidence: %d%% %s\n", d.ConfidencePercent, d.Bar(20))
	fmt.Fprintf(&b, "%s\n", d.Advice)
	if d.ShowRecommendations() {
		b.WriteString("Recommendations:\n")
		for _, r := range d.Recommendations {
			fmt.Fprintf(&b, "  • %s\n", r)
		}
	}
	if len(d.Alternatives) > 0 {
		fmt.Fprintf(&b, "Also considered: %s\n", strings.Join(d.Alternatives, ", "))
	}
	b.WriteString(Disclaimer)
	return b.String()
}
