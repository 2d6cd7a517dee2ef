package scan

import (
	"context"

	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/predict"
)

// Phase names the active State variant.
type Phase int

const (
	PhaseCapturing Phase = iota
	PhaseSubmitting
	PhaseShowing
)

func (p Phase) String() string {
	switch p {
	case PhaseCapturing:
		return "capturing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseShowing:
		return "showing"
	default:
		return "unknown"
	}
}

// State is one of Capturing, Submitting or Showing.
type State interface {
	Phase() Phase
	isState()
}

// Capturing waits for an image. It holds nothing.
type Capturing struct{}

// Submitting holds the image whose prediction is outstanding.
type Submitting struct {
	Image *capture.CapturedImage
}

// Showing holds the analysed image and its prediction.
type Showing struct {
	Image  *capture.CapturedImage
	Result predict.Result
}

func (Capturing) Phase() Phase  { return PhaseCapturing }
func (Submitting) Phase() Phase { return PhaseSubmitting }
func (Showing) Phase() Phase    { return PhaseShowing }

func (Capturing) isState()  {}
func (Submitting) isState() {}
func (Showing) isState()    {}

// Event is an input to Reduce.
type Event interface{ isEvent() }

// ImageAcquired carries one image from either acquisition strategy.
type ImageAcquired struct{ Image *capture.CapturedImage }

// PredictionSucceeded is the continuation of a successful request for ImageID.
type PredictionSucceeded struct {
	ImageID string
	Result  predict.Result
}

// PredictionFailed is the continuation of a failed request for ImageID.
type PredictionFailed struct {
	ImageID string
	Err     error
}

// NewScanRequested resets the flow.
type NewScanRequested struct{}

func (ImageAcquired) isEvent()       {}
func (PredictionSucceeded) isEvent() {}
func (PredictionFailed) isEvent()    {}
func (NewScanRequested) isEvent()    {}

// Effect is work the controller performs after a transition. A nil Effect
// means nothing to do.
type Effect interface{ isEffect() }

// SubmitPrediction starts the single request for Image.
type SubmitPrediction struct{ Image *capture.CapturedImage }

// ReportFailure surfaces a failed prediction to the user.
type ReportFailure struct{ Err error }

// DiscardResult records a prediction continuation that no longer applies.
type DiscardResult struct {
	ImageID string
	Phase   Phase
}

func (SubmitPrediction) isEffect() {}
func (ReportFailure) isEffect()    {}
func (DiscardResult) isEffect()    {}

// Listener is called on each state change.
type Listener func(prev, next State)

// FailureListener is called once per failed prediction that was still current.
type FailureListener func(err error)

// Predictor performs one prediction request.
type Predictor interface {
	Predict(ctx context.Context, img predict.Image) (predict.Result, error)
}

// Acquirer accepts the one image a user action produced.
type Acquirer interface{ Acquire(img *capture.CapturedImage) }

// Observable exposes state and failure notifications.
type Observable interface {
	AddListener(Listener)
	AddFailureListener(FailureListener)
}
