// Package scan owns the capture → submit → result flow.
package scan

// Reduce computes the next state for an event. It has no side effects; the
// returned Effect tells the caller what to do next.
//
//	Capturing  + ImageAcquired                → Submitting, SubmitPrediction
//	Submitting + PredictionSucceeded (same ID) → Showing
//	Submitting + PredictionFailed (same ID)    → Capturing, ReportFailure
//	Submitting + NewScanRequested              → Capturing (result discarded later)
//	Showing    + NewScanRequested              → Capturing
//
// Any other pair leaves the state unchanged. Prediction continuations that no
// longer match the current submission yield DiscardResult.
func Reduce(s State, e Event) (State, Effect) {
	if s == nil {
		s = Capturing{}
	}
	switch ev := e.(type) {
	case ImageAcquired:
		if _, ok := s.(Capturing); ok && ev.Image != nil {
			return Submitting{Image: ev.Image}, SubmitPrediction{Image: ev.Image}
		}
	case PredictionSucceeded:
		if isSubmitting(s, ev.ImageID) {
			return Showing{Image: s.(Submitting).Image, Result: ev.Result}, nil
		}
		return s, DiscardResult{ImageID: ev.ImageID, Phase: s.Phase()}
	case PredictionFailed:
		if isSubmitting(s, ev.ImageID) {
			return Capturing{}, ReportFailure{Err: ev.Err}
		}
		return s, DiscardResult{ImageID: ev.ImageID, Phase: s.Phase()}
	case NewScanRequested:
		switch s.(type) {
		case Showing, Submitting:
			return Capturing{}, nil
		}
	}
	return s, nil
}

func isSubmitting(s State, imageID string) bool {
	sub, ok := s.(Submitting)
	return ok && sub.Image != nil && sub.Image.ID() == imageID
}
