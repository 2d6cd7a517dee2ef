package predict

import (
	"errors"
	"fmt"
)

// ErrPredictionFailed matches every prediction failure via errors.Is. The UI
// does not distinguish transport from server failures.
var ErrPredictionFailed = errors.New("prediction failed")

// TransportError reports a request that could not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *TransportError) Is(target error) bool { return target == ErrPredictionFailed }

// ServerError reports a non-200 status or a response body that failed
// decoding or validation. StatusCode is the HTTP status received.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: server status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: server status %d, body: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ServerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ServerError) Is(target error) bool { return target == ErrPredictionFailed }
