package predict

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxResponseBody = 1 << 20

var (
	errMissingLabel      = errors.New("response has no className or label")
	errMissingConfidence = errors.New("response has no confidence")
	errRecommendations   = errors.New("recommendations must be an array of strings")
)

type wireCandidate struct {
	ClassName  string  `json:"className"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type wireResult struct {
	ClassName       *string         `json:"className"`
	Label           *string         `json:"label"`
	Confidence      *float64        `json:"confidence"`
	IsHealthy       *bool           `json:"isHealthy"`
	Recommendations json.RawMessage `json:"recommendations"`
	TopK            []wireCandidate `json:"topK"`
}

// Decode validates a response body into a Result. The label may arrive as
// className or label and must be non-empty; confidence is required but its
// range is left to presentation. A missing isHealthy is derived from the label.
// Recommendations must be absent, null or an array of strings.
func Decode(r io.Reader) (Result, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBody))
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result{}, fmt.Errorf("decode response body: %w", err)
	}

	label := ""
	if w.ClassName != nil {
		label = strings.TrimSpace(*w.ClassName)
	}
	if label == "" && w.Label != nil {
		label = strings.TrimSpace(*w.Label)
	}
	if label == "" {
		return Result{}, errMissingLabel
	}
	if w.Confidence == nil {
		return Result{}, errMissingConfidence
	}

	res := Result{Label: label, Confidence: *w.Confidence}
	if w.IsHealthy != nil {
		res.IsHealthy = *w.IsHealthy
	} else {
		res.IsHealthy = LooksHealthy(label)
	}

	recs, err := decodeRecommendations(w.Recommendations)
	if err != nil {
		return Result{}, err
	}
	res.Recommendations = recs

	for _, c := range w.TopK {
		name := c.ClassName
		if name == "" {
			name = c.Label
		}
		if name == "" || strings.EqualFold(name, label) {
			continue
		}
		res.Alternatives = append(res.Alternatives, Candidate{Label: name, Confidence: c.Confidence})
	}
	return res, nil
}

func decodeRecommendations(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, errRecommendations
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errRecommendations
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if bytes.Equal(bytes.TrimSpace(it), []byte("null")) {
			return nil, fmt.Errorf("%w: null entry", errRecommendations)
		}
		if err := json.Unmarshal(it, &s); err != nil {
			return nil, fmt.Errorf("%w: %s", errRecommendations, bytes.TrimSpace(it))
		}
		out = append(out, s)
	}
	return out, nil
}
