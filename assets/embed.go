package assets

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
)

// LeafPlaceholderPNG is shown in the preview before the camera streams.
//
//go:embed leaf_placeholder.png
var LeafPlaceholderPNG []byte

// LabelsJSON lists the classifier labels and per-label recommendations used
// by the development prediction service.
//
//go:embed labels.json
var LabelsJSON []byte

// LeafPlaceholder decodes the embedded PNG into an image.Image.
func LeafPlaceholder() (image.Image, error) {
	if len(LeafPlaceholderPNG) == 0 {
		return nil, fmt.Errorf("embedded leaf_placeholder.png is empty")
	}
	img, err := png.Decode(bytes.NewReader(LeafPlaceholderPNG))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// LabelSet is the decoded form of labels.json.
type LabelSet struct {
	Labels          []string            `json:"labels"`
	Recommendations map[string][]string `json:"recommendations"`
}

// Labels decodes the embedded label set.
func Labels() (LabelSet, error) {
	var ls LabelSet
	if err := json.Unmarshal(LabelsJSON, &ls); err != nil {
		return LabelSet{}, fmt.Errorf("decode labels.json: %w", err)
	}
	if len(ls.Labels) == 0 {
		return LabelSet{}, fmt.Errorf("labels.json: no labels")
	}
	return ls, nil
}
