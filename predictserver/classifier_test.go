package predictserver

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func fill(c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestColorClassifier_RanksAndSumsToOne(t *testing.T) {
	c := NewColorClassifier([]string{"Healthy", "Black Pod Rot", "Pod Borer", "Vascular Streak Dieback", "Anthracnose"})
	cases := []struct {
		name string
		px   color.NRGBA
		want string
	}{
		{"green", color.NRGBA{30, 160, 40, 255}, "Healthy"},
		{"dark", color.NRGBA{5, 5, 5, 255}, "Black Pod Rot"},
		{"yellow", color.NRGBA{220, 200, 40, 255}, "Vascular Streak Dieback"},
		{"brown", color.NRGBA{140, 80, 30, 255}, "Anthracnose"},
		{"grey", color.NRGBA{128, 128, 128, 255}, "Pod Borer"},
	}
	for _, tc := range cases {
		scores := c.Classify(fill(tc.px))
		if scores[0].Label != tc.want {
			t.Fatalf("%s: expected %s, got %+v", tc.name, tc.want, scores[0])
		}
		var sum float64
		for i, s := range scores {
			sum += s.Confidence
			if i > 0 && s.Confidence > scores[i-1].Confidence {
				t.Fatalf("%s: scores not sorted", tc.name)
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("%s: probabilities sum to %v", tc.name, sum)
		}
	}
	if c.Classify(nil) != nil {
		t.Fatalf("nil image should yield no scores")
	}
}
