package predictserver

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// Score is one label's probability.
type Score struct {
	Index      int
	Label      string
	Confidence float64
}

// Classifier ranks labels for an image, best first.
type Classifier interface {
	Classify(img image.Image) []Score
}

// sampleSide is the edge of the square raster the heuristic inspects.
const sampleSide = 64

// ColorClassifier is a deterministic stand-in for the leaf model. It measures
// the share of green, dark, brown and yellow pixels and turns those shares
// into a softmax over the label list. Label i is driven by feature i; labels
// beyond the known features only get the residual share.
type ColorClassifier struct {
	Labels []string
	// Sharpness scales features before the softmax; higher is more confident.
	Sharpness float64
}

func NewColorClassifier(labels []string) *ColorClassifier {
	return &ColorClassifier{Labels: labels, Sharpness: 8}
}

// features returns shares in [0,1]: green, dark, other, yellow, brown.
func features(img image.Image) [5]float64 {
	small := imaging.Resize(img, sampleSide, sampleSide, imaging.Box)
	var counts [5]float64
	b := small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := small.NRGBAAt(x, y)
			r, g, bl := float64(c.R), float64(c.G), float64(c.B)
			lum := 0.299*r + 0.587*g + 0.114*bl
			switch {
			case lum < 45:
				counts[1]++
			case g > r+10 && g > bl+10:
				counts[0]++
			case r > 150 && g > 130 && bl < 100:
				counts[3]++
			case r > g && g > bl && r-bl > 40:
				counts[4]++
			default:
				counts[2]++
			}
		}
	}
	total := float64(sampleSide * sampleSide)
	for i := range counts {
		counts[i] /= total
	}
	return counts
}

func (c *ColorClassifier) Classify(img image.Image) []Score {
	if len(c.Labels) == 0 || img == nil {
		return nil
	}
	f := features(img)
	logits := make([]float64, len(c.Labels))
	for i := range logits {
		if i < len(f) {
			logits[i] = f[i] * c.Sharpness
		}
	}
	probs := softmax(logits)
	scores := make([]Score, len(probs))
	for i, p := range probs {
		scores[i] = Score{Index: i, Label: c.Labels[i], Confidence: p}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Confidence > scores[j].Confidence })
	return scores
}

func softmax(x []float64) []float64 {
	maxV := math.Inf(-1)
	for _, v := range x {
		maxV = math.Max(maxV, v)
	}
	out := make([]float64, len(x))
	var sum float64
	for i, v := range x {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
