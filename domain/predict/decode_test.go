package predict

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode_LabelAliases(t *testing.T) {
	res, err := Decode(strings.NewReader(`{"label":"Healthy","confidence":0.94,"isHealthy":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Label != "Healthy" || !res.IsHealthy || res.Recommendations != nil {
		t.Fatalf("unexpected %+v", res)
	}
	res, err = Decode(strings.NewReader(`{"className":"Frosty Pod Rot","label":"ignored","confidence":0.4}`))
	if err != nil || res.Label != "Frosty Pod Rot" {
		t.Fatalf("className should win: %+v %v", res, err)
	}
}

func TestDecode_DerivesHealthWhenAbsent(t *testing.T) {
	cases := map[string]bool{
		"Healthy":           true,
		"normal leaf":       true,
		"Black Pod Disease": false,
	}
	for label, want := range cases {
		res, err := Decode(strings.NewReader(`{"className":"` + label + `","confidence":0.8}`))
		if err != nil {
			t.Fatalf("decode %q: %v", label, err)
		}
		if res.IsHealthy != want {
			t.Fatalf("label %q: healthy=%v want %v", label, res.IsHealthy, want)
		}
	}
	// explicit flag beats the heuristic
	res, _ := Decode(strings.NewReader(`{"className":"Healthy","confidence":0.8,"isHealthy":false}`))
	if res.IsHealthy {
		t.Fatalf("explicit isHealthy ignored")
	}
}

func TestDecode_ConfidenceRangeNotValidated(t *testing.T) {
	for _, body := range []string{
		`{"className":"X","confidence":-0.3}`,
		`{"className":"X","confidence":1.4}`,
	} {
		if _, err := Decode(strings.NewReader(body)); err != nil {
			t.Fatalf("out-of-range confidence rejected: %v", err)
		}
	}
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing label":            `{"confidence":0.5}`,
		"blank label":              `{"className":"  ","confidence":0.5}`,
		"missing confidence":       `{"className":"X"}`,
		"string confidence":        `{"className":"X","confidence":"high"}`,
		"recommendations string":   `{"className":"X","confidence":0.5,"recommendations":"water it"}`,
		"recommendations mixed":    `{"className":"X","confidence":0.5,"recommendations":["ok",3]}`,
		"recommendations object":   `{"className":"X","confidence":0.5,"recommendations":{"a":"b"}}`,
		"not json":                 `nope`,
		"healthy flag wrong type":  `{"className":"X","confidence":0.5,"isHealthy":"yes"}`,
		"recommendations of nulls": `{"className":"X","confidence":0.5,"recommendations":[null]}`,
	}
	for name, body := range cases {
		if _, err := Decode(strings.NewReader(body)); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestDecode_RecommendationsNullOrEmpty(t *testing.T) {
	res, err := Decode(strings.NewReader(`{"className":"X","confidence":0.5,"recommendations":null}`))
	if err != nil || res.Recommendations != nil {
		t.Fatalf("null recommendations: %v %v", res.Recommendations, err)
	}
	res, err = Decode(strings.NewReader(`{"className":"X","confidence":0.5,"recommendations":[]}`))
	if err != nil || len(res.Recommendations) != 0 {
		t.Fatalf("empty recommendations: %v %v", res.Recommendations, err)
	}
	_, err = Decode(strings.NewReader(`{"className":"X","confidence":0.5,"recommendations":7}`))
	if !errors.Is(err, errRecommendations) {
		t.Fatalf("expected errRecommendations, got %v", err)
	}
}
