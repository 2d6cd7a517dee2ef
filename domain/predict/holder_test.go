package predict

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHolder_SwapRoutesNewRequests(t *testing.T) {
	first, firstRec := newBackend(t, http.StatusOK, `{"className":"Healthy","confidence":0.9}`)
	second, secondRec := newBackend(t, http.StatusOK, `{"className":"Anthracnose","confidence":0.8}`)
	h := NewHolder(newTestClient(t, first.URL))
	img := testImage{data: []byte{1}, contentType: "image/jpeg", filename: "leaf.jpg"}

	res, err := h.Predict(context.Background(), img)
	if err != nil || res.Label != "Healthy" {
		t.Fatalf("first predict: %v %+v", err, res)
	}
	prev := h.Swap(newTestClient(t, second.URL))
	if prev == nil || prev.BaseURL() != first.URL {
		t.Fatalf("swap returned %v", prev)
	}
	res, err = h.Predict(context.Background(), img)
	if err != nil || res.Label != "Anthracnose" {
		t.Fatalf("second predict: %v %+v", err, res)
	}
	if firstRec.calls.Load() != 1 || secondRec.calls.Load() != 1 {
		t.Fatalf("calls first=%d second=%d", firstRec.calls.Load(), secondRec.calls.Load())
	}
	if err := h.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestHolder_Empty(t *testing.T) {
	h := NewHolder(nil)
	if _, err := h.Predict(context.Background(), testImage{}); !errors.Is(err, ErrPredictionFailed) {
		t.Fatalf("expected prediction failure, got %v", err)
	}
	if err := h.Health(context.Background()); err == nil {
		t.Fatalf("expected health error")
	}
}
