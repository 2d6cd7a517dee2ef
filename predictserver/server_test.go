package predictserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/soocke/leaf-health-go/assets"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	labels, err := assets.Labels()
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	return New(NewColorClassifier(labels.Labels), labels, discardLogger).Router()
}

func multipartRequest(t *testing.T, field, filename string, payload []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decodeResponse(t, rec)["status"]; got != "ok" {
		t.Fatalf("unexpected status %v", got)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}
}

func TestPredict_GreenLeafIsHealthy(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, FieldName, "leaf.jpg", solidPNG(t, color.NRGBA{30, 160, 40, 255})))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decodeResponse(t, rec)
	if out["className"] != "Healthy" || out["isHealthy"] != true {
		t.Fatalf("unexpected response %v", out)
	}
	if conf := out["confidence"].(float64); conf < 0.99 || conf > 1 {
		t.Fatalf("confidence %v", conf)
	}
	if _, ok := out["recommendations"]; ok {
		t.Fatalf("healthy result should carry no recommendations: %v", out)
	}
	if topK := out["topK"].([]any); len(topK) != TopK {
		t.Fatalf("expected %d alternatives, got %d", TopK, len(topK))
	}
}

func TestPredict_DarkLeafIsDiseased(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, FieldName, "leaf.png", solidPNG(t, color.NRGBA{10, 10, 10, 255})))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	out := decodeResponse(t, rec)
	if out["className"] != "Black Pod Rot" || out["isHealthy"] != false || out["index"].(float64) != 1 {
		t.Fatalf("unexpected response %v", out)
	}
	recs, ok := out["recommendations"].([]any)
	if !ok || len(recs) == 0 {
		t.Fatalf("expected recommendations, got %v", out["recommendations"])
	}
}

func TestPredict_Rejections(t *testing.T) {
	router := newTestRouter(t)
	valid := solidPNG(t, color.NRGBA{30, 160, 40, 255})
	cases := []struct {
		name   string
		field  string
		data   []byte
		status int
		detail string
	}{
		{"missing file", "", nil, http.StatusBadRequest, "file is required"},
		{"wrong field", "image", valid, http.StatusBadRequest, "file is required"},
		{"not an image", FieldName, []byte("just some notes"), http.StatusUnsupportedMediaType, "unsupported content type"},
		{"truncated png", FieldName, valid[:40], http.StatusBadRequest, "Prediction failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, tc.field, "upload", tc.data))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if detail, _ := decodeResponse(t, rec)["detail"].(string); !strings.Contains(detail, tc.detail) {
				t.Fatalf("detail %q does not mention %q", detail, tc.detail)
			}
		})
	}
}

func TestNew_NoHealthyLabelOmitsFlag(t *testing.T) {
	labels := assets.LabelSet{Labels: []string{"class_a", "class_b"}}
	s := New(NewColorClassifier(labels.Labels), labels, nil)
	resp := s.response([]Score{{Index: 1, Label: "class_b", Confidence: 0.6}})
	if resp.IsHealthy != nil {
		t.Fatalf("isHealthy should be omitted without healthy labels")
	}
	if resp.ClassName != "class_b" || resp.Index != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
