package headless

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soocke/leaf-health-go/assets"
	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/diagnosis"
	"github.com/soocke/leaf-health-go/domain/predict"
	"github.com/soocke/leaf-health-go/domain/scan"
	"github.com/soocke/leaf-health-go/predictserver"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeLeaf(t *testing.T, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "leaf.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func newStack(t *testing.T, handler http.Handler) (*capture.FileSelector, *scan.Controller, *predict.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := predict.NewClient(srv.URL, predict.NewHTTPClient(5*time.Second), discardLogger)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	ctrl := scan.NewController(client, discardLogger)
	t.Cleanup(ctrl.Close)
	return capture.NewFileSelector(0, discardLogger), ctrl, client
}

func mockRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	labels, err := assets.Labels()
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	return predictserver.New(predictserver.NewColorClassifier(labels.Labels), labels, discardLogger).Router()
}

func TestRun_EndToEndDiseasedLeaf(t *testing.T) {
	files, ctrl, _ := newStack(t, mockRouter(t))
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Run(ctx, files, ctrl, writeLeaf(t, color.NRGBA{8, 8, 8, 255}), &out, discardLogger); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Disease detected: Black Pod Rot") || !strings.Contains(text, "Recommendations:") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if ctrl.Current().Phase() != scan.PhaseShowing {
		t.Fatalf("controller should show the result, got %v", ctrl.Current().Phase())
	}
}

func TestRun_ServerFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/predict", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "model not loaded"})
	})
	files, ctrl, _ := newStack(t, router)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Run(ctx, files, ctrl, writeLeaf(t, color.NRGBA{30, 160, 40, 255}), io.Discard, discardLogger)
	if !errors.Is(err, predict.ErrPredictionFailed) {
		t.Fatalf("expected prediction failure, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), diagnosis.FailureNotice) {
		t.Fatalf("error should lead with the user notice: %v", err)
	}
	var se *predict.ServerError
	if !errors.As(err, &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected ServerError 500, got %v", err)
	}
}

func TestRun_NotAnImage(t *testing.T) {
	files, ctrl, _ := newStack(t, mockRouter(t))
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello leaf"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := Run(context.Background(), files, ctrl, path, io.Discard, discardLogger)
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if ctrl.Stats().Submitted != 0 {
		t.Fatalf("nothing should have been submitted")
	}
}

func TestCheck(t *testing.T) {
	_, _, client := newStack(t, mockRouter(t))
	var out bytes.Buffer
	if err := Check(context.Background(), client, client.BaseURL(), &out); err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out.String(), ": ok") {
		t.Fatalf("unexpected output %q", out.String())
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	dead, _ := predict.NewClient(closed.URL, nil, discardLogger)
	if err := Check(context.Background(), dead, dead.BaseURL(), io.Discard); err == nil {
		t.Fatalf("expected unreachable error")
	}
}
