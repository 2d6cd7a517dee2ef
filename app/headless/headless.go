// Package headless runs one scan from the command line: the picked file goes
// through the same controller as the GUI and the diagnosis is printed.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/diagnosis"
	"github.com/soocke/leaf-health-go/domain/scan"
)

// ErrNotImage is returned when the path is not an image file.
var ErrNotImage = errors.New("not an image file")

// ImageSelector is the file acquisition strategy.
type ImageSelector interface {
	SelectPath(ctx context.Context, path string) (*capture.CapturedImage, bool, error)
}

// HealthChecker probes the prediction service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Flow is the part of scan.Controller the runner drives.
type Flow interface {
	scan.Acquirer
	scan.Observable
}

type outcome struct {
	res scan.Showing
	err error
}

// Run selects path, submits it and writes the diagnosis text to out.
func Run(ctx context.Context, files ImageSelector, flow Flow, path string, out io.Writer, logger *slog.Logger) error {
	img, ok, err := files.SelectPath(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	done := make(chan outcome, 1)
	flow.AddListener(func(prev, next scan.State) {
		if s, ok := next.(scan.Showing); ok && s.Image == img {
			select {
			case done <- outcome{res: s}:
			default:
			}
		}
	})
	flow.AddFailureListener(func(err error) {
		select {
		case done <- outcome{err: err}:
		default:
		}
	})
	if logger != nil {
		logger.Info("submitting image", "path", path, "id", img.ID(), "type", img.ContentType())
	}
	flow.Acquire(img)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case o := <-done:
		if o.err != nil {
			return fmt.Errorf("%s: %w", diagnosis.FailureNotice, o.err)
		}
		_, err := io.WriteString(out, diagnosis.Describe(o.res.Result).Text())
		return err
	}
}

// Check reports whether the prediction service answers.
func Check(ctx context.Context, hc HealthChecker, baseURL string, out io.Writer) error {
	if err := hc.Health(ctx); err != nil {
		return fmt.Errorf("backend %s unreachable: %w", baseURL, err)
	}
	_, err := fmt.Fprintf(out, "backend %s: ok\n", baseURL)
	return err
}
