package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// DefaultMaxUploadBytes caps files accepted by SelectPath.
const DefaultMaxUploadBytes = 10 << 20

// FileSelector is the file acquisition strategy (picker or drag-and-drop).
type FileSelector struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileSelector returns a selector; maxBytes <= 0 uses DefaultMaxUploadBytes.
func NewFileSelector(maxBytes int64, logger *slog.Logger) *FileSelector {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileSelector{maxBytes: maxBytes, logger: logger}
}

// IsImageType reports whether a declared MIME type denotes an image.
func IsImageType(mimeType string) bool {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = mimeType
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mt)), "image/")
}

// Select turns user-provided bytes into a CapturedImage. Payloads whose
// declared type is not an image are ignored: ok is false and err is nil.
// The preview is decoded from the bytes; a payload that claims to be an image
// but cannot be decoded is an error.
func (s *FileSelector) Select(ctx context.Context, data []byte, mimeType, filename string) (*CapturedImage, bool, error) {
	if !IsImageType(mimeType) {
		if s != nil && s.logger != nil {
			s.logger.Debug("file ignored", "mime", mimeType, "filename", filename)
		}
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	preview, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", filename, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	mt, _, perr := mime.ParseMediaType(mimeType)
	if perr != nil {
		mt = mimeType
	}
	img := NewCapturedImage(data, mt, filepath.Base(filename), preview)
	if s != nil && s.logger != nil {
		s.logger.Debug("file selected", "id", img.ID(), "mime", mt, "size", humanize.Bytes(uint64(len(data))))
	}
	return img, true, nil
}

// SelectPath reads a picked file and selects it, detecting the declared type
// from content since a file path carries none.
func (s *FileSelector) SelectPath(ctx context.Context, path string) (*CapturedImage, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	limit := int64(DefaultMaxUploadBytes)
	if s != nil && s.maxBytes > 0 {
		limit = s.maxBytes
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, false, fmt.Errorf("read %s: file larger than %s", path, humanize.Bytes(uint64(limit)))
	}
	return s.Select(ctx, data, mimetype.Detect(data).String(), filepath.Base(path))
}
