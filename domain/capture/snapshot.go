package capture

import (
	"bytes"
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// SnapshotContentType is the single lossy format used for camera snapshots.
const SnapshotContentType = "image/jpeg"

// EncodeSnapshot renders frame into a width x height raster (centre crop to the
// target aspect, then resample) and encodes it as JPEG at quality (1-100).
// It returns the encoded bytes and the rendered raster used as preview.
func EncodeSnapshot(frame image.Image, width, height, quality int) ([]byte, image.Image, error) {
	if frame == nil {
		return nil, nil, errors.New("capture: nil frame")
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, nil, errors.New("capture: empty frame")
	}
	if width <= 0 || height <= 0 {
		width, height = b.Dx(), b.Dy()
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	var raster image.Image = frame
	if b.Dx() != width || b.Dy() != height {
		raster = imaging.Fill(frame, width, height, imaging.Center, imaging.Linear)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, raster, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), raster, nil
}
