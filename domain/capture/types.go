package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"
)

// DefaultFilename is used for the multipart part when the source has no name.
const DefaultFilename = "leaf.jpg"

var (
	// ErrPermissionDenied reports that the video input could not be opened because
	// access was refused.
	ErrPermissionDenied = errors.New("capture: camera permission denied")
	// ErrNoDevice reports that no matching video input exists.
	ErrNoDevice = errors.New("capture: no camera device")
	// ErrNotStreaming is returned by operations that need an active feed.
	ErrNotStreaming = errors.New("capture: camera not streaming")
)

// CapturedImage is one still image ready for submission. It carries the encoded
// payload for the network and a decoded preview for display. Values are
// immutable once constructed; accessors return the shared backing data and
// callers must not modify it.
type CapturedImage struct {
	id          string
	data        []byte
	contentType string
	filename    string
	preview     image.Image
	capturedAt  time.Time
}

// NewCapturedImage copies data and assigns a fresh ID.
func NewCapturedImage(data []byte, contentType, filename string, preview image.Image) *CapturedImage {
	if filename == "" {
		filename = DefaultFilename
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &CapturedImage{
		id:          uuid.NewString(),
		data:        buf,
		contentType: contentType,
		filename:    filename,
		preview:     preview,
		capturedAt:  time.Now(),
	}
}

func (c *CapturedImage) ID() string            { return c.id }
func (c *CapturedImage) Bytes() []byte         { return c.data }
func (c *CapturedImage) Size() int             { return len(c.data) }
func (c *CapturedImage) ContentType() string   { return c.contentType }
func (c *CapturedImage) Filename() string      { return c.filename }
func (c *CapturedImage) Preview() image.Image  { return c.preview }
func (c *CapturedImage) CapturedAt() time.Time { return c.capturedAt }

// DataURL returns the payload as a self-contained data URL, the same preview
// form a browser would display.
func (c *CapturedImage) DataURL() string {
	if c == nil {
		return ""
	}
	return "data:" + c.contentType + ";base64," + base64.StdEncoding.EncodeToString(c.data)
}

// Facing selects the front (user) or rear (environment) camera.
type Facing int

const (
	FacingEnvironment Facing = iota
	FacingUser
)

func (f Facing) String() string {
	switch f {
	case FacingUser:
		return "user"
	case FacingEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Opposite returns the other facing.
func (f Facing) Opposite() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// ParseFacing maps the config string to a Facing, defaulting to the rear camera.
func ParseFacing(s string) Facing {
	if s == "user" {
		return FacingUser
	}
	return FacingEnvironment
}

// Constraints describe the requested video input. Width and Height are ideal
// values; devices may negotiate something else.
type Constraints struct {
	Facing    Facing
	Width     int
	Height    int
	FrameRate int
}

// Device is an open video input handle. Exactly one is held at a time and it
// must be closed to release the camera.
type Device interface {
	// Frame returns the most recent frame, or false before the first one arrives.
	Frame() (image.Image, bool)
	// Size reports the negotiated resolution.
	Size() (width, height int)
	Close() error
}

// DeviceOpener requests access to a video input.
type DeviceOpener interface {
	Open(ctx context.Context, c Constraints) (Device, error)
}

// DeviceOpenerFunc adapts a function to DeviceOpener.
type DeviceOpenerFunc func(ctx context.Context, c Constraints) (Device, error)

func (f DeviceOpenerFunc) Open(ctx context.Context, c Constraints) (Device, error) {
	return f(ctx, c)
}

// CameraState enumerates the live capture sub-states.
type CameraState int

const (
	CameraIdle CameraState = iota
	CameraStarting
	CameraStreaming
	CameraCaptured
	CameraPermissionDenied
	CameraClosed
)

func (s CameraState) String() string {
	switch s {
	case CameraIdle:
		return "idle"
	case CameraStarting:
		return "starting"
	case CameraStreaming:
		return "streaming"
	case CameraCaptured:
		return "captured"
	case CameraPermissionDenied:
		return "permission-denied"
	case CameraClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CameraStats counts device lifecycle operations.
type CameraStats struct {
	Opens     uint64
	Releases  uint64
	Failures  uint64
	Snapshots uint64
}
