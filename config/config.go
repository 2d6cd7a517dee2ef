package config

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// DefaultAPIBaseURL is the prediction service base URL baked into the binary.
// Override at build time with:
//
//	go build -ldflags "-X github.com/soocke/leaf-health-go/config.DefaultAPIBaseURL=https://api.example.org"
var DefaultAPIBaseURL = "http://localhost:8000"

// EnvAPIBaseURL overrides the prediction base URL at runtime.
const EnvAPIBaseURL = "LEAF_API_BASE_URL"

// Camera backends.
const (
	BackendV4L2   = "v4l2"
	BackendScreen = "screen"
)

// Facing modes, named after the browser media constraint values.
const (
	FacingUser        = "user"
	FacingEnvironment = "environment"
)

// Config holds runtime configuration for acquisition, submission and app behavior.
// Fields may be loaded from a JSON file and overridden by environment and command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Prediction service
	APIBaseURL            string `json:"api_base_url"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"` // 0 leaves the transport default

	// Snapshot encoding
	JPEGQuality    int `json:"jpeg_quality"`
	SnapshotWidth  int `json:"snapshot_width"`
	SnapshotHeight int `json:"snapshot_height"`

	// Camera negotiation
	IdealWidth    int    `json:"ideal_width"`
	IdealHeight   int    `json:"ideal_height"`
	FrameRate     int    `json:"frame_rate"`
	FacingMode    string `json:"facing_mode"`
	FrontDevice   string `json:"front_device"`
	RearDevice    string `json:"rear_device"`
	CameraBackend string `json:"camera_backend"`

	// Screen backend region (global coordinates); zero size grabs the whole screen.
	RegionX int `json:"region_x"`
	RegionY int `json:"region_y"`
	RegionW int `json:"region_w"`
	RegionH int `json:"region_h"`

	// File selection
	MaxUploadBytes int64 `json:"max_upload_bytes"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		APIBaseURL:            DefaultAPIBaseURL,
		RequestTimeoutSeconds: 0,
		JPEGQuality:           80,
		SnapshotWidth:         1280,
		SnapshotHeight:        720,
		IdealWidth:            1920,
		IdealHeight:           1080,
		FrameRate:             15,
		FacingMode:            FacingEnvironment,
		FrontDevice:           "/dev/video1",
		RearDevice:            "/dev/video0",
		CameraBackend:         BackendV4L2,
		MaxUploadBytes:        10 << 20,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = strings.TrimRight(DefaultAPIBaseURL, "/")
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 80
	}
	if c.SnapshotWidth <= 0 || c.SnapshotHeight <= 0 {
		c.SnapshotWidth, c.SnapshotHeight = 1280, 720
	}
	if c.IdealWidth <= 0 || c.IdealHeight <= 0 {
		c.IdealWidth, c.IdealHeight = 1920, 1080
	}
	if c.FrameRate <= 0 || c.FrameRate > 60 {
		c.FrameRate = 15
	}
	if c.FacingMode != FacingUser && c.FacingMode != FacingEnvironment {
		c.FacingMode = FacingEnvironment
	}
	if c.CameraBackend != BackendV4L2 && c.CameraBackend != BackendScreen {
		c.CameraBackend = BackendV4L2
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.RegionW <= 0 || c.RegionH <= 0 {
		c.RegionW, c.RegionH = 0, 0
	}
	return nil
}

// RequestTimeout returns the transport timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	if c == nil || c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Region returns the configured screen region, or nil for the whole screen.
func (c *Config) Region() *image.Rectangle {
	if c == nil || c.RegionW <= 0 || c.RegionH <= 0 {
		return nil
	}
	r := image.Rect(c.RegionX, c.RegionY, c.RegionX+c.RegionW, c.RegionY+c.RegionH)
	return &r
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := getEnv(EnvAPIBaseURL, ""); v != "" {
		c.APIBaseURL = v
	}
}

// DefaultPath returns the per-user config file location
// ($XDG_CONFIG_HOME/leaf-health/config.json on Linux).
func DefaultPath() string {
	p, err := xdg.ConfigFile(filepath.Join("leaf-health", "config.json"))
	if err != nil {
		return "config.json"
	}
	return p
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
