//go:build !linux

package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ProbeDevice checks that a video node exists. Permission is only known once
// the device is opened on this platform.
func ProbeDevice(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNoDevice)
		}
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("%s: %w", path, ErrPermissionDenied)
		}
		return fmt.Errorf("probe %s: %w", path, err)
	}
	return nil
}
