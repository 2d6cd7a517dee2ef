//go:build linux

package capture

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ProbeDevice checks that a video node exists and is readable and writable by
// this process, mapping the failure onto ErrNoDevice or ErrPermissionDenied.
func ProbeDevice(path string) error {
	err := unix.Access(path, unix.R_OK|unix.W_OK)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return fmt.Errorf("%s: %w", path, ErrNoDevice)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%s: %w", path, ErrPermissionDenied)
	default:
		return fmt.Errorf("probe %s: %w", path, err)
	}
}
