//go:build linux || darwin

package debug

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// maxRSS reports the peak resident set size of the process.
func maxRSS() (uint64, bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}
	rss := uint64(ru.Maxrss)
	// Linux reports kilobytes, darwin bytes.
	if runtime.GOOS == "linux" {
		rss *= 1024
	}
	return rss, true
}
