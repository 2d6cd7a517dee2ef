package debug

// Debug runtime and component stats logger. Started only when config.Debug is true.
// Emits goroutine count, stack and heap usage plus whatever the registered
// sources report, at a fixed interval.

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/dustin/go-humanize"
)

// Source contributes key/value attributes to each stats line.
type Source func() []any

// StartStatsLogger launches a ticker that logs runtime stats until ctx ends.
func StartStatsLogger(ctx context.Context, interval time.Duration, logger *slog.Logger, sources ...Source) {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		return
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			logger.Info("stats", statsAttrs(samples, sources)...)
		}
	}()
}

func statsAttrs(samples []metrics.Sample, sources []Source) []any {
	metrics.Read(samples)
	var goroutines uint64
	if samples[0].Value.Kind() == metrics.KindUint64 {
		goroutines = samples[0].Value.Uint64()
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	attrs := []any{
		slog.Uint64("goroutines", goroutines),
		slog.String("stack_inuse", humanize.Bytes(ms.StackInuse)),
		slog.String("heap_alloc", humanize.Bytes(ms.HeapAlloc)),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	}
	if rss, ok := maxRSS(); ok {
		attrs = append(attrs, slog.String("max_rss", humanize.Bytes(rss)))
	}
	for _, src := range sources {
		if src != nil {
			attrs = append(attrs, src()...)
		}
	}
	return attrs
}
