package annrecall

import (
	"runtime"
	"time"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	workers          int
	progressInterval time.Duration
}

func defaultOptions() options {
	return options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		workers:          runtime.GOMAXPROCS(0),
		progressInterval: 5 * time.Second,
	}
}

// Option configures an Evaluator.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for trials and queries.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &annrecall.BasicMetricsCollector{}
//	ev, _ := annrecall.New(ds, idx, cfg, annrecall.WithMetricsCollector(metrics))
//	// ... run ev.Evaluate ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for runs and trials.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := annrecall.NewJSONLogger(slog.LevelInfo)
//	ev, _ := annrecall.New(ds, idx, cfg, annrecall.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithWorkers bounds the number of trials running at once.
// Values below 1 select runtime.GOMAXPROCS(0). The report does not depend on it.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithProgressInterval sets how often progress is logged during a run.
// Zero or negative disables progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}
