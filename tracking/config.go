package tracking

import (
	"log/slog"
	"runtime"
)

const (
	// DefaultBatchSize is the default number of products handled per batch.
	DefaultBatchSize = 100

	// DefaultReportInterval is the default progress report interval.
	DefaultReportInterval = 25
)

// Config holds configuration for bulk operations.
type Config struct {
	// Workers is the number of histories fetched concurrently.
	Workers int

	// BatchSize is the number of products submitted to the pool before
	// waiting for them. Cancellation is checked between batches.
	BatchSize int

	// ReportInterval is how often to report progress (number of products).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Workers:        workers,
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultReportInterval,
	}
}

// normalized returns a copy of c with out-of-range values replaced by defaults.
func (c *Config) normalized() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Workers < 1 {
		out.Workers = def.Workers
	}
	if out.BatchSize < 1 {
		out.BatchSize = def.BatchSize
	}
	if out.ReportInterval < 1 {
		out.ReportInterval = def.ReportInterval
	}
	return &out
}

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures an Updater or Importer.
type Option func(*options)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithMetrics records run outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
