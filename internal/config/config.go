package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Port           string
	OtelEndpoint   string
	ServiceName    string
	DisableTraces  bool
	DisableMetrics bool

	LogLevel  string
	LogFormat string

	// Burn coordinator.
	MaxWorkers int
	BatchSize  int

	// Defaults for /stress when the query omits them.
	DefaultThreads  int
	DefaultDuration int

	ShutdownTimeout time.Duration
}

// Load reads environment variables and returns a populated Config with defaults.
func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		OtelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel-collector:4318"),
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "cpu-burn-lab"),
		DisableTraces:   getEnv("OTEL_TRACES_EXPORTER", "") == "none",
		DisableMetrics:  getEnv("OTEL_METRICS_EXPORTER", "") == "none",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		MaxWorkers:      getEnvInt("BURN_MAX_WORKERS", 9000),
		BatchSize:       getEnvInt("BURN_BATCH_SIZE", 1_000_000),
		DefaultThreads:  getEnvInt("STRESS_DEFAULT_THREADS", 4),
		DefaultDuration: getEnvInt("STRESS_DEFAULT_DURATION", 30),
		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

// BindFlags registers command-line overrides for cfg on fs. Values already in
// cfg (usually from Load) become the flag defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.OtelEndpoint, "otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP collector endpoint")
	fs.StringVar(&cfg.ServiceName, "service-name", cfg.ServiceName, "OpenTelemetry service name")
	fs.BoolVar(&cfg.DisableTraces, "disable-traces", cfg.DisableTraces, "do not export traces")
	fs.BoolVar(&cfg.DisableMetrics, "disable-metrics", cfg.DisableMetrics, "do not export metrics")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers, "burn workers allowed to run at once across all requests")
	fs.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "evaluations per burn batch; the deadline is checked between batches")
	fs.IntVar(&cfg.DefaultThreads, "default-threads", cfg.DefaultThreads, "threads used by /stress when the query omits them")
	fs.IntVar(&cfg.DefaultDuration, "default-duration", cfg.DefaultDuration, "seconds used by /stress when the query omits them")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
