package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_TRACES_EXPORTER",
		"OTEL_METRICS_EXPORTER", "LOG_LEVEL", "LOG_FORMAT", "BURN_MAX_WORKERS", "BURN_BATCH_SIZE",
		"STRESS_DEFAULT_THREADS", "STRESS_DEFAULT_DURATION", "SHUTDOWN_TIMEOUT_MS",
	} {
		t.Setenv(k, "")
	}

	want := Config{
		Port:            "8080",
		OtelEndpoint:    "http://otel-collector:4318",
		ServiceName:     "cpu-burn-lab",
		LogLevel:        "info",
		LogFormat:       "text",
		MaxWorkers:      9000,
		BatchSize:       1_000_000,
		DefaultThreads:  4,
		DefaultDuration: 30,
		ShutdownTimeout: 5 * time.Second,
	}
	if diff := cmp.Diff(want, Load()); diff != "" {
		t.Errorf("Load() (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	t.Setenv("BURN_MAX_WORKERS", "16")
	t.Setenv("BURN_BATCH_SIZE", "not-a-number")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.DisableTraces || !cfg.DisableMetrics {
		t.Errorf("DisableTraces/DisableMetrics = %v/%v, want true/true", cfg.DisableTraces, cfg.DisableMetrics)
	}
	if cfg.MaxWorkers != 16 {
		t.Errorf("MaxWorkers = %d, want 16", cfg.MaxWorkers)
	}
	if cfg.BatchSize != 1_000_000 {
		t.Errorf("BatchSize = %d, want default for unparsable value", cfg.BatchSize)
	}
}

func TestBindFlagsOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg := Load()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, &cfg)
	if err := fs.Parse([]string{"--max-workers=8", "--shutdown-timeout=2s"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want env value kept", cfg.Port)
	}
	if cfg.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d, want 8", cfg.MaxWorkers)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 2s", cfg.ShutdownTimeout)
	}
}
