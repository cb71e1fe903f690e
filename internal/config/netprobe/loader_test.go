package netprobe_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 3*time.Second, cfg.Probe.PingTimeout)
	assert.Equal(t, 3*time.Second, cfg.Probe.DNSTimeout)
	assert.Equal(t, 5*time.Second, cfg.Probe.HTTPTimeout)
	assert.Equal(t, 10, cfg.Probe.MaxWorkers)
	assert.True(t, cfg.Probe.VerifyTLS)
	assert.Equal(t, []string{"8.8.8.8", "1.1.1.1", "9.9.9.9"}, cfg.Targets.Ping)
	assert.Len(t, cfg.Targets.HTTP, 4)
	assert.Len(t, cfg.Targets.HTTPS, 4)
	assert.Equal(t, []string{"google.com", "github.com", "cloudflare.com"}, cfg.Targets.DNS)
	assert.Equal(t, 7, cfg.Analyze.Days)
	assert.Equal(t, SourceCSV, cfg.Analyze.Source)
	assert.False(t, cfg.Postgres.Enable)
	assert.Equal(t, 2*time.Second, cfg.Postgres.QueryTimeout)
	assert.Equal(t, int32(4), cfg.Postgres.MaxConns)
	assert.Equal(t, []string{"localhost:9094"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Export.RetryAttempts)
	assert.Equal(t, "localhost:4317", cfg.OTEL.AsOTELConfig().Endpoint)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_dir: /var/log/netprobe
probe:
  ping_timeout: 1s
  max_workers: 0
targets:
  ping: [10.0.0.1]
  dns: [example.com]
analyze:
  days: 30
kafka:
  enable: true
  topic: custom.topic
`), 0o644))
	t.Setenv("NETPROBE_PROBE_HTTP_TIMEOUT", "9s")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("days", 7, "")
	flags.Bool("debug", false, "")
	require.NoError(t, flags.Parse([]string{"--days", "1", "--debug"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/netprobe", cfg.LogDir)
	assert.Equal(t, time.Second, cfg.Probe.PingTimeout)
	assert.Equal(t, 9*time.Second, cfg.Probe.HTTPTimeout)
	assert.Equal(t, 10, cfg.Probe.MaxWorkers)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Targets.Ping)
	assert.Equal(t, 1, cfg.Analyze.Days)
	assert.True(t, cfg.Kafka.Enable)
	assert.Equal(t, "custom.topic", cfg.Kafka.Topic)

	lc := cfg.AsLoggerConfig("dev")
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, filepath.Join("/var/log/netprobe", DebugLogFile), lc.File)
}

func TestLoad_UnsetFlagKeepsConfig(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("days", 99, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analyze.Days)
	assert.Empty(t, cfg.AsLoggerConfig("").File)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
}

func TestLoad_Validation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
targets:
  https: []
analyze:
  source: postgres
`), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets.https")
	assert.Contains(t, err.Error(), "requires postgres.enable")
}
