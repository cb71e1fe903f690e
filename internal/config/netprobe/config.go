package netprobe_config

import (
	"path/filepath"
	"time"

	"github.com/NordCoder/Netprobe/internal/obs"
	pginfra "github.com/NordCoder/Netprobe/internal/repository/postgres"
)

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Probe struct {
	PingTimeout  time.Duration `mapstructure:"ping_timeout"`
	DNSTimeout   time.Duration `mapstructure:"dns_timeout"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	MaxWorkers   int           `mapstructure:"max_workers"`
	UserAgent    string        `mapstructure:"user_agent"`
	VerifyTLS    bool          `mapstructure:"verify_tls"`
	MaxRedirects int           `mapstructure:"max_redirects"`
}

type Targets struct {
	Ping  []string `mapstructure:"ping"`
	HTTP  []string `mapstructure:"http"`
	HTTPS []string `mapstructure:"https"`
	DNS   []string `mapstructure:"dns"`
}

type Analyze struct {
	Days   int    `mapstructure:"days"`
	Source string `mapstructure:"source"`
}

type Metrics struct {
	Textfile string `mapstructure:"textfile"`
}

type Postgres struct {
	Enable      bool `mapstructure:"enable"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
	pginfra.Config `mapstructure:",squash"`
}

type Kafka struct {
	Enable      bool     `mapstructure:"enable"`
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	EnsureTopic bool     `mapstructure:"ensure_topic"`
}

type Export struct {
	RetryAttempts int `mapstructure:"retry_attempts"`
}

type Config struct {
	LogDir   string         `mapstructure:"log_dir"`
	Debug    bool           `mapstructure:"debug"`
	Log      Log            `mapstructure:"log"`
	Probe    Probe          `mapstructure:"probe"`
	Targets  Targets        `mapstructure:"targets"`
	Analyze  Analyze        `mapstructure:"analyze"`
	Metrics  Metrics        `mapstructure:"metrics"`
	OTEL     OTEL           `mapstructure:"otel"`
	Postgres Postgres       `mapstructure:"postgres"`
	Kafka    Kafka          `mapstructure:"kafka"`
	Export   Export         `mapstructure:"export"`
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DebugLogFile is written next to the CSV log when debug is on.
const DebugLogFile = "netprobe_debug.log"

// AsLoggerConfig applies the debug switch: debug forces the debug level and
// a copy of the log under LogDir.
func (c *Config) AsLoggerConfig(version string) obs.LogConfig {
	lc := obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    "netprobe",
		Ver:    version,
	}
	if c.Debug {
		lc.Level = "debug"
		lc.File = filepath.Join(c.LogDir, DebugLogFile)
	}
	return lc
}
