package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/app"
	"github.com/atomicstack/replay-control/internal/recorder"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	// File is the YAML file the settings were layered from, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envConfig          = "REPLAY_CONTROL_CONFIG"
	envServiceURL      = "REPLAY_CONTROL_SERVICE_URL"
	envTimeout         = "REPLAY_CONTROL_TIMEOUT"
	envPollInterval    = "REPLAY_CONTROL_POLL_INTERVAL"
	envCatalogInterval = "REPLAY_CONTROL_CATALOG_INTERVAL"
	envRateLimit       = "REPLAY_CONTROL_RATE_LIMIT"
	envWidth           = "REPLAY_CONTROL_WIDTH"
	envHeight          = "REPLAY_CONTROL_HEIGHT"
	envShowFooter      = "REPLAY_CONTROL_FOOTER"
	envVerbose         = "REPLAY_CONTROL_VERBOSE"
	envTrace           = "REPLAY_CONTROL_TRACE"
	envLogFile         = "REPLAY_CONTROL_LOG_FILE"
	envExportDir       = "REPLAY_CONTROL_EXPORT_DIR"
	envLoops           = "REPLAY_CONTROL_LOOPS"
	envSpeed           = "REPLAY_CONTROL_SPEED"
	envPrecision       = "REPLAY_CONTROL_PRECISION"
	envMetricsAddr     = "REPLAY_CONTROL_METRICS_ADDR"
)

const (
	DefaultServiceURL   = "http://127.0.0.1:5000"
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = time.Second
	DefaultLogFile      = "replay-control.log"
)

// fileConfig mirrors the YAML layout. Pointer fields distinguish "unset"
// from zero values.
type fileConfig struct {
	ServiceURL      *string        `yaml:"service_url"`
	Timeout         *time.Duration `yaml:"timeout"`
	PollInterval    *time.Duration `yaml:"poll_interval"`
	CatalogInterval *time.Duration `yaml:"catalog_interval"`
	RateLimit       *float64       `yaml:"rate_limit"`
	Width           *int           `yaml:"width"`
	Height          *int           `yaml:"height"`
	Footer          *bool          `yaml:"footer"`
	Verbose         *bool          `yaml:"verbose"`
	Trace           *bool          `yaml:"trace"`
	LogFile         *string        `yaml:"log_file"`
	ExportDir       *string        `yaml:"export_dir"`
	Replay          struct {
		Loops     *int     `yaml:"loops"`
		Speed     *float64 `yaml:"speed"`
		Precision *bool    `yaml:"precision"`
	} `yaml:"replay"`
	MetricsAddr *string `yaml:"metrics_addr"`
}

// RegisterFlags defines every configuration flag on fs. Defaults shown in
// help are the built-in ones; environment and file values are layered in
// by FromFlags.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("service-url", DefaultServiceURL, "base URL of the recording service")
	fs.Duration("timeout", DefaultTimeout, "per-request timeout")
	fs.Duration("poll-interval", DefaultPollInterval, "status poll interval")
	fs.Duration("catalog-interval", 0, "background catalog refresh interval (0 disables)")
	fs.Float64("rate-limit", 0, "maximum requests per second to the service (0 uses the client default)")
	fs.Int("width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.Int("height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.Bool("footer", false, "enable footer hint row (disabled by default)")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
	fs.Bool("verbose", false, "print informational messages for background refreshes")
	fs.String("log-file", DefaultLogFile, "path to the log file")
	fs.String("export-dir", ".", "directory exports are written to")
	fs.Int("loops", 1, "default replay loop count (1-10)")
	fs.Float64("speed", 1, "default replay speed multiplier")
	fs.Bool("precision", false, "replay with precision timing by default")
	fs.String("metrics-addr", "", "listen address for the Prometheus endpoint (empty disables)")
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("replay-control", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(fs, args, environ)
}

// FromFlags resolves the configuration from an already parsed flag set.
// Precedence is flag, then environment, then file, then default.
func FromFlags(fs *pflag.FlagSet, args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	r := resolver{fs: fs, env: env}

	path := r.str("config", envConfig, nil)
	if path != "" {
		fc, err := readFile(path, env)
		if err != nil {
			return Config{}, err
		}
		r.file = fc
	}
	fc := r.file
	if fc == nil {
		fc = &fileConfig{}
	}

	cfg := Config{
		App: app.Config{
			ServiceURL:      r.str("service-url", envServiceURL, fc.ServiceURL),
			Timeout:         r.duration("timeout", envTimeout, fc.Timeout),
			PollInterval:    r.duration("poll-interval", envPollInterval, fc.PollInterval),
			CatalogInterval: r.duration("catalog-interval", envCatalogInterval, fc.CatalogInterval),
			RateLimit:       r.float("rate-limit", envRateLimit, fc.RateLimit),
			Width:           r.integer("width", envWidth, fc.Width),
			Height:          r.integer("height", envHeight, fc.Height),
			ShowFooter:      r.boolean("footer", envShowFooter, fc.Footer),
			Verbose:         r.boolean("verbose", envVerbose, fc.Verbose),
			ExportDir:       r.str("export-dir", envExportDir, fc.ExportDir),
			Replay: action.ReplayOptions{
				LoopCount: r.integer("loops", envLoops, fc.Replay.Loops),
				Speed:     r.float("speed", envSpeed, fc.Replay.Speed),
				Precision: r.boolean("precision", envPrecision, fc.Replay.Precision),
			},
			MetricsAddr: r.str("metrics-addr", envMetricsAddr, fc.MetricsAddr),
		},
		Logging: Logging{
			FilePath: r.str("log-file", envLogFile, fc.LogFile),
			Trace:    r.boolean("trace", envTrace, fc.Trace),
		},
		File: path,
		Args: append([]string(nil), args...),
	}
	cfg.Features.Verbose = cfg.App.Verbose

	if cfg.App.Width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", cfg.App.Width)
	}
	if cfg.App.Height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", cfg.App.Height)
	}

	cfg.Flags = map[string]string{
		"serviceURL":   cfg.App.ServiceURL,
		"timeout":      cfg.App.Timeout.String(),
		"pollInterval": cfg.App.PollInterval.String(),
		"width":        strconv.Itoa(cfg.App.Width),
		"height":       strconv.Itoa(cfg.App.Height),
		"footer":       strconv.FormatBool(cfg.App.ShowFooter),
		"trace":        strconv.FormatBool(cfg.Logging.Trace),
		"verbose":      strconv.FormatBool(cfg.App.Verbose),
		"logFile":      cfg.Logging.FilePath,
		"exportDir":    cfg.App.ExportDir,
		"metricsAddr":  cfg.App.MetricsAddr,
	}
	return cfg, nil
}

func readFile(path string, env map[string]string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := os.Expand(string(data), func(key string) string {
		return env[key]
	})
	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// resolver layers one setting at a time. Malformed environment values are
// ignored in favour of the next layer.
type resolver struct {
	fs   *pflag.FlagSet
	env  map[string]string
	file *fileConfig
}

func (r resolver) envValue(key string) (string, bool) {
	v, ok := r.env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r resolver) str(flag, key string, file *string) string {
	if r.fs.Changed(flag) {
		v, _ := r.fs.GetString(flag)
		return v
	}
	if v, ok := r.envValue(key); ok {
		return v
	}
	if file != nil {
		return *file
	}
	v, _ := r.fs.GetString(flag)
	return v
}

func (r resolver) duration(flag, key string, file *time.Duration) time.Duration {
	if r.fs.Changed(flag) {
		v, _ := r.fs.GetDuration(flag)
		return v
	}
	if v, ok := r.envValue(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	if file != nil {
		return *file
	}
	v, _ := r.fs.GetDuration(flag)
	return v
}

func (r resolver) integer(flag, key string, file *int) int {
	if r.fs.Changed(flag) {
		v, _ := r.fs.GetInt(flag)
		return v
	}
	if v, ok := r.envValue(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	if file != nil {
		return *file
	}
	v, _ := r.fs.GetInt(flag)
	return v
}

func (r resolver) float(flag, key string, file *float64) float64 {
	if r.fs.Changed(flag) {
		v, _ := r.fs.GetFloat64(flag)
		return v
	}
	if v, ok := r.envValue(key); ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	if file != nil {
		return *file
	}
	v, _ := r.fs.GetFloat64(flag)
	return v
}

func (r resolver) boolean(flag, key string, file *bool) bool {
	if r.fs.Changed(flag) {
		v, _ := r.fs.GetBool(flag)
		return v
	}
	if v, ok := r.envValue(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	if file != nil {
		return *file
	}
	v, _ := r.fs.GetBool(flag)
	return v
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate rejects settings the client cannot run with.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.App.ServiceURL)
	if err != nil {
		return fmt.Errorf("service url %q: %w", cfg.App.ServiceURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service url %q must be an absolute http(s) URL", cfg.App.ServiceURL)
	}
	if cfg.App.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", cfg.App.Timeout)
	}
	if cfg.App.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0 (got %s)", cfg.App.PollInterval)
	}
	if cfg.App.CatalogInterval < 0 {
		return fmt.Errorf("catalog interval must be >= 0 (got %s)", cfg.App.CatalogInterval)
	}
	if cfg.App.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0 (got %v)", cfg.App.RateLimit)
	}
	if n := cfg.App.Replay.LoopCount; n < recorder.MinLoopCount || n > recorder.MaxLoopCount {
		return fmt.Errorf("loops must be between %d and %d (got %d)", recorder.MinLoopCount, recorder.MaxLoopCount, n)
	}
	if !(cfg.App.Replay.Speed > 0) {
		return fmt.Errorf("speed must be > 0 (got %v)", cfg.App.Replay.Speed)
	}
	return nil
}
