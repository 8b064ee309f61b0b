package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the optional project configuration file.
const FileName = "reactron.yaml"

// Setting keys, shared by reactron.yaml, flags and REACTRON_* variables.
const (
	KeyAppName       = "app.name"
	KeyBudget        = "engine.budget"
	KeyMaxSteps      = "engine.max_steps"
	KeyFrameInterval = "engine.frame_interval"
	KeyTraceSamples  = "engine.trace_samples"
	KeySlowFrame     = "engine.slow_frame"
	KeyServerAddr    = "server.addr"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

// Defaults.
const (
	DefaultBudget        = 4 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultTraceSamples  = 240
	DefaultServerAddr    = "127.0.0.1:7070"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config represents the optional reactron.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig contains scheduler settings. Durations use time.ParseDuration
// syntax.
type EngineConfig struct {
	Budget        string `yaml:"budget,omitempty"`
	MaxSteps      int    `yaml:"max_steps,omitempty"`
	FrameInterval string `yaml:"frame_interval,omitempty"`
	TraceSamples  int    `yaml:"trace_samples,omitempty"`
	SlowFrame     string `yaml:"slow_frame,omitempty"`
}

// ServerConfig contains devserver settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	AppName    string

	Budget        time.Duration
	MaxSteps      int
	FrameInterval time.Duration
	TraceSamples  int
	SlowFrame     time.Duration

	ServerAddr string
	LogLevel   string
	LogFormat  string
}

// LoadOptional reads reactron.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// LoadFile reads a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Resolve loads reactron.yaml (if present) from dir and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return ResolveConfig(dir, cfg)
}

// ResolveConfig resolves defaults for an already loaded configuration. The
// go.mod in dir, if any, supplies the default app name.
func ResolveConfig(dir string, cfg *Config) (*Resolved, error) {
	modPath, err := modulePath(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	r := &Resolved{
		Root:          dir,
		ModulePath:    modPath,
		AppName:       strings.TrimSpace(cfg.App.Name),
		MaxSteps:      cfg.Engine.MaxSteps,
		TraceSamples:  cfg.Engine.TraceSamples,
		ServerAddr:    strings.TrimSpace(cfg.Server.Addr),
		LogLevel:      strings.ToLower(strings.TrimSpace(cfg.Log.Level)),
		LogFormat:     strings.ToLower(strings.TrimSpace(cfg.Log.Format)),
		Budget:        DefaultBudget,
		FrameInterval: DefaultFrameInterval,
	}
	if r.AppName == "" {
		r.AppName = defaultAppName(modPath, dir)
	}
	if r.TraceSamples == 0 {
		r.TraceSamples = DefaultTraceSamples
	}
	if r.ServerAddr == "" {
		r.ServerAddr = DefaultServerAddr
	}
	if r.LogLevel == "" {
		r.LogLevel = DefaultLogLevel
	}
	if r.LogFormat == "" {
		r.LogFormat = DefaultLogFormat
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{KeyBudget, cfg.Engine.Budget, &r.Budget},
		{KeyFrameInterval, cfg.Engine.FrameInterval, &r.FrameInterval},
		{KeySlowFrame, cfg.Engine.SlowFrame, &r.SlowFrame},
	} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := parseDuration(d.key, d.raw)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Settings returns the resolved values keyed by setting key, in the string
// form accepted by Apply.
func (r *Resolved) Settings() map[string]string {
	return map[string]string{
		KeyAppName:       r.AppName,
		KeyBudget:        r.Budget.String(),
		KeyMaxSteps:      strconv.Itoa(r.MaxSteps),
		KeyFrameInterval: r.FrameInterval.String(),
		KeyTraceSamples:  strconv.Itoa(r.TraceSamples),
		KeySlowFrame:     r.SlowFrame.String(),
		KeyServerAddr:    r.ServerAddr,
		KeyLogLevel:      r.LogLevel,
		KeyLogFormat:     r.LogFormat,
	}
}

// Apply overwrites every setting with get(key) and validates the result.
// It is used to layer flags and environment variables over the file.
func (r *Resolved) Apply(get func(key string) string) error {
	next := *r
	var err error

	next.AppName = strings.TrimSpace(get(KeyAppName))
	next.ServerAddr = strings.TrimSpace(get(KeyServerAddr))
	next.LogLevel = strings.ToLower(strings.TrimSpace(get(KeyLogLevel)))
	next.LogFormat = strings.ToLower(strings.TrimSpace(get(KeyLogFormat)))
	if next.Budget, err = parseDuration(KeyBudget, get(KeyBudget)); err != nil {
		return err
	}
	if next.FrameInterval, err = parseDuration(KeyFrameInterval, get(KeyFrameInterval)); err != nil {
		return err
	}
	if next.SlowFrame, err = parseDuration(KeySlowFrame, get(KeySlowFrame)); err != nil {
		return err
	}
	if next.MaxSteps, err = parseInt(KeyMaxSteps, get(KeyMaxSteps)); err != nil {
		return err
	}
	if next.TraceSamples, err = parseInt(KeyTraceSamples, get(KeyTraceSamples)); err != nil {
		return err
	}
	if next.AppName == "" {
		next.AppName = r.AppName
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*r = next
	return nil
}

// Validate checks ranges and enumerations.
func (r *Resolved) Validate() error {
	switch {
	case r.Budget < 0:
		return fmt.Errorf("%s must not be negative (got %s)", KeyBudget, r.Budget)
	case r.FrameInterval <= 0:
		return fmt.Errorf("%s must be positive (got %s)", KeyFrameInterval, r.FrameInterval)
	case r.SlowFrame < 0:
		return fmt.Errorf("%s must not be negative (got %s)", KeySlowFrame, r.SlowFrame)
	case r.MaxSteps < 0:
		return fmt.Errorf("%s must not be negative (got %d)", KeyMaxSteps, r.MaxSteps)
	case r.TraceSamples <= 0:
		return fmt.Errorf("%s must be positive (got %d)", KeyTraceSamples, r.TraceSamples)
	case r.ServerAddr == "":
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	switch r.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s must be debug, info, warn or error (got %q)", KeyLogLevel, r.LogLevel)
	}
	switch r.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json (got %q)", KeyLogFormat, r.LogFormat)
	}
	return nil
}

// FindProjectRoot walks up from the current directory to find go.mod. It
// returns the current directory when there is none.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "reactron_app"
	}
	return base
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseInt(key, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}
