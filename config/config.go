// Package config loads the provisioner settings file.
//
// The file is TOML and lives at ~/.provision.toml unless PROVISION_CONFIG or
// --config points elsewhere:
//
//	work_dir = 'D:\provision'
//	max_retries = 10
//	retry_interval = "30s"
//	stop_timeout = "2m"
//	log_level = "debug"
//	log_file = '~\logs\provision.log'
//	metrics_file = 'C:\metrics\provision.prom'
//	toolset = 'C:\image\toolset.json'
//
//	[visual_studio]
//	version = "2022"
//	edition = "Enterprise"
//	install_root = 'C:\Program Files (x86)'
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/crafted-tech/provisioner"
)

// ErrConfigValidation wraps validation failures, as opposed to TOML syntax
// or filesystem errors.
var ErrConfigValidation = errors.New("config validation failed")

// EnvPath overrides the default config location.
const EnvPath = "PROVISION_CONFIG"

const defaultFile = "~/.provision.toml"

// Config is the settings file.
type Config struct {
	WorkDir       string       `toml:"work_dir"`
	MaxRetries    int          `toml:"max_retries"`
	RetryInterval string       `toml:"retry_interval"`
	StopTimeout   string       `toml:"stop_timeout"`
	LogLevel      string       `toml:"log_level"`
	LogFile       string       `toml:"log_file"`
	MetricsFile   string       `toml:"metrics_file"`
	Toolset       string       `toml:"toolset"`
	VisualStudio  VisualStudio `toml:"visual_studio"`
}

// VisualStudio locates the IDE used for extension installs.
type VisualStudio struct {
	Version     string `toml:"version"`
	Edition     string `toml:"edition"`
	InstallRoot string `toml:"install_root"`
}

// DefaultPath returns $PROVISION_CONFIG or ~/.provision.toml.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		return homedir.Expand(path)
	}
	return homedir.Expand(defaultFile)
}

// Load reads the config at path. An empty path loads the default location,
// where a missing file yields an empty Config; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	} else {
		var err error
		if path, err = homedir.Expand(path); err != nil {
			return nil, fmt.Errorf("expand config path %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates TOML data. source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: unrecognized keys:\n%s", ErrConfigValidation, source, strict.String())
		}
		return nil, fmt.Errorf("invalid config %s: %w", source, err)
	}
	if err := cfg.expand(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigValidation, source, err)
	}
	return &cfg, nil
}

// expand resolves a leading ~ in path settings.
func (c *Config) expand() error {
	for _, p := range []*string{&c.WorkDir, &c.LogFile, &c.MetricsFile, &c.Toolset, &c.VisualStudio.InstallRoot} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %s: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if _, err := positiveDuration("retry_interval", c.RetryInterval); err != nil {
		return err
	}
	if _, err := positiveDuration("stop_timeout", c.StopTimeout); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

// Options converts the settings into provisioner options.
// Unset values keep the provisioner defaults.
func (c *Config) Options() []provisioner.Option {
	var opts []provisioner.Option
	if c.WorkDir != "" {
		opts = append(opts, provisioner.WithWorkDir(c.WorkDir))
	}
	if c.MaxRetries > 0 {
		opts = append(opts, provisioner.WithMaxRetries(c.MaxRetries))
	}
	if d, _ := positiveDuration("retry_interval", c.RetryInterval); d > 0 {
		opts = append(opts, provisioner.WithRetryInterval(d))
	}
	if d, _ := positiveDuration("stop_timeout", c.StopTimeout); d > 0 {
		opts = append(opts, provisioner.WithStopTimeout(d))
	}
	if c.VisualStudio.Version != "" || c.VisualStudio.Edition != "" {
		opts = append(opts, provisioner.WithVisualStudio(c.VisualStudio.Version, c.VisualStudio.Edition))
	}
	if c.VisualStudio.InstallRoot != "" {
		opts = append(opts, provisioner.WithVSInstallRoot(c.VisualStudio.InstallRoot))
	}
	return opts
}

// positiveDuration parses an optional duration; empty yields zero.
func positiveDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}
