package provisioner

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/metrics"
	"github.com/crafted-tech/provisioner/platform"
)

// Defaults applied by New.
const (
	DefaultMaxRetries    = 20
	DefaultRetryInterval = 30 * time.Second
	DefaultStopTimeout   = time.Minute
	DefaultVSEdition     = "Enterprise"
)

// ServiceOpener resolves a service by name. It returns an error matching
// platform.ErrNotInstalled when the service does not exist.
type ServiceOpener func(name string) (platform.Service, error)

// InstalledLookup finds an installed product by display name.
// It returns nil when nothing matches.
type InstalledLookup func(displayName string) (*platform.InstalledApp, error)

// Config holds the configuration for creating a new Provisioner.
type Config struct {
	WorkDir         string        // Artifact directory (default: os.TempDir())
	MaxRetries      int           // Download attempts per artifact
	RetryInterval   time.Duration // Fixed wait between download attempts
	StopTimeout     time.Duration // Wait for a service to reach its target state
	VSVersion       string        // Default Visual Studio version, e.g. "2022"
	VSEdition       string        // Visual Studio edition directory, e.g. "Enterprise"
	VSInstallRoot   string        // Parent of "Microsoft Visual Studio" (default: Program Files (x86))
	InstallerEngine string        // Package installer engine (default: msiexec.exe)
	Logger          *logging.Logger
	HTTPClient      *http.Client
	Context         context.Context // Cancels downloads and retry waits
	Runner          ProcessRunner
	OpenService     ServiceOpener
	FindInstalled   InstalledLookup
	Timer           backoff.Timer // Retry wait timer; nil uses a real timer
	Metrics         *metrics.Recorder
}

// Option is a function that configures a Provisioner.
type Option func(*Config)

// WithWorkDir sets the directory artifacts are downloaded to.
func WithWorkDir(dir string) Option {
	return func(c *Config) {
		c.WorkDir = dir
	}
}

// WithMaxRetries sets the number of download attempts. Values below 1 keep the default.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.MaxRetries = n
		}
	}
}

// WithRetryInterval sets the fixed wait between download attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RetryInterval = d
	}
}

// WithStopTimeout sets how long service operations wait for a state change.
func WithStopTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.StopTimeout = d
		}
	}
}

// WithVisualStudio sets the default Visual Studio version and edition used
// to locate VSIXInstaller.exe. Empty values keep the current ones.
func WithVisualStudio(version, edition string) Option {
	return func(c *Config) {
		if version != "" {
			c.VSVersion = version
		}
		if edition != "" {
			c.VSEdition = edition
		}
	}
}

// WithVSInstallRoot overrides the directory that contains "Microsoft Visual Studio".
func WithVSInstallRoot(dir string) Option {
	return func(c *Config) {
		c.VSInstallRoot = dir
	}
}

// WithInstallerEngine overrides the path of the package installer engine.
func WithInstallerEngine(path string) Option {
	return func(c *Config) {
		c.InstallerEngine = path
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithContext sets the context that aborts downloads in flight and the waits
// between attempts. A nil context is ignored.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		if ctx != nil {
			c.Context = ctx
		}
	}
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithRunner sets the process runner used to launch installers.
func WithRunner(r ProcessRunner) Option {
	return func(c *Config) {
		c.Runner = r
	}
}

// WithServiceOpener sets how services are looked up.
func WithServiceOpener(open ServiceOpener) Option {
	return func(c *Config) {
		c.OpenService = open
	}
}

// WithInstalledLookup sets how installed products are found.
func WithInstalledLookup(find InstalledLookup) Option {
	return func(c *Config) {
		c.FindInstalled = find
	}
}

// WithBackoffTimer sets the timer used between download attempts.
func WithBackoffTimer(t backoff.Timer) Option {
	return func(c *Config) {
		c.Timer = t
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Config) {
		c.Metrics = r
	}
}

func defaultConfig() Config {
	return Config{
		WorkDir:         os.TempDir(),
		MaxRetries:      DefaultMaxRetries,
		RetryInterval:   DefaultRetryInterval,
		StopTimeout:     DefaultStopTimeout,
		VSEdition:       DefaultVSEdition,
		VSInstallRoot:   platform.ProgramFilesX86Path(),
		InstallerEngine: platform.InstallerEnginePath(),
		HTTPClient:      http.DefaultClient,
		Context:         context.Background(),
		Runner:          ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr},
		OpenService:     platform.OpenService,
		FindInstalled:   platform.FindInstalledApp,
	}
}
