package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/catalog"
	"github.com/crafted-tech/provisioner/config"
	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/metrics"
	"github.com/crafted-tech/provisioner/platform"
)

// Command annotations read by the root pre-run hook.
const (
	annotationLock    = "provision/lock"
	annotationToolset = "provision/toolset"
)

const runLockName = "provision"

// errLockHeld is returned when another run holds the machine-wide lock.
var errLockHeld = errors.New("another provisioning run is in progress")

var (
	acquireRunLock = platform.AcquireRunLock
	notifyContext  = signal.NotifyContext
	isElevated     = platform.IsElevated
	osVersion      = platform.OSVersion
)

type globalFlags struct {
	configPath  string
	workDir     string
	isolate     bool
	logLevel    string
	logFile     string
	metricsFile string
	toolset     string
	maxRetries  int
	noLock      bool
}

// app holds per-invocation state shared by the commands.
type app struct {
	flags  globalFlags
	stdout io.Writer
	stderr io.Writer
	extra  []provisioner.Option

	runID       string
	log         *logging.Logger
	metrics     *metrics.Recorder
	metricsFile string
	prov        *provisioner.Provisioner
	toolset     *catalog.Toolset
	release     func()
	ctx         context.Context
	stopSignals context.CancelFunc
}

func newApp(stdout, stderr io.Writer, extra ...provisioner.Option) *app {
	return &app{stdout: stdout, stderr: stderr, extra: extra}
}

// setup loads settings and builds the provisioner for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	a.runID = uuid.NewString()
	level := firstNonEmpty(a.flags.logLevel, cfg.LogLevel, "info")
	a.log = logging.New("provision", logging.Level(level), logging.Output(a.stderr)).WithField("run_id", a.runID)

	if logFile := firstNonEmpty(a.flags.logFile, cfg.LogFile); logFile != "" {
		path, err := homedir.Expand(logFile)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		if err := a.log.AttachFile(path); err != nil {
			return err
		}
	}

	if cmd.Annotations[annotationLock] != "" && !a.flags.noLock {
		release, err := acquireRunLock(runLockName)
		if errors.Is(err, platform.ErrLockHeld) {
			return errLockHeld
		}
		if err != nil {
			return fmt.Errorf("acquire run lock: %w", err)
		}
		a.release = release
	}

	if cmd.Annotations[annotationLock] != "" && !isElevated() {
		a.log.Warn("Not running elevated; service control and MSI installs may fail")
	}

	// The first interrupt cancels the run: downloads and retry waits stop
	// and no further step starts. Signal handling is then restored so a
	// second interrupt terminates the process, installer included.
	a.ctx, a.stopSignals = notifyContext(commandContext(cmd), os.Interrupt)
	go func(ctx context.Context, stop context.CancelFunc) {
		<-ctx.Done()
		stop()
	}(a.ctx, a.stopSignals)

	// Visual Studio settings: toolset first, then the settings file, then
	// per-command flags; each non-empty value overrides the previous one.
	opts := []provisioner.Option{provisioner.WithContext(a.ctx)}
	if cmd.Annotations[annotationToolset] != "" {
		if path := catalog.Locate(firstNonEmpty(a.flags.toolset, cfg.Toolset)); path != "" {
			a.toolset, err = catalog.Load(path)
			if err != nil {
				return err
			}
			a.log.Debug("Loaded toolset %s with %d packages", path, len(a.toolset.Packages))
			vs := a.toolset.VisualStudio
			opts = append(opts, provisioner.WithVisualStudio(vs.Version, vs.Edition))
		}
	}
	opts = append(opts, cfg.Options()...)

	if a.flags.workDir != "" {
		opts = append(opts, provisioner.WithWorkDir(a.flags.workDir))
	}
	if a.flags.maxRetries > 0 {
		opts = append(opts, provisioner.WithMaxRetries(a.flags.maxRetries))
	}

	a.metricsFile = firstNonEmpty(a.flags.metricsFile, cfg.MetricsFile)
	if a.metricsFile != "" {
		a.metrics = metrics.NewRecorder()
		opts = append(opts, provisioner.WithMetrics(a.metrics))
	}

	opts = append(opts, provisioner.WithLogger(a.log))
	opts = append(opts, a.extra...)
	a.prov = provisioner.New(opts...)

	if a.flags.isolate {
		dir := filepath.Join(a.prov.Config().WorkDir, "provision-"+a.runID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create isolated work dir: %w", err)
		}
		a.prov = provisioner.New(append(opts, provisioner.WithWorkDir(dir))...)
	}
	a.log.Debug("Work directory: %s", a.prov.Config().WorkDir)
	return nil
}

// finish writes metrics, releases the run lock and closes the log.
func (a *app) finish() {
	if a.metrics != nil && a.metricsFile != "" {
		if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
			a.log.Warn("Unable to write metrics: %v", err)
		}
	}
	if a.stopSignals != nil {
		a.stopSignals()
	}
	if a.release != nil {
		a.release()
		a.release = nil
	}
	a.log.Close()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
