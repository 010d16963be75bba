// Package logging provides the structured logger used across the provisioner.
//
// A Logger writes human-readable lines to stderr through logrus, keeps an
// in-memory copy of every line, and can mirror the lines to a log file so a
// provisioning pipeline can archive the run next to the image build logs.
//
//	log := logging.New("provision", logging.Level("debug"))
//	if err := log.AttachFile(`C:\image\logs\provision.log`); err != nil {
//	    return err
//	}
//	defer log.Close()
//	log.Step("Installing %s", name)
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Setter adjusts the underlying logrus logger.
type Setter func(*logrus.Logger) error

// Logger is safe for concurrent use. The zero value is not usable; a nil
// *Logger discards everything.
type Logger struct {
	entry *logrus.Entry
	sink  *sink
}

// sink holds the state shared between a Logger and the loggers derived from it.
type sink struct {
	mu       sync.Mutex
	file     *os.File
	path     string
	messages []string
}

const stepField = "step"

// New creates a Logger tagged with the given component.
func New(component string, setters ...Setter) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetOutput(os.Stderr)

	s := &sink{messages: make([]string, 0, 100)}
	l.AddHook(&sinkHook{sink: s})

	for _, setter := range setters {
		if err := setter(l); err != nil {
			l.WithError(err).Warn("unable to apply logger setting")
		}
	}

	return &Logger{
		entry: l.WithField("component", component),
		sink:  s,
	}
}

// Discard returns a Logger that only records lines in memory.
func Discard() *Logger {
	return New("discard", Output(io.Discard))
}

// Level sets the minimum level. Unknown levels fall back to info.
func Level(lvl string) Setter {
	return func(r *logrus.Logger) error {
		l, err := logrus.ParseLevel(lvl)
		if err != nil {
			r.SetLevel(logrus.InfoLevel)
			return fmt.Errorf("unable to parse provided level %q: %w", lvl, err)
		}
		r.SetLevel(l)
		return nil
	}
}

// Output redirects console output.
func Output(w io.Writer) Setter {
	return func(r *logrus.Logger) error {
		r.SetOutput(w)
		return nil
	}
}

// AttachFile appends all subsequent lines to the file at path.
func (l *Logger) AttachFile(path string) error {
	if l == nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l.sink.mu.Lock()
	if l.sink.file != nil {
		l.sink.file.Close()
	}
	l.sink.file = f
	l.sink.path = path
	l.sink.mu.Unlock()

	l.Info("=== Log started: %s ===", time.Now().Format(time.RFC3339))
	return nil
}

// Close writes a trailer and closes the log file, if any.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.sink.mu.Lock()
	hasFile := l.sink.file != nil
	l.sink.mu.Unlock()
	if !hasFile {
		return
	}

	l.Info("=== Log ended: %s ===", time.Now().Format(time.RFC3339))

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.file.Close()
	l.sink.file = nil
}

// Path returns the attached log file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.path
}

// Content returns every line logged so far.
func (l *Logger) Content() string {
	if l == nil {
		return ""
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return strings.Join(l.sink.messages, "\n")
}

// WithField returns a Logger that adds key=value to every entry.
func (l *Logger) WithField(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{entry: l.entry.WithField(key, value), sink: l.sink}
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(logrus.DebugLevel, false, format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(logrus.InfoLevel, false, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(logrus.WarnLevel, false, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(logrus.ErrorLevel, false, format, args...)
}

// Step logs a major milestone.
func (l *Logger) Step(format string, args ...any) {
	l.log(logrus.InfoLevel, true, format, args...)
}

func (l *Logger) log(level logrus.Level, step bool, format string, args ...any) {
	if l == nil {
		return
	}
	entry := l.entry
	if step {
		entry = entry.WithField(stepField, true)
	}
	entry.Logf(level, format, args...)
}

// sinkHook copies entries into the in-memory buffer and the log file.
type sinkHook struct {
	sink *sink
}

func (h *sinkHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *sinkHook) Fire(e *logrus.Entry) error {
	line := fmt.Sprintf("[%s] %s: %s", e.Time.Format("15:04:05.000"), tag(e), e.Message)

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.messages = append(h.sink.messages, line)
	if h.sink.file != nil {
		fmt.Fprintln(h.sink.file, line)
		h.sink.file.Sync()
	}
	return nil
}

func tag(e *logrus.Entry) string {
	if step, _ := e.Data[stepField].(bool); step {
		return "STEP"
	}
	switch e.Level {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "ERROR"
	default:
		return strings.ToUpper(e.Level.String())
	}
}
