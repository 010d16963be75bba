package provisioner

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

// FetchRequest describes an artifact download.
type FetchRequest struct {
	URL        string
	Name       string // File name; defaults to the last segment of the URL path
	Dir        string // Destination directory; defaults to the work directory
	MaxRetries int    // Download attempts; values below 1 use the configured budget
}

// Fetch downloads an artifact and returns its local path.
//
// Each attempt re-downloads the whole file. A failed attempt removes the
// partial file and waits the retry interval before the next one. When every
// attempt has failed Fetch returns an *ExitError with code 1 wrapping
// ErrDownloadExhausted; it never returns a path without a completed download.
func (p *Provisioner) Fetch(req FetchRequest) (string, error) {
	name := req.Name
	if name == "" {
		name = nameFromURL(req.URL)
	}
	if name == "" {
		return "", exitError("fetch", 1, errors.Errorf("cannot derive a file name from %q", req.URL))
	}
	if !isPlainFileName(name) {
		return "", exitError("fetch", 1, errors.Errorf("file name %q must not contain a directory", name))
	}

	dir := req.Dir
	if dir == "" {
		dir = p.cfg.WorkDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", exitError("fetch", 1, errors.Wrapf(err, "create directory %s", dir))
	}
	filePath := filepath.Join(dir, name)

	budget := req.MaxRetries
	if budget < 1 {
		budget = p.cfg.MaxRetries
	}
	if budget < 1 {
		budget = DefaultMaxRetries
	}

	p.log.Info("Downloading package from: %s to path %s", req.URL, filePath)

	start := time.Now()
	attempts := 0
	operation := func() error {
		attempts++
		attemptStart := time.Now()
		if err := p.download(req.URL, filePath); err != nil {
			p.cfg.Metrics.RecordFetchAttempt(false)
			os.Remove(filePath)
			p.log.Warn("There is an error during package downloading after %.0f seconds: %v",
				time.Since(attemptStart).Seconds(), err)
			return err
		}
		p.cfg.Metrics.RecordFetchAttempt(true)
		return nil
	}
	notify := func(_ error, wait time.Duration) {
		p.log.Info("Waiting %.0f seconds before retrying. Retries left: %d", wait.Seconds(), budget-attempts)
	}

	ctx := p.context()
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.cfg.RetryInterval), uint64(budget-1)), ctx)
	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, p.cfg.Timer); err != nil {
		if ctx.Err() != nil {
			p.log.Warn("Download of %s cancelled after %d attempts", req.URL, attempts)
			return "", exitError("fetch", 1, errors.Wrapf(ctx.Err(), "download %s cancelled", req.URL))
		}
		p.log.Error("File can't be downloaded. Please try later or check that file exists by url: %s", req.URL)
		return "", exitError("fetch", 1,
			errors.Wrapf(ErrDownloadExhausted, "%s after %d attempts: %v", req.URL, attempts, err))
	}

	elapsed := time.Since(start)
	p.cfg.Metrics.RecordFetchDuration(elapsed)
	p.log.Info("Package downloaded successfully in %.2f seconds", elapsed.Seconds())
	return filePath, nil
}

func (p *Provisioner) download(rawURL, filePath string) error {
	httpReq, err := http.NewRequestWithContext(p.context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("unexpected HTTP status %s", resp.Status)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return errors.Wrap(err, "write file")
	}
	return errors.Wrap(f.Close(), "close file")
}

// isPlainFileName reports whether name is a bare file name that stays
// inside the destination directory.
func isPlainFileName(name string) bool {
	if name == "." || name == ".." || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// nameFromURL returns the last path segment of rawURL, ignoring any query.
func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
