package installer

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/platform"
)

type runCall struct {
	Path string
	Args []string
}

type fakeRunner struct {
	calls []runCall
	codes map[string]int // exit code by launched path
}

func (f *fakeRunner) Run(path string, args []string) (int, error) {
	f.calls = append(f.calls, runCall{Path: path, Args: args})
	return f.codes[path], nil
}

type fakeService struct {
	name    string
	state   platform.ServiceState
	stopErr error
	updates []platform.ServiceUpdate
}

func (s *fakeService) Name() string                          { return s.name }
func (s *fakeService) State() (platform.ServiceState, error) { return s.state, nil }
func (s *fakeService) Start() error                          { s.state = platform.StateRunning; return nil }
func (s *fakeService) Stop() error {
	if s.stopErr != nil {
		return s.stopErr
	}
	s.state = platform.StateStopped
	return nil
}
func (s *fakeService) WaitForState(platform.ServiceState, time.Duration) error { return nil }
func (s *fakeService) Dependents() ([]string, error)                           { return nil, nil }
func (s *fakeService) Update(u platform.ServiceUpdate) error {
	s.updates = append(s.updates, u)
	return nil
}
func (s *fakeService) Close() error { return nil }

type immediateTimer struct{ c chan time.Time }

func (t *immediateTimer) Start(time.Duration) {
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}
func (t *immediateTimer) Stop()               {}
func (t *immediateTimer) C() <-chan time.Time { return t.c }

type fixture struct {
	p         *provisioner.Provisioner
	runner    *fakeRunner
	services  map[string]*fakeService
	installed map[string]*platform.InstalledApp
	log       *logging.Logger
	workDir   string
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		runner:    &fakeRunner{codes: map[string]int{}},
		services:  map[string]*fakeService{},
		installed: map[string]*platform.InstalledApp{},
		log:       logging.Discard(),
		workDir:   t.TempDir(),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.exe" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "artifact")
	}))
	t.Cleanup(f.server.Close)

	f.p = provisioner.New(
		provisioner.WithWorkDir(f.workDir),
		provisioner.WithMaxRetries(2),
		provisioner.WithBackoffTimer(&immediateTimer{}),
		provisioner.WithRunner(f.runner),
		provisioner.WithInstallerEngine("msiexec"),
		provisioner.WithVSInstallRoot(t.TempDir()),
		provisioner.WithVisualStudio("2022", ""),
		provisioner.WithLogger(f.log),
		provisioner.WithServiceOpener(func(name string) (platform.Service, error) {
			if s, ok := f.services[name]; ok {
				return s, nil
			}
			return nil, platform.ErrNotInstalled
		}),
		provisioner.WithInstalledLookup(func(name string) (*platform.InstalledApp, error) {
			return f.installed[name], nil
		}),
	)
	return f
}

func (f *fixture) url(name string) string {
	return f.server.URL + "/" + name
}
