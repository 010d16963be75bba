package provisioner

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crafted-tech/provisioner/logging"
	"github.com/crafted-tech/provisioner/platform"
)

// instantTimer fires immediately and counts how often it was started.
type instantTimer struct {
	starts int
	waits  []time.Duration
	c      chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.starts++
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time {
	return t.c
}

type runCall struct {
	Path string
	Args []string
}

// fakeRunner records launches and replays exit codes.
type fakeRunner struct {
	calls []runCall
	codes []int
	err   error
}

func (f *fakeRunner) Run(path string, args []string) (int, error) {
	f.calls = append(f.calls, runCall{Path: path, Args: args})
	if f.err != nil {
		return -1, f.err
	}
	if len(f.codes) == 0 {
		return 0, nil
	}
	code := f.codes[0]
	f.codes = f.codes[1:]
	return code, nil
}

// fakeService is an in-memory platform.Service.
type fakeService struct {
	name       string
	state      platform.ServiceState
	dependents []string
	stopErr    error
	waitErr    error
	waitDelay  time.Duration   // time each wait takes
	timeouts   []time.Duration // timeout passed to each wait
	updateErr  error
	stops      int
	starts     int
	updates    []platform.ServiceUpdate
	closed     bool
	order      *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) State() (platform.ServiceState, error) { return s.state, nil }

func (s *fakeService) Start() error {
	s.starts++
	s.state = platform.StateStartPending
	return nil
}

func (s *fakeService) Stop() error {
	s.stops++
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if s.stopErr != nil {
		return s.stopErr
	}
	s.state = platform.StateStopPending
	return nil
}

func (s *fakeService) WaitForState(target platform.ServiceState, timeout time.Duration) error {
	s.timeouts = append(s.timeouts, timeout)
	time.Sleep(s.waitDelay)
	if s.waitErr != nil {
		return s.waitErr
	}
	s.state = target
	return nil
}

func (s *fakeService) Dependents() ([]string, error) {
	return s.dependents, nil
}

func (s *fakeService) Update(u platform.ServiceUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, u)
	return nil
}

func (s *fakeService) Close() error {
	s.closed = true
	return nil
}

// fakeServices resolves names to fake services.
type fakeServices struct {
	services  map[string]*fakeService
	lookupErr error
	opened    []string
}

func (f *fakeServices) open(name string) (platform.Service, error) {
	f.opened = append(f.opened, name)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	svc, ok := f.services[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("open service %s: %w", name, platform.ErrNotInstalled)
	}
	return svc, nil
}

func newFakeServices(services ...*fakeService) *fakeServices {
	f := &fakeServices{services: map[string]*fakeService{}}
	for _, s := range services {
		f.services[strings.ToLower(s.name)] = s
	}
	return f
}

const testEngine = "/windows/system32/msiexec.exe"

// testProvisioner wires fakes around a Provisioner.
type testProvisioner struct {
	*Provisioner
	timer    *instantTimer
	runner   *fakeRunner
	services *fakeServices
	workDir  string
	vsRoot   string
}

func newTestProvisioner(t *testing.T, opts ...Option) *testProvisioner {
	t.Helper()
	tp := &testProvisioner{
		timer:    &instantTimer{},
		runner:   &fakeRunner{},
		services: newFakeServices(),
		workDir:  t.TempDir(),
		vsRoot:   t.TempDir(),
	}
	base := []Option{
		WithWorkDir(tp.workDir),
		WithBackoffTimer(tp.timer),
		WithRunner(tp.runner),
		WithInstallerEngine(testEngine),
		WithVSInstallRoot(tp.vsRoot),
		WithServiceOpener(tp.services.open),
		WithInstalledLookup(func(string) (*platform.InstalledApp, error) { return nil, nil }),
		WithLogger(logging.Discard()),
	}
	tp.Provisioner = New(append(base, opts...)...)
	return tp
}

// flakyServer fails the first n requests with 503, then serves body.
func flakyServer(t *testing.T, failures int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if int(n) <= failures {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// noNetwork fails the test on any HTTP request.
type noNetwork struct{ t *testing.T }

func (n noNetwork) RoundTrip(r *http.Request) (*http.Response, error) {
	n.t.Errorf("unexpected request to %s", r.URL)
	return nil, fmt.Errorf("network disabled")
}
