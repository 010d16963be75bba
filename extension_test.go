package provisioner

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vsixInstaller(root, version string) string {
	return filepath.Join(root, "Microsoft Visual Studio", version, "Enterprise", "Common7", "IDE", "VSIXInstaller.exe")
}

func TestInstallExtensionVSIX(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t)

	outcome, err := tp.InstallExtension(ExtensionRequest{
		URL:       srv.URL + "/foo.vsix",
		Name:      "foo.vsix",
		VSVersion: "2019",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome.Kind)

	path := filepath.Join(tp.workDir, "foo.vsix")
	require.Len(t, tp.runner.calls, 1)
	assert.Equal(t, vsixInstaller(tp.vsRoot, "2019"), tp.runner.calls[0].Path)
	assert.Equal(t, []string{"/quiet", `"` + path + `"`}, tp.runner.calls[0].Args)
	assert.NoFileExists(t, path, "downloaded artifact is removed")
}

func TestInstallExtensionUsesConfiguredVersionAndEdition(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t, WithVisualStudio("2022", "BuildTools"))

	_, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/foo.vsix"})
	require.NoError(t, err)

	want := filepath.Join(tp.vsRoot, "Microsoft Visual Studio", "2022", "BuildTools", "Common7", "IDE", "VSIXInstaller.exe")
	assert.Equal(t, want, tp.runner.calls[0].Path)
}

func TestInstallExtensionWithoutVersion(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t)

	_, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/foo.vsix"})
	assert.ErrorIs(t, err, ErrLaunchFailed)
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, tp.runner.calls)
}

func TestInstallExtensionExecutable(t *testing.T) {
	srv, _ := flakyServer(t, 0, "exe")
	tp := newTestProvisioner(t)

	_, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/SSDT-Setup.exe"})
	require.NoError(t, err)

	path := filepath.Join(tp.workDir, "SSDT-Setup.exe")
	assert.Equal(t, runCall{Path: path, Args: []string{"/Q"}}, tp.runner.calls[0])
}

func TestInstallExtensionExplicitKindOverridesName(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t, WithVisualStudio("2022", ""))

	_, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/download", Name: "extension.bin", Kind: KindVSIX})
	require.NoError(t, err)
	assert.Equal(t, vsixInstaller(tp.vsRoot, "2022"), tp.runner.calls[0].Path)
}

func TestInstallExtensionExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		wantKind OutcomeKind
		wantExit int
	}{
		{name: "success", code: 0, wantKind: OutcomeSuccess, wantExit: 0},
		{name: "already installed", code: 1001, wantKind: OutcomeSuccess, wantExit: 0},
		{name: "failure collapses to 1", code: 2003, wantKind: OutcomeFailure, wantExit: 1},
		{name: "reboot code is a failure here", code: 3010, wantKind: OutcomeFailure, wantExit: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := flakyServer(t, 0, "vsix")
			tp := newTestProvisioner(t, WithVisualStudio("2019", ""))
			tp.runner.codes = []int{tt.code}

			outcome, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/foo.vsix"})
			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, tt.code, outcome.Code)
			assert.Equal(t, tt.wantExit, ExitCode(err))

			path := filepath.Join(tp.workDir, "foo.vsix")
			if tt.wantExit == 0 {
				assert.NoFileExists(t, path)
			} else {
				assert.ErrorIs(t, err, ErrNonZeroExit)
				assert.FileExists(t, path, "failed installs keep the artifact")
			}
		})
	}
}

func TestInstallExtensionInstallOnly(t *testing.T) {
	tp := newTestProvisioner(t, WithVisualStudio("2019", ""))
	tp.Provisioner.cfg.HTTPClient = &http.Client{Transport: noNetwork{t}}

	staged := filepath.Join(t.TempDir(), "staged.vsix")
	require.NoError(t, os.WriteFile(staged, []byte("vsix"), 0o644))

	_, err := tp.InstallExtension(ExtensionRequest{Name: "staged.vsix", FilePath: staged, InstallOnly: true})
	require.NoError(t, err)

	assert.FileExists(t, staged, "caller file is kept")
	assert.Equal(t, []string{"/quiet", `"` + staged + `"`}, tp.runner.calls[0].Args)
}

func TestInstallExtensionInstallOnlyFromWorkDir(t *testing.T) {
	tp := newTestProvisioner(t)
	staged := filepath.Join(tp.workDir, "tool.exe")
	require.NoError(t, os.WriteFile(staged, []byte("exe"), 0o644))

	_, err := tp.InstallExtension(ExtensionRequest{Name: "tool.exe", InstallOnly: true})
	require.NoError(t, err)
	assert.Equal(t, runCall{Path: staged, Args: []string{"/Q"}}, tp.runner.calls[0])
	assert.FileExists(t, staged)
}

func TestInstallExtensionInstallOnlyNeedsPath(t *testing.T) {
	tp := newTestProvisioner(t)

	_, err := tp.InstallExtension(ExtensionRequest{InstallOnly: true})
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, tp.runner.calls)
}

func TestInstallExtensionLaunchFailure(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t, WithVisualStudio("2019", ""))
	tp.runner.err = errors.New("file not found")

	_, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/foo.vsix"})
	assert.ErrorIs(t, err, ErrLaunchFailed)
	assert.Equal(t, 1, ExitCode(err))
}

func TestInstallExtensionCleanupFailure(t *testing.T) {
	srv, _ := flakyServer(t, 0, "vsix")
	tp := newTestProvisioner(t, WithVisualStudio("2019", ""))
	// the installer removes the artifact itself, so the cleanup has nothing to delete
	tp.Provisioner.cfg.Runner = runnerFunc(func(path string, args []string) (int, error) {
		return 0, os.Remove(filepath.Join(tp.workDir, "foo.vsix"))
	})

	outcome, err := tp.InstallExtension(ExtensionRequest{URL: srv.URL + "/foo.vsix"})
	assert.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.ErrorIs(t, err, ErrCleanupFailed)
	assert.Equal(t, 1, ExitCode(err))
}

type runnerFunc func(path string, args []string) (int, error)

func (f runnerFunc) Run(path string, args []string) (int, error) {
	return f(path, args)
}
