package installer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crafted-tech/provisioner"
	"github.com/crafted-tech/provisioner/catalog"
	"github.com/crafted-tech/provisioner/platform"
)

func TestStepInstallBinaryRebootRequired(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.workDir, "setup.exe")
	f.runner.codes[path] = 3010

	result := StepInstallBinary(f.p, provisioner.BinaryRequest{URL: f.url("setup.exe")}).Action()
	require.NoError(t, result.Err)
	assert.True(t, result.RebootRequired)
}

func TestStepInstallBinaryFailure(t *testing.T) {
	f := newFixture(t)
	f.runner.codes[filepath.Join(f.workDir, "setup.exe")] = 1603

	step := StepInstallBinary(f.p, provisioner.BinaryRequest{URL: f.url("setup.exe")})
	result := step.Action()
	assert.Equal(t, 1603, provisioner.ExitCode(result.Err))
	assert.Equal(t, ActionInstallBinary, step.Kind)
}

func TestStepFetch(t *testing.T) {
	f := newFixture(t)

	result := StepFetch(f.p, provisioner.FetchRequest{URL: f.url("tool.zip")}).Action()
	require.NoError(t, result.Err)
	assert.Equal(t, filepath.Join(f.workDir, "tool.zip"), result.Info)

	result = StepFetch(f.p, provisioner.FetchRequest{URL: f.url("missing.exe")}).Action()
	assert.ErrorIs(t, result.Err, provisioner.ErrDownloadExhausted)
}

func TestStepInstallExtensionAlreadyInstalled(t *testing.T) {
	f := newFixture(t)
	vsix := filepath.Join(f.p.Config().VSInstallRoot, "Microsoft Visual Studio", "2022", "Enterprise", "Common7", "IDE", "VSIXInstaller.exe")
	f.runner.codes[vsix] = 1001

	result := StepInstallExtension(f.p, provisioner.ExtensionRequest{URL: f.url("ext.vsix")}).Action()
	require.NoError(t, result.Err)
	assert.Equal(t, "already installed", result.Info)
}

func TestStepStopService(t *testing.T) {
	f := newFixture(t)
	f.services["w32time"] = &fakeService{name: "w32time", state: platform.StateRunning}
	f.services["broken"] = &fakeService{name: "broken", state: platform.StateRunning, stopErr: errors.New("denied")}

	result := StepStopService(f.p, []string{"w32time"}, false).Action()
	assert.Equal(t, Success(""), result)

	result = StepStopService(f.p, []string{"ghost"}, false).Action()
	assert.True(t, result.Skip)

	result = StepStopService(f.p, []string{"ghost", "w32time"}, false).Action()
	assert.Equal(t, "not found: ghost", result.Info)

	result = StepStopService(f.p, []string{"broken"}, true).Action()
	require.NoError(t, result.Err)
	assert.Contains(t, result.Warning, "broken: ")

	result = StepStopService(f.p, []string{"ghost"}, true).Action()
	assert.ErrorIs(t, result.Err, provisioner.ErrServiceNotFound)
}

func TestStepSetServiceNeverFails(t *testing.T) {
	f := newFixture(t)
	f.services["wuauserv"] = &fakeService{name: "wuauserv"}

	result := StepSetService(f.p, "wuauserv", map[string]string{"StartupType": "Disabled"}).Action()
	assert.Equal(t, Success(""), result)
	require.Len(t, f.services["wuauserv"].updates, 1)

	result = StepSetService(f.p, "wuauserv", map[string]string{"Bogus": "1"}).Action()
	require.NoError(t, result.Err)
	assert.NotEmpty(t, result.Warning)

	result = StepSetService(f.p, "ghost", map[string]string{"StartupType": "Manual"}).Action()
	require.NoError(t, result.Err)
	assert.True(t, result.Skip)
}

func testToolset(t *testing.T, url string) *catalog.Toolset {
	t.Helper()
	ts, err := catalog.Parse([]byte(`
visualStudio: {version: "2019", edition: Enterprise}
packages:
  - name: git
    version: 2.44.0
    url: ` + url + `/Git-2.44.0-64-bit.exe
    args: [/VERYSILENT]
    installedName: Git*
  - name: wix
    version: "3.14"
    url: ` + url + `/Votive2019.vsix
`))
	require.NoError(t, err)
	return ts
}

func TestStepInstallPackage(t *testing.T) {
	f := newFixture(t)
	ts := testToolset(t, f.server.URL)

	result := StepInstallPackage(f.p, ts, "git", "2.44").Action()
	require.NoError(t, result.Err)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, filepath.Join(f.workDir, "Git-2.44.0-64-bit.exe"), f.runner.calls[0].Path)
	assert.Equal(t, []string{"/VERYSILENT"}, f.runner.calls[0].Args)
}

func TestStepInstallPackageVersionDecision(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		wantRun   bool
	}{
		{name: "older installed upgrades", installed: "2.43.0", wantRun: true},
		{name: "same version skips", installed: "2.44.0", wantRun: false},
		{name: "newer installed skips", installed: "2.45.1", wantRun: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.installed["Git*"] = &platform.InstalledApp{DisplayName: "Git", DisplayVersion: tt.installed}

			result := StepInstallPackage(f.p, testToolset(t, f.server.URL), "git", "").Action()
			require.NoError(t, result.Err)
			assert.Equal(t, !tt.wantRun, result.Skip)
			assert.Equal(t, tt.wantRun, len(f.runner.calls) == 1)
		})
	}
}

func TestStepInstallPackageVSIXUsesToolsetVersion(t *testing.T) {
	f := newFixture(t)

	result := StepInstallPackage(f.p, testToolset(t, f.server.URL), "wix", "").Action()
	require.NoError(t, result.Err)
	require.Len(t, f.runner.calls, 1)
	assert.Contains(t, f.runner.calls[0].Path, filepath.Join("Microsoft Visual Studio", "2019"))
}

func TestStepInstallPackageNotFound(t *testing.T) {
	f := newFixture(t)

	result := StepInstallPackage(f.p, testToolset(t, f.server.URL), "python", "").Action()
	assert.ErrorIs(t, result.Err, catalog.ErrPackageNotFound)

	result = StepInstallPackage(f.p, nil, "git", "").Action()
	assert.Error(t, result.Err)
}

func TestStepInstallPackageMSIKindUsesEngine(t *testing.T) {
	f := newFixture(t)
	ts, err := catalog.Parse([]byte(`
packages:
  - {name: sdk, version: "10.0", url: ` + f.server.URL + `/download, file: sdk-setup, kind: msi, args: [/S]}
`))
	require.NoError(t, err)

	result := StepInstallPackage(f.p, ts, "sdk", "").Action()
	require.NoError(t, result.Err)
	require.Len(t, f.runner.calls, 1)
	assert.Equal(t, "msiexec", f.runner.calls[0].Path)
	assert.Equal(t, []string{"/i", filepath.Join(f.workDir, "sdk-setup"), "/QN", "/norestart"}, f.runner.calls[0].Args)
}
