package provisioner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutcomeKind classifies an installer exit code.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRebootRequired
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRebootRequired:
		return "reboot-required"
	default:
		return "failure"
	}
}

// Outcome is the classified result of an installer run.
type Outcome struct {
	Kind OutcomeKind
	Code int // Raw exit code
}

// OK reports whether the install succeeded, with or without a pending reboot.
func (o Outcome) OK() bool {
	return o.Kind != OutcomeFailure
}

func (o Outcome) String() string {
	return fmt.Sprintf("%s (exit code %d)", o.Kind, o.Code)
}

// Installer exit codes with special meaning.
const (
	ExitRebootRequired   = 3010 // ERROR_SUCCESS_REBOOT_REQUIRED
	ExitAlreadyInstalled = 1001 // VSIXInstaller: extension already installed
)

// acceptSet maps the exit codes an installer family treats as success.
type acceptSet map[int]OutcomeKind

var (
	binaryAccept = acceptSet{
		0:                  OutcomeSuccess,
		ExitRebootRequired: OutcomeRebootRequired,
	}
	extensionAccept = acceptSet{
		0:                    OutcomeSuccess,
		ExitAlreadyInstalled: OutcomeSuccess,
	}
)

func classify(code int, accept acceptSet) Outcome {
	if kind, ok := accept[code]; ok {
		return Outcome{Kind: kind, Code: code}
	}
	return Outcome{Kind: OutcomeFailure, Code: code}
}

// ArtifactKind selects how an extension artifact is installed.
type ArtifactKind int

const (
	KindUnknown    ArtifactKind = iota // Resolve from the file name
	KindVSIX                           // Install through VSIXInstaller.exe
	KindExecutable                     // Run the artifact directly
)

func (k ArtifactKind) String() string {
	switch k {
	case KindVSIX:
		return "vsix"
	case KindExecutable:
		return "exe"
	default:
		return "auto"
	}
}

// KindFromName resolves an artifact kind from its file extension.
func KindFromName(name string) ArtifactKind {
	if strings.EqualFold(filepath.Ext(name), ".vsix") {
		return KindVSIX
	}
	return KindExecutable
}

// ParseArtifactKind parses "auto", "vsix", "exe" or "executable".
func ParseArtifactKind(s string) (ArtifactKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindUnknown, nil
	case "vsix":
		return KindVSIX, nil
	case "exe", "executable":
		return KindExecutable, nil
	default:
		return KindUnknown, fmt.Errorf("unknown artifact kind %q", s)
	}
}

func isMSI(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".msi")
}
