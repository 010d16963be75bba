//go:build linux || darwin

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// lockDir is where run lock files are created.
var lockDir = os.TempDir

// AcquireRunLock takes an exclusive file lock so that only one provisioning
// run installs at a time. It returns ErrLockHeld when another run holds the
// lock. The lock file is left in place on release; deleting it would let a
// later run lock a new inode while another still holds the old one.
func AcquireRunLock(name string) (release func(), err error) {
	lockPath := filepath.Join(lockDir(), name+".lock")

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}

	file.Truncate(0)
	file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)

	return func() {
		file.Truncate(0)
		unix.Flock(int(file.Fd()), unix.LOCK_UN)
		file.Close()
	}, nil
}
