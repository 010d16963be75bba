package platform

import "errors"

// ErrLockHeld is returned by AcquireRunLock when another run holds the lock.
var ErrLockHeld = errors.New("run lock is held by another process")
