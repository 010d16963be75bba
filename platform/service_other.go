//go:build !windows && !linux

package platform

// OpenService is not supported on this platform.
func OpenService(name string) (Service, error) {
	return nil, ErrServiceUnsupported
}
