//go:build !unix

package buffer

import "errors"

// MappedFile is unavailable on platforms without MAP_SHARED mappings.
type MappedFile struct {
	Buffer
}

var errUnsupported = errors.New("shared file mappings are not supported on this platform")

// MapNew is not supported on this platform.
func MapNew(path string, size int) (*MappedFile, error) {
	return nil, errUnsupported
}

// MapExisting is not supported on this platform.
func MapExisting(path string) (*MappedFile, error) {
	return nil, errUnsupported
}

// Path returns an empty string on this platform.
func (m *MappedFile) Path() string { return "" }

// Close is a no-op on this platform.
func (m *MappedFile) Close() error { return nil }
