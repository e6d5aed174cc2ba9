//go:build unix

package buffer

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile is a Buffer backed by a MAP_SHARED file mapping, so the same
// bytes are visible to every process that maps the file. It satisfies the
// buffer contract of never owning component memory: the file lifecycle
// belongs to whoever created it, the MappedFile only owns its own mapping.
type MappedFile struct {
	Buffer
	file *os.File
	mem  []byte
}

// MapNew creates a file of the given size and maps it shared. It fails if
// the file already exists.
func MapNew(path string, size int) (*MappedFile, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mapping size must be positive: size=%d", size)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create mapping file %s: %w", path, err)
	}

	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("resize mapping file: %w", err)
	}

	return mapFile(file, size)
}

// MapExisting opens and maps an existing file in its entirety.
func MapExisting(path string) (*MappedFile, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open mapping file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat mapping file: %w", err)
	}
	if info.Size() == 0 {
		file.Close()
		return nil, fmt.Errorf("mapping file %s is empty", path)
	}

	return mapFile(file, int(info.Size()))
}

// mapFile maps the file shared and wraps the region
func mapFile(file *os.File, size int) (*MappedFile, error) {
	mem, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap %s: %w", file.Name(), err)
	}

	m := &MappedFile{
		Buffer: Buffer{data: mem},
		file:   file,
		mem:    mem,
	}
	m.VerifyAlignment()
	return m, nil
}

// Path returns the path of the mapped file.
func (m *MappedFile) Path() string {
	return m.file.Name()
}

// Close unmaps the region and closes the file. The file itself is not
// removed. Using the Buffer after Close is a contract violation.
func (m *MappedFile) Close() error {
	if m.mem == nil {
		return nil
	}

	err := unix.Munmap(m.mem)
	m.mem = nil
	m.Buffer.data = nil

	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}
