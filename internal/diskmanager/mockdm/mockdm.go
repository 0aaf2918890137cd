// Package mockdm provides an in-memory implementation of the disk manager for testing.
// It honors the open flags record files depend on and can emulate a full card.
package mockdm

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/MikhailWahib/recordfile/internal/diskmanager"
)

var errAppendWriteAt = errors.New("mockdm: invalid use of WriteAt on file opened with O_APPEND")

// memFile holds the contents of one path. Handles opened on the same path share it.
type memFile struct {
	name    string
	data    []byte
	modTime time.Time
}

// MockFile implements diskmanager.FileHandle for testing purposes.
type MockFile struct {
	dm     *MockDiskManager
	file   *memFile
	flags  int
	pos    int64
	closed bool
}

func (m *MockFile) readable() bool { return m.flags&(os.O_WRONLY|os.O_RDWR) != os.O_WRONLY }

func (m *MockFile) writable() bool { return m.flags&(os.O_WRONLY|os.O_RDWR) != 0 }

func (m *MockFile) pathErr(op string, err error) error {
	return &os.PathError{Op: op, Path: m.file.name, Err: err}
}

// Read reads from the current position.
func (m *MockFile) Read(b []byte) (int, error) {
	if m.closed {
		return 0, m.pathErr("read", os.ErrClosed)
	}
	if !m.readable() {
		return 0, m.pathErr("read", os.ErrPermission)
	}
	n, err := m.readAt(b, m.pos)
	m.pos += int64(n)
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

// Write writes at the current position, or at the end for O_APPEND handles.
func (m *MockFile) Write(b []byte) (int, error) {
	if m.closed {
		return 0, m.pathErr("write", os.ErrClosed)
	}
	if !m.writable() {
		return 0, m.pathErr("write", os.ErrPermission)
	}
	if m.flags&os.O_APPEND != 0 {
		m.pos = int64(len(m.file.data))
	}
	n, err := m.writeAt(b, m.pos)
	m.pos += int64(n)
	return n, err
}

// WriteAt writes len(b) bytes to the file starting at byte offset off.
func (m *MockFile) WriteAt(b []byte, off int64) (int, error) {
	if m.closed {
		return 0, m.pathErr("write", os.ErrClosed)
	}
	if !m.writable() {
		return 0, m.pathErr("write", os.ErrPermission)
	}
	if m.flags&os.O_APPEND != 0 {
		return 0, errAppendWriteAt
	}
	return m.writeAt(b, off)
}

// ReadAt reads len(b) bytes from the file starting at byte offset off.
func (m *MockFile) ReadAt(b []byte, off int64) (int, error) {
	if m.closed {
		return 0, m.pathErr("read", os.ErrClosed)
	}
	if !m.readable() {
		return 0, m.pathErr("read", os.ErrPermission)
	}
	return m.readAt(b, off)
}

func (m *MockFile) readAt(b []byte, off int64) (int, error) {
	if off >= int64(len(m.file.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.file.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// writeAt extends the file as needed, stopping at the manager's capacity.
func (m *MockFile) writeAt(b []byte, off int64) (int, error) {
	want := b
	if limit := m.dm.Capacity; limit > 0 {
		room := limit - off
		if room < 0 {
			room = 0
		}
		if int64(len(want)) > room {
			want = want[:room]
		}
	}
	if end := off + int64(len(want)); end > int64(len(m.file.data)) {
		grown := make([]byte, end)
		copy(grown, m.file.data)
		m.file.data = grown
	}
	n := copy(m.file.data[off:], want)
	m.file.modTime = time.Now()
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Seek sets the position for the next Read or Write.
func (m *MockFile) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, m.pathErr("seek", os.ErrClosed)
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.file.data)) + offset
	default:
		return 0, m.pathErr("seek", os.ErrInvalid)
	}
	if abs < 0 {
		return 0, m.pathErr("seek", os.ErrInvalid)
	}
	m.pos = abs
	return abs, nil
}

// Truncate changes the size of the file.
func (m *MockFile) Truncate(size int64) error {
	if m.closed {
		return m.pathErr("truncate", os.ErrClosed)
	}
	if !m.writable() || size < 0 {
		return m.pathErr("truncate", os.ErrInvalid)
	}
	if m.dm.TruncateErr != nil {
		return m.pathErr("truncate", m.dm.TruncateErr)
	}
	resized := make([]byte, size)
	copy(resized, m.file.data)
	m.file.data = resized
	return nil
}

// Close closes the mock file. Closing twice reports os.ErrClosed like *os.File.
func (m *MockFile) Close() error {
	if m.closed {
		return m.pathErr("close", os.ErrClosed)
	}
	m.closed = true
	return nil
}

// Sync simulates syncing file contents to disk
func (m *MockFile) Sync() error {
	if m.closed {
		return m.pathErr("sync", os.ErrClosed)
	}
	m.dm.Syncs++
	return nil
}

// Stat returns file information
func (m *MockFile) Stat() (os.FileInfo, error) {
	return &testFileInfo{size: int64(len(m.file.data)), name: m.file.name, modTime: m.file.modTime}, nil
}

type testFileInfo struct {
	size    int64
	name    string
	modTime time.Time
}

func (m *testFileInfo) Name() string       { return m.name }
func (m *testFileInfo) Size() int64        { return m.size }
func (m *testFileInfo) Mode() os.FileMode  { return 0644 }
func (m *testFileInfo) ModTime() time.Time { return m.modTime }
func (m *testFileInfo) IsDir() bool        { return false }
func (m *testFileInfo) Sys() any           { return nil }

// MockDiskManager implements diskmanager.DiskManager interface for testing
type MockDiskManager struct {
	files map[string]*memFile

	// Capacity is the largest size any file may grow to. Zero means unlimited.
	// Writes crossing it are cut short with io.ErrShortWrite.
	Capacity int64
	// Syncs counts Sync calls across all handles.
	Syncs int
	// TruncateErr, when set, makes every Truncate fail with it.
	TruncateErr error
}

// NewMockDiskManager creates a new MockDiskManager instance
func NewMockDiskManager() *MockDiskManager {
	return &MockDiskManager{
		files: make(map[string]*memFile),
	}
}

// Open opens a handle on a mock file, creating or truncating it per flags.
func (dm *MockDiskManager) Open(path string, flags int, _ os.FileMode) (diskmanager.FileHandle, error) {
	file, exists := dm.files[path]
	if !exists {
		if flags&os.O_CREATE == 0 {
			return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
		}
		file = &memFile{name: path, modTime: time.Now()}
		dm.files[path] = file
	} else if flags&os.O_CREATE != 0 && flags&os.O_EXCL != 0 {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrExist}
	}

	if flags&os.O_TRUNC != 0 && flags&(os.O_WRONLY|os.O_RDWR) != 0 {
		file.data = nil
	}
	return &MockFile{dm: dm, file: file, flags: flags}, nil
}

// Delete removes a mock file
func (dm *MockDiskManager) Delete(path string) error {
	if _, exists := dm.files[path]; !exists {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}
	delete(dm.files, path)
	return nil
}

// Contents returns a copy of the bytes stored at path.
func (dm *MockDiskManager) Contents(path string) ([]byte, bool) {
	file, exists := dm.files[path]
	if !exists {
		return nil, false
	}
	return append([]byte(nil), file.data...), true
}

// SetContents replaces the bytes stored at path, creating the file if needed.
func (dm *MockDiskManager) SetContents(path string, data []byte) {
	dm.files[path] = &memFile{name: path, data: append([]byte(nil), data...), modTime: time.Now()}
}
