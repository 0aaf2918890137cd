// Package diskmanager provides the storage capability record files are built on.
// It opens files with explicit flags and hands out handles supporting sequential
// and random access, seeking, truncation and syncing.
package diskmanager

import (
	"io"
	"os"
)

// FileHandle abstracts an open file on a storage volume.
type FileHandle interface {
	// Read reads up to len(b) bytes from the current position.
	Read(b []byte) (int, error)
	// Write writes len(b) bytes at the current position, or at the end of
	// the file when it was opened with os.O_APPEND.
	Write(b []byte) (int, error)
	// ReadAt reads len(b) bytes from the file starting at byte offset off.
	// It returns the number of bytes read and any error encountered.
	ReadAt(b []byte, off int64) (int, error)
	// WriteAt writes len(b) bytes to the file starting at byte offset off.
	// It returns the number of bytes written and any error encountered.
	WriteAt(b []byte, off int64) (int, error)
	// Seek sets the position for the next Read or Write.
	Seek(offset int64, whence int) (int64, error)
	// Truncate changes the size of the file.
	Truncate(size int64) error
	// Close closes the file handle, rendering it unusable for I/O.
	Close() error
	// Sync commits the current contents of the file to stable storage.
	Sync() error
	// Stat returns the file stat
	Stat() (os.FileInfo, error)
}

var _ io.ReadWriteSeeker = FileHandle(nil)

type fileHandle struct {
	file *os.File
}

// NewFileHandle wraps an *os.File into a FileHandle implementation.
func NewFileHandle(file *os.File) FileHandle { return &fileHandle{file: file} }

func (fh *fileHandle) Read(b []byte) (int, error) { return fh.file.Read(b) }

func (fh *fileHandle) Write(b []byte) (int, error) { return fh.file.Write(b) }

func (fh *fileHandle) ReadAt(b []byte, off int64) (int, error) { return fh.file.ReadAt(b, off) }

func (fh *fileHandle) WriteAt(b []byte, off int64) (int, error) { return fh.file.WriteAt(b, off) }

func (fh *fileHandle) Seek(offset int64, whence int) (int64, error) {
	return fh.file.Seek(offset, whence)
}

func (fh *fileHandle) Truncate(size int64) error { return fh.file.Truncate(size) }

func (fh *fileHandle) Close() error { return fh.file.Close() }

func (fh *fileHandle) Sync() error { return fh.file.Sync() }

func (fh *fileHandle) Stat() (os.FileInfo, error) { return fh.file.Stat() }

// DiskManager defines methods for file operations.
type DiskManager interface {
	// Open opens a file with specified path, flags and permissions.
	// Every call returns a new handle owned by the caller.
	Open(path string, flags int, perm os.FileMode) (FileHandle, error)
	// Delete removes the named file.
	Delete(path string) error
}

type diskManager struct{}

// NewDiskManager creates a DiskManager backed by the host file system.
func NewDiskManager() DiskManager {
	return diskManager{}
}

func (diskManager) Open(path string, flags int, perm os.FileMode) (FileHandle, error) {
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return nil, err
	}
	return NewFileHandle(file), nil
}

func (diskManager) Delete(path string) error {
	return os.Remove(path)
}
