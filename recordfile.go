// Package recordfile is a small binary file layer for removable storage.
//
// It fixes two habits of common embedded file APIs: a "write" mode that really
// appends, and single-argument writes that store one byte of a wider scalar.
// Files are opened with an explicit OpenMode, every scalar is written at its
// full width in little-endian order, and variable-length data is stored as
// records of a 4-byte little-endian length followed by the payload.
//
// Example usage:
//
//	f, err := recordfile.Open("/sd/log.bin", recordfile.WriteTruncate, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer f.Close()
//
//	if _, err := f.WriteFloat32(21.5); err != nil {
//		log.Printf("write failed: %v", err)
//	}
//	if _, err := f.WriteData([]byte("sensor-a")); err != nil {
//		log.Printf("write failed: %v", err)
//	}
//
//	// Read it back without repeating the path.
//	if err := f.Reopen(recordfile.Read); err != nil {
//		log.Fatal(err)
//	}
//	temp, _ := f.ReadFloat32()
//	name, _ := f.ReadRecord()
//	fmt.Printf("%s: %.1f\n", name, temp)
package recordfile

import (
	"github.com/MikhailWahib/recordfile/internal/config"
	"github.com/MikhailWahib/recordfile/internal/diskmanager"
	"github.com/MikhailWahib/recordfile/internal/recordfile"
	"github.com/MikhailWahib/recordfile/internal/recordlog"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config struct populated with default values. Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// OpenMode selects how a file is opened.
type OpenMode = recordfile.OpenMode

// Open modes.
const (
	// Read opens an existing file read-only at the start.
	Read = recordfile.Read
	// WriteTruncate creates the file if needed and writes from offset 0,
	// discarding previous contents.
	WriteTruncate = recordfile.WriteTruncate
	// WriteAppend creates the file if needed and writes after existing contents.
	WriteAppend = recordfile.WriteAppend
)

// File is a single open record file. It is not safe for concurrent use.
type File = recordfile.RecordFile

// FileHandle is the raw storage handle returned by File.Handle.
type FileHandle = diskmanager.FileHandle

// DiskManager opens files on a storage volume. Implement it to put record
// files on something other than the host file system.
type DiskManager = diskmanager.DiskManager

// Log is an append-only sequence of records.
type Log = recordlog.Log

// Errors reported by File and Log. Compare with errors.Is.
var (
	ErrEmptyPath   = recordfile.ErrEmptyPath
	ErrInvalidMode = recordfile.ErrInvalidMode
	ErrClosed      = recordfile.ErrClosed
	ErrShortWrite  = recordlog.ErrShortWrite
	ErrTornRecord  = recordlog.ErrTornRecord
	ErrLogFailed   = recordlog.ErrFailed
)

// Open opens path on the host file system.
//
// The returned File is never nil: when the open fails it is left closed, its
// Valid method reports false, and Close is a safe no-op. cfg may be nil.
func Open(path string, mode OpenMode, cfg *Config) (*File, error) {
	return OpenWith(diskmanager.NewDiskManager(), path, mode, cfg)
}

// OpenWith is like Open but uses dm for storage access.
func OpenWith(dm DiskManager, path string, mode OpenMode, cfg *Config) (*File, error) {
	return recordfile.New(dm, path, mode, cfg)
}

// OpenLog opens or creates the record log at path on the host file system.
func OpenLog(path string, cfg *Config) (*Log, error) {
	return recordlog.New(diskmanager.NewDiskManager(), path, cfg)
}
