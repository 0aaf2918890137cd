// Package recordfile wraps a single storage file with predictable open modes,
// full-width scalar I/O and length-prefixed records.
//
// Scalars are always written with their full width in little-endian order, so a
// uint16 costs two bytes and a float32 four, whatever the value. Records are
// framed as a 4-byte little-endian length followed by the payload.
//
// A RecordFile is not safe for concurrent use; it belongs to one goroutine.
package recordfile

import (
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/zeebo/errs"

	"github.com/MikhailWahib/recordfile/internal/config"
	"github.com/MikhailWahib/recordfile/internal/diskmanager"
	"github.com/MikhailWahib/recordfile/internal/record"
)

// Error is the error class for record file failures.
var Error = errs.Class("recordfile")

var (
	// ErrEmptyPath is returned when a file is opened without a path.
	ErrEmptyPath = Error.New("empty path")
	// ErrInvalidMode is returned for an OpenMode outside Read, WriteTruncate and WriteAppend.
	ErrInvalidMode = Error.New("invalid open mode")
	// ErrClosed is returned by I/O on a file that is not open.
	ErrClosed = Error.New("file not open")
)

// RecordFile owns one open handle and the path it was opened with.
type RecordFile struct {
	dm     diskmanager.DiskManager
	cfg    *config.Config
	logger *slog.Logger

	path   string
	mode   OpenMode
	handle diskmanager.FileHandle // nil while closed
}

// New opens path on dm in the given mode.
//
// The returned RecordFile is never nil. When the open fails it is left closed,
// Valid reports false and Close is a no-op, so callers may defer Close right away.
func New(dm diskmanager.DiskManager, path string, mode OpenMode, cfg *config.Config) (*RecordFile, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else {
		c := *cfg
		c.FillDefaults()
		cfg = &c
	}

	f := &RecordFile{
		dm:     dm,
		cfg:    cfg,
		logger: cfg.Logger.With(slog.String("path", path)),
		path:   path,
		mode:   mode,
	}
	if err := cfg.Validate(); err != nil {
		return f, Error.Wrap(err)
	}
	return f, f.open(mode)
}

func (f *RecordFile) open(mode OpenMode) error {
	f.mode = mode
	if f.path == "" {
		return ErrEmptyPath
	}
	flags, err := mode.flags()
	if err != nil {
		return err
	}

	handle, err := f.dm.Open(f.path, flags, f.cfg.Perm)
	if err != nil {
		f.logger.Debug("open failed", slog.Any("mode", mode), slog.Any("err", err))
		return Error.Wrap(err)
	}
	f.handle = handle
	f.logger.Debug("opened", slog.Any("mode", mode))
	return nil
}

// Reopen closes the file and opens the same path again in mode.
// The usual pattern is writing a file, then reopening it for reading.
func (f *RecordFile) Reopen(mode OpenMode) error {
	return errs.Combine(f.Close(), f.open(mode))
}

// Close closes the underlying handle. Calling Close on a closed file is a no-op.
func (f *RecordFile) Close() error {
	if f.handle == nil {
		return nil
	}
	handle := f.handle
	f.handle = nil
	f.logger.Debug("closed")
	return Error.Wrap(handle.Close())
}

// Valid reports whether the file is open.
func (f *RecordFile) Valid() bool {
	return f.handle != nil
}

// Handle returns the raw storage handle for operations RecordFile does not
// cover, such as Seek, Truncate or Sync. It is nil while the file is closed.
// The handle stays owned by the RecordFile and must not be closed directly.
func (f *RecordFile) Handle() diskmanager.FileHandle {
	return f.handle
}

// Path returns the path the file was opened with.
func (f *RecordFile) Path() string { return f.path }

// Mode returns the mode of the most recent open.
func (f *RecordFile) Mode() OpenMode { return f.mode }

func (f *RecordFile) write(p []byte) (int, error) {
	if f.handle == nil {
		return 0, ErrClosed
	}
	n, err := f.handle.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		f.logger.Warn("short write", slog.Int("want", len(p)), slog.Int("wrote", n), slog.Any("err", err))
		return n, Error.Wrap(err)
	}
	return n, nil
}

// Write writes exactly len(p) bytes and returns the count actually written.
func (f *RecordFile) Write(p []byte) (int, error) {
	return f.write(p)
}

// WriteUint8 writes one byte.
func (f *RecordFile) WriteUint8(v uint8) (int, error) {
	return f.write([]byte{v})
}

// WriteInt16 writes v as 2 little-endian bytes.
func (f *RecordFile) WriteInt16(v int16) (int, error) {
	return f.WriteUint16(uint16(v))
}

// WriteUint16 writes v as 2 little-endian bytes.
func (f *RecordFile) WriteUint16(v uint16) (int, error) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return f.write(buf[:])
}

// WriteInt writes v using the configured IntSize, keeping the low-order bytes.
func (f *RecordFile) WriteInt(v int) (int, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return f.write(buf[:f.cfg.IntSize])
}

// WriteInt32 writes v as 4 little-endian bytes.
func (f *RecordFile) WriteInt32(v int32) (int, error) {
	return f.WriteUint32(uint32(v))
}

// WriteUint32 writes v as 4 little-endian bytes.
func (f *RecordFile) WriteUint32(v uint32) (int, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return f.write(buf[:])
}

// WriteFloat32 writes the IEEE 754 bits of v as 4 little-endian bytes.
func (f *RecordFile) WriteFloat32(v float32) (int, error) {
	return f.WriteUint32(math.Float32bits(v))
}

// WriteCString writes s followed by a single NUL byte. If s already contains a
// NUL, only the bytes before it are written.
func (f *RecordFile) WriteCString(s string) (int, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return f.write(buf)
}

// WriteData writes p as a record: a 4-byte little-endian length then the payload.
// On success it returns 4+len(p); a smaller count means the record is torn.
func (f *RecordFile) WriteData(p []byte) (int, error) {
	buf, err := record.Encode(p)
	if err != nil {
		return 0, err
	}
	return f.write(buf)
}

// ReadData reads up to len(buf) bytes from the current position.
// It returns io.EOF if nothing was left to read and io.ErrUnexpectedEOF if
// fewer than len(buf) bytes were available. No length prefix is interpreted.
func (f *RecordFile) ReadData(buf []byte) (int, error) {
	if f.handle == nil {
		return 0, ErrClosed
	}
	n, err := io.ReadFull(f.handle, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return n, Error.Wrap(err)
	}
	return n, err
}

// Read implements io.Reader on top of ReadData.
func (f *RecordFile) Read(p []byte) (int, error) {
	n, err := f.ReadData(p)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

// Scalar reads consume exactly the width of their type. On a short read the
// bytes that did arrive are decoded with the rest taken as zero, and the error
// is io.EOF or io.ErrUnexpectedEOF.

// ReadUint8 reads one byte.
func (f *RecordFile) ReadUint8() (uint8, error) {
	var buf [1]byte
	_, err := f.ReadData(buf[:])
	return buf[0], err
}

// ReadInt16 reads 2 little-endian bytes.
func (f *RecordFile) ReadInt16() (int16, error) {
	v, err := f.ReadUint16()
	return int16(v), err
}

// ReadUint16 reads 2 little-endian bytes.
func (f *RecordFile) ReadUint16() (uint16, error) {
	var buf [2]byte
	_, err := f.ReadData(buf[:])
	return binary.LittleEndian.Uint16(buf[:]), err
}

// ReadInt reads IntSize little-endian bytes and sign-extends them.
func (f *RecordFile) ReadInt() (int, error) {
	var buf [8]byte
	_, err := f.ReadData(buf[:f.cfg.IntSize])
	u := binary.LittleEndian.Uint64(buf[:])
	switch f.cfg.IntSize {
	case 2:
		return int(int16(u)), err
	case 4:
		return int(int32(u)), err
	}
	return int(int64(u)), err
}

// ReadInt32 reads 4 little-endian bytes.
func (f *RecordFile) ReadInt32() (int32, error) {
	v, err := f.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads 4 little-endian bytes.
func (f *RecordFile) ReadUint32() (uint32, error) {
	var buf [4]byte
	_, err := f.ReadData(buf[:])
	return binary.LittleEndian.Uint32(buf[:]), err
}

// ReadFloat32 reads 4 little-endian bytes as IEEE 754 bits.
func (f *RecordFile) ReadFloat32() (float32, error) {
	v, err := f.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadRecord reads a record written by WriteData and returns its payload.
// It returns io.EOF at a clean end of file and io.ErrUnexpectedEOF for a torn
// record. Lengths above the configured MaxRecordSize fail with record.ErrTooLarge.
func (f *RecordFile) ReadRecord() ([]byte, error) {
	if f.handle == nil {
		return nil, ErrClosed
	}
	payload, err := record.ReadFrom(f.handle, f.cfg.MaxRecordSize)
	switch {
	case err == nil, err == io.EOF, err == io.ErrUnexpectedEOF, errors.Is(err, record.ErrTooLarge):
		return payload, err
	}
	return nil, Error.Wrap(err)
}
