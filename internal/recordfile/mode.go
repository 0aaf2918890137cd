package recordfile

import (
	"fmt"
	"os"
)

// OpenMode selects how a record file is opened.
type OpenMode uint8

const (
	// Read opens an existing file read-only, positioned at the start.
	Read OpenMode = iota
	// WriteTruncate creates the file if needed and starts writing at offset 0.
	// Bytes from a previous life of the file are discarded.
	WriteTruncate
	// WriteAppend creates the file if needed and writes after the existing bytes.
	WriteAppend
)

// flags maps an OpenMode to the flags passed to the disk manager.
func (m OpenMode) flags() (int, error) {
	switch m {
	case Read:
		return os.O_RDONLY, nil
	case WriteTruncate:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, nil
	case WriteAppend:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(m))
}

func (m OpenMode) String() string {
	switch m {
	case Read:
		return "read"
	case WriteTruncate:
		return "write-truncate"
	case WriteAppend:
		return "write-append"
	}
	return fmt.Sprintf("OpenMode(%d)", uint8(m))
}
