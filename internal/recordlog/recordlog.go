// Package recordlog implements an append-only log of records on top of a record file.
package recordlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/zeebo/errs"

	"github.com/MikhailWahib/recordfile/internal/config"
	"github.com/MikhailWahib/recordfile/internal/diskmanager"
	"github.com/MikhailWahib/recordfile/internal/record"
	"github.com/MikhailWahib/recordfile/internal/recordfile"
)

// Error is the error class for record log failures.
var Error = errs.Class("recordlog")

var (
	// ErrShortWrite is returned when a record did not land in full.
	ErrShortWrite = Error.New("short record write")
	// ErrTornRecord is returned by Replay when the log ends inside a record.
	ErrTornRecord = Error.New("torn record at end of log")
	// ErrFailed is returned once a torn append could not be rolled back.
	ErrFailed = Error.New("log failed")
)

// Log manages one append-only record file.
type Log struct {
	mu sync.Mutex

	file   *recordfile.RecordFile
	logger *slog.Logger
	failed error // set when the file may end in a torn record
}

// New opens the log at path for appending, creating it if needed.
func New(dm diskmanager.DiskManager, path string, cfg *config.Config) (*Log, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	file, err := recordfile.New(dm, path, recordfile.WriteAppend, cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = config.DefaultConfig().Logger
	}
	return &Log{
		file:   file,
		logger: logger.With(slog.String("log", path)),
	}, nil
}

// Append writes payload as one record and syncs it to storage.
//
// A record that lands only in part is cut off again, so the log always ends
// on a record boundary. If that rollback fails the log refuses further
// appends with ErrFailed.
func (l *Log) Append(payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failed != nil {
		return l.failed
	}
	handle := l.file.Handle()
	if handle == nil {
		return recordfile.ErrClosed
	}
	info, err := handle.Stat()
	if err != nil {
		return Error.Wrap(err)
	}
	end := info.Size()

	n, err := l.file.WriteData(payload)
	if err == nil {
		return l.sync()
	}
	if errors.Is(err, record.ErrTooLarge) {
		return err
	}
	if n > 0 {
		if terr := handle.Truncate(end); terr != nil {
			l.logger.Error("rollback of torn record failed", slog.Int64("size", end), slog.Any("err", terr))
			l.failed = fmt.Errorf("%w: %w", ErrFailed, terr)
			return fmt.Errorf("%w: %w", ErrShortWrite, errs.Combine(err, terr))
		}
	}
	return fmt.Errorf("%w: %w", ErrShortWrite, err)
}

// Replay returns every record in the log, oldest first.
//
// The file is reopened for reading and then again for appending, so Append
// may be called afterwards. A log ending inside a record yields the intact
// records together with ErrTornRecord.
func (l *Log) Replay() ([][]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Reopen(recordfile.Read); err != nil {
		return nil, errs.Combine(err, l.file.Reopen(recordfile.WriteAppend))
	}

	var records [][]byte
	var replayErr error
	for {
		payload, err := l.file.ReadRecord()
		if err == io.EOF {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			l.logger.Warn("torn record", slog.Int("intact", len(records)))
			replayErr = ErrTornRecord
			break
		}
		if err != nil {
			replayErr = err
			break
		}
		records = append(records, payload)
	}

	if err := l.file.Reopen(recordfile.WriteAppend); err != nil {
		return records, errs.Combine(replayErr, err)
	}
	return records, replayErr
}

func (l *Log) sync() error {
	handle := l.file.Handle()
	if handle == nil {
		return recordfile.ErrClosed
	}
	return Error.Wrap(handle.Sync())
}

// Close syncs and closes the log file. Closing twice is a no-op.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.file.Valid() {
		return nil
	}
	return errs.Combine(l.sync(), l.file.Close())
}
