// Package config provides configuration structures and defaults for record files.
package config

import (
	"log/slog"
	"os"

	"github.com/zeebo/errs"
)

// Error is the error class for invalid configurations.
var Error = errs.Class("config")

const (
	defaultPerm          os.FileMode = 0644
	defaultIntSize                   = 2
	defaultMaxRecordSize             = 16 * 1024 * 1024
)

// Config holds the tunables shared by record files and record logs.
type Config struct {
	// Perm is the permission used when a write mode creates the file.
	Perm os.FileMode
	// IntSize is the width in bytes of WriteInt/ReadInt. The default of 2
	// matches the 16-bit int of the boards the format originates from.
	IntSize int
	// MaxRecordSize caps the payload length accepted by ReadRecord.
	MaxRecordSize uint32
	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Perm:          defaultPerm,
		IntSize:       defaultIntSize,
		MaxRecordSize: defaultMaxRecordSize,
		Logger:        slog.New(slog.DiscardHandler),
	}
}

// FillDefaults sets any zero-value fields in the Config to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.Perm == 0 {
		c.Perm = def.Perm
	}
	if c.IntSize == 0 {
		c.IntSize = def.IntSize
	}
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = def.MaxRecordSize
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}

// Validate reports settings that cannot be honored.
func (c *Config) Validate() error {
	switch c.IntSize {
	case 2, 4, 8:
	default:
		return Error.New("unsupported int size %d", c.IntSize)
	}
	return nil
}
