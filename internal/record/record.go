package record

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/zeebo/errs"
)

// Error is the error class for record encoding failures.
var Error = errs.Class("record")

// ErrTooLarge is returned for payloads whose length does not fit the prefix,
// or exceeds the limit given to ReadFrom.
var ErrTooLarge = Error.New("record too large")

// PutLength stores n as a little-endian length prefix in buf[:LengthSize].
func PutLength(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[:LengthSize], n)
}

// Length decodes the little-endian length prefix from buf[:LengthSize].
func Length(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[:LengthSize])
}

// Encode returns payload framed as a record.
// Format: [4 bytes Length][Payload]
func Encode(payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(payload))
	}
	buf := make([]byte, LengthSize+len(payload))
	PutLength(buf, uint32(len(payload)))
	copy(buf[LengthSize:], payload)
	return buf, nil
}

// Decode parses a record from a byte slice.
// Returns the payload and the number of bytes consumed. The payload aliases buf.
func Decode(buf []byte) ([]byte, int, error) {
	if len(buf) < LengthSize {
		return nil, 0, io.ErrUnexpectedEOF
	}
	n := Length(buf)
	total := uint64(LengthSize) + uint64(n)
	if uint64(len(buf)) < total {
		return nil, 0, io.ErrUnexpectedEOF
	}
	return buf[LengthSize:total], int(total), nil
}

// ReadFrom reads a single record from r.
// It returns io.EOF if r is exhausted before the record starts and
// io.ErrUnexpectedEOF if the record is cut short. Lengths above limit are
// rejected with ErrTooLarge before the payload is allocated.
func ReadFrom(r io.Reader, limit uint32) ([]byte, error) {
	var lenBuf [LengthSize]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}

	n := Length(lenBuf[:])
	if n > limit {
		return nil, fmt.Errorf("%w: length %d exceeds limit %d", ErrTooLarge, n, limit)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
