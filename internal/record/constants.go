// Package record implements the length-prefixed record format used by record files.
//
// A record is a 4-byte little-endian unsigned length followed by exactly that
// many payload bytes. There is no checksum, padding or terminator.
package record

// LengthSize is the size in bytes of the length prefix
const LengthSize = 4
