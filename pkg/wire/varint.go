// Package wire implements the canonical serialization format shared by
// every on-disk and on-wire structure in decds: a byte-exact port of
// Rust's bincode "standard" configuration (bincode::config::standard()),
// so that fragments and headers produced by this implementation are
// byte-for-byte interchangeable with any other implementation of the
// same format.
package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrUnexpectedEOF is returned by the Uvarint family when the supplied
// buffer ends before a complete value has been read.
var ErrUnexpectedEOF = errors.New("wire: unexpected end of buffer")

// Lead bytes that select the width of the payload following a varint
// whose value does not fit in a single byte. Values up to and including
// singleByteMax are encoded as themselves, with no lead byte at all.
const (
	singleByteMax = 250
	lead16        = 251
	lead32        = 252
	lead64        = 253
	lead128       = 254
	// 255 is reserved by bincode and never produced by this encoder.
)

// PutUvarint appends the bincode variable-width encoding of v to dst and
// returns the extended slice.
func PutUvarint(dst []byte, v uint64) []byte {
	switch {
	case v <= singleByteMax:
		return append(dst, byte(v))
	case v <= 0xFFFF:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(v))
		return append(append(dst, lead16), buf[:]...)
	case v <= 0xFFFFFFFF:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		return append(append(dst, lead32), buf[:]...)
	default:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		return append(append(dst, lead64), buf[:]...)
	}
}

// Uvarint decodes a bincode variable-width unsigned integer from the
// front of buf, returning the value and the number of bytes consumed.
func Uvarint(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	lead := buf[0]
	switch {
	case lead <= singleByteMax:
		return uint64(lead), 1, nil
	case lead == lead16:
		if len(buf) < 3 {
			return 0, 0, ErrUnexpectedEOF
		}
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case lead == lead32:
		if len(buf) < 5 {
			return 0, 0, ErrUnexpectedEOF
		}
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	case lead == lead64:
		if len(buf) < 9 {
			return 0, 0, ErrUnexpectedEOF
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	case lead == lead128:
		// 128-bit values never arise in this format (every length or
		// count here fits in 64 bits); report the 16-byte payload
		// length so callers can still skip over a well-formed value.
		if len(buf) < 17 {
			return 0, 0, ErrUnexpectedEOF
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 17, nil
	default:
		return 0, 0, errors.New("wire: reserved varint lead byte 255")
	}
}

// PutBytes appends a length-prefixed byte slice: a varint length
// followed by the raw bytes.
func PutBytes(dst []byte, b []byte) []byte {
	dst = PutUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// Bytes decodes a length-prefixed byte slice from the front of buf,
// returning a copy of the bytes and the number consumed overall.
func Bytes(buf []byte) ([]byte, int, error) {
	n, consumed, err := Uvarint(buf)
	if err != nil {
		return nil, 0, err
	}
	end := consumed + int(n)
	if end < consumed || end > len(buf) {
		return nil, 0, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, buf[consumed:end])
	return out, end, nil
}

// PutHash appends a fixed 32-byte array with no length prefix, matching
// bincode's encoding of fixed-size arrays.
func PutHash(dst []byte, h [32]byte) []byte {
	return append(dst, h[:]...)
}

// Hash decodes a fixed 32-byte array from the front of buf.
func Hash(buf []byte) ([32]byte, int, error) {
	var h [32]byte
	if len(buf) < 32 {
		return h, 0, ErrUnexpectedEOF
	}
	copy(h[:], buf[:32])
	return h, 32, nil
}
