// Package javaio reads a Java DataOutput-compatible binary stream: signed
// big-endian primitives and length-prefixed Modified-UTF-8 (CESU-8)
// strings, the wire encoding java.io.DataOutputStream.writeUTF produces.
//
// It assembles big-endian integers from bytes by hand and targets a
// variable-length, record-framed stream rather than a fixed-size header,
// so it wraps a bufio.Reader and exposes an EOF peek instead of seeking.
package javaio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"nexidx/bufpool"
)

// ErrBadModifiedUTF8 is returned when a length-prefixed string cannot be
// decoded as either strict UTF-8 or Java's Modified-UTF-8 (CESU-8).
var ErrBadModifiedUTF8 = errors.New("javaio: invalid modified utf-8")

// Reader reads signed big-endian primitives and Modified-UTF-8 strings
// from a buffered byte source. It never looks ahead further than a single
// byte (for AtEOF), so it composes cleanly with any io.Reader.
type Reader struct {
	src *bufio.Reader
}

// NewReader wraps src for primitive and string reads. If src is already a
// *bufio.Reader it is used directly; otherwise it's wrapped.
func NewReader(src io.Reader) *Reader {
	if br, ok := src.(*bufio.Reader); ok {
		return &Reader{src: br}
	}
	return &Reader{src: bufio.NewReader(src)}
}

// ReadI8 reads one signed byte.
func (r *Reader) ReadI8() (int8, error) {
	b, err := r.src.ReadByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

// ReadU16BE reads an unsigned 16-bit big-endian integer.
func (r *Reader) ReadU16BE() (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r.src, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadI32BE reads a signed 32-bit big-endian integer.
func (r *Reader) ReadI32BE() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.src, buf[:]); err != nil {
		return 0, err
	}
	return int32(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])), nil
}

// ReadI64BE reads a signed 64-bit big-endian integer.
func (r *Reader) ReadI64BE() (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.src, buf[:]); err != nil {
		return 0, err
	}
	v := uint64(buf[0])<<56 | uint64(buf[1])<<48 | uint64(buf[2])<<40 | uint64(buf[3])<<32 |
		uint64(buf[4])<<24 | uint64(buf[5])<<16 | uint64(buf[6])<<8 | uint64(buf[7])
	return int64(v), nil
}

// ReadUTF8 reads exactly length bytes and decodes them as Modified-UTF-8.
// Strict UTF-8 is tried first (the common case, and a strict superset
// match for every code point except an embedded NUL or a lone
// surrogate-encoded supplementary character); on failure it falls back to
// the Modified-UTF-8 decoder. An undecodable byte sequence is a fatal
// error: the caller should treat it as framing failure, not a
// per-record one.
func (r *Reader) ReadUTF8(length int) (string, error) {
	if length == 0 {
		return "", nil
	}

	bufp := bufpool.GetByteSlice()
	defer bufpool.PutByteSlice(bufp)
	buf := *bufp
	if cap(buf) < length {
		buf = make([]byte, length)
	} else {
		buf = buf[:length]
	}
	*bufp = buf

	if _, err := io.ReadFull(r.src, buf); err != nil {
		return "", fmt.Errorf("javaio: short read of %d-byte string: %w", length, err)
	}

	if utf8.Valid(buf) {
		return string(buf), nil
	}

	s, err := decodeModifiedUTF8(buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadModifiedUTF8, err)
	}
	return s, nil
}

// AtEOF reports whether the source has no more bytes, without consuming
// any. It peeks a single byte via the underlying buffer fill.
func (r *Reader) AtEOF() (bool, error) {
	_, err := r.src.Peek(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// decodeModifiedUTF8 decodes Java's Modified-UTF-8 (CESU-8): NUL is the
// two-byte sequence C0 80, and supplementary code points are encoded as a
// pair of three-byte surrogate sequences rather than a single four-byte
// UTF-8 sequence. It is a strict superset of UTF-8 over the Basic
// Multilingual Plane excluding NUL.
func decodeModifiedUTF8(b []byte) (string, error) {
	units := make([]uint16, 0, len(b))
	i, n := 0, len(b)
	for i < n {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= n {
				return "", fmt.Errorf("truncated 2-byte sequence at offset %d", i)
			}
			c2 := b[i+1]
			if c2&0xC0 != 0x80 {
				return "", fmt.Errorf("bad continuation byte at offset %d", i+1)
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(c2&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= n {
				return "", fmt.Errorf("truncated 3-byte sequence at offset %d", i)
			}
			c2, c3 := b[i+1], b[i+2]
			if c2&0xC0 != 0x80 || c3&0xC0 != 0x80 {
				return "", fmt.Errorf("bad continuation bytes at offset %d", i+1)
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(c2&0x3F)<<6|uint16(c3&0x3F))
			i += 3
		default:
			return "", fmt.Errorf("invalid leading byte 0x%02x at offset %d", c, i)
		}
	}
	return string(utf16.Decode(units)), nil
}
