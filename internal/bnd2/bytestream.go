package bnd2

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// ByteStream is an endian-aware seekable cursor over an in-memory
// buffer, used for both reading an existing bundle and assembling a
// new one. The byte order used for every ReadUN/WriteUN call is
// fixed by the platform passed to NewByteStream/SetPlatform; raw byte
// and magic I/O never swaps.
//
// Writes past the current end of the buffer grow it with zero bytes,
// which is what lets the packer seek forward to write the debug blob,
// the entry table and each plane at its own offset, with the gaps
// between them zero-filled (spec.md §4.6 step 6).
type ByteStream struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// NewByteStream wraps an existing buffer for reading (and, if needed,
// in-place overwriting) under platform's byte order.
func NewByteStream(data []byte, platform Platform) *ByteStream {
	return &ByteStream{buf: data, order: platform.ByteOrder()}
}

// NewWriterStream starts an empty stream for assembling a new bundle.
func NewWriterStream(platform Platform) *ByteStream {
	return &ByteStream{order: platform.ByteOrder()}
}

// SetPlatform changes the byte order used for subsequent multi-byte
// I/O. It does not affect bytes already read or written.
func (s *ByteStream) SetPlatform(p Platform) {
	s.order = p.ByteOrder()
}

// Seek moves the cursor to an absolute byte offset. It does not
// validate the offset against the buffer length; the next read will
// fail if it runs past the end, and the next write will grow the
// buffer to cover it.
func (s *ByteStream) Seek(offset int) {
	s.pos = offset
}

// Pos returns the current cursor position.
func (s *ByteStream) Pos() int {
	return s.pos
}

// Len returns the total length of the underlying buffer.
func (s *ByteStream) Len() int {
	return len(s.buf)
}

// Bytes returns the underlying buffer. Callers must not retain it
// across further writes, which may reallocate.
func (s *ByteStream) Bytes() []byte {
	return s.buf
}

func (s *ByteStream) ensure(n int) {
	need := s.pos + n
	if need > len(s.buf) {
		s.buf = append(s.buf, make([]byte, need-len(s.buf))...)
	}
}

// ReadBytes reads n raw bytes with no byte-order swapping.
func (s *ByteStream) ReadBytes(n int) ([]byte, error) {
	if s.pos+n > len(s.buf) {
		return nil, fmt.Errorf("%w: read of %d bytes at offset 0x%X exceeds buffer length 0x%X",
			io.ErrUnexpectedEOF, n, s.pos, len(s.buf))
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// WriteBytes writes raw bytes with no byte-order swapping, growing the
// buffer as needed.
func (s *ByteStream) WriteBytes(b []byte) {
	s.ensure(len(b))
	copy(s.buf[s.pos:], b)
	s.pos += len(b)
}

// Pad advances the cursor by n bytes, growing the buffer with zero
// bytes where that runs past its end. Bytes already in the buffer are
// left as they are, so on a read stream Pad skips n bytes.
func (s *ByteStream) Pad(n int) {
	s.ensure(n)
	s.pos += n
}

func (s *ByteStream) ReadU8() (uint8, error) {
	b, err := s.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *ByteStream) WriteU8(v uint8) {
	s.WriteBytes([]byte{v})
}

func (s *ByteStream) ReadU16() (uint16, error) {
	b, err := s.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return s.order.Uint16(b), nil
}

func (s *ByteStream) WriteU16(v uint16) {
	var b [2]byte
	s.order.PutUint16(b[:], v)
	s.WriteBytes(b[:])
}

func (s *ByteStream) ReadU32() (uint32, error) {
	b, err := s.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return s.order.Uint32(b), nil
}

func (s *ByteStream) WriteU32(v uint32) {
	var b [4]byte
	s.order.PutUint32(b[:], v)
	s.WriteBytes(b[:])
}

func (s *ByteStream) ReadU64() (uint64, error) {
	b, err := s.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return s.order.Uint64(b), nil
}

func (s *ByteStream) WriteU64(v uint64) {
	var b [8]byte
	s.order.PutUint64(b[:], v)
	s.WriteBytes(b[:])
}

// ReadMagic reads 4 raw, unswapped bytes, for comparison against the
// literal 'b','n','d','2' magic.
func (s *ByteStream) ReadMagic() ([4]byte, error) {
	var m [4]byte
	b, err := s.ReadBytes(4)
	if err != nil {
		return m, err
	}
	copy(m[:], b)
	return m, nil
}

// WriteMagic writes 4 raw, unswapped bytes.
func (s *ByteStream) WriteMagic(m [4]byte) {
	s.WriteBytes(m[:])
}

// ReadString reads a fixed-length ASCII field and strips trailing NUL
// padding.
func (s *ByteStream) ReadString(n int) (string, error) {
	b, err := s.ReadBytes(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// ReadCString reads bytes up to (and consuming) the next NUL
// terminator, or to the end of the buffer if none is found.
func (s *ByteStream) ReadCString() (string, error) {
	start := s.pos
	for s.pos < len(s.buf) && s.buf[s.pos] != 0 {
		s.pos++
	}
	str := string(s.buf[start:s.pos])
	if s.pos < len(s.buf) {
		s.pos++ // consume the NUL
	}
	return str, nil
}

// WriteString writes s verbatim, with no length prefix or terminator.
// Callers that need a NUL terminator (e.g. the debug blob) append it
// themselves before calling WriteString, or call WriteU8(0) after.
func (s *ByteStream) WriteString(str string) {
	s.WriteBytes([]byte(str))
}
