package binary

import (
	"encoding/binary"
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// ErrTruncated is returned when a read runs past the end of the data.
var ErrTruncated = errors.New("unexpected end of data")

// ErrUnterminated is returned when a string has no NUL terminator.
var ErrUnterminated = errors.New("unterminated string")

// Reader is a position-tracking little-endian reader over an addressed
// byte range. It never copies: byte slices it returns alias the input.
type Reader struct {
	data []byte
	base uint64
	pos  int
}

// NewReader creates a Reader over data, whose first byte lives at base.
func NewReader(data []byte, base uint64) *Reader {
	return &Reader{data: data, base: base}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Address returns the address of the current position.
func (r *Reader) Address() uint64 {
	return r.base + uint64(r.pos)
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Seek moves to the given position.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.wrapError(fmt.Errorf("seek to %d: %w", pos, ErrTruncated))
	}
	r.pos = pos
	return nil
}

// Skip advances n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.wrapError(ErrTruncated)
	}
	r.pos += n
	return nil
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadRelative reads a 32-bit relative pointer and records the address it
// was read from, which is the origin its offset is measured against.
func (r *Reader) ReadRelative() (Relative, error) {
	addr := r.Address()
	off, err := r.ReadI32()
	if err != nil {
		return Relative{}, err
	}
	return Relative{Addr: addr, Offset: off}, nil
}

// ReadCString reads a NUL-terminated string and consumes the terminator.
func (r *Reader) ReadCString() (string, error) {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", r.wrapError(ErrUnterminated)
}

// ReadMangledName reads a NUL-terminated mangled name. Symbolic reference
// payloads are skipped over so a zero byte inside them does not end the name:
// control bytes 0x01..0x17 carry a 32-bit offset and 0x18..0x1f an absolute
// pointer of pointerSize bytes.
func (r *Reader) ReadMangledName(pointerSize int) (string, error) {
	i := r.pos
	for i < len(r.data) {
		c := r.data[i]
		switch {
		case c == 0:
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		case c >= 0x01 && c <= 0x17:
			i += 1 + 4
		case c >= 0x18 && c <= 0x1f:
			i += 1 + pointerSize
		default:
			i++
		}
	}
	return "", r.wrapError(ErrUnterminated)
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}

// Relative is a 32-bit self-relative pointer: its target is the address the
// offset was read from plus the offset. A zero offset is null.
type Relative struct {
	Addr   uint64
	Offset int32
}

// IsNull reports whether the pointer is null.
func (p Relative) IsNull() bool {
	return p.Offset == 0
}

// Target returns the absolute address the pointer refers to.
func (p Relative) Target() (uint64, error) {
	if p.IsNull() {
		return 0, errors.New("null relative pointer")
	}
	origin, err := safecast.Conv[int64](p.Addr)
	if err != nil {
		return 0, fmt.Errorf("relative pointer origin %#x: %w", p.Addr, err)
	}
	target, err := safecast.Conv[uint64](origin + int64(p.Offset))
	if err != nil {
		return 0, fmt.Errorf("relative pointer %#x%+d: %w", p.Addr, p.Offset, err)
	}
	return target, nil
}

// ParseError represents an error during record parsing with position information.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("reflection: %s at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("reflection: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.pos,
		Section:  section,
		Err:      err,
	}
}
