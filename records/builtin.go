package records

import (
	"iter"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/internal/binary"
)

// BuiltinTypeDescriptorSize is the encoded size of one builtin descriptor.
const BuiltinTypeDescriptorSize = 20

const (
	alignmentMask      = 0xffff
	bitwiseTakableFlag = 1 << 16
)

// BuiltinTypeDescriptor gives the layout of a type the compiler lowered to a
// fixed-size builtin representation.
type BuiltinTypeDescriptor struct {
	names               NameReader
	Address             uint64
	typeName            binary.Relative
	Size                uint32
	AlignmentAndFlags   uint32
	Stride              uint32
	NumExtraInhabitants uint32
}

// TypeName returns the mangled name of the described type.
func (bd *BuiltinTypeDescriptor) TypeName() (string, error) {
	return readName(bd.names, bd.typeName, true, SectionBuiltin, bd.Address)
}

// HasTypeName reports whether a type name is recorded.
func (bd *BuiltinTypeDescriptor) HasTypeName() bool {
	return !bd.typeName.IsNull()
}

// Alignment returns the alignment in bytes.
func (bd *BuiltinTypeDescriptor) Alignment() uint32 {
	return bd.AlignmentAndFlags & alignmentMask
}

// IsBitwiseTakable reports whether values can be moved with a plain memcpy.
func (bd *BuiltinTypeDescriptor) IsBitwiseTakable() bool {
	return bd.AlignmentAndFlags&bitwiseTakableFlag != 0
}

// Descriptors iterates the section's builtin type descriptors. A trailing
// fragment shorter than one descriptor yields a malformed error.
func (s BuiltinTypeSection) Descriptors(names NameReader) iter.Seq2[*BuiltinTypeDescriptor, error] {
	return func(yield func(*BuiltinTypeDescriptor, error) bool) {
		r := s.reader()
		for r.Len() > 0 {
			start := r.Address()
			bd, err := parseBuiltinTypeDescriptor(r, names, s.Name)
			if err != nil {
				yield(nil, errors.Malformed(SectionBuiltin, start, err))
				return
			}
			if !yield(bd, nil) {
				return
			}
		}
	}
}

func parseBuiltinTypeDescriptor(r *binary.Reader, names NameReader, section string) (*BuiltinTypeDescriptor, error) {
	if r.Len() < BuiltinTypeDescriptorSize {
		return nil, r.WrapError(section, binary.ErrTruncated)
	}
	bd := &BuiltinTypeDescriptor{names: names, Address: r.Address()}
	var err error
	if bd.typeName, err = r.ReadRelative(); err != nil {
		return nil, r.WrapError(section, err)
	}
	for _, dst := range []*uint32{&bd.Size, &bd.AlignmentAndFlags, &bd.Stride, &bd.NumExtraInhabitants} {
		if *dst, err = r.ReadU32(); err != nil {
			return nil, r.WrapError(section, err)
		}
	}
	return bd, nil
}
