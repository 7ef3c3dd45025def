package records

import (
	"iter"

	"github.com/wippyai/swift-reflection/errors"
)

// ReflectionInfo is the metadata bundle contributed by one loaded image: its
// three record sections plus the two blobs their relative pointers target.
// It is never mutated after registration.
type ReflectionInfo struct {
	ImageName      string
	Field          FieldSection
	AssociatedType AssociatedTypeSection
	Builtin        BuiltinTypeSection
	TypeRef        GenericSection
	ReflStr        GenericSection

	// PointerSize is the target's pointer width in bytes, which sizes the
	// absolute symbolic references in mangled names. Zero means 8.
	PointerSize uint32
}

// Sections returns the five sections in a fixed order.
func (info *ReflectionInfo) Sections() []Section {
	return []Section{
		info.Field.Section,
		info.AssociatedType.Section,
		info.Builtin.Section,
		info.TypeRef.Section,
		info.ReflStr.Section,
	}
}

func (info *ReflectionInfo) sectionAt(addr uint64) (Section, bool) {
	for _, s := range info.Sections() {
		if s.Contains(addr) {
			return s, true
		}
	}
	return Section{}, false
}

// ReadCString reads a NUL-terminated string at addr from any of the image's sections.
func (info *ReflectionInfo) ReadCString(addr uint64) (string, error) {
	s, ok := info.sectionAt(addr)
	if !ok {
		return "", errors.OutOfBounds(errors.PhaseParse, addr, 0)
	}
	r, err := s.readerAt(addr)
	if err != nil {
		return "", err
	}
	str, err := r.ReadCString()
	if err != nil {
		return "", r.WrapError(s.Name, err)
	}
	return str, nil
}

// ReadMangledName reads a mangled name at addr from any of the image's sections.
func (info *ReflectionInfo) ReadMangledName(addr uint64) (string, error) {
	s, ok := info.sectionAt(addr)
	if !ok {
		return "", errors.OutOfBounds(errors.PhaseParse, addr, 0)
	}
	r, err := s.readerAt(addr)
	if err != nil {
		return "", err
	}
	str, err := r.ReadMangledName(info.pointerWidth())
	if err != nil {
		return "", r.WrapError(s.Name, err)
	}
	return str, nil
}

func (info *ReflectionInfo) pointerWidth() int {
	if info.PointerSize == 0 {
		return 8
	}
	return int(info.PointerSize)
}

// FieldDescriptors iterates the image's field section.
func (info *ReflectionInfo) FieldDescriptors() iter.Seq2[*FieldDescriptor, error] {
	return info.Field.Descriptors(info)
}

// AssociatedTypeDescriptors iterates the image's associated type section.
func (info *ReflectionInfo) AssociatedTypeDescriptors() iter.Seq2[*AssociatedTypeDescriptor, error] {
	return info.AssociatedType.Descriptors(info)
}

// BuiltinTypeDescriptors iterates the image's builtin type section.
func (info *ReflectionInfo) BuiltinTypeDescriptors() iter.Seq2[*BuiltinTypeDescriptor, error] {
	return info.Builtin.Descriptors(info)
}
