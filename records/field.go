package records

import (
	"fmt"
	"iter"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/internal/binary"
)

// minFieldRecordSize is the encoded size of Flags, MangledTypeName and FieldName.
const minFieldRecordSize = 12

// FieldDescriptorKind identifies what kind of declaration a field descriptor describes.
type FieldDescriptorKind uint16

const (
	FieldKindStruct FieldDescriptorKind = iota
	FieldKindClass
	FieldKindEnum
	FieldKindMultiPayloadEnum
	FieldKindProtocol
	FieldKindClassProtocol
	FieldKindObjCProtocol
	FieldKindObjCClass
)

var fieldKindNames = [...]string{
	FieldKindStruct:           "struct",
	FieldKindClass:            "class",
	FieldKindEnum:             "enum",
	FieldKindMultiPayloadEnum: "multi_payload_enum",
	FieldKindProtocol:         "protocol",
	FieldKindClassProtocol:    "class_protocol",
	FieldKindObjCProtocol:     "objc_protocol",
	FieldKindObjCClass:        "objc_class",
}

func (k FieldDescriptorKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint16(k))
}

// IsEnum reports whether the descriptor describes an enum.
func (k FieldDescriptorKind) IsEnum() bool {
	return k == FieldKindEnum || k == FieldKindMultiPayloadEnum
}

// FieldRecordFlags are per-field flags.
type FieldRecordFlags uint32

const (
	FieldIsIndirectCase FieldRecordFlags = 0x1
	FieldIsVar          FieldRecordFlags = 0x2
)

// IsIndirectCase reports whether an enum case is stored indirectly.
func (f FieldRecordFlags) IsIndirectCase() bool { return f&FieldIsIndirectCase != 0 }

// IsVar reports whether a stored property is mutable.
func (f FieldRecordFlags) IsVar() bool { return f&FieldIsVar != 0 }

// FieldDescriptor describes the stored properties or enum cases of one
// nominal type. Names are dereferenced on demand.
type FieldDescriptor struct {
	names           NameReader
	Records         []FieldRecord
	Address         uint64
	mangledTypeName binary.Relative
	superclass      binary.Relative
	Kind            FieldDescriptorKind
	FieldRecordSize uint16
}

// NumFields returns the number of field records.
func (fd *FieldDescriptor) NumFields() int {
	return len(fd.Records)
}

// HasMangledTypeName reports whether the descriptor names its owning type.
func (fd *FieldDescriptor) HasMangledTypeName() bool {
	return !fd.mangledTypeName.IsNull()
}

// MangledTypeName returns the mangled name of the owning type.
func (fd *FieldDescriptor) MangledTypeName() (string, error) {
	return readName(fd.names, fd.mangledTypeName, true, SectionFieldMD, fd.Address)
}

// HasSuperclass reports whether a superclass name is recorded.
func (fd *FieldDescriptor) HasSuperclass() bool {
	return !fd.superclass.IsNull()
}

// Superclass returns the mangled superclass name.
func (fd *FieldDescriptor) Superclass() (string, error) {
	return readName(fd.names, fd.superclass, true, SectionFieldMD, fd.Address)
}

// FieldRecord is one stored property or enum case.
type FieldRecord struct {
	names           NameReader
	Address         uint64
	mangledTypeName binary.Relative
	fieldName       binary.Relative
	Flags           FieldRecordFlags
}

// HasMangledTypeName reports whether the field carries a type. Payload-less
// enum cases do not.
func (f FieldRecord) HasMangledTypeName() bool {
	return !f.mangledTypeName.IsNull()
}

// MangledTypeName returns the field's mangled type name.
func (f FieldRecord) MangledTypeName() (string, error) {
	return readName(f.names, f.mangledTypeName, true, SectionFieldMD, f.Address)
}

// FieldName returns the field's declared name.
func (f FieldRecord) FieldName() (string, error) {
	return readName(f.names, f.fieldName, false, SectionFieldMD, f.Address)
}

// Descriptors iterates the section's field descriptors. Each call starts over
// from the first byte. A descriptor whose header or record table does not
// fit yields a malformed error and ends the iteration; one with an
// undersized record stride yields an error and the scan moves on.
func (s FieldSection) Descriptors(names NameReader) iter.Seq2[*FieldDescriptor, error] {
	return func(yield func(*FieldDescriptor, error) bool) {
		r := s.reader()
		for r.Len() > 0 {
			start := r.Address()
			fd, next, err := parseFieldDescriptor(r, names, s.Name)
			if err != nil {
				if !yield(nil, errors.Malformed(SectionFieldMD, start, err)) || !next {
					return
				}
				continue
			}
			if !yield(fd, nil) {
				return
			}
		}
	}
}

// parseFieldDescriptor reads one descriptor. next reports whether the reader
// was left at the following record boundary after an error.
func parseFieldDescriptor(r *binary.Reader, names NameReader, section string) (fd *FieldDescriptor, next bool, err error) {
	fd = &FieldDescriptor{names: names, Address: r.Address()}

	if fd.mangledTypeName, err = r.ReadRelative(); err != nil {
		return nil, false, r.WrapError(section, err)
	}
	if fd.superclass, err = r.ReadRelative(); err != nil {
		return nil, false, r.WrapError(section, err)
	}
	kind, err := r.ReadU16()
	if err != nil {
		return nil, false, r.WrapError(section, err)
	}
	fd.Kind = FieldDescriptorKind(kind)
	if fd.FieldRecordSize, err = r.ReadU16(); err != nil {
		return nil, false, r.WrapError(section, err)
	}
	numFields, err := r.ReadU32()
	if err != nil {
		return nil, false, r.WrapError(section, err)
	}

	body, err := bodySize(numFields, uint32(fd.FieldRecordSize))
	if err != nil || body > r.Len() {
		return nil, false, r.WrapError(section,
			fmt.Errorf("%d field records of %d bytes overrun the section: %w", numFields, fd.FieldRecordSize, binary.ErrTruncated))
	}
	if numFields > 0 && fd.FieldRecordSize < minFieldRecordSize {
		skipErr := r.Skip(body)
		return nil, skipErr == nil, r.WrapError(section,
			fmt.Errorf("field record size %d is smaller than %d", fd.FieldRecordSize, minFieldRecordSize))
	}

	fd.Records = make([]FieldRecord, 0, numFields)
	for i := uint32(0); i < numFields; i++ {
		rec := FieldRecord{names: names, Address: r.Address()}
		flags, err := r.ReadU32()
		if err != nil {
			return nil, false, r.WrapError(section, err)
		}
		rec.Flags = FieldRecordFlags(flags)
		if rec.mangledTypeName, err = r.ReadRelative(); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		if rec.fieldName, err = r.ReadRelative(); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		if err := r.Skip(int(fd.FieldRecordSize) - minFieldRecordSize); err != nil {
			return nil, false, r.WrapError(section, err)
		}
		fd.Records = append(fd.Records, rec)
	}
	return fd, true, nil
}
