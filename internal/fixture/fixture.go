// Package fixture assembles synthetic reflection metadata for tests.
package fixture

import (
	"github.com/wippyai/swift-reflection/internal/binary"
	"github.com/wippyai/swift-reflection/records"
)

// Base addresses of the synthetic sections. They are spaced far enough apart
// that no test image can make two sections overlap.
const (
	FieldBase   uint64 = 0x10000
	AssocBase   uint64 = 0x20000
	BuiltinBase uint64 = 0x30000
	TypeRefBase uint64 = 0x40000
	ReflStrBase uint64 = 0x50000
)

// Field describes one field record. An empty Type writes a null type pointer.
type Field struct {
	Name  string
	Type  string
	Flags uint32
}

// Assoc describes one associated type witness.
type Assoc struct {
	Name string
	Type string
}

// Image accumulates reflection records in the on-disk encoding. Strings are
// written once and shared by every record that names them.
type Image struct {
	Name string

	field   *binary.Writer
	assoc   *binary.Writer
	builtin *binary.Writer
	typeref *binary.Writer
	reflstr *binary.Writer

	mangled map[string]uint64
	strs    map[string]uint64
}

// New creates an empty image.
func New(name string) *Image {
	return &Image{
		Name:    name,
		field:   binary.NewWriter(),
		assoc:   binary.NewWriter(),
		builtin: binary.NewWriter(),
		typeref: binary.NewWriter(),
		reflstr: binary.NewWriter(),
		mangled: make(map[string]uint64),
		strs:    make(map[string]uint64),
	}
}

// Mangled interns a mangled type name and returns its address.
func (im *Image) Mangled(name string) uint64 {
	if addr, ok := im.mangled[name]; ok {
		return addr
	}
	addr := TypeRefBase + uint64(im.typeref.Len())
	im.typeref.WriteCString(name)
	im.mangled[name] = addr
	return addr
}

// String interns a reflection string and returns its address.
func (im *Image) String(s string) uint64 {
	if addr, ok := im.strs[s]; ok {
		return addr
	}
	addr := ReflStrBase + uint64(im.reflstr.Len())
	im.reflstr.WriteCString(s)
	im.strs[s] = addr
	return addr
}

// writeRel writes a relative pointer at the writer's current position in a
// section based at base. A zero target writes a null pointer.
func writeRel(w *binary.Writer, base, target uint64) {
	if target == 0 {
		w.WriteI32(0)
		return
	}
	origin := base + uint64(w.Len())
	w.WriteI32(int32(int64(target) - int64(origin)))
}

func (im *Image) mangledOrNull(name string) uint64 {
	if name == "" {
		return 0
	}
	return im.Mangled(name)
}

// AddFieldDescriptor appends a field descriptor with 12-byte records and
// returns its address.
func (im *Image) AddFieldDescriptor(typeName, superclass string, kind records.FieldDescriptorKind, fields ...Field) uint64 {
	return im.AddFieldDescriptorAt(im.mangledOrNull(typeName), im.mangledOrNull(superclass), kind, fields...)
}

// AddFieldDescriptorAt is AddFieldDescriptor with explicit name addresses, so
// a test can point a descriptor at bytes that are not a valid name.
func (im *Image) AddFieldDescriptorAt(typeAddr, superAddr uint64, kind records.FieldDescriptorKind, fields ...Field) uint64 {
	w := im.field
	start := FieldBase + uint64(w.Len())
	writeRel(w, FieldBase, typeAddr)
	writeRel(w, FieldBase, superAddr)
	w.WriteU16(uint16(kind))
	w.WriteU16(12)
	w.WriteU32(uint32(len(fields)))
	for _, f := range fields {
		w.WriteU32(f.Flags)
		writeRel(w, FieldBase, im.mangledOrNull(f.Type))
		writeRel(w, FieldBase, im.String(f.Name))
	}
	return start
}

// AddUndersizedFieldDescriptor appends a descriptor whose record stride is
// below the minimum, padded so the next descriptor starts cleanly.
func (im *Image) AddUndersizedFieldDescriptor(typeName string, numFields uint32) uint64 {
	w := im.field
	start := FieldBase + uint64(w.Len())
	writeRel(w, FieldBase, im.Mangled(typeName))
	writeRel(w, FieldBase, 0)
	w.WriteU16(uint16(records.FieldKindStruct))
	w.WriteU16(4)
	w.WriteU32(numFields)
	for i := uint32(0); i < numFields; i++ {
		w.WriteU32(0)
	}
	return start
}

// AppendFieldBytes appends raw bytes to the field section.
func (im *Image) AppendFieldBytes(b []byte) {
	im.field.WriteBytes(b)
}

// AddAssociatedTypes appends an associated type descriptor with 8-byte
// records and returns its address.
func (im *Image) AddAssociatedTypes(conforming, protocol string, assocs ...Assoc) uint64 {
	w := im.assoc
	start := AssocBase + uint64(w.Len())
	writeRel(w, AssocBase, im.Mangled(conforming))
	writeRel(w, AssocBase, im.Mangled(protocol))
	w.WriteU32(uint32(len(assocs)))
	w.WriteU32(8)
	for _, a := range assocs {
		writeRel(w, AssocBase, im.String(a.Name))
		writeRel(w, AssocBase, im.Mangled(a.Type))
	}
	return start
}

// AppendAssocBytes appends raw bytes to the associated type section.
func (im *Image) AppendAssocBytes(b []byte) {
	im.assoc.WriteBytes(b)
}

// Builtin describes one builtin type descriptor.
type Builtin struct {
	TypeName            string
	Size                uint32
	Alignment           uint32
	Stride              uint32
	NumExtraInhabitants uint32
	BitwiseTakable      bool
}

// AddBuiltin appends a builtin type descriptor and returns its address.
func (im *Image) AddBuiltin(b Builtin) uint64 {
	w := im.builtin
	start := BuiltinBase + uint64(w.Len())
	writeRel(w, BuiltinBase, im.mangledOrNull(b.TypeName))
	w.WriteU32(b.Size)
	flags := b.Alignment & 0xffff
	if b.BitwiseTakable {
		flags |= 1 << 16
	}
	w.WriteU32(flags)
	w.WriteU32(b.Stride)
	w.WriteU32(b.NumExtraInhabitants)
	return start
}

// AppendBuiltinBytes appends raw bytes to the builtin section.
func (im *Image) AppendBuiltinBytes(b []byte) {
	im.builtin.WriteBytes(b)
}

// Info returns a snapshot of the image as a ReflectionInfo. Records added
// later are not visible through it.
func (im *Image) Info() *records.ReflectionInfo {
	return &records.ReflectionInfo{
		ImageName:      im.Name,
		Field:          records.FieldSection{Section: records.NewSection(records.SectionFieldMD, FieldBase, clone(im.field))},
		AssociatedType: records.AssociatedTypeSection{Section: records.NewSection(records.SectionAssocTy, AssocBase, clone(im.assoc))},
		Builtin:        records.BuiltinTypeSection{Section: records.NewSection(records.SectionBuiltin, BuiltinBase, clone(im.builtin))},
		TypeRef:        records.GenericSection{Section: records.NewSection(records.SectionTypeRef, TypeRefBase, clone(im.typeref))},
		ReflStr:        records.GenericSection{Section: records.NewSection(records.SectionReflStr, ReflStrBase, clone(im.reflstr))},
	}
}

func clone(w *binary.Writer) []byte {
	return append([]byte(nil), w.Bytes()...)
}
