package image

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/remote"
)

// Range is a [Begin, End) address range.
type Range struct {
	Begin uint64
	End   uint64
}

// Size returns the length of the range, or 0 when End precedes Begin.
func (r Range) Size() uint64 {
	if r.End < r.Begin {
		return 0
	}
	return r.End - r.Begin
}

// Ranges locates the five reflection sections of one image.
type Ranges struct {
	Field          Range
	AssociatedType Range
	Builtin        Range
	TypeRef        Range
	ReflStr        Range

	// PointerSize is the target's pointer width, 4 for wasm32. Zero leaves
	// it to the Builder the image is registered with.
	PointerSize uint32
}

// FromRanges reads the sections described by ranges through r.
func FromRanges(ctx context.Context, name string, r remote.Reader, ranges Ranges) (records.ReflectionInfo, error) {
	read := func(section string, rg Range) (records.Section, error) {
		s, err := remote.ReadSection(ctx, r, section, rg.Begin, rg.End)
		if err != nil {
			return records.Section{}, wrapLoad(name, section, err)
		}
		return s, nil
	}
	info, err := assemble(name, func(section string) (records.Section, error) {
		switch section {
		case records.SectionFieldMD:
			return read(section, ranges.Field)
		case records.SectionAssocTy:
			return read(section, ranges.AssociatedType)
		case records.SectionBuiltin:
			return read(section, ranges.Builtin)
		case records.SectionTypeRef:
			return read(section, ranges.TypeRef)
		default:
			return read(section, ranges.ReflStr)
		}
	})
	if err != nil {
		return records.ReflectionInfo{}, err
	}
	info.PointerSize = ranges.PointerSize
	return info, nil
}

// sectionNames lists the sections in ReflectionInfo order.
var sectionNames = []string{
	records.SectionFieldMD,
	records.SectionAssocTy,
	records.SectionBuiltin,
	records.SectionTypeRef,
	records.SectionReflStr,
}

// assemble builds a ReflectionInfo from a per-section loader.
func assemble(name string, load func(section string) (records.Section, error)) (records.ReflectionInfo, error) {
	sections := make([]records.Section, len(sectionNames))
	for i, section := range sectionNames {
		s, err := load(section)
		if err != nil {
			return records.ReflectionInfo{}, err
		}
		if s.Name == "" {
			s.Name = section
		}
		sections[i] = s
	}

	info := records.ReflectionInfo{
		ImageName:      name,
		Field:          records.FieldSection{Section: sections[0]},
		AssociatedType: records.AssociatedTypeSection{Section: sections[1]},
		Builtin:        records.BuiltinTypeSection{Section: sections[2]},
		TypeRef:        records.GenericSection{Section: sections[3]},
		ReflStr:        records.GenericSection{Section: sections[4]},
	}
	Logger().Debug("loaded reflection sections",
		zap.String("image", name),
		zap.Int("fieldmd", info.Field.Size()),
		zap.Int("assocty", info.AssociatedType.Size()),
		zap.Int("builtin", info.Builtin.Size()),
		zap.Int("typeref", info.TypeRef.Size()),
		zap.Int("reflstr", info.ReflStr.Size()))
	return info, nil
}

func wrapLoad(name, section string, err error) error {
	kind := errors.KindOf(err)
	if kind == "" {
		kind = errors.KindInvalidData
	}
	return errors.New(errors.PhaseLoad, kind).
		Image(name).
		Path(section).
		Cause(err).
		Detail("cannot load section").
		Build()
}

var (
	elfMagic     = []byte{0x7f, 'E', 'L', 'F'}
	machoMagic64 = []byte{0xcf, 0xfa, 0xed, 0xfe}
	machoMagic32 = []byte{0xce, 0xfa, 0xed, 0xfe}
	fatMagic     = []byte{0xca, 0xfe, 0xba, 0xbe}
)

// Open loads an ELF or little-endian Mach-O file, chosen by its magic.
func Open(path string) (records.ReflectionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return records.ReflectionInfo{}, errors.Load("cannot open "+path, err)
	}
	magic := make([]byte, 4)
	_, err = io.ReadFull(f, magic)
	f.Close()
	if err != nil {
		return records.ReflectionInfo{}, errors.Load("cannot read magic of "+path, err)
	}

	switch {
	case bytes.Equal(magic, elfMagic):
		return OpenELF(path)
	case bytes.Equal(magic, machoMagic64), bytes.Equal(magic, machoMagic32):
		return OpenMachO(path)
	case bytes.Equal(magic, fatMagic):
		return records.ReflectionInfo{}, errors.Unsupported(errors.PhaseLoad, "universal binary "+path+": extract one architecture first")
	}
	return records.ReflectionInfo{}, errors.Unsupported(errors.PhaseLoad, "unrecognized image format: "+path)
}

func imageName(path string) string {
	return filepath.Base(path)
}
