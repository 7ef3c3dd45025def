package records

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/internal/binary"
)

// Section names as they appear in ELF images; Mach-O prefixes them with "__".
const (
	SectionFieldMD = "swift5_fieldmd"
	SectionAssocTy = "swift5_assocty"
	SectionBuiltin = "swift5_builtin"
	SectionTypeRef = "swift5_typeref"
	SectionReflStr = "swift5_reflstr"
)

// Section is a read-only window over a contiguous address range. It borrows
// Data; whoever produced the bytes must keep them alive and unchanged.
type Section struct {
	Name string
	Addr uint64
	Data []byte
}

// NewSection creates a section whose first byte lives at addr.
func NewSection(name string, addr uint64, data []byte) Section {
	return Section{Name: name, Addr: addr, Data: data}
}

// SectionFromRange creates a section from a [begin, end) address pair.
func SectionFromRange(name string, begin, end uint64, data []byte) (Section, error) {
	if end < begin {
		return Section{}, errors.InvalidInput(errors.PhaseLoad,
			fmt.Sprintf("section %s: end %#x before begin %#x", name, end, begin))
	}
	size, err := safecast.Conv[int](end - begin)
	if err != nil || size != len(data) {
		return Section{}, errors.InvalidInput(errors.PhaseLoad,
			fmt.Sprintf("section %s: range [%#x, %#x) does not match %d bytes", name, begin, end, len(data)))
	}
	return Section{Name: name, Addr: begin, Data: data}, nil
}

// Size returns the byte length of the section.
func (s Section) Size() int {
	return len(s.Data)
}

// End returns the address one past the last byte.
func (s Section) End() uint64 {
	return s.Addr + uint64(len(s.Data))
}

// Contains reports whether addr falls inside the section.
func (s Section) Contains(addr uint64) bool {
	return addr >= s.Addr && addr < s.End()
}

func (s Section) reader() *binary.Reader {
	return binary.NewReader(s.Data, s.Addr)
}

func (s Section) readerAt(addr uint64) (*binary.Reader, error) {
	if !s.Contains(addr) {
		return nil, errors.OutOfBounds(errors.PhaseParse, addr, 0)
	}
	r := s.reader()
	if err := r.Seek(int(addr - s.Addr)); err != nil {
		return nil, err
	}
	return r, nil
}

// FieldSection views a section as a sequence of field descriptors.
type FieldSection struct{ Section }

// AssociatedTypeSection views a section as a sequence of associated type descriptors.
type AssociatedTypeSection struct{ Section }

// BuiltinTypeSection views a section as a sequence of builtin type descriptors.
type BuiltinTypeSection struct{ Section }

// GenericSection is a raw blob (mangled type names or reflection strings).
type GenericSection struct{ Section }

// NameReader dereferences the strings that relative pointers in records target.
type NameReader interface {
	ReadCString(addr uint64) (string, error)
	ReadMangledName(addr uint64) (string, error)
}

// readName follows ptr through names, reporting failures as malformed metadata
// attributed to the record at recordAddr.
func readName(names NameReader, ptr binary.Relative, mangled bool, section string, recordAddr uint64) (string, error) {
	target, err := ptr.Target()
	if err != nil {
		return "", errors.Malformed(section, recordAddr, err)
	}
	var s string
	if mangled {
		s, err = names.ReadMangledName(target)
	} else {
		s, err = names.ReadCString(target)
	}
	if err != nil {
		return "", errors.Malformed(section, recordAddr, err)
	}
	return s, nil
}

// bodySize returns count*size as an int, failing on overflow.
func bodySize(count, size uint32) (int, error) {
	total, err := safecast.Conv[int](uint64(count) * uint64(size))
	if err != nil {
		return 0, err
	}
	return total, nil
}
