package image

import (
	"encoding/binary"

	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
)

// machoSegment holds the reflection sections in Mach-O images.
const machoSegment = "__TEXT"

// OpenMachO loads the __TEXT,__swift5_* sections of a thin little-endian
// Mach-O file.
func OpenMachO(path string) (records.ReflectionInfo, error) {
	f, err := macho.Open(path)
	if err != nil {
		return records.ReflectionInfo{}, errors.Load("cannot parse Mach-O "+path, err)
	}
	defer f.Close()

	name := imageName(path)
	if f.ByteOrder != binary.LittleEndian {
		return records.ReflectionInfo{}, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Image(name).
			Detail("big-endian Mach-O").
			Build()
	}
	info, err := assemble(name, func(section string) (records.Section, error) {
		s := f.Section(machoSegment, "__"+section)
		if s == nil {
			return records.NewSection(section, 0, nil), nil
		}
		data, err := s.Data()
		if err != nil {
			return records.Section{}, wrapLoad(name, section, err)
		}
		return records.NewSection(section, s.Addr, data), nil
	})
	if err != nil {
		return records.ReflectionInfo{}, err
	}
	info.PointerSize = 8
	if f.Magic == types.Magic32 {
		info.PointerSize = 4
	}
	return info, nil
}
