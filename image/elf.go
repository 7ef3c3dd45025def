package image

import (
	"debug/elf"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
)

// OpenELF loads the swift5_* sections of a little-endian ELF file.
func OpenELF(path string) (records.ReflectionInfo, error) {
	f, err := elf.Open(path)
	if err != nil {
		return records.ReflectionInfo{}, errors.Load("cannot parse ELF "+path, err)
	}
	defer f.Close()
	return fromELF(imageName(path), f)
}

func fromELF(name string, f *elf.File) (records.ReflectionInfo, error) {
	if f.Data != elf.ELFDATA2LSB {
		return records.ReflectionInfo{}, errors.New(errors.PhaseLoad, errors.KindUnsupported).
			Image(name).
			Detail("big-endian ELF").
			Build()
	}
	info, err := assemble(name, func(section string) (records.Section, error) {
		s := f.Section(section)
		if s == nil || s.Type == elf.SHT_NOBITS {
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
	if f.Class == elf.ELFCLASS32 {
		info.PointerSize = 4
	}
	return info, nil
}
