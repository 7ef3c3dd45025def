package reflection

import (
	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
)

// Snapshot is the decoded content of every registered image, in a form
// suitable for serialization.
type Snapshot struct {
	Images []ImageSnapshot `msgpack:"images"`
}

// ImageSnapshot is the content of one image. Records that could not be
// parsed are listed in Malformed.
type ImageSnapshot struct {
	Name            string                `msgpack:"name"`
	Types           []TypeSnapshot        `msgpack:"types"`
	Conformances    []ConformanceSnapshot `msgpack:"conformances"`
	Builtins        []BuiltinSnapshot     `msgpack:"builtins"`
	Malformed       []string              `msgpack:"malformed,omitempty"`
	FieldSectionLen int                   `msgpack:"fieldmd_size"`
}

// TypeSnapshot is one field descriptor.
type TypeSnapshot struct {
	MangledName string          `msgpack:"mangled_name"`
	Name        string          `msgpack:"name"`
	Kind        string          `msgpack:"kind"`
	Superclass  string          `msgpack:"superclass,omitempty"`
	Fields      []FieldSnapshot `msgpack:"fields"`
}

// FieldSnapshot is one field record. MangledTypeName is empty for enum
// cases without payload.
type FieldSnapshot struct {
	Name            string `msgpack:"name"`
	MangledTypeName string `msgpack:"mangled_type_name,omitempty"`
	TypeName        string `msgpack:"type_name,omitempty"`
	IsVar           bool   `msgpack:"is_var"`
	IsIndirectCase  bool   `msgpack:"is_indirect_case"`
}

// ConformanceSnapshot is one associated type descriptor.
type ConformanceSnapshot struct {
	ConformingType string          `msgpack:"conforming_type"`
	Protocol       string          `msgpack:"protocol"`
	Members        []AssocSnapshot `msgpack:"members"`
}

// AssocSnapshot is one associated type witness.
type AssocSnapshot struct {
	Name            string `msgpack:"name"`
	MangledTypeName string `msgpack:"mangled_type_name"`
	TypeName        string `msgpack:"type_name"`
}

// BuiltinSnapshot is one builtin type descriptor.
type BuiltinSnapshot struct {
	MangledName         string `msgpack:"mangled_name"`
	Name                string `msgpack:"name"`
	Size                uint32 `msgpack:"size"`
	Alignment           uint32 `msgpack:"alignment"`
	Stride              uint32 `msgpack:"stride"`
	NumExtraInhabitants uint32 `msgpack:"num_extra_inhabitants"`
	BitwiseTakable      bool   `msgpack:"bitwise_takable"`
}

// Snapshot captures every registered image. It always returns the complete
// snapshot; the error joins the malformed records that were left out or
// only partially captured.
func (b *Builder) Snapshot() (Snapshot, error) {
	var snap Snapshot
	var errs []error
	for i := range b.infos {
		img, imgErrs := snapshotImage(&b.infos[i])
		snap.Images = append(snap.Images, img)
		errs = append(errs, imgErrs...)
	}
	return snap, errors.Join(errs...)
}

func snapshotImage(info *records.ReflectionInfo) (ImageSnapshot, []error) {
	img := ImageSnapshot{Name: info.ImageName, FieldSectionLen: info.Field.Size()}
	var errs []error
	fail := func(err error) {
		errs = append(errs, err)
		img.Malformed = append(img.Malformed, err.Error())
	}

	for fd, err := range info.FieldDescriptors() {
		if err != nil {
			fail(err)
			continue
		}
		ts := TypeSnapshot{Kind: fd.Kind.String()}
		if fd.HasMangledTypeName() {
			if ts.MangledName, err = fd.MangledTypeName(); err != nil {
				fail(err)
			}
			ts.Name = ReadableName(ts.MangledName)
		}
		if fd.HasSuperclass() {
			if ts.Superclass, err = fd.Superclass(); err != nil {
				fail(err)
			}
		}
		for _, rec := range fd.Records {
			fs := FieldSnapshot{IsVar: rec.Flags.IsVar(), IsIndirectCase: rec.Flags.IsIndirectCase()}
			if fs.Name, err = rec.FieldName(); err != nil {
				fail(err)
			}
			if rec.HasMangledTypeName() {
				if fs.MangledTypeName, err = rec.MangledTypeName(); err != nil {
					fail(err)
				} else {
					fs.TypeName = ReadableName(fs.MangledTypeName)
				}
			}
			ts.Fields = append(ts.Fields, fs)
		}
		img.Types = append(img.Types, ts)
	}

	for ad, err := range info.AssociatedTypeDescriptors() {
		if err != nil {
			fail(err)
			continue
		}
		var cs ConformanceSnapshot
		if cs.ConformingType, err = ad.ConformingTypeName(); err != nil {
			fail(err)
		}
		if cs.Protocol, err = ad.ProtocolTypeName(); err != nil {
			fail(err)
		}
		for _, rec := range ad.Records {
			var as AssocSnapshot
			if as.Name, err = rec.Name(); err != nil {
				fail(err)
			}
			if as.MangledTypeName, err = rec.SubstitutedTypeName(); err != nil {
				fail(err)
			} else {
				as.TypeName = ReadableName(as.MangledTypeName)
			}
			cs.Members = append(cs.Members, as)
		}
		img.Conformances = append(img.Conformances, cs)
	}

	for bd, err := range info.BuiltinTypeDescriptors() {
		if err != nil {
			fail(err)
			continue
		}
		bs := BuiltinSnapshot{
			Size:                bd.Size,
			Alignment:           bd.Alignment(),
			Stride:              bd.Stride,
			NumExtraInhabitants: bd.NumExtraInhabitants,
			BitwiseTakable:      bd.IsBitwiseTakable(),
		}
		if bd.HasTypeName() {
			if bs.MangledName, err = bd.TypeName(); err != nil {
				fail(err)
			}
			bs.Name = ReadableName(bs.MangledName)
		}
		img.Builtins = append(img.Builtins, bs)
	}
	return img, errs
}
