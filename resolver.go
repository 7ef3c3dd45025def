package reflection

import (
	"go.uber.org/zap"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

// scan collects the malformed records a registry scan skipped. A lookup that
// finds nothing reports them instead of a plain miss.
type scan struct {
	query     string
	malformed []error
}

func (s *scan) skip(info *records.ReflectionInfo, err error) {
	Logger().Warn("skipping malformed record",
		zap.String("query", s.query),
		zap.String("image", info.ImageName),
		zap.Error(err))
	s.malformed = append(s.malformed, err)
}

func (s *scan) miss(what, name string) error {
	if len(s.malformed) > 0 {
		return errors.Join(s.malformed...)
	}
	return errors.NotFound(what, name)
}

// GetFieldTypeInfo finds the field descriptor of a nominal or bound generic
// type. The first registered image describing the type wins.
func (b *Builder) GetFieldTypeInfo(tr typeref.TypeRef) (*records.FieldDescriptor, error) {
	var name string
	switch t := tr.(type) {
	case *typeref.Nominal:
		name = t.MangledName
	case *typeref.BoundGeneric:
		name = t.MangledName
	default:
		return nil, errors.Usage("field type info", kindName(tr))
	}

	s := scan{query: "field type info"}
	for i := range b.infos {
		info := &b.infos[i]
		for fd, err := range info.FieldDescriptors() {
			if err != nil {
				s.skip(info, err)
				continue
			}
			if !fd.HasMangledTypeName() {
				continue
			}
			got, err := fd.MangledTypeName()
			if err != nil {
				s.skip(info, err)
				continue
			}
			if got == name {
				Logger().Debug("field descriptor found",
					zap.String("type", name),
					zap.String("image", info.ImageName),
					zap.Uint64("address", fd.Address))
				return fd, nil
			}
		}
	}
	return nil, s.miss("field descriptor", name)
}

// GetFieldTypeRefs decodes the fields of fd in declaration order, with the
// generic parameters bound by tr substituted. A field without a type (an
// enum case without payload) has a nil Type.
func (b *Builder) GetFieldTypeRefs(tr typeref.TypeRef, fd *records.FieldDescriptor) ([]typeref.Field, error) {
	if fd == nil {
		return nil, errors.InvalidInput(errors.PhaseLookup, "nil field descriptor")
	}
	subs := typeref.SubstitutionsOf(tr)

	fields := make([]typeref.Field, 0, fd.NumFields())
	for _, rec := range fd.Records {
		name, err := rec.FieldName()
		if err != nil {
			return nil, err
		}
		if !rec.HasMangledTypeName() {
			fields = append(fields, typeref.Field{Name: name})
			continue
		}
		mangled, err := rec.MangledTypeName()
		if err != nil {
			return nil, err
		}
		fieldType, err := b.DecodeMangledType(mangled)
		if err != nil {
			kind := errors.KindOf(err)
			if kind == "" {
				kind = errors.KindInvalidData
			}
			return nil, errors.New(errors.PhaseDecode, kind).
				Type(mangled).
				Path(name).
				Cause(err).
				Detail("cannot decode field type").
				Build()
		}
		if fieldType, err = b.Subst(fieldType, subs); err != nil {
			return nil, err
		}
		fields = append(fields, typeref.Field{Name: name, Type: fieldType})
	}
	return fields, nil
}

// GetDependentMemberTypeRef resolves dm through the associated type
// witnesses of the conformance of mangledTypeName to dm's protocol.
func (b *Builder) GetDependentMemberTypeRef(mangledTypeName string, dm *typeref.DependentMember) (typeref.TypeRef, error) {
	if dm == nil || dm.Protocol == nil {
		return nil, errors.Usage("dependent member type", "dependent member without protocol")
	}

	s := scan{query: "dependent member type"}
	for i := range b.infos {
		info := &b.infos[i]
		for ad, err := range info.AssociatedTypeDescriptors() {
			if err != nil {
				s.skip(info, err)
				continue
			}
			conforming, err := ad.ConformingTypeName()
			if err != nil {
				s.skip(info, err)
				continue
			}
			if conforming != mangledTypeName {
				continue
			}
			protocolName, err := ad.ProtocolTypeName()
			if err != nil {
				s.skip(info, err)
				continue
			}
			protocol, err := b.DecodeMangledType(protocolName)
			if err != nil {
				Logger().Debug("cannot decode conformance protocol",
					zap.String("protocol", protocolName),
					zap.String("image", info.ImageName),
					zap.Error(err))
				continue
			}
			if !typeref.Equal(protocol, dm.Protocol) {
				continue
			}
			return b.witness(ad, dm, &s)
		}
	}
	return nil, s.miss("associated type conformance", mangledTypeName)
}

// witness looks dm's member up in the conformance ad.
func (b *Builder) witness(ad *records.AssociatedTypeDescriptor, dm *typeref.DependentMember, s *scan) (typeref.TypeRef, error) {
	for _, rec := range ad.Records {
		name, err := rec.Name()
		if err != nil {
			s.malformed = append(s.malformed, err)
			continue
		}
		if name != dm.Member {
			continue
		}
		substituted, err := rec.SubstitutedTypeName()
		if err != nil {
			return nil, err
		}
		return b.DecodeMangledType(substituted)
	}
	return nil, s.miss("associated type", dm.Member)
}

// GetBuiltinTypeInfo finds the builtin descriptor of a builtin or
// primitive-carrying nominal type.
func (b *Builder) GetBuiltinTypeInfo(tr typeref.TypeRef) (*records.BuiltinTypeDescriptor, error) {
	var name string
	switch t := tr.(type) {
	case *typeref.Builtin:
		name = t.MangledName
	case *typeref.Nominal:
		name = t.MangledName
	default:
		return nil, errors.Usage("builtin type info", kindName(tr))
	}

	s := scan{query: "builtin type info"}
	for i := range b.infos {
		info := &b.infos[i]
		for bd, err := range info.BuiltinTypeDescriptors() {
			if err != nil {
				s.skip(info, err)
				continue
			}
			if !bd.HasTypeName() {
				continue
			}
			got, err := bd.TypeName()
			if err != nil {
				s.skip(info, err)
				continue
			}
			if got == name {
				return bd, nil
			}
		}
	}
	return nil, s.miss("builtin type", name)
}

func kindName(tr typeref.TypeRef) string {
	if tr == nil {
		return "nil"
	}
	return tr.Kind().String()
}
