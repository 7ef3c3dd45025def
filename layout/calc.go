package layout

import (
	"math"

	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

// leastValidPointer is the first address a heap pointer may take. Values
// below it are the extra inhabitants of every pointer-like type.
const leastValidPointer = 4096

// Source is the metadata a Calculator consults. The reflection Builder
// implements it.
type Source interface {
	GetBuiltinTypeInfo(tr typeref.TypeRef) (*records.BuiltinTypeDescriptor, error)
	GetFieldTypeInfo(tr typeref.TypeRef) (*records.FieldDescriptor, error)
	GetFieldTypeRefs(tr typeref.TypeRef, fd *records.FieldDescriptor) ([]typeref.Field, error)
}

type result struct {
	info Info
	ok   bool
}

// Calculator derives layouts from builtin and field descriptors. Results,
// including unknown ones, are cached by structural key, so equal TypeRefs
// from different decodes share one entry. It is not safe for concurrent use.
type Calculator struct {
	src         Source
	cache       map[string]result
	inProgress  map[string]bool
	pointerSize uint32
}

// NewCalculator creates a calculator for a target with the given pointer
// width in bytes.
func NewCalculator(src Source, pointerSize uint32) *Calculator {
	return &Calculator{
		src:         src,
		pointerSize: pointerSize,
		cache:       make(map[string]result),
		inProgress:  make(map[string]bool),
	}
}

// PointerSize returns the target pointer width.
func (c *Calculator) PointerSize() uint32 {
	return c.pointerSize
}

// LayoutOf implements Provider.
func (c *Calculator) LayoutOf(tr typeref.TypeRef) (Info, bool) {
	if tr == nil {
		return Info{}, false
	}
	key := typeref.Key(tr)
	if cached, ok := c.cache[key]; ok {
		return cached.info, cached.ok
	}
	// A type that contains itself by value has no finite layout.
	if c.inProgress[key] {
		return Info{}, false
	}
	c.inProgress[key] = true
	info, ok := c.calculate(tr)
	delete(c.inProgress, key)

	c.cache[key] = result{info: info, ok: ok}
	return info, ok
}

func (c *Calculator) calculate(tr typeref.TypeRef) (Info, bool) {
	switch typ := tr.(type) {
	case *typeref.Builtin:
		return c.builtin(typ)
	case *typeref.Nominal, *typeref.BoundGeneric:
		if info, ok := c.builtin(typ); ok {
			return info, true
		}
		return c.nominal(typ)
	case *typeref.Tuple:
		fields := make([]typeref.Field, len(typ.Elements))
		for i, elem := range typ.Elements {
			fields[i] = typeref.Field{Type: elem}
		}
		return c.record(fields)
	case *typeref.Metatype, *typeref.UnownedStorage, *typeref.UnmanagedStorage,
		*typeref.ObjCClass, *typeref.ForeignClass:
		return c.pointers(1, true), true
	case *typeref.WeakStorage:
		info := c.pointers(1, false)
		info.NumExtraInhabitants = 0
		return info, true
	case *typeref.ExistentialMetatype:
		composition, ok := typ.Instance.(*typeref.ProtocolComposition)
		if !ok {
			return Info{}, false
		}
		// metadata pointer plus one witness table per protocol
		return c.pointers(1+uint32(len(composition.Protocols)), true), true
	case *typeref.Function:
		switch typ.Flags.Convention {
		case typeref.ConventionThin, typeref.ConventionCFunctionPointer, typeref.ConventionBlock:
			return c.pointers(1, true), true
		}
		// function pointer plus context
		return c.pointers(2, true), true
	}
	return Info{}, false
}

func (c *Calculator) pointers(n uint32, takable bool) Info {
	size := n * c.pointerSize
	return Info{
		Size:                size,
		Align:               c.pointerSize,
		Stride:              size,
		NumExtraInhabitants: leastValidPointer,
		BitwiseTakable:      takable,
	}
}

func (c *Calculator) builtin(tr typeref.TypeRef) (Info, bool) {
	bd, err := c.src.GetBuiltinTypeInfo(tr)
	if err != nil {
		return Info{}, false
	}
	return Info{
		Size:                bd.Size,
		Align:               bd.Alignment(),
		Stride:              bd.Stride,
		NumExtraInhabitants: bd.NumExtraInhabitants,
		BitwiseTakable:      bd.IsBitwiseTakable(),
	}, true
}

func (c *Calculator) nominal(tr typeref.TypeRef) (Info, bool) {
	fd, err := c.src.GetFieldTypeInfo(tr)
	if err != nil {
		return Info{}, false
	}

	switch fd.Kind {
	case records.FieldKindClass, records.FieldKindObjCClass:
		return c.pointers(1, true), true
	case records.FieldKindStruct, records.FieldKindEnum:
	default:
		return Info{}, false
	}

	fields, err := c.src.GetFieldTypeRefs(tr, fd)
	if err != nil {
		return Info{}, false
	}
	if fd.Kind == records.FieldKindStruct {
		return c.record(fields)
	}
	return enumeration(fields)
}

// record lays fields out in declaration order, each at the next offset
// aligned for it.
func (c *Calculator) record(fields []typeref.Field) (Info, bool) {
	info := Info{Align: 1, BitwiseTakable: true}
	var offset uint64
	for _, f := range fields {
		fieldInfo, ok := c.LayoutOf(f.Type)
		if !ok {
			return Info{}, false
		}
		aligned := AlignTo(uint32(offset), fieldInfo.Align)
		info.Fields = append(info.Fields, FieldInfo{
			Name:   f.Name,
			Type:   f.Type,
			Offset: aligned,
			Size:   fieldInfo.Size,
		})
		offset = uint64(aligned) + uint64(fieldInfo.Size)
		if offset > math.MaxUint32 {
			return Info{}, false
		}
		info.Align = max(info.Align, fieldInfo.Align)
		info.NumExtraInhabitants = max(info.NumExtraInhabitants, fieldInfo.NumExtraInhabitants)
		info.BitwiseTakable = info.BitwiseTakable && fieldInfo.BitwiseTakable
	}
	info.Size = uint32(offset)
	info.Stride = max(AlignTo(info.Size, info.Align), 1)
	return info, true
}

// enumeration handles enums whose cases carry no payload: the layout is
// the smallest tag able to hold every case.
func enumeration(cases []typeref.Field) (Info, bool) {
	for _, cs := range cases {
		if cs.Type != nil {
			return Info{}, false
		}
	}
	size := DiscriminantSize(len(cases))
	info := Info{
		Size:           size,
		Align:          max(size, 1),
		Stride:         max(size, 1),
		BitwiseTakable: true,
	}
	if size > 0 && size < 4 {
		info.NumExtraInhabitants = uint32(1)<<(8*size) - uint32(len(cases))
	}
	return info, true
}
