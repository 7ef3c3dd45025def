package layout

import (
	"testing"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

type nominalInfo struct {
	kind   records.FieldDescriptorKind
	fields []typeref.Field
}

// fakeSource answers from maps keyed by mangled name.
type fakeSource struct {
	builtins map[string]*records.BuiltinTypeDescriptor
	nominals map[string]nominalInfo
	calls    int
}

func mangledName(tr typeref.TypeRef) string {
	switch t := tr.(type) {
	case *typeref.Builtin:
		return t.MangledName
	case *typeref.Nominal:
		return t.MangledName
	case *typeref.BoundGeneric:
		return t.MangledName
	}
	return ""
}

func (s *fakeSource) GetBuiltinTypeInfo(tr typeref.TypeRef) (*records.BuiltinTypeDescriptor, error) {
	s.calls++
	if bd, ok := s.builtins[mangledName(tr)]; ok {
		return bd, nil
	}
	return nil, errors.NotFound("builtin type", mangledName(tr))
}

func (s *fakeSource) GetFieldTypeInfo(tr typeref.TypeRef) (*records.FieldDescriptor, error) {
	if n, ok := s.nominals[mangledName(tr)]; ok {
		return &records.FieldDescriptor{Kind: n.kind}, nil
	}
	return nil, errors.NotFound("field descriptor", mangledName(tr))
}

func (s *fakeSource) GetFieldTypeRefs(tr typeref.TypeRef, _ *records.FieldDescriptor) ([]typeref.Field, error) {
	return s.nominals[mangledName(tr)].fields, nil
}

func builtin(size, align uint32, extra uint32) *records.BuiltinTypeDescriptor {
	return &records.BuiltinTypeDescriptor{
		Size:                size,
		AlignmentAndFlags:   align | 1<<16,
		Stride:              max(AlignTo(size, align), 1),
		NumExtraInhabitants: extra,
	}
}

func TestCalculator(t *testing.T) {
	f := typeref.NewFactory(typeref.NewArena(false))
	decl := typeref.NominalTypeDeclFromMangled
	i64 := f.CreateBuiltinType("Bi64_")
	i8 := f.CreateBuiltinType("Bi8_")
	i1 := f.CreateBuiltinType("Bi1_")
	intType := f.CreateNominalType(decl("Si"), nil)
	boolType := f.CreateNominalType(decl("Sb"), nil)
	point := f.CreateNominalType(decl("4main5PointV"), nil)
	mixed := f.CreateNominalType(decl("4main5MixedV"), nil)
	node := f.CreateNominalType(decl("4main4NodeC"), nil)
	color := f.CreateNominalType(decl("4main5ColorO"), nil)
	payload := f.CreateNominalType(decl("4main6ResultO"), nil)
	empty := f.CreateNominalType(decl("4main5EmptyV"), nil)
	loop := f.CreateNominalType(decl("4main4LoopV"), nil)

	src := &fakeSource{
		builtins: map[string]*records.BuiltinTypeDescriptor{
			"Bi64_": builtin(8, 8, 0),
			"Bi8_":  builtin(1, 1, 0),
			"Bi1_":  builtin(1, 1, 254),
		},
		nominals: map[string]nominalInfo{
			"Si": {records.FieldKindStruct, []typeref.Field{{Name: "_value", Type: i64}}},
			"Sb": {records.FieldKindStruct, []typeref.Field{{Name: "_value", Type: i1}}},
			"4main5PointV": {records.FieldKindStruct, []typeref.Field{
				{Name: "x", Type: intType}, {Name: "y", Type: intType},
			}},
			"4main5MixedV": {records.FieldKindStruct, []typeref.Field{
				{Name: "flag", Type: boolType}, {Name: "count", Type: intType}, {Name: "tag", Type: i8},
			}},
			"4main4NodeC": {records.FieldKindClass, nil},
			"4main5ColorO": {records.FieldKindEnum, []typeref.Field{
				{Name: "red"}, {Name: "green"}, {Name: "blue"},
			}},
			"4main6ResultO": {records.FieldKindEnum, []typeref.Field{
				{Name: "ok", Type: intType}, {Name: "failed"},
			}},
			"4main5EmptyV": {records.FieldKindStruct, nil},
			// contains itself by value
			"4main4LoopV": {records.FieldKindStruct, []typeref.Field{{Name: "next", Type: loop}}},
		},
	}

	c := NewCalculator(src, 8)

	tests := []struct {
		name                string
		tr                  typeref.TypeRef
		ok                  bool
		size, align, stride uint32
		extra               uint32
	}{
		{"builtin", i64, true, 8, 8, 8, 0},
		{"int", intType, true, 8, 8, 8, 0},
		{"bool keeps extra inhabitants", boolType, true, 1, 1, 1, 254},
		{"point", point, true, 16, 8, 16, 0},
		{"mixed with padding", mixed, true, 17, 8, 24, 254},
		{"class reference", node, true, 8, 8, 8, leastValidPointer},
		{"fieldless enum", color, true, 1, 1, 1, 253},
		{"payload enum", payload, false, 0, 0, 0, 0},
		{"empty struct", empty, true, 0, 1, 1, 0},
		{"recursive struct", loop, false, 0, 0, 0, 0},
		{"tuple", f.CreateTupleType([]typeref.TypeRef{boolType, intType}, false), true, 16, 8, 16, 254},
		{"empty tuple", f.CreateTupleType(nil, false), true, 0, 1, 1, 0},
		{"metatype", f.CreateMetatypeType(point), true, 8, 8, 8, leastValidPointer},
		{"weak", f.CreateWeakStorageType(node), true, 8, 8, 8, 0},
		{"thick function", f.CreateFunctionType(nil, nil, intType, typeref.FunctionFlags{Escaping: true}), true, 16, 8, 16, leastValidPointer},
		{"thin function", f.CreateFunctionType(nil, nil, intType, typeref.FunctionFlags{Convention: typeref.ConventionThin}), true, 8, 8, 8, leastValidPointer},
		{"generic parameter", f.CreateGenericTypeParameterType(0, 0), false, 0, 0, 0, 0},
		{"unknown nominal", f.CreateNominalType(decl("4main7MissingV"), nil), false, 0, 0, 0, 0},
		{"protocol composition", mustComposition(t, f), false, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := c.LayoutOf(tt.tr)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if info.Size != tt.size || info.Align != tt.align || info.Stride != tt.stride {
				t.Errorf("got size=%d align=%d stride=%d, want %d/%d/%d",
					info.Size, info.Align, info.Stride, tt.size, tt.align, tt.stride)
			}
			if info.NumExtraInhabitants != tt.extra {
				t.Errorf("extra inhabitants: got %d, want %d", info.NumExtraInhabitants, tt.extra)
			}
		})
	}
}

func mustComposition(t *testing.T, f *typeref.Factory) typeref.TypeRef {
	t.Helper()
	c, err := f.CreateProtocolCompositionType(nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCalculatorFieldOffsets(t *testing.T) {
	f := typeref.NewFactory(typeref.NewArena(false))
	i8 := f.CreateBuiltinType("Bi8_")
	i32 := f.CreateBuiltinType("Bi32_")
	src := &fakeSource{builtins: map[string]*records.BuiltinTypeDescriptor{
		"Bi8_":  builtin(1, 1, 0),
		"Bi32_": builtin(4, 4, 0),
	}}

	info, ok := NewCalculator(src, 8).LayoutOf(f.CreateTupleType([]typeref.TypeRef{i8, i32, i8}, false))
	if !ok {
		t.Fatal("tuple layout unknown")
	}
	want := []uint32{0, 4, 8}
	if len(info.Fields) != len(want) {
		t.Fatalf("got %d fields", len(info.Fields))
	}
	for i, off := range want {
		if info.Fields[i].Offset != off {
			t.Errorf("field %d: offset %d, want %d", i, info.Fields[i].Offset, off)
		}
	}
	if info.Size != 9 || info.Stride != 12 {
		t.Errorf("size=%d stride=%d", info.Size, info.Stride)
	}
}

func TestCalculatorCaches(t *testing.T) {
	f := typeref.NewFactory(typeref.NewArena(false))
	i64 := f.CreateBuiltinType("Bi64_")
	src := &fakeSource{builtins: map[string]*records.BuiltinTypeDescriptor{"Bi64_": builtin(8, 8, 0)}}
	c := NewCalculator(src, 8)

	c.LayoutOf(i64)
	c.LayoutOf(i64)
	// a distinct but equal node shares the entry
	c.LayoutOf(f.CreateBuiltinType("Bi64_"))
	if src.calls != 1 {
		t.Errorf("source consulted %d times", src.calls)
	}
}

func TestDiscriminantSize(t *testing.T) {
	tests := []struct {
		cases int
		want  uint32
	}{
		{0, 0}, {1, 0}, {2, 1}, {256, 1}, {257, 2}, {65536, 2}, {65537, 4},
	}
	for _, tt := range tests {
		if got := DiscriminantSize(tt.cases); got != tt.want {
			t.Errorf("%d cases: got %d, want %d", tt.cases, got, tt.want)
		}
	}
}

func TestAlignTo(t *testing.T) {
	tests := []struct{ offset, align, want uint32 }{
		{0, 8, 0}, {1, 8, 8}, {8, 8, 8}, {9, 4, 12}, {5, 0, 5},
	}
	for _, tt := range tests {
		if got := AlignTo(tt.offset, tt.align); got != tt.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tt.offset, tt.align, got, tt.want)
		}
	}
}
