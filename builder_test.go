package reflection_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/internal/fixture"
	"github.com/wippyai/swift-reflection/layout"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

// tableDecoder decodes plain names from a fixed table, the way a test
// stands in for a real name decoder.
type tableDecoder map[string]func(f *typeref.Factory) typeref.TypeRef

func (d tableDecoder) DecodeMangledType(f *typeref.Factory, mangled string) (typeref.TypeRef, error) {
	build, ok := d[mangled]
	if !ok {
		return nil, errors.Unsupported(errors.PhaseDecode, "no table entry for "+mangled)
	}
	return build(f), nil
}

func nominal(f *typeref.Factory, name string) typeref.TypeRef {
	return f.CreateNominalType(typeref.NominalTypeDeclFromMangled(name), nil)
}

func mustDecode(t *testing.T, b *reflection.Builder, mangled string) typeref.TypeRef {
	t.Helper()
	tr, err := b.DecodeMangledType(mangled)
	if err != nil {
		t.Fatalf("decode %q: %v", mangled, err)
	}
	return tr
}

func fieldsOf(t *testing.T, b *reflection.Builder, tr typeref.TypeRef) []typeref.Field {
	t.Helper()
	fd, err := b.GetFieldTypeInfo(tr)
	if err != nil {
		t.Fatalf("field type info: %v", err)
	}
	fields, err := b.GetFieldTypeRefs(tr, fd)
	if err != nil {
		t.Fatalf("field type refs: %v", err)
	}
	return fields
}

func TestFirstRegistrationWins(t *testing.T) {
	a := fixture.New("A")
	a.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct, fixture.Field{Name: "fromA", Type: "Si"})
	b := fixture.New("B")
	b.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct, fixture.Field{Name: "fromB", Type: "Si"})

	builder := reflection.New(nil)
	builder.AddReflectionInfo(*a.Info())
	builder.AddReflectionInfo(*b.Info())

	infos := builder.ReflectionInfos()
	if len(infos) != 2 || infos[0].ImageName != "A" || infos[1].ImageName != "B" {
		t.Fatalf("registration order not preserved: %+v", infos)
	}

	point := mustDecode(t, builder, "4main5PointV")
	for range 3 {
		fields := fieldsOf(t, builder, point)
		if len(fields) != 1 || fields[0].Name != "fromA" {
			t.Fatalf("got %+v, want the first image's descriptor", fields)
		}
	}
}

func TestRegistrationPointerSize(t *testing.T) {
	b := reflection.New(&reflection.Config{PointerSize: 4})
	b.AddReflectionInfo(*fixture.New("unset").Info())
	explicit := fixture.New("explicit").Info()
	explicit.PointerSize = 8
	b.AddReflectionInfo(*explicit)

	infos := b.ReflectionInfos()
	if infos[0].PointerSize != 4 {
		t.Errorf("unset image: got pointer size %d, want the configured 4", infos[0].PointerSize)
	}
	if infos[1].PointerSize != 8 {
		t.Errorf("explicit image: got pointer size %d, want 8", infos[1].PointerSize)
	}
}

func TestGenericSubstitution(t *testing.T) {
	im := fixture.New("generic")
	im.AddFieldDescriptor("4main4PairV", "", records.FieldKindStruct,
		fixture.Field{Name: "first", Type: "x"},
		fixture.Field{Name: "second", Type: "q_"},
	)
	im.AddFieldDescriptor("4main5OuterV5InnerV", "", records.FieldKindStruct,
		fixture.Field{Name: "outer", Type: "x"},
		fixture.Field{Name: "inner", Type: "qd__"},
		fixture.Field{Name: "both", Type: "x_qd__t"},
	)

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())
	intType := nominal(b.Factory, "Si")
	str := nominal(b.Factory, "SS")

	t.Run("pair", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main4PairVySiSSG"))
		want := []typeref.Field{{Name: "first", Type: intType}, {Name: "second", Type: str}}
		assertFields(t, fields, want)
	})

	t.Run("nested generic", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main5OuterV5InnerVySi_SSG"))
		want := []typeref.Field{
			{Name: "outer", Type: intType},
			{Name: "inner", Type: str},
			{Name: "both", Type: b.CreateTupleType([]typeref.TypeRef{intType, str}, false)},
		}
		assertFields(t, fields, want)
	})

	t.Run("unbound stays generic", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main4PairV"))
		if _, ok := fields[0].Type.(*typeref.GenericTypeParameter); !ok {
			t.Errorf("got %s", typeref.String(fields[0].Type))
		}
	})
}

func assertFields(t *testing.T, got, want []typeref.Field) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("field %d: name %q, want %q", i, got[i].Name, want[i].Name)
		}
		if !typeref.Equal(got[i].Type, want[i].Type) {
			t.Errorf("field %s: got\n%s\nwant\n%s", want[i].Name, typeref.String(got[i].Type), typeref.String(want[i].Type))
		}
	}
}

func TestFactoryIdempotence(t *testing.T) {
	im := fixture.New("idempotence")
	im.AddFieldDescriptor("ModuleX.Foo", "", records.FieldKindStruct,
		fixture.Field{Name: "a", Type: "Si"}, fixture.Field{Name: "b", Type: "SS"})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	first := fieldsOf(t, b, nominal(b.Factory, "ModuleX.Foo"))
	second := fieldsOf(t, b, nominal(b.Factory, "ModuleX.Foo"))
	assertFields(t, second, first)
}

func TestPayloadlessEnumCases(t *testing.T) {
	im := fixture.New("enum")
	im.AddFieldDescriptor("4main6ResultO", "", records.FieldKindMultiPayloadEnum,
		fixture.Field{Name: "ok", Type: "Si"},
		fixture.Field{Name: "none"},
		fixture.Field{Name: "next", Type: "4main6ResultO", Flags: uint32(records.FieldIsIndirectCase)},
	)
	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	fields := fieldsOf(t, b, mustDecode(t, b, "4main6ResultO"))
	if len(fields) != 3 {
		t.Fatalf("got %d cases", len(fields))
	}
	if fields[1].Name != "none" || fields[1].Type != nil {
		t.Errorf("payload-less case: %+v", fields[1])
	}
	if fields[2].Type == nil {
		t.Error("indirect case lost its payload")
	}
}

func TestDependentMemberRoundTrip(t *testing.T) {
	im := fixture.New("assoc")
	im.AddAssociatedTypes("Container", "Sequence", fixture.Assoc{Name: "Element", Type: "Int"})

	dec := tableDecoder{
		"Sequence":   func(f *typeref.Factory) typeref.TypeRef { return f.CreateProtocolType("", "Sequence") },
		"Collection": func(f *typeref.Factory) typeref.TypeRef { return f.CreateProtocolType("", "Collection") },
		"Int":        func(f *typeref.Factory) typeref.TypeRef { return f.CreateBuiltinType("Int") },
	}
	b := reflection.New(&reflection.Config{Decoder: dec})
	b.AddReflectionInfo(*im.Info())

	container := nominal(b.Factory, "Container")
	member := func(name, protocol string) *typeref.DependentMember {
		dm, err := b.CreateDependentMemberType(name, container, b.CreateProtocolType("", protocol))
		if err != nil {
			t.Fatal(err)
		}
		return dm
	}

	got, err := b.GetDependentMemberTypeRef("Container", member("Element", "Sequence"))
	if err != nil {
		t.Fatal(err)
	}
	if !typeref.Equal(got, b.CreateBuiltinType("Int")) {
		t.Errorf("got %s", typeref.String(got))
	}

	misses := []struct {
		name       string
		conforming string
		dm         *typeref.DependentMember
	}{
		{"unknown member", "Container", member("Iterator", "Sequence")},
		{"other protocol", "Container", member("Element", "Collection")},
		{"other type", "Other", member("Element", "Sequence")},
	}
	for _, tt := range misses {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.GetDependentMemberTypeRef(tt.conforming, tt.dm)
			if !errors.IsNotFound(err) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

func TestDependentMemberSubstitution(t *testing.T) {
	im := fixture.New("stdlib")
	im.AddFieldDescriptor("4main9ContainerV", "", records.FieldKindStruct,
		fixture.Field{Name: "first", Type: "7ElementSTQz"},
		fixture.Field{Name: "items", Type: "x"},
	)
	im.AddAssociatedTypes("Sa", "ST", fixture.Assoc{Name: "Element", Type: "x"})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())
	intType := nominal(b.Factory, "Si")

	t.Run("resolved through witness", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main9ContainerVySaySiGG"))
		if !typeref.Equal(fields[0].Type, intType) {
			t.Errorf("first: got %s", typeref.String(fields[0].Type))
		}
		if !typeref.Equal(fields[1].Type, mustDecode(t, b, "SaySiG")) {
			t.Errorf("items: got %s", typeref.String(fields[1].Type))
		}
	})

	t.Run("no witness keeps dependent member", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main9ContainerVyShySiGG"))
		dm, ok := fields[0].Type.(*typeref.DependentMember)
		if !ok {
			t.Fatalf("got %s", typeref.String(fields[0].Type))
		}
		if !typeref.Equal(dm.Base, mustDecode(t, b, "ShySiG")) || dm.Member != "Element" {
			t.Errorf("got %s", typeref.String(dm))
		}
	})
}

func TestCyclicWitness(t *testing.T) {
	im := fixture.New("cyclic")
	im.AddFieldDescriptor("4main9ContainerV", "", records.FieldKindStruct,
		fixture.Field{Name: "first", Type: "7ElementSTQz"},
	)
	// Array<T>.Element is declared as Array<T>.Element.
	im.AddAssociatedTypes("Sa", "ST", fixture.Assoc{Name: "Element", Type: "SayxG7ElementSTQa"})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())
	container := mustDecode(t, b, "4main9ContainerVySaySiGG")

	fd, err := b.GetFieldTypeInfo(container)
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		_, err = b.GetFieldTypeRefs(container, fd)
		if !errors.IsMalformed(err) {
			t.Fatalf("expected malformed, got %v", err)
		}
	}
	if !strings.Contains(err.Error(), "Element") {
		t.Errorf("error does not name the member: %v", err)
	}
}

func TestBuiltinLookup(t *testing.T) {
	im := fixture.New("builtins")
	im.AddBuiltin(fixture.Builtin{TypeName: "Int64", Size: 8, Alignment: 8, Stride: 8, BitwiseTakable: true})
	im.AddBuiltin(fixture.Builtin{TypeName: "4main3RawV", Size: 3, Alignment: 1, Stride: 3, NumExtraInhabitants: 1})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	bd, err := b.GetBuiltinTypeInfo(b.CreateBuiltinType("Int64"))
	if err != nil {
		t.Fatal(err)
	}
	if bd.Size != 8 || bd.Alignment() != 8 || bd.Stride != 8 || !bd.IsBitwiseTakable() {
		t.Errorf("unexpected descriptor %+v", bd)
	}

	raw, err := b.GetBuiltinTypeInfo(nominal(b.Factory, "4main3RawV"))
	if err != nil {
		t.Fatal(err)
	}
	if raw.Size != 3 || raw.NumExtraInhabitants != 1 {
		t.Errorf("unexpected descriptor %+v", raw)
	}

	if _, err := b.GetBuiltinTypeInfo(b.CreateBuiltinType("Int32")); !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	b := reflection.New(nil)
	intType := nominal(b.Factory, "Si")
	fn := b.CreateFunctionType(nil, nil, intType, typeref.FunctionFlags{Escaping: true})
	tuple := b.CreateTupleType([]typeref.TypeRef{intType}, false)

	if _, err := b.GetFieldTypeInfo(tuple); !errors.IsUsage(err) {
		t.Errorf("field info on tuple: %v", err)
	}
	if _, err := b.GetFieldTypeInfo(nil); !errors.IsUsage(err) {
		t.Errorf("field info on nil: %v", err)
	}
	if _, err := b.GetBuiltinTypeInfo(fn); !errors.IsUsage(err) {
		t.Errorf("builtin info on function: %v", err)
	}
	if _, err := b.GetFieldTypeInfo(intType); !errors.IsNotFound(err) || errors.IsUsage(err) {
		t.Errorf("missing nominal should be a lookup miss: %v", err)
	}
}

func TestMalformedRecords(t *testing.T) {
	im := fixture.New("corrupt")
	im.AddUndersizedFieldDescriptor("4main3BadV", 2)
	im.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct, fixture.Field{Name: "x", Type: "Si"})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	t.Run("match after malformed record", func(t *testing.T) {
		fields := fieldsOf(t, b, mustDecode(t, b, "4main5PointV"))
		if len(fields) != 1 || fields[0].Name != "x" {
			t.Errorf("got %+v", fields)
		}
	})

	t.Run("miss reports malformed", func(t *testing.T) {
		_, err := b.GetFieldTypeInfo(mustDecode(t, b, "4main7MissingV"))
		if !errors.IsMalformed(err) {
			t.Errorf("expected malformed, got %v", err)
		}
		if errors.IsNotFound(err) {
			t.Error("malformed metadata reported as a lookup miss")
		}
	})

	t.Run("other sections unaffected", func(t *testing.T) {
		clean := fixture.New("clean")
		clean.AddBuiltin(fixture.Builtin{TypeName: "Bi64_", Size: 8, Alignment: 8, Stride: 8})
		b.AddReflectionInfo(*clean.Info())
		if _, err := b.GetBuiltinTypeInfo(mustDecode(t, b, "Bi64_")); err != nil {
			t.Errorf("builtin lookup: %v", err)
		}
	})
}

func TestDecodeFailureInField(t *testing.T) {
	im := fixture.New("bad names")
	im.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct, fixture.Field{Name: "x", Type: "Z"})
	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	point := mustDecode(t, b, "4main5PointV")
	fd, err := b.GetFieldTypeInfo(point)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.GetFieldTypeRefs(point, fd); errors.KindOf(err) != errors.KindInvalidData {
		t.Errorf("expected invalid data, got %v", err)
	}
}

func TestInternTypeRefs(t *testing.T) {
	for _, intern := range []bool{false, true} {
		b := reflection.New(&reflection.Config{InternTypeRefs: intern})
		x := mustDecode(t, b, "SaySiG")
		y := mustDecode(t, b, "SaySiG")
		if !typeref.Equal(x, y) {
			t.Errorf("intern=%v: decoded names not equal", intern)
		}
		if same := x == y; same != intern {
			t.Errorf("intern=%v: identity %v", intern, same)
		}
	}
}

type fixedLayout struct{ calls int }

func (p *fixedLayout) LayoutOf(typeref.TypeRef) (layout.Info, bool) {
	p.calls++
	return layout.Info{Size: 42, Align: 2, Stride: 42}, true
}

func TestLayoutOf(t *testing.T) {
	im := fixture.New("layout")
	im.AddBuiltin(fixture.Builtin{TypeName: "Bi64_", Size: 8, Alignment: 8, Stride: 8, BitwiseTakable: true})
	im.AddFieldDescriptor("Si", "", records.FieldKindStruct, fixture.Field{Name: "_value", Type: "Bi64_"})
	im.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct,
		fixture.Field{Name: "x", Type: "Si"}, fixture.Field{Name: "y", Type: "Si"})

	t.Run("default calculator", func(t *testing.T) {
		b := reflection.New(nil)
		point := mustDecode(t, b, "4main5PointV")
		if _, ok := b.LayoutOf(point); ok {
			t.Fatal("layout known before registration")
		}
		b.AddReflectionInfo(*im.Info())
		info, ok := b.LayoutOf(point)
		if !ok {
			t.Fatal("layout unknown")
		}
		if info.Size != 16 || info.Align != 8 || len(info.Fields) != 2 || info.Fields[1].Offset != 8 {
			t.Errorf("unexpected layout %+v", info)
		}
	})

	t.Run("contains itself", func(t *testing.T) {
		loop := fixture.New("loop")
		loop.AddFieldDescriptor("4main1AV", "", records.FieldKindStruct, fixture.Field{Name: "a", Type: "4main1AV"})
		loop.AddFieldDescriptor("4main1BV", "", records.FieldKindStruct, fixture.Field{Name: "c", Type: "4main1CV"})
		loop.AddFieldDescriptor("4main1CV", "", records.FieldKindStruct, fixture.Field{Name: "b", Type: "4main1BV"})

		b := reflection.New(nil)
		b.AddReflectionInfo(*loop.Info())
		for _, name := range []string{"4main1AV", "4main1BV", "4main1AV"} {
			if info, ok := b.LayoutOf(mustDecode(t, b, name)); ok {
				t.Errorf("%s: got layout %+v for a type that contains itself", name, info)
			}
		}
	})

	t.Run("configured provider", func(t *testing.T) {
		p := &fixedLayout{}
		b := reflection.New(&reflection.Config{Layout: p})
		info, ok := b.LayoutOf(mustDecode(t, b, "Si"))
		if !ok || info.Size != 42 || p.calls != 1 {
			t.Errorf("provider not consulted verbatim: %+v %v", info, ok)
		}
	})
}

func TestDump(t *testing.T) {
	im := fixture.New("dump")
	im.AddFieldDescriptor("4main4NodeC", "4main4BaseC", records.FieldKindClass,
		fixture.Field{Name: "value", Type: "Si", Flags: uint32(records.FieldIsVar)},
		fixture.Field{Name: "next", Type: "4main4NodeCSgXw"},
	)
	im.AddAssociatedTypes("4main9ContainerV", "ST", fixture.Assoc{Name: "Element", Type: "Si"})
	im.AddBuiltin(fixture.Builtin{TypeName: "Bi64_", Size: 8, Alignment: 8, Stride: 8, BitwiseTakable: true})
	im.AddUndersizedFieldDescriptor("4main3BadV", 1)

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	t.Run("type ref", func(t *testing.T) {
		var buf bytes.Buffer
		if err := b.DumpTypeRef(&buf, "4main4PairVySiSSG", true); err != nil {
			t.Fatal(err)
		}
		want := "main.Pair<Swift.Int, Swift.String>\n(bound_generic 4main4PairV\n  (nominal Si)\n  (nominal SS))\n"
		if buf.String() != want {
			t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
		}
	})

	t.Run("undecodable type ref", func(t *testing.T) {
		var buf bytes.Buffer
		if err := b.DumpTypeRef(&buf, "Z", false); err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(buf.String(), "<unknown: Z") {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("all sections", func(t *testing.T) {
		var buf bytes.Buffer
		if err := b.DumpAllSections(&buf); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{
			"FIELDS (dump):",
			"main.Node (class)",
			"superclass: main.Base",
			"var value: Swift.Int",
			"next: weak Swift.Optional<main.Node>",
			"(weak_storage",
			"<malformed:",
			"ASSOCIATED TYPES (dump):",
			"- main.Container : Swift.Sequence",
			"typealias Element = Swift.Int",
			"BUILTIN TYPES (dump):",
			"- Builtin.Int64:",
			"Size: 8",
			"BitwiseTakable: true",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("dump lacks %q\n%s", want, out)
			}
		}
	})

	t.Run("single sections", func(t *testing.T) {
		var fields, assoc, builtins bytes.Buffer
		if err := b.DumpFieldSection(&fields); err != nil {
			t.Fatal(err)
		}
		if err := b.DumpAssociatedTypeSection(&assoc); err != nil {
			t.Fatal(err)
		}
		if err := b.DumpBuiltinTypeSection(&builtins); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(fields.String(), "BUILTIN") || !strings.Contains(builtins.String(), "BUILTIN") ||
			!strings.Contains(assoc.String(), "typealias") {
			t.Error("sections rendered into the wrong dump")
		}
	})
}

func TestSnapshot(t *testing.T) {
	im := fixture.New("snap")
	im.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct,
		fixture.Field{Name: "x", Type: "Si"}, fixture.Field{Name: "y", Type: "Si", Flags: uint32(records.FieldIsVar)})
	im.AddAssociatedTypes("4main9ContainerV", "ST", fixture.Assoc{Name: "Element", Type: "Si"})
	im.AddBuiltin(fixture.Builtin{TypeName: "Bi8_", Size: 1, Alignment: 1, Stride: 1})

	b := reflection.New(nil)
	b.AddReflectionInfo(*im.Info())

	snap, err := b.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Images) != 1 {
		t.Fatalf("got %d images", len(snap.Images))
	}
	img := snap.Images[0]
	if len(img.Types) != 1 || img.Types[0].Name != "main.Point" || img.Types[0].Kind != "struct" {
		t.Errorf("types: %+v", img.Types)
	}
	if f := img.Types[0].Fields[1]; f.Name != "y" || !f.IsVar || f.TypeName != "Swift.Int" {
		t.Errorf("field: %+v", f)
	}
	if len(img.Conformances) != 1 || img.Conformances[0].Members[0].Name != "Element" {
		t.Errorf("conformances: %+v", img.Conformances)
	}
	if len(img.Builtins) != 1 || img.Builtins[0].Name != "Builtin.Int8" {
		t.Errorf("builtins: %+v", img.Builtins)
	}

	im.AddUndersizedFieldDescriptor("4main3BadV", 1)
	b.AddReflectionInfo(*im.Info())
	snap, err = b.Snapshot()
	if !errors.IsMalformed(err) {
		t.Errorf("expected malformed, got %v", err)
	}
	if len(snap.Images) != 2 || len(snap.Images[1].Malformed) != 1 {
		t.Errorf("malformed record not reported in snapshot: %+v", snap.Images)
	}
}

func TestLocked(t *testing.T) {
	im := fixture.New("shared")
	im.AddFieldDescriptor("4main5PointV", "", records.FieldKindStruct, fixture.Field{Name: "x", Type: "Si"})
	locked := reflection.NewLocked(reflection.New(nil))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				locked.AddReflectionInfo(*im.Info())
				return
			}
			errs <- locked.Do(func(b *reflection.Builder) error {
				point, err := b.DecodeMangledType("4main5PointV")
				if err != nil {
					return err
				}
				_, err = b.GetFieldTypeInfo(point)
				if errors.IsNotFound(err) {
					return nil
				}
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}

	err := locked.Do(func(b *reflection.Builder) error {
		if n := len(b.ReflectionInfos()); n != 4 {
			t.Errorf("got %d registered images", n)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
