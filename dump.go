package reflection

import (
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/swift-reflection/demangle"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

// dumper writes until the first write error and remembers it.
type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dumper) header(title string, info *records.ReflectionInfo) {
	line := fmt.Sprintf("%s (%s):", title, info.ImageName)
	d.printf("%s\n%s\n", line, strings.Repeat("=", len(line)))
}

// ReadableName renders a mangled type name the way Swift source spells it,
// falling back to the mangled form.
func ReadableName(mangled string) string {
	node, err := demangle.Demangle(mangled)
	if err != nil {
		return mangled
	}
	return demangle.Format(node)
}

func unknown(what string, err error) string {
	return fmt.Sprintf("<unknown: %s: %v>", what, err)
}

func malformed(err error) string {
	return fmt.Sprintf("<malformed: %v>", err)
}

// typeTree renders the decoded form of mangled as an s-expression.
func (b *Builder) typeTree(mangled string) string {
	tr, err := b.DecodeMangledType(mangled)
	if err != nil {
		return unknown(mangled, err)
	}
	return typeref.String(tr)
}

// DumpTypeRef writes the decoded TypeRef of a mangled name. With
// printTypeName the readable name is written first. Undecodable names are
// rendered as an unknown marker rather than reported as errors; only write
// failures are returned.
func (b *Builder) DumpTypeRef(w io.Writer, mangled string, printTypeName bool) error {
	d := &dumper{w: w}
	if printTypeName {
		d.printf("%s\n", ReadableName(mangled))
	}
	d.printf("%s\n", b.typeTree(mangled))
	return d.err
}

// DumpFieldSection writes every field descriptor of every registered image.
func (b *Builder) DumpFieldSection(w io.Writer) error {
	d := &dumper{w: w}
	for i := range b.infos {
		b.dumpFields(d, &b.infos[i])
	}
	return d.err
}

func (b *Builder) dumpFields(d *dumper, info *records.ReflectionInfo) {
	d.header("FIELDS", info)
	for fd, err := range info.FieldDescriptors() {
		if err != nil {
			d.printf("%s\n\n", malformed(err))
			continue
		}
		typeName := "<anonymous>"
		if fd.HasMangledTypeName() {
			name, err := fd.MangledTypeName()
			if err != nil {
				typeName = malformed(err)
			} else {
				typeName = ReadableName(name)
			}
		}
		d.printf("%s (%s)\n", typeName, fd.Kind)
		if fd.HasSuperclass() {
			if superclass, err := fd.Superclass(); err != nil {
				d.printf("superclass: %s\n", malformed(err))
			} else {
				d.printf("superclass: %s\n", ReadableName(superclass))
			}
		}
		d.printf("%s\n", strings.Repeat("-", len(typeName)))

		for _, rec := range fd.Records {
			name, err := rec.FieldName()
			if err != nil {
				name = malformed(err)
			}
			if rec.Flags.IsVar() {
				name = "var " + name
			}
			if rec.Flags.IsIndirectCase() {
				name = "indirect " + name
			}
			if !rec.HasMangledTypeName() {
				d.printf("%s\n\n", name)
				continue
			}
			mangled, err := rec.MangledTypeName()
			if err != nil {
				d.printf("%s: %s\n\n", name, malformed(err))
				continue
			}
			d.printf("%s: %s\n%s\n\n", name, ReadableName(mangled), b.typeTree(mangled))
		}
	}
	d.printf("\n")
}

// DumpAssociatedTypeSection writes every conformance's associated type
// witnesses for every registered image.
func (b *Builder) DumpAssociatedTypeSection(w io.Writer) error {
	d := &dumper{w: w}
	for i := range b.infos {
		b.dumpAssociatedTypes(d, &b.infos[i])
	}
	return d.err
}

func (b *Builder) dumpAssociatedTypes(d *dumper, info *records.ReflectionInfo) {
	d.header("ASSOCIATED TYPES", info)
	for ad, err := range info.AssociatedTypeDescriptors() {
		if err != nil {
			d.printf("%s\n\n", malformed(err))
			continue
		}
		conforming, err := ad.ConformingTypeName()
		if err != nil {
			conforming = malformed(err)
		} else {
			conforming = ReadableName(conforming)
		}
		protocol, err := ad.ProtocolTypeName()
		if err != nil {
			protocol = malformed(err)
		} else {
			protocol = ReadableName(protocol)
		}
		d.printf("- %s : %s\n", conforming, protocol)

		for _, rec := range ad.Records {
			name, err := rec.Name()
			if err != nil {
				name = malformed(err)
			}
			substituted, err := rec.SubstitutedTypeName()
			if err != nil {
				d.printf("typealias %s = %s\n", name, malformed(err))
				continue
			}
			d.printf("typealias %s = %s\n%s\n", name, ReadableName(substituted), b.typeTree(substituted))
		}
		d.printf("\n")
	}
	d.printf("\n")
}

// DumpBuiltinTypeSection writes every builtin descriptor of every
// registered image.
func (b *Builder) DumpBuiltinTypeSection(w io.Writer) error {
	d := &dumper{w: w}
	for i := range b.infos {
		dumpBuiltins(d, &b.infos[i])
	}
	return d.err
}

func dumpBuiltins(d *dumper, info *records.ReflectionInfo) {
	d.header("BUILTIN TYPES", info)
	for bd, err := range info.BuiltinTypeDescriptors() {
		if err != nil {
			d.printf("%s\n\n", malformed(err))
			continue
		}
		name := "<anonymous>"
		if bd.HasTypeName() {
			if mangled, err := bd.TypeName(); err != nil {
				name = malformed(err)
			} else {
				name = ReadableName(mangled)
			}
		}
		d.printf("- %s:\n", name)
		d.printf("Size: %d\nAlignment: %d\nStride: %d\nNumExtraInhabitants: %d\nBitwiseTakable: %t\n\n",
			bd.Size, bd.Alignment(), bd.Stride, bd.NumExtraInhabitants, bd.IsBitwiseTakable())
	}
	d.printf("\n")
}

// DumpAllSections writes the field, associated type and builtin sections of
// every registered image, one image at a time.
func (b *Builder) DumpAllSections(w io.Writer) error {
	d := &dumper{w: w}
	for i := range b.infos {
		info := &b.infos[i]
		b.dumpFields(d, info)
		b.dumpAssociatedTypes(d, info)
		dumpBuiltins(d, info)
	}
	return d.err
}
