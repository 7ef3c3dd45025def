// Package records decodes the binary reflection sections the Swift compiler
// emits into every image.
//
// A loaded image contributes five sections:
//
//	swift5_fieldmd   field descriptors, one per nominal type
//	swift5_assocty   associated type descriptors, one per conformance
//	swift5_builtin   builtin type descriptors with size and alignment
//	swift5_typeref   mangled type names
//	swift5_reflstr   field and associated type names
//
// Records reference strings through 32-bit self-relative pointers whose
// targets may lie in any of the image's sections, so names are resolved
// through a [NameReader], normally the image's [ReflectionInfo].
//
// Sections are walked with range-over-func iterators:
//
//	for fd, err := range info.FieldDescriptors() {
//		if err != nil {
//			// malformed record; the scan continues when it can
//			continue
//		}
//		name, _ := fd.MangledTypeName()
//	}
//
// All multi-byte values are little-endian. Section data is borrowed, never
// copied, and must outlive every descriptor read from it.
package records
