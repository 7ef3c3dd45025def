// Package image extracts the Swift reflection sections of a loaded image
// into a records.ReflectionInfo.
//
// Three sources are supported:
//
//	info, err := image.OpenELF("libFoo.so")       // swift5_* sections
//	info, err := image.OpenMachO("Foo")           // __TEXT,__swift5_* sections
//	info, err := image.FromRanges(ctx, "guest", r, ranges)
//
// Open sniffs the file magic and picks the ELF or Mach-O loader. Sections
// keep their link addresses, so relative pointers between them resolve
// without relocation. A missing section is loaded as an empty one.
package image
