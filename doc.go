// Package reflection reconstructs Swift type structure from the reflection
// metadata sections of loaded images.
//
// Images contribute five sections (swift5_fieldmd, swift5_assocty,
// swift5_builtin, swift5_typeref and swift5_reflstr) bundled as a
// records.ReflectionInfo. A Builder registers bundles, decodes mangled type
// names into TypeRefs and answers structural queries:
//
//	b := reflection.New(nil)
//	b.AddReflectionInfo(*info)
//
//	pair, err := b.DecodeMangledType("4main4PairVySiSSG")
//	fd, err := b.GetFieldTypeInfo(pair)
//	fields, err := b.GetFieldTypeRefs(pair, fd)   // first: Int, second: String
//
// # Architecture Overview
//
//	reflection/          Builder: registry, resolver, substitution, dump
//	├── typeref/         TypeRef model, Arena, Factory, decoder
//	├── demangle/        mangled names to trees and back
//	├── records/         section views and descriptor parsing
//	├── layout/          size and alignment of TypeRefs
//	├── remote/          byte access to another address space
//	├── image/           ELF, Mach-O and address range loaders
//	└── errors/          structured errors
//
// # Lookups
//
// Registration order is scan order and the first image that describes a
// type wins. A lookup that finds nothing returns an error satisfying
// errors.IsNotFound. When records were skipped because they could not be
// parsed, the lookup returns those instead, satisfying errors.IsMalformed,
// so corrupt metadata is never mistaken for absent metadata.
//
// # Concurrency
//
// A Builder is single-threaded. Locked provides one coarse lock when a
// builder must be shared between goroutines.
package reflection
