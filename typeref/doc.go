// Package typeref models structural type references decoded from reflection
// metadata.
//
// A TypeRef is one of a closed set of variants (builtin, nominal, bound
// generic, tuple, function, protocol, composition, metatypes, generic
// parameter, dependent member, reference storage, foreign classes and
// opaque). Nodes are immutable and owned by the Arena that allocated them.
// A Factory is the only way to allocate nodes:
//
//	f := typeref.NewFactory(typeref.NewArena(false))
//	pair, err := typeref.MangledDecoder{}.DecodeMangledType(f, "4main4PairVySiSSG")
//
// Compare nodes with Equal. Pointer identity is only meaningful for the
// unnamed class placeholders and the opaque type, or when the arena interns.
package typeref
