// Package layout computes sizes, alignments and field offsets of TypeRefs.
//
// Builders route layout queries through the Provider interface. The default
// Calculator follows the Swift value layout rules it can derive from
// reflection metadata alone:
//   - Builtins: taken verbatim from builtin type descriptors
//   - Structs and tuples: fields laid out in order with alignment padding
//   - Classes, metatypes and reference storage: one pointer
//   - Thick functions: two pointers (function and context)
//   - Enums without payloads: the smallest tag holding every case
//
// Any other type has an unknown layout.
package layout
