// Package demangle converts the mangled type names found in Swift reflection
// metadata into trees and back.
//
// The supported grammar is the subset of Swift 5 type mangling that
// reflection records use: nominal types and their enclosing contexts,
// standard library shortcuts (Si, SS, Sa, ...), builtins, bound generics,
// tuples, functions, metatypes, protocol compositions, generic parameters,
// dependent member types, reference storage and substitutions.
//
//	node, err := demangle.Demangle("SaySiG")
//	demangle.Format(node) // "Swift.Array<Swift.Int>"
//	demangle.Mangle(node) // "SaySiG", nil
//
// Embedded symbolic references require a resolver for the owning image and
// are reported as unsupported.
package demangle
