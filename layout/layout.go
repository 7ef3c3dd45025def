package layout

import "github.com/wippyai/swift-reflection/typeref"

// Info is the in-memory layout of a type.
type Info struct {
	Fields              []FieldInfo
	Size                uint32
	Align               uint32
	Stride              uint32
	NumExtraInhabitants uint32
	BitwiseTakable      bool
}

// HasExtraInhabitants reports whether the type has spare bit patterns an
// enclosing enum can use for its tag.
func (i Info) HasExtraInhabitants() bool {
	return i.NumExtraInhabitants > 0
}

// FieldInfo places one stored field or tuple element.
type FieldInfo struct {
	Type   typeref.TypeRef
	Name   string
	Offset uint32
	Size   uint32
}

// Provider computes layouts of TypeRefs. It reports false when the layout
// is unknown.
type Provider interface {
	LayoutOf(tr typeref.TypeRef) (Info, bool)
}

// AlignTo rounds offset up to the next multiple of align, which must be a
// power of two. Zero alignment leaves offset unchanged.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize returns the byte width of a tag able to distinguish
// numCases cases.
func DiscriminantSize(numCases int) uint32 {
	switch {
	case numCases <= 1:
		return 0
	case numCases <= 1<<8:
		return 1
	case numCases <= 1<<16:
		return 2
	}
	return 4
}
