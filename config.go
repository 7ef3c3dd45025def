package reflection

import (
	"github.com/wippyai/swift-reflection/layout"
	"github.com/wippyai/swift-reflection/typeref"
)

// DefaultPointerSize is the pointer width assumed when Config leaves it unset.
const DefaultPointerSize = 8

// Decoder turns a mangled type name into a TypeRef allocated through f.
type Decoder interface {
	DecodeMangledType(f *typeref.Factory, mangled string) (typeref.TypeRef, error)
}

// Config configures a Builder. The zero value selects the defaults.
type Config struct {
	// Decoder decodes mangled names. Defaults to typeref.MangledDecoder.
	Decoder Decoder

	// Layout answers layout queries. Defaults to a layout.Calculator over
	// the builder's own metadata.
	Layout layout.Provider

	// InternTypeRefs makes structurally equal factory requests share a node.
	InternTypeRefs bool

	// PointerSize is the target's pointer width in bytes. It sizes layouts
	// and is given to registered images that do not carry their own.
	PointerSize uint32
}

func (c *Config) withDefaults() Config {
	var cfg Config
	if c != nil {
		cfg = *c
	}
	if cfg.Decoder == nil {
		cfg.Decoder = typeref.MangledDecoder{}
	}
	if cfg.PointerSize == 0 {
		cfg.PointerSize = DefaultPointerSize
	}
	return cfg
}
