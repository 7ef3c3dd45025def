package reflection

import (
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/swift-reflection/layout"
	"github.com/wippyai/swift-reflection/records"
	"github.com/wippyai/swift-reflection/typeref"
)

// noCopy makes go vet's copylocks check flag copies of a Builder.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Builder owns the TypeRef arena and the registry of reflection metadata,
// and answers queries over them. It is not safe for concurrent use; wrap it
// in Locked when it has to be shared.
//
// The embedded Factory provides one Create method per TypeRef variant.
type Builder struct {
	_ noCopy
	*typeref.Factory

	decoder     Decoder
	layout      layout.Provider
	calc        *layout.Calculator
	infos       []records.ReflectionInfo
	pointerSize uint32

	// witnesses being resolved on the current substitution path
	resolving map[string]bool
}

// New creates a Builder. A nil cfg selects the defaults.
func New(cfg *Config) *Builder {
	c := cfg.withDefaults()
	return &Builder{
		Factory:     typeref.NewFactory(typeref.NewArena(c.InternTypeRefs)),
		decoder:     c.Decoder,
		layout:      c.Layout,
		pointerSize: c.PointerSize,
	}
}

// AddReflectionInfo registers the metadata of one image. Registration order
// is scan order: when several images describe the same type, the first one
// registered wins. An image without a pointer width takes Config.PointerSize.
func (b *Builder) AddReflectionInfo(info records.ReflectionInfo) {
	if info.PointerSize == 0 {
		info.PointerSize = b.pointerSize
	}
	b.infos = append(b.infos, info)
	// New metadata can turn unknown layouts into known ones.
	b.calc = nil

	Logger().Debug("registered reflection info",
		zap.String("image", info.ImageName),
		zap.Int("fieldmd", info.Field.Size()),
		zap.Int("assocty", info.AssociatedType.Size()),
		zap.Int("builtin", info.Builtin.Size()),
		zap.Int("index", len(b.infos)-1))
}

// ReflectionInfos returns the registered metadata in registration order.
func (b *Builder) ReflectionInfos() []records.ReflectionInfo {
	return slices.Clone(b.infos)
}

// PointerSize returns the target pointer width in bytes.
func (b *Builder) PointerSize() uint32 {
	return b.pointerSize
}

// DecodeMangledType decodes a mangled name with the configured Decoder.
func (b *Builder) DecodeMangledType(mangled string) (typeref.TypeRef, error) {
	return b.decoder.DecodeMangledType(b.Factory, mangled)
}

// LayoutOf returns the layout of tr, or false when it is unknown. Queries
// go to Config.Layout when set and to a Calculator over this builder's
// metadata otherwise.
func (b *Builder) LayoutOf(tr typeref.TypeRef) (layout.Info, bool) {
	if b.layout != nil {
		return b.layout.LayoutOf(tr)
	}
	if b.calc == nil {
		b.calc = layout.NewCalculator(b, b.pointerSize)
	}
	return b.calc.LayoutOf(tr)
}
