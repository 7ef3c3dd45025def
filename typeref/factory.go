package typeref

import (
	"fmt"
	"slices"

	"github.com/wippyai/swift-reflection/demangle"
	"github.com/wippyai/swift-reflection/errors"
)

// NominalTypeDecl identifies a nominal type declaration by its unbound
// mangled name.
type NominalTypeDecl struct {
	mangled string
}

// NominalTypeDeclFromMangled wraps an already mangled declaration name.
func NominalTypeDeclFromMangled(name string) NominalTypeDecl {
	return NominalTypeDecl{mangled: name}
}

// MangledName returns the declaration's mangled name.
func (d NominalTypeDecl) MangledName() string {
	return d.mangled
}

// Factory creates TypeRef nodes in an Arena. It has one entry point per
// variant. Composition and dependent member construction are partial: an
// argument of the wrong shape yields an invalid_shape error and no node.
type Factory struct {
	arena *Arena
}

// NewFactory creates a factory allocating from arena.
func NewFactory(arena *Arena) *Factory {
	return &Factory{arena: arena}
}

// Arena returns the arena that owns the factory's nodes.
func (f *Factory) Arena() *Arena {
	return f.arena
}

// CreateNominalTypeDecl derives the declaration of a nominal or bound
// generic tree. Generic arguments at every level are dropped.
func (f *Factory) CreateNominalTypeDecl(node *demangle.Node) (NominalTypeDecl, error) {
	if node == nil || (node.Kind != demangle.KindBoundGeneric && !node.Kind.IsNominal()) {
		return NominalTypeDecl{}, errors.InvalidShape("nominal type declaration", "not a nominal type")
	}
	mangled, err := demangle.Mangle(demangle.Declaration(node))
	if err != nil {
		return NominalTypeDecl{}, err
	}
	return NominalTypeDecl{mangled: mangled}, nil
}

// CreateBuiltinType creates a builtin type reference.
func (f *Factory) CreateBuiltinType(mangledName string) *Builtin {
	return alloc(f.arena, &Builtin{MangledName: mangledName})
}

// CreateNominalType creates a non-generic nominal type. parent may be nil.
func (f *Factory) CreateNominalType(decl NominalTypeDecl, parent TypeRef) *Nominal {
	return alloc(f.arena, &Nominal{MangledName: decl.mangled, Parent: parent})
}

// CreateBoundGenericType applies a generic declaration to args.
func (f *Factory) CreateBoundGenericType(decl NominalTypeDecl, args []TypeRef, parent TypeRef) *BoundGeneric {
	return alloc(f.arena, &BoundGeneric{MangledName: decl.mangled, Args: slices.Clone(args), Parent: parent})
}

// CreateTupleType creates a tuple.
func (f *Factory) CreateTupleType(elements []TypeRef, variadic bool) *Tuple {
	return alloc(f.arena, &Tuple{Elements: slices.Clone(elements), Variadic: variadic})
}

// CreateFunctionType creates a function type. inOut is aligned with params:
// missing entries are false and extra entries are dropped.
func (f *Factory) CreateFunctionType(params []TypeRef, inOut []bool, result TypeRef, flags FunctionFlags) *Function {
	flagsPerParam := make([]bool, len(params))
	copy(flagsPerParam, inOut)
	return alloc(f.arena, &Function{
		Params: slices.Clone(params),
		InOut:  flagsPerParam,
		Result: result,
		Flags:  flags,
	})
}

// CreateProtocolType creates a protocol reference.
func (f *Factory) CreateProtocolType(module, name string) *Protocol {
	return alloc(f.arena, &Protocol{Module: module, Name: name})
}

// CreateProtocolCompositionType creates a composition. Every member must be
// a *Protocol.
func (f *Factory) CreateProtocolCompositionType(protocols []TypeRef) (*ProtocolComposition, error) {
	members := make([]*Protocol, 0, len(protocols))
	for i, tr := range protocols {
		p, ok := tr.(*Protocol)
		if !ok || p == nil {
			return nil, errors.InvalidShape("protocol composition",
				fmt.Sprintf("member %d is %s, not a protocol", i, kindOf(tr)))
		}
		members = append(members, p)
	}
	return alloc(f.arena, &ProtocolComposition{Protocols: members}), nil
}

// CreateExistentialMetatypeType creates P.Type for an existential P.
func (f *Factory) CreateExistentialMetatypeType(instance TypeRef) *ExistentialMetatype {
	return alloc(f.arena, &ExistentialMetatype{Instance: instance})
}

// CreateMetatypeType creates T.Type.
func (f *Factory) CreateMetatypeType(instance TypeRef) *Metatype {
	return alloc(f.arena, &Metatype{Instance: instance})
}

// CreateGenericTypeParameterType creates an unsubstituted generic parameter.
func (f *Factory) CreateGenericTypeParameterType(depth, index uint32) *GenericTypeParameter {
	return alloc(f.arena, &GenericTypeParameter{Depth: depth, Index: index})
}

// CreateDependentMemberType creates base.member constrained by protocol,
// which must be a *Protocol.
func (f *Factory) CreateDependentMemberType(member string, base, protocol TypeRef) (*DependentMember, error) {
	p, ok := protocol.(*Protocol)
	if !ok || p == nil {
		return nil, errors.InvalidShape("dependent member",
			fmt.Sprintf("constraint of %s is %s, not a protocol", member, kindOf(protocol)))
	}
	if base == nil {
		return nil, errors.InvalidShape("dependent member", "missing base type for "+member)
	}
	return alloc(f.arena, &DependentMember{Member: member, Base: base, Protocol: p}), nil
}

// CreateUnownedStorageType creates an unowned reference to base.
func (f *Factory) CreateUnownedStorageType(base TypeRef) *UnownedStorage {
	return alloc(f.arena, &UnownedStorage{Base: base})
}

// CreateUnmanagedStorageType creates an unowned(unsafe) reference to base.
func (f *Factory) CreateUnmanagedStorageType(base TypeRef) *UnmanagedStorage {
	return alloc(f.arena, &UnmanagedStorage{Base: base})
}

// CreateWeakStorageType creates a weak reference to base.
func (f *Factory) CreateWeakStorageType(base TypeRef) *WeakStorage {
	return alloc(f.arena, &WeakStorage{Base: base})
}

// CreateObjCClassType creates a named Objective-C class. An empty name
// returns the unnamed placeholder.
func (f *Factory) CreateObjCClassType(name string) *ObjCClass {
	if name == "" {
		return unnamedObjCClass
	}
	return alloc(f.arena, &ObjCClass{Name: name})
}

// CreateForeignClassType creates a named foreign class. An empty name
// returns the unnamed placeholder.
func (f *Factory) CreateForeignClassType(name string) *ForeignClass {
	if name == "" {
		return unnamedForeignClass
	}
	return alloc(f.arena, &ForeignClass{Name: name})
}

// UnnamedObjCClassType returns the unnamed Objective-C class singleton.
func (f *Factory) UnnamedObjCClassType() *ObjCClass {
	return unnamedObjCClass
}

// UnnamedForeignClassType returns the unnamed foreign class singleton.
func (f *Factory) UnnamedForeignClassType() *ForeignClass {
	return unnamedForeignClass
}

// OpaqueType returns the opaque singleton.
func (f *Factory) OpaqueType() *Opaque {
	return opaque
}

func kindOf(tr TypeRef) string {
	if tr == nil {
		return "nil"
	}
	return tr.Kind().String()
}
