package typeref

import "fmt"

// Kind identifies a TypeRef variant.
type Kind uint8

const (
	KindBuiltin Kind = iota
	KindNominal
	KindBoundGeneric
	KindTuple
	KindFunction
	KindProtocol
	KindProtocolComposition
	KindExistentialMetatype
	KindMetatype
	KindGenericTypeParameter
	KindDependentMember
	KindUnownedStorage
	KindUnmanagedStorage
	KindWeakStorage
	KindObjCClass
	KindForeignClass
	KindOpaque
)

var kindNames = [...]string{
	KindBuiltin:              "builtin",
	KindNominal:              "nominal",
	KindBoundGeneric:         "bound_generic",
	KindTuple:                "tuple",
	KindFunction:             "function",
	KindProtocol:             "protocol",
	KindProtocolComposition:  "protocol_composition",
	KindExistentialMetatype:  "existential_metatype",
	KindMetatype:             "metatype",
	KindGenericTypeParameter: "generic_type_parameter",
	KindDependentMember:      "dependent_member",
	KindUnownedStorage:       "unowned_storage",
	KindUnmanagedStorage:     "unmanaged_storage",
	KindWeakStorage:          "weak_storage",
	KindObjCClass:            "objc_class",
	KindForeignClass:         "foreign_class",
	KindOpaque:               "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// TypeRef is a structural description of a type. The variant set is closed:
// every implementation lives in this package. Nodes are immutable once
// created and are owned by the Arena that allocated them.
type TypeRef interface {
	Kind() Kind
	typeRef()
}

// Builtin is a type whose layout is described by a builtin type descriptor.
type Builtin struct {
	MangledName string
}

// Nominal is a struct, class, enum or type alias, optionally nested in Parent.
type Nominal struct {
	Parent      TypeRef
	MangledName string
}

// BoundGeneric is a generic nominal type applied to arguments.
type BoundGeneric struct {
	Parent      TypeRef
	MangledName string
	Args        []TypeRef
}

// Tuple is an ordered list of element types. Variadic marks the last
// element as a variadic parameter pack.
type Tuple struct {
	Elements []TypeRef
	Variadic bool
}

// FunctionConvention is the calling convention of a function type.
type FunctionConvention uint8

const (
	ConventionSwift FunctionConvention = iota
	ConventionBlock
	ConventionThin
	ConventionCFunctionPointer
)

func (c FunctionConvention) String() string {
	switch c {
	case ConventionSwift:
		return "swift"
	case ConventionBlock:
		return "block"
	case ConventionThin:
		return "thin"
	case ConventionCFunctionPointer:
		return "c"
	}
	return fmt.Sprintf("convention(%d)", uint8(c))
}

// FunctionFlags qualify a function type.
type FunctionFlags struct {
	Convention FunctionConvention
	Throws     bool
	Escaping   bool
}

// Function is a function type. InOut has one entry per parameter.
type Function struct {
	Result TypeRef
	Params []TypeRef
	InOut  []bool
	Flags  FunctionFlags
}

// Protocol names a protocol. Module may be empty when the name was not
// qualified.
type Protocol struct {
	Module string
	Name   string
}

// ProtocolComposition is an existential made of zero or more protocols.
// The empty composition is Any.
type ProtocolComposition struct {
	Protocols []*Protocol
}

// ExistentialMetatype is the metatype of an existential, P.Type.
type ExistentialMetatype struct {
	Instance TypeRef
}

// Metatype is the metatype of a concrete type, T.Type.
type Metatype struct {
	Instance TypeRef
}

// GenericTypeParameter is an unsubstituted generic parameter.
type GenericTypeParameter struct {
	Depth uint32
	Index uint32
}

// DependentMember is the associated type Member of Base, constrained by
// Protocol. It is resolved once Base is concrete.
type DependentMember struct {
	Base     TypeRef
	Protocol *Protocol
	Member   string
}

// UnownedStorage is an unowned reference.
type UnownedStorage struct {
	Base TypeRef
}

// UnmanagedStorage is an unowned(unsafe) reference.
type UnmanagedStorage struct {
	Base TypeRef
}

// WeakStorage is a weak reference.
type WeakStorage struct {
	Base TypeRef
}

// ObjCClass is a class from the Objective-C runtime. An empty Name is the
// unnamed placeholder.
type ObjCClass struct {
	Name string
}

// ForeignClass is a class from a foreign runtime such as CoreFoundation.
// An empty Name is the unnamed placeholder.
type ForeignClass struct {
	Name string
}

// Opaque stands for a type that cannot be described.
type Opaque struct {
	_ byte
}

func (*Builtin) Kind() Kind              { return KindBuiltin }
func (*Nominal) Kind() Kind              { return KindNominal }
func (*BoundGeneric) Kind() Kind         { return KindBoundGeneric }
func (*Tuple) Kind() Kind                { return KindTuple }
func (*Function) Kind() Kind             { return KindFunction }
func (*Protocol) Kind() Kind             { return KindProtocol }
func (*ProtocolComposition) Kind() Kind  { return KindProtocolComposition }
func (*ExistentialMetatype) Kind() Kind  { return KindExistentialMetatype }
func (*Metatype) Kind() Kind             { return KindMetatype }
func (*GenericTypeParameter) Kind() Kind { return KindGenericTypeParameter }
func (*DependentMember) Kind() Kind      { return KindDependentMember }
func (*UnownedStorage) Kind() Kind       { return KindUnownedStorage }
func (*UnmanagedStorage) Kind() Kind     { return KindUnmanagedStorage }
func (*WeakStorage) Kind() Kind          { return KindWeakStorage }
func (*ObjCClass) Kind() Kind            { return KindObjCClass }
func (*ForeignClass) Kind() Kind         { return KindForeignClass }
func (*Opaque) Kind() Kind               { return KindOpaque }

func (*Builtin) typeRef()              {}
func (*Nominal) typeRef()              {}
func (*BoundGeneric) typeRef()         {}
func (*Tuple) typeRef()                {}
func (*Function) typeRef()             {}
func (*Protocol) typeRef()             {}
func (*ProtocolComposition) typeRef()  {}
func (*ExistentialMetatype) typeRef()  {}
func (*Metatype) typeRef()             {}
func (*GenericTypeParameter) typeRef() {}
func (*DependentMember) typeRef()      {}
func (*UnownedStorage) typeRef()       {}
func (*UnmanagedStorage) typeRef()     {}
func (*WeakStorage) typeRef()          {}
func (*ObjCClass) typeRef()            {}
func (*ForeignClass) typeRef()         {}
func (*Opaque) typeRef()               {}

// Field is one resolved field of a nominal type. Type is nil for an enum
// case without a payload.
type Field struct {
	Type TypeRef
	Name string
}

// The three process-wide singletons. They are never arena-allocated.
var (
	unnamedObjCClass    = &ObjCClass{}
	unnamedForeignClass = &ForeignClass{}
	opaque              = &Opaque{}
)

// UnnamedObjCClass returns the unnamed Objective-C class placeholder.
func UnnamedObjCClass() *ObjCClass { return unnamedObjCClass }

// UnnamedForeignClass returns the unnamed foreign class placeholder.
func UnnamedForeignClass() *ForeignClass { return unnamedForeignClass }

// OpaqueType returns the opaque singleton.
func OpaqueType() *Opaque { return opaque }

// IsSingleton reports whether tr is one of the process-wide singletons.
func IsSingleton(tr TypeRef) bool {
	switch tr {
	case TypeRef(unnamedObjCClass), TypeRef(unnamedForeignClass), TypeRef(opaque):
		return true
	}
	return false
}
