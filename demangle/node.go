package demangle

import "fmt"

// NodeKind identifies a node in a demangled type tree.
type NodeKind uint8

const (
	KindUnknown NodeKind = iota
	KindModule
	KindIdentifier
	KindStructure
	KindClass
	KindEnum
	KindProtocol
	KindTypeAlias
	KindBoundGeneric
	KindTypeList
	KindBuiltinTypeName
	KindTuple
	KindTupleElement
	KindVariadicMarker
	KindFunctionType
	KindNoEscapeFunctionType
	KindObjCBlock
	KindThinFunctionType
	KindCFunctionPointer
	KindArgumentTuple
	KindReturnType
	KindThrowsAnnotation
	KindInOut
	KindMetatype
	KindExistentialMetatype
	KindProtocolList
	KindDependentGenericParamType
	KindIndex
	KindDependentMemberType
	KindDependentAssociatedTypeRef
	KindWeak
	KindUnowned
	KindUnmanaged

	// stack markers, never part of a finished tree
	kindEmptyList
	kindFirstElementMarker
)

var kindNames = [...]string{
	KindUnknown:                    "Unknown",
	KindModule:                     "Module",
	KindIdentifier:                 "Identifier",
	KindStructure:                  "Structure",
	KindClass:                      "Class",
	KindEnum:                       "Enum",
	KindProtocol:                   "Protocol",
	KindTypeAlias:                  "TypeAlias",
	KindBoundGeneric:               "BoundGeneric",
	KindTypeList:                   "TypeList",
	KindBuiltinTypeName:            "BuiltinTypeName",
	KindTuple:                      "Tuple",
	KindTupleElement:               "TupleElement",
	KindVariadicMarker:             "VariadicMarker",
	KindFunctionType:               "FunctionType",
	KindNoEscapeFunctionType:       "NoEscapeFunctionType",
	KindObjCBlock:                  "ObjCBlock",
	KindThinFunctionType:           "ThinFunctionType",
	KindCFunctionPointer:           "CFunctionPointer",
	KindArgumentTuple:              "ArgumentTuple",
	KindReturnType:                 "ReturnType",
	KindThrowsAnnotation:           "ThrowsAnnotation",
	KindInOut:                      "InOut",
	KindMetatype:                   "Metatype",
	KindExistentialMetatype:        "ExistentialMetatype",
	KindProtocolList:               "ProtocolList",
	KindDependentGenericParamType:  "DependentGenericParamType",
	KindIndex:                      "Index",
	KindDependentMemberType:        "DependentMemberType",
	KindDependentAssociatedTypeRef: "DependentAssociatedTypeRef",
	KindWeak:                       "Weak",
	KindUnowned:                    "Unowned",
	KindUnmanaged:                  "Unmanaged",
	kindEmptyList:                  "EmptyList",
	kindFirstElementMarker:         "FirstElementMarker",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

// IsNominal reports whether k names a nominal type declaration.
func (k NodeKind) IsNominal() bool {
	switch k {
	case KindStructure, KindClass, KindEnum, KindProtocol, KindTypeAlias:
		return true
	}
	return false
}

// IsFunction reports whether k is one of the function type kinds.
func (k NodeKind) IsFunction() bool {
	switch k {
	case KindFunctionType, KindNoEscapeFunctionType, KindObjCBlock, KindThinFunctionType, KindCFunctionPointer:
		return true
	}
	return false
}

// IsType reports whether a node of kind k denotes a type.
func (k NodeKind) IsType() bool {
	if k.IsNominal() || k.IsFunction() {
		return true
	}
	switch k {
	case KindBoundGeneric, KindBuiltinTypeName, KindTuple, KindInOut,
		KindMetatype, KindExistentialMetatype, KindProtocolList,
		KindDependentGenericParamType, KindDependentMemberType,
		KindWeak, KindUnowned, KindUnmanaged:
		return true
	}
	return false
}

// Node is one vertex of a demangled tree. The shape of Children depends on
// Kind:
//
//	Module, Identifier          Text only
//	Structure ... TypeAlias     [context, Identifier]
//	BoundGeneric                [nominal, TypeList]
//	BuiltinTypeName             Text ("Builtin.Int64")
//	Tuple                       TupleElement...; element is [type] or [type, VariadicMarker], Text is the label
//	function kinds              [ThrowsAnnotation?, ArgumentTuple[type], ReturnType[type]]
//	InOut, Metatype, ...        [type]
//	ProtocolList                Protocol...
//	DependentGenericParamType   [Index(depth), Index(index)]
//	DependentMemberType         [base, DependentAssociatedTypeRef[Protocol?]]
//
// Nodes produced by Demangle may be shared between trees through
// substitutions and must not be mutated.
type Node struct {
	Kind     NodeKind
	Text     string
	Index    uint64
	Children []*Node
}

func newNode(kind NodeKind, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

func newText(kind NodeKind, text string) *Node {
	return &Node{Kind: kind, Text: text}
}

func newNominal(kind NodeKind, context *Node, name string) *Node {
	return newNode(kind, context, newText(KindIdentifier, name))
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Name returns the identifier of a nominal node.
func (n *Node) Name() string {
	if n == nil || !n.Kind.IsNominal() {
		return ""
	}
	if id := n.Child(1); id != nil {
		return id.Text
	}
	return ""
}

// Module returns the name of the module a nominal node is declared in,
// walking out through enclosing types.
func (n *Node) Module() string {
	for n != nil {
		switch {
		case n.Kind == KindModule:
			return n.Text
		case n.Kind == KindBoundGeneric:
			n = n.Child(0)
		case n.Kind.IsNominal():
			n = n.Child(0)
		default:
			return ""
		}
	}
	return ""
}

// GenericParam returns the depth and index of a DependentGenericParamType node.
func (n *Node) GenericParam() (depth, index uint64, ok bool) {
	if n == nil || n.Kind != KindDependentGenericParamType || len(n.Children) != 2 {
		return 0, 0, false
	}
	return n.Children[0].Index, n.Children[1].Index, true
}

// Equal reports whether two trees have the same structure and content.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Text != b.Text || a.Index != b.Index || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Declaration returns the unbound declaration of a nominal or bound generic
// node: generic arguments are dropped at every level, including from
// enclosing types.
func Declaration(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == KindBoundGeneric {
		return Declaration(n.Child(0))
	}
	if !n.Kind.IsNominal() {
		return n
	}
	ctx := n.Child(0)
	if ctx == nil || (ctx.Kind != KindBoundGeneric && !ctx.Kind.IsNominal()) {
		return n
	}
	unbound := Declaration(ctx)
	if unbound == ctx {
		return n
	}
	return newNode(n.Kind, unbound, n.Child(1))
}
