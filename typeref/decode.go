package typeref

import (
	"fortio.org/safecast"

	"github.com/wippyai/swift-reflection/demangle"
	"github.com/wippyai/swift-reflection/errors"
)

// MangledDecoder turns mangled type names into TypeRefs by demangling them
// and walking the tree with a Factory.
type MangledDecoder struct{}

// DecodeMangledType decodes mangled and allocates the result through f.
func (MangledDecoder) DecodeMangledType(f *Factory, mangled string) (TypeRef, error) {
	node, err := demangle.Demangle(mangled)
	if err != nil {
		return nil, err
	}
	return f.DecodeNode(node)
}

// DecodeNode converts a demangled tree into a TypeRef.
func (f *Factory) DecodeNode(node *demangle.Node) (TypeRef, error) {
	if node == nil {
		return nil, errors.InvalidInput(errors.PhaseDecode, "nil node")
	}

	switch kind := node.Kind; {
	case kind == demangle.KindProtocol:
		return f.CreateProtocolType(node.Module(), node.Name()), nil
	case kind.IsNominal():
		return f.decodeNominal(node)
	case kind.IsFunction():
		return f.decodeFunction(node)
	}

	switch node.Kind {
	case demangle.KindBoundGeneric:
		return f.decodeBoundGeneric(node)
	case demangle.KindBuiltinTypeName:
		mangled, err := demangle.Mangle(node)
		if err != nil {
			return nil, err
		}
		return f.CreateBuiltinType(mangled), nil
	case demangle.KindTuple:
		return f.decodeTuple(node)
	case demangle.KindProtocolList:
		members := make([]TypeRef, 0, len(node.Children))
		for _, child := range node.Children {
			p, err := f.DecodeNode(child)
			if err != nil {
				return nil, err
			}
			members = append(members, p)
		}
		composition, err := f.CreateProtocolCompositionType(members)
		if err != nil {
			return nil, err
		}
		return composition, nil
	case demangle.KindMetatype:
		instance, err := f.decodeChild(node, 0)
		if err != nil {
			return nil, err
		}
		return f.CreateMetatypeType(instance), nil
	case demangle.KindExistentialMetatype:
		instance, err := f.decodeChild(node, 0)
		if err != nil {
			return nil, err
		}
		return f.CreateExistentialMetatypeType(instance), nil
	case demangle.KindDependentGenericParamType:
		return f.decodeGenericParam(node)
	case demangle.KindDependentMemberType:
		return f.decodeDependentMember(node)
	case demangle.KindWeak:
		base, err := f.decodeChild(node, 0)
		if err != nil {
			return nil, err
		}
		return f.CreateWeakStorageType(base), nil
	case demangle.KindUnowned:
		base, err := f.decodeChild(node, 0)
		if err != nil {
			return nil, err
		}
		return f.CreateUnownedStorageType(base), nil
	case demangle.KindUnmanaged:
		base, err := f.decodeChild(node, 0)
		if err != nil {
			return nil, err
		}
		return f.CreateUnmanagedStorageType(base), nil
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "type node "+node.Kind.String())
}

func (f *Factory) decodeChild(node *demangle.Node, i int) (TypeRef, error) {
	child := node.Child(i)
	if child == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, node.Kind.String()+" without operand")
	}
	return f.DecodeNode(child)
}

// decodeParent decodes the enclosing type of a nominal node, or returns nil
// when the node is declared directly in a module.
func (f *Factory) decodeParent(nominal *demangle.Node) (TypeRef, error) {
	ctx := nominal.Child(0)
	if ctx == nil || (ctx.Kind != demangle.KindBoundGeneric && !ctx.Kind.IsNominal()) {
		return nil, nil
	}
	return f.DecodeNode(ctx)
}

func (f *Factory) decodeNominal(node *demangle.Node) (TypeRef, error) {
	if node.Kind == demangle.KindClass && node.Child(0) != nil &&
		node.Child(0).Kind == demangle.KindModule && node.Module() == demangle.ModuleObjC {
		return f.CreateObjCClassType(node.Name()), nil
	}
	decl, err := f.CreateNominalTypeDecl(node)
	if err != nil {
		return nil, err
	}
	parent, err := f.decodeParent(node)
	if err != nil {
		return nil, err
	}
	return f.CreateNominalType(decl, parent), nil
}

func (f *Factory) decodeBoundGeneric(node *demangle.Node) (TypeRef, error) {
	nominal := node.Child(0)
	list := node.Child(1)
	if nominal == nil || list == nil || !nominal.Kind.IsNominal() {
		return nil, errors.InvalidData(errors.PhaseDecode, "bound generic without declaration or arguments")
	}
	decl, err := f.CreateNominalTypeDecl(nominal)
	if err != nil {
		return nil, err
	}
	args := make([]TypeRef, 0, len(list.Children))
	for _, arg := range list.Children {
		tr, err := f.DecodeNode(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, tr)
	}
	parent, err := f.decodeParent(nominal)
	if err != nil {
		return nil, err
	}
	return f.CreateBoundGenericType(decl, args, parent), nil
}

func (f *Factory) decodeTuple(node *demangle.Node) (TypeRef, error) {
	elements := make([]TypeRef, 0, len(node.Children))
	variadic := false
	for _, elem := range node.Children {
		tr, err := f.decodeChild(elem, 0)
		if err != nil {
			return nil, err
		}
		elements = append(elements, tr)
		if marker := elem.Child(1); marker != nil && marker.Kind == demangle.KindVariadicMarker {
			variadic = true
		}
	}
	return f.CreateTupleType(elements, variadic), nil
}

var conventions = map[demangle.NodeKind]FunctionConvention{
	demangle.KindFunctionType:         ConventionSwift,
	demangle.KindNoEscapeFunctionType: ConventionSwift,
	demangle.KindObjCBlock:            ConventionBlock,
	demangle.KindThinFunctionType:     ConventionThin,
	demangle.KindCFunctionPointer:     ConventionCFunctionPointer,
}

func (f *Factory) decodeFunction(node *demangle.Node) (TypeRef, error) {
	flags := FunctionFlags{
		Convention: conventions[node.Kind],
		Escaping:   node.Kind != demangle.KindNoEscapeFunctionType,
	}
	var argsNode, resultNode *demangle.Node
	for _, child := range node.Children {
		switch child.Kind {
		case demangle.KindThrowsAnnotation:
			flags.Throws = true
		case demangle.KindArgumentTuple:
			argsNode = child.Child(0)
		case demangle.KindReturnType:
			resultNode = child.Child(0)
		}
	}
	if argsNode == nil || resultNode == nil {
		return nil, errors.InvalidData(errors.PhaseDecode, "function type without parameters or result")
	}

	// A tuple argument spreads into one parameter per element.
	paramNodes := []*demangle.Node{argsNode}
	if argsNode.Kind == demangle.KindTuple {
		paramNodes = paramNodes[:0]
		for _, elem := range argsNode.Children {
			paramNodes = append(paramNodes, elem.Child(0))
		}
	}

	params := make([]TypeRef, 0, len(paramNodes))
	inOut := make([]bool, 0, len(paramNodes))
	for _, p := range paramNodes {
		isInOut := p != nil && p.Kind == demangle.KindInOut
		if isInOut {
			p = p.Child(0)
		}
		tr, err := f.DecodeNode(p)
		if err != nil {
			return nil, err
		}
		params = append(params, tr)
		inOut = append(inOut, isInOut)
	}

	result, err := f.DecodeNode(resultNode)
	if err != nil {
		return nil, err
	}
	return f.CreateFunctionType(params, inOut, result, flags), nil
}

func (f *Factory) decodeGenericParam(node *demangle.Node) (TypeRef, error) {
	depth, index, ok := node.GenericParam()
	if !ok {
		return nil, errors.InvalidData(errors.PhaseDecode, "generic parameter without depth and index")
	}
	d, err := safecast.Conv[uint32](depth)
	if err != nil {
		return nil, errors.Overflow(errors.PhaseDecode, depth, "uint32")
	}
	i, err := safecast.Conv[uint32](index)
	if err != nil {
		return nil, errors.Overflow(errors.PhaseDecode, index, "uint32")
	}
	return f.CreateGenericTypeParameterType(d, i), nil
}

func (f *Factory) decodeDependentMember(node *demangle.Node) (TypeRef, error) {
	assoc := node.Child(1)
	if assoc == nil || assoc.Kind != demangle.KindDependentAssociatedTypeRef {
		return nil, errors.InvalidData(errors.PhaseDecode, "dependent member without associated type")
	}
	base, err := f.decodeChild(node, 0)
	if err != nil {
		return nil, err
	}
	var protocol TypeRef
	if p := assoc.Child(0); p != nil {
		if protocol, err = f.DecodeNode(p); err != nil {
			return nil, err
		}
	}
	member, err := f.CreateDependentMemberType(assoc.Text, base, protocol)
	if err != nil {
		return nil, err
	}
	return member, nil
}
