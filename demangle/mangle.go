package demangle

import (
	"strconv"
	"strings"

	"github.com/wippyai/swift-reflection/errors"
)

// Mangle encodes a tree back into a mangled type name. The output is
// canonical: it never uses substitutions, so Mangle(Demangle(s)) == s only
// for names that do not contain any.
func Mangle(n *Node) (string, error) {
	var b strings.Builder
	if err := mangleNode(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func cannotMangle(n *Node) error {
	kind := "nil node"
	if n != nil {
		kind = n.Kind.String()
	}
	return errors.Unsupported(errors.PhaseDecode, "cannot mangle "+kind)
}

func mangleIdentifier(b *strings.Builder, name string) {
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteString(name)
}

func mangleIndex(b *strings.Builder, i uint64) {
	if i > 0 {
		b.WriteString(strconv.FormatUint(i-1, 10))
	}
	b.WriteByte('_')
}

var nominalSuffix = map[NodeKind]byte{
	KindStructure: 'V',
	KindClass:     'C',
	KindEnum:      'O',
	KindProtocol:  'P',
	KindTypeAlias: 'a',
}

var functionSuffix = map[NodeKind]string{
	KindFunctionType:         "c",
	KindNoEscapeFunctionType: "XE",
	KindObjCBlock:            "XB",
	KindThinFunctionType:     "Xf",
	KindCFunctionPointer:     "XC",
}

var wrapperSuffix = map[NodeKind]string{
	KindInOut:               "z",
	KindMetatype:            "m",
	KindExistentialMetatype: "Xp",
	KindWeak:                "Xw",
	KindUnowned:             "Xo",
	KindUnmanaged:           "Xu",
}

func mangleNode(b *strings.Builder, n *Node) error {
	if n == nil {
		return cannotMangle(n)
	}
	if suffix, ok := wrapperSuffix[n.Kind]; ok {
		if err := mangleNode(b, n.Child(0)); err != nil {
			return err
		}
		b.WriteString(suffix)
		return nil
	}
	if n.Kind.IsFunction() {
		return mangleFunction(b, n)
	}

	switch n.Kind {
	case KindModule:
		switch n.Text {
		case ModuleSwift:
			b.WriteByte('s')
		case ModuleObjC:
			b.WriteString("So")
		default:
			mangleIdentifier(b, n.Text)
		}
		return nil

	case KindIdentifier:
		mangleIdentifier(b, n.Text)
		return nil

	case KindStructure, KindClass, KindEnum, KindProtocol, KindTypeAlias, KindBoundGeneric:
		return mangleGeneric(b, n)

	case KindBuiltinTypeName:
		return mangleBuiltin(b, n)

	case KindTuple:
		if len(n.Children) == 0 {
			b.WriteString("yt")
			return nil
		}
		for i, elem := range n.Children {
			if err := mangleNode(b, elem.Child(0)); err != nil {
				return err
			}
			if elem.Text != "" {
				mangleIdentifier(b, elem.Text)
			}
			if v := elem.Child(1); v != nil && v.Kind == KindVariadicMarker {
				b.WriteByte('d')
			}
			if i == 0 {
				b.WriteByte('_')
			}
		}
		b.WriteByte('t')
		return nil

	case KindProtocolList:
		if len(n.Children) == 0 {
			b.WriteString("yp")
			return nil
		}
		for i, p := range n.Children {
			if err := mangleNominal(b, p); err != nil {
				return err
			}
			if i == 0 {
				b.WriteByte('_')
			}
		}
		b.WriteByte('p')
		return nil

	case KindDependentGenericParamType:
		depth, index, ok := n.GenericParam()
		if !ok {
			return cannotMangle(n)
		}
		switch {
		case depth == 0 && index == 0:
			b.WriteByte('x')
		case depth == 0:
			b.WriteByte('q')
			mangleIndex(b, index-1)
		default:
			b.WriteString("qd")
			mangleIndex(b, depth-1)
			mangleIndex(b, index)
		}
		return nil

	case KindDependentMemberType:
		base, assoc := n.Child(0), n.Child(1)
		if assoc == nil || assoc.Kind != KindDependentAssociatedTypeRef {
			return cannotMangle(n)
		}
		depth, index, isParam := base.GenericParam()
		shortForm := isParam && depth == 0 && index == 0
		if !shortForm {
			if err := mangleNode(b, base); err != nil {
				return err
			}
		}
		mangleIdentifier(b, assoc.Text)
		if proto := assoc.Child(0); proto != nil {
			if err := mangleNominal(b, proto); err != nil {
				return err
			}
		}
		if shortForm {
			b.WriteString("Qz")
		} else {
			b.WriteString("Qa")
		}
		return nil
	}
	return cannotMangle(n)
}

func mangleNominal(b *strings.Builder, n *Node) error {
	suffix, ok := nominalSuffix[n.Kind]
	if !ok {
		return cannotMangle(n)
	}
	if c, std := standardLetter(n); std {
		b.WriteByte('S')
		b.WriteByte(c)
		return nil
	}
	if err := mangleNode(b, n.Child(0)); err != nil {
		return err
	}
	mangleIdentifier(b, n.Name())
	b.WriteByte(suffix)
	return nil
}

// mangleGeneric writes a nominal type whose declaration or enclosing types
// may carry generic arguments: the unbound declaration followed by every
// argument list, outermost first, between 'y' and 'G'.
func mangleGeneric(b *strings.Builder, n *Node) error {
	decl := Declaration(n)
	lists := argumentLists(n)
	for len(lists) > 0 && len(lists[0]) == 0 {
		lists = lists[1:]
	}

	if len(lists) == 1 && len(lists[0]) == 1 && isOptional(decl) {
		if err := mangleNode(b, lists[0][0]); err != nil {
			return err
		}
		b.WriteString("Sg")
		return nil
	}

	if err := mangleNominal(b, decl); err != nil {
		return err
	}
	if len(lists) == 0 {
		return nil
	}
	b.WriteByte('y')
	for i, list := range lists {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, arg := range list {
			if err := mangleNode(b, arg); err != nil {
				return err
			}
		}
	}
	b.WriteByte('G')
	return nil
}

// argumentLists collects the generic arguments of n and its enclosing
// types, outermost first. Levels without arguments contribute empty lists.
func argumentLists(n *Node) [][]*Node {
	var args []*Node
	if n.Kind == KindBoundGeneric {
		args = n.Child(1).Children
		n = n.Child(0)
	}
	if !n.Kind.IsNominal() {
		return nil
	}
	var outer [][]*Node
	if ctx := n.Child(0); ctx != nil && (ctx.Kind == KindBoundGeneric || ctx.Kind.IsNominal()) {
		outer = argumentLists(ctx)
	}
	return append(outer, args)
}

func mangleFunction(b *strings.Builder, n *Node) error {
	var params, result *Node
	throws := false
	for _, c := range n.Children {
		switch c.Kind {
		case KindThrowsAnnotation:
			throws = true
		case KindArgumentTuple:
			params = c.Child(0)
		case KindReturnType:
			result = c.Child(0)
		}
	}
	if params == nil || result == nil {
		return cannotMangle(n)
	}
	for _, part := range []*Node{result, params} {
		if part.Kind == KindTuple && len(part.Children) == 0 {
			b.WriteByte('y')
			continue
		}
		if err := mangleNode(b, part); err != nil {
			return err
		}
	}
	if throws {
		b.WriteByte('K')
	}
	b.WriteString(functionSuffix[n.Kind])
	return nil
}

func mangleBuiltin(b *strings.Builder, n *Node) error {
	name, ok := strings.CutPrefix(n.Text, ModuleBuiltin+".")
	if !ok {
		return cannotMangle(n)
	}
	if c, ok := builtinLetters[name]; ok {
		b.WriteByte('B')
		b.WriteByte(c)
		return nil
	}
	for prefix, c := range map[string]string{"Int": "Bi", "FPIEEE": "Bf"} {
		if bits, ok := strings.CutPrefix(name, prefix); ok {
			if _, err := strconv.ParseUint(bits, 10, 32); err == nil {
				b.WriteString(c)
				b.WriteString(bits)
				b.WriteByte('_')
				return nil
			}
		}
	}
	return cannotMangle(n)
}
