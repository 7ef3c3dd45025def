package demangle

import (
	"strconv"
	"strings"
)

// Format renders a tree as a readable Swift type, e.g.
// "Swift.Dictionary<Swift.String, main.Point>".
func Format(n *Node) string {
	var b strings.Builder
	format(&b, n)
	return b.String()
}

func format(b *strings.Builder, n *Node) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	if n.Kind.IsNominal() {
		if ctx := n.Child(0); ctx != nil {
			format(b, ctx)
			b.WriteByte('.')
		}
		b.WriteString(n.Name())
		return
	}
	if n.Kind.IsFunction() {
		formatFunction(b, n)
		return
	}

	switch n.Kind {
	case KindModule, KindIdentifier, KindBuiltinTypeName:
		b.WriteString(n.Text)

	case KindBoundGeneric:
		format(b, n.Child(0))
		b.WriteByte('<')
		formatList(b, n.Child(1).Children, ", ")
		b.WriteByte('>')

	case KindTuple:
		b.WriteByte('(')
		for i, elem := range n.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			if elem.Text != "" {
				b.WriteString(elem.Text)
				b.WriteString(": ")
			}
			format(b, elem.Child(0))
			if v := elem.Child(1); v != nil && v.Kind == KindVariadicMarker {
				b.WriteString("...")
			}
		}
		b.WriteByte(')')

	case KindInOut:
		b.WriteString("inout ")
		format(b, n.Child(0))

	case KindMetatype, KindExistentialMetatype:
		format(b, n.Child(0))
		b.WriteString(".Type")

	case KindProtocolList:
		if len(n.Children) == 0 {
			b.WriteString("Any")
			return
		}
		formatList(b, n.Children, " & ")

	case KindDependentGenericParamType:
		depth, index, _ := n.GenericParam()
		b.WriteString("τ_")
		b.WriteString(strconv.FormatUint(depth, 10))
		b.WriteByte('_')
		b.WriteString(strconv.FormatUint(index, 10))

	case KindDependentMemberType:
		format(b, n.Child(0))
		b.WriteByte('.')
		b.WriteString(n.Child(1).Text)

	case KindWeak:
		b.WriteString("weak ")
		format(b, n.Child(0))

	case KindUnowned:
		b.WriteString("unowned ")
		format(b, n.Child(0))

	case KindUnmanaged:
		b.WriteString("unowned(unsafe) ")
		format(b, n.Child(0))

	default:
		b.WriteByte('<')
		b.WriteString(n.Kind.String())
		b.WriteByte('>')
	}
}

func formatList(b *strings.Builder, nodes []*Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		format(b, n)
	}
}

func formatFunction(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindObjCBlock:
		b.WriteString("@convention(block) ")
	case KindThinFunctionType:
		b.WriteString("@convention(thin) ")
	case KindCFunctionPointer:
		b.WriteString("@convention(c) ")
	}

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

	if params != nil && params.Kind == KindTuple {
		format(b, params)
	} else {
		b.WriteByte('(')
		format(b, params)
		b.WriteByte(')')
	}
	if throws {
		b.WriteString(" throws")
	}
	b.WriteString(" -> ")
	format(b, result)
}
