package typeref

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes tr as an indented s-expression followed by a newline.
func Dump(w io.Writer, tr TypeRef) error {
	_, err := io.WriteString(w, String(tr)+"\n")
	return err
}

// String renders tr as an indented s-expression.
func String(tr TypeRef) string {
	p := printer{}
	p.node(tr, 0)
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) open(depth int, format string, args ...any) {
	if depth > 0 {
		p.b.WriteByte('\n')
		p.b.WriteString(strings.Repeat("  ", depth))
	}
	p.b.WriteByte('(')
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) close() {
	p.b.WriteByte(')')
}

func (p *printer) children(depth int, trs []TypeRef) {
	for _, tr := range trs {
		p.node(tr, depth)
	}
}

func (p *printer) node(tr TypeRef, depth int) {
	if tr == nil {
		p.open(depth, "nil")
		p.close()
		return
	}

	switch x := tr.(type) {
	case *Builtin:
		p.open(depth, "builtin %s", x.MangledName)
	case *Nominal:
		p.open(depth, "nominal %s", x.MangledName)
		if x.Parent != nil {
			p.open(depth+1, "parent")
			p.node(x.Parent, depth+2)
			p.close()
		}
	case *BoundGeneric:
		p.open(depth, "bound_generic %s", x.MangledName)
		p.children(depth+1, x.Args)
		if x.Parent != nil {
			p.open(depth+1, "parent")
			p.node(x.Parent, depth+2)
			p.close()
		}
	case *Tuple:
		if x.Variadic {
			p.open(depth, "tuple variadic")
		} else {
			p.open(depth, "tuple")
		}
		p.children(depth+1, x.Elements)
	case *Function:
		p.open(depth, "function convention=%s", x.Flags.Convention)
		if x.Flags.Throws {
			p.b.WriteString(" throws")
		}
		if !x.Flags.Escaping {
			p.b.WriteString(" noescape")
		}
		p.open(depth+1, "parameters")
		for i, param := range x.Params {
			if i < len(x.InOut) && x.InOut[i] {
				p.open(depth+2, "inout")
				p.node(param, depth+3)
				p.close()
				continue
			}
			p.node(param, depth+2)
		}
		p.close()
		p.open(depth+1, "result")
		p.node(x.Result, depth+2)
		p.close()
	case *Protocol:
		p.open(depth, "protocol %s", protocolName(x))
	case *ProtocolComposition:
		p.open(depth, "protocol_composition")
		for _, member := range x.Protocols {
			p.node(protocolRef(member), depth+1)
		}
	case *ExistentialMetatype:
		p.open(depth, "existential_metatype")
		p.node(x.Instance, depth+1)
	case *Metatype:
		p.open(depth, "metatype")
		p.node(x.Instance, depth+1)
	case *GenericTypeParameter:
		p.open(depth, "generic_type_parameter depth=%d index=%d", x.Depth, x.Index)
	case *DependentMember:
		p.open(depth, "dependent_member member=%s", x.Member)
		if x.Protocol != nil {
			fmt.Fprintf(&p.b, " protocol=%s", protocolName(x.Protocol))
		}
		p.node(x.Base, depth+1)
	case *UnownedStorage:
		p.open(depth, "unowned_storage")
		p.node(x.Base, depth+1)
	case *UnmanagedStorage:
		p.open(depth, "unmanaged_storage")
		p.node(x.Base, depth+1)
	case *WeakStorage:
		p.open(depth, "weak_storage")
		p.node(x.Base, depth+1)
	case *ObjCClass:
		p.open(depth, "objc_class %s", placeholder(x.Name))
	case *ForeignClass:
		p.open(depth, "foreign_class %s", placeholder(x.Name))
	case *Opaque:
		p.open(depth, "opaque")
	default:
		p.open(depth, "unknown %s", tr.Kind())
	}
	p.close()
}

func protocolName(p *Protocol) string {
	if p.Module == "" {
		return p.Name
	}
	return p.Module + "." + p.Name
}

func placeholder(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}
