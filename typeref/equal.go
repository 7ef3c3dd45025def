package typeref

import (
	"slices"
	"strconv"
	"strings"
)

// Equal reports whether a and b describe the same type. It never relies on
// node identity.
func Equal(a, b TypeRef) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Builtin:
		return x.MangledName == b.(*Builtin).MangledName
	case *Nominal:
		y := b.(*Nominal)
		return x.MangledName == y.MangledName && Equal(x.Parent, y.Parent)
	case *BoundGeneric:
		y := b.(*BoundGeneric)
		return x.MangledName == y.MangledName && Equal(x.Parent, y.Parent) && equalList(x.Args, y.Args)
	case *Tuple:
		y := b.(*Tuple)
		return x.Variadic == y.Variadic && equalList(x.Elements, y.Elements)
	case *Function:
		y := b.(*Function)
		return x.Flags == y.Flags && slices.Equal(x.InOut, y.InOut) &&
			Equal(x.Result, y.Result) && equalList(x.Params, y.Params)
	case *Protocol:
		y := b.(*Protocol)
		return x.Module == y.Module && x.Name == y.Name
	case *ProtocolComposition:
		y := b.(*ProtocolComposition)
		return slices.EqualFunc(x.Protocols, y.Protocols, func(p, q *Protocol) bool { return Equal(protocolRef(p), protocolRef(q)) })
	case *ExistentialMetatype:
		return Equal(x.Instance, b.(*ExistentialMetatype).Instance)
	case *Metatype:
		return Equal(x.Instance, b.(*Metatype).Instance)
	case *GenericTypeParameter:
		return *x == *b.(*GenericTypeParameter)
	case *DependentMember:
		y := b.(*DependentMember)
		return x.Member == y.Member && Equal(x.Base, y.Base) && Equal(protocolRef(x.Protocol), protocolRef(y.Protocol))
	case *UnownedStorage:
		return Equal(x.Base, b.(*UnownedStorage).Base)
	case *UnmanagedStorage:
		return Equal(x.Base, b.(*UnmanagedStorage).Base)
	case *WeakStorage:
		return Equal(x.Base, b.(*WeakStorage).Base)
	case *ObjCClass:
		return x.Name == b.(*ObjCClass).Name
	case *ForeignClass:
		return x.Name == b.(*ForeignClass).Name
	case *Opaque:
		return true
	}
	return false
}

// protocolRef converts a possibly nil *Protocol into a TypeRef that is nil
// when the pointer is.
func protocolRef(p *Protocol) TypeRef {
	if p == nil {
		return nil
	}
	return p
}

func equalList(a, b []TypeRef) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Key returns a string that is equal for two TypeRefs exactly when Equal
// holds. It is the interning key of the Arena.
func Key(tr TypeRef) string {
	var b strings.Builder
	writeKey(&b, tr)
	return b.String()
}

func writeString(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

func writeBool(b *strings.Builder, v bool) {
	if v {
		b.WriteByte('1')
	} else {
		b.WriteByte('0')
	}
}

func writeKeys(b *strings.Builder, trs []TypeRef) {
	b.WriteString(strconv.Itoa(len(trs)))
	b.WriteByte('[')
	for _, tr := range trs {
		writeKey(b, tr)
	}
	b.WriteByte(']')
}

func writeKey(b *strings.Builder, tr TypeRef) {
	if tr == nil {
		b.WriteByte('~')
		return
	}
	b.WriteByte('(')
	b.WriteString(strconv.Itoa(int(tr.Kind())))
	b.WriteByte(' ')

	switch x := tr.(type) {
	case *Builtin:
		writeString(b, x.MangledName)
	case *Nominal:
		writeString(b, x.MangledName)
		writeKey(b, x.Parent)
	case *BoundGeneric:
		writeString(b, x.MangledName)
		writeKey(b, x.Parent)
		writeKeys(b, x.Args)
	case *Tuple:
		writeBool(b, x.Variadic)
		writeKeys(b, x.Elements)
	case *Function:
		b.WriteString(strconv.Itoa(int(x.Flags.Convention)))
		writeBool(b, x.Flags.Throws)
		writeBool(b, x.Flags.Escaping)
		for _, inout := range x.InOut {
			writeBool(b, inout)
		}
		writeKeys(b, x.Params)
		writeKey(b, x.Result)
	case *Protocol:
		writeString(b, x.Module)
		writeString(b, x.Name)
	case *ProtocolComposition:
		b.WriteString(strconv.Itoa(len(x.Protocols)))
		for _, p := range x.Protocols {
			writeKey(b, protocolRef(p))
		}
	case *ExistentialMetatype:
		writeKey(b, x.Instance)
	case *Metatype:
		writeKey(b, x.Instance)
	case *GenericTypeParameter:
		b.WriteString(strconv.FormatUint(uint64(x.Depth), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(x.Index), 10))
	case *DependentMember:
		writeString(b, x.Member)
		writeKey(b, protocolRef(x.Protocol))
		writeKey(b, x.Base)
	case *UnownedStorage:
		writeKey(b, x.Base)
	case *UnmanagedStorage:
		writeKey(b, x.Base)
	case *WeakStorage:
		writeKey(b, x.Base)
	case *ObjCClass:
		writeString(b, x.Name)
	case *ForeignClass:
		writeString(b, x.Name)
	case *Opaque:
	}
	b.WriteByte(')')
}
