package demangle

import (
	"strconv"

	"github.com/wippyai/swift-reflection/errors"
)

// maxRepeatCount bounds the repeat prefix of standard and word
// substitutions, so a short name cannot expand into an arbitrarily long one.
const maxRepeatCount = 2048

// demangler is a postfix stack machine: operands are pushed as they are
// read and each operator character pops what it needs.
type demangler struct {
	text  string
	pos   int
	stack []*Node
	subs  []*Node
}

// Demangle parses a mangled type name as stored in reflection metadata.
// Embedded symbolic references are not supported.
func Demangle(mangled string) (*Node, error) {
	if mangled == "" {
		return nil, errors.InvalidInput(errors.PhaseDecode, "empty mangled name")
	}
	d := &demangler{text: mangled}
	for d.pos < len(d.text) {
		if err := d.step(); err != nil {
			return nil, err
		}
	}
	if len(d.stack) != 1 || !d.stack[0].Kind.IsType() {
		return nil, d.fail("incomplete type, %d operands left", len(d.stack))
	}
	return d.stack[0], nil
}

func (d *demangler) fail(format string, args ...any) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Type(d.text).
		Detail("at %d: "+format, append([]any{d.pos}, args...)...).
		Build()
}

func (d *demangler) next() (byte, bool) {
	if d.pos >= len(d.text) {
		return 0, false
	}
	c := d.text[d.pos]
	d.pos++
	return c, true
}

func (d *demangler) peek() byte {
	if d.pos >= len(d.text) {
		return 0
	}
	return d.text[d.pos]
}

func (d *demangler) push(n *Node) {
	d.stack = append(d.stack, n)
}

func (d *demangler) pop() *Node {
	if len(d.stack) == 0 {
		return nil
	}
	n := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return n
}

// popKind pops the top node only if it has the given kind.
func (d *demangler) popKind(kind NodeKind) *Node {
	if len(d.stack) == 0 || d.stack[len(d.stack)-1].Kind != kind {
		return nil
	}
	return d.pop()
}

func (d *demangler) popType() (*Node, error) {
	if len(d.stack) == 0 || !d.stack[len(d.stack)-1].Kind.IsType() {
		return nil, d.fail("expected a type operand")
	}
	return d.pop(), nil
}

// popTypeOrEmpty accepts a bare 'y' as the empty tuple, the spelling used
// for function parameter and result types.
func (d *demangler) popTypeOrEmpty() (*Node, error) {
	if d.popKind(kindEmptyList) != nil {
		return newNode(KindTuple), nil
	}
	return d.popType()
}

// popContext pops the declaration context of a nominal type. A bare
// identifier in context position names a module.
func (d *demangler) popContext() (*Node, error) {
	n := d.pop()
	switch {
	case n == nil:
		return nil, d.fail("missing declaration context")
	case n.Kind == KindModule:
		return n, nil
	case n.Kind == KindIdentifier:
		return newText(KindModule, n.Text), nil
	case n.Kind.IsNominal():
		return n, nil
	}
	return nil, d.fail("%s cannot be a declaration context", n.Kind)
}

func (d *demangler) step() error {
	c, _ := d.next()
	switch {
	case c >= 0x01 && c <= 0x1f:
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Type(d.text).
			Detail("symbolic reference %#02x at %d", c, d.pos-1).
			Build()
	case c >= '0' && c <= '9':
		d.pos--
		return d.identifier()
	}

	switch c {
	case 's':
		d.push(newText(KindModule, ModuleSwift))
	case 'S':
		return d.standard()
	case 'V':
		return d.nominal(KindStructure)
	case 'C':
		return d.nominal(KindClass)
	case 'O':
		return d.nominal(KindEnum)
	case 'P':
		return d.nominal(KindProtocol)
	case 'a':
		return d.nominal(KindTypeAlias)
	case 'y':
		d.push(newNode(kindEmptyList))
	case '_':
		d.push(newNode(kindFirstElementMarker))
	case 'd':
		d.push(newNode(KindVariadicMarker))
	case 'G':
		return d.boundGeneric()
	case 't':
		return d.tuple()
	case 'c':
		return d.function(KindFunctionType)
	case 'K':
		d.push(newNode(KindThrowsAnnotation))
	case 'z':
		return d.wrap(KindInOut)
	case 'm':
		return d.wrap(KindMetatype)
	case 'p':
		return d.protocolList()
	case 'x':
		d.push(genericParam(0, 0))
	case 'q':
		return d.genericParamIndex()
	case 'Q':
		return d.dependentMember()
	case 'A':
		return d.substitution()
	case 'B':
		return d.builtin()
	case 'X':
		return d.special()
	default:
		return d.fail("unexpected %q", c)
	}
	return nil
}

func (d *demangler) natural() (uint64, bool) {
	start := d.pos
	for d.pos < len(d.text) && d.text[d.pos] >= '0' && d.text[d.pos] <= '9' {
		d.pos++
	}
	if start == d.pos {
		return 0, false
	}
	n, err := strconv.ParseUint(d.text[start:d.pos], 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}

// index reads '_' as 0 or '<n>_' as n+1.
func (d *demangler) index() (uint64, error) {
	if d.peek() == '_' {
		d.pos++
		return 0, nil
	}
	n, ok := d.natural()
	if !ok {
		return 0, d.fail("expected an index")
	}
	if c, _ := d.next(); c != '_' {
		return 0, d.fail("index not terminated by '_'")
	}
	return n + 1, nil
}

func (d *demangler) identifier() error {
	if d.peek() == '0' {
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Type(d.text).
			Detail("word substitution at %d", d.pos).
			Build()
	}
	n, ok := d.natural()
	if !ok {
		return d.fail("expected identifier length")
	}
	if n > uint64(len(d.text)-d.pos) {
		return d.fail("identifier of %d bytes overruns the name", n)
	}
	end := d.pos + int(n)
	id := newText(KindIdentifier, d.text[d.pos:end])
	d.pos = end
	d.push(id)
	d.subs = append(d.subs, id)
	return nil
}

func (d *demangler) standard() error {
	repeat := uint64(1)
	if c := d.peek(); c >= '1' && c <= '9' {
		n, ok := d.natural()
		if !ok {
			return d.fail("bad repeat count")
		}
		if n > maxRepeatCount {
			return d.fail("repeat count %d exceeds %d", n, maxRepeatCount)
		}
		repeat = n
	}
	c, ok := d.next()
	if !ok {
		return d.fail("truncated standard substitution")
	}
	var node *Node
	switch c {
	case 'g':
		arg, err := d.popType()
		if err != nil {
			return err
		}
		node = newNode(KindBoundGeneric, standardNode(standardTypes['q']), newNode(KindTypeList, arg))
	case 'o':
		node = newText(KindModule, ModuleObjC)
	default:
		st, known := standardTypes[c]
		if !known {
			return d.fail("unknown standard type S%c", c)
		}
		node = standardNode(st)
	}
	for range repeat {
		d.push(node)
	}
	return nil
}

func (d *demangler) nominal(kind NodeKind) error {
	name := d.popKind(KindIdentifier)
	if name == nil {
		return d.fail("%s without a name", kind)
	}
	ctx, err := d.popContext()
	if err != nil {
		return err
	}
	n := newNode(kind, ctx, name)
	d.push(n)
	d.subs = append(d.subs, n)
	return nil
}

// boundGeneric pops argument lists separated by '_' markers back to the
// opening 'y'. Lists come off the stack innermost first.
func (d *demangler) boundGeneric() error {
	var lists [][]*Node
	for {
		var list []*Node
		for len(d.stack) > 0 && d.stack[len(d.stack)-1].Kind.IsType() {
			list = append(list, d.pop())
		}
		reverse(list)
		lists = append(lists, list)
		if d.popKind(kindEmptyList) != nil {
			break
		}
		if d.popKind(kindFirstElementMarker) == nil {
			return d.fail("malformed generic argument list")
		}
	}
	nominal := d.pop()
	if nominal == nil || !nominal.Kind.IsNominal() {
		return d.fail("generic arguments without a nominal type")
	}
	bound, err := d.bindArgs(nominal, lists, 0)
	if err != nil {
		return err
	}
	d.push(bound)
	d.subs = append(d.subs, bound)
	return nil
}

func (d *demangler) bindArgs(nominal *Node, lists [][]*Node, idx int) (*Node, error) {
	if idx >= len(lists) {
		return nominal, nil
	}
	args := lists[idx]
	idx++
	if idx < len(lists) {
		parent := nominal.Child(0)
		if parent == nil || !parent.Kind.IsNominal() {
			return nil, d.fail("generic arguments for a non-type context")
		}
		boundParent, err := d.bindArgs(parent, lists, idx)
		if err != nil {
			return nil, err
		}
		nominal = newNode(nominal.Kind, boundParent, nominal.Child(1))
	}
	if len(args) == 0 {
		return nominal, nil
	}
	return newNode(KindBoundGeneric, nominal, newNode(KindTypeList, args...)), nil
}

func (d *demangler) tuple() error {
	tuple := newNode(KindTuple)
	if d.popKind(kindEmptyList) != nil {
		d.push(tuple)
		return nil
	}
	for first := false; !first; {
		first = d.popKind(kindFirstElementMarker) != nil
		elem := newNode(KindTupleElement)
		variadic := d.popKind(KindVariadicMarker)
		if label := d.popKind(KindIdentifier); label != nil {
			elem.Text = label.Text
		}
		ty, err := d.popType()
		if err != nil {
			return err
		}
		elem.Children = append(elem.Children, ty)
		if variadic != nil {
			elem.Children = append(elem.Children, variadic)
		}
		tuple.Children = append(tuple.Children, elem)
	}
	reverse(tuple.Children)
	d.push(tuple)
	return nil
}

func (d *demangler) function(kind NodeKind) error {
	fn := newNode(kind)
	if throws := d.popKind(KindThrowsAnnotation); throws != nil {
		fn.Children = append(fn.Children, throws)
	}
	params, err := d.popTypeOrEmpty()
	if err != nil {
		return err
	}
	result, err := d.popTypeOrEmpty()
	if err != nil {
		return err
	}
	fn.Children = append(fn.Children,
		newNode(KindArgumentTuple, params),
		newNode(KindReturnType, result))
	d.push(fn)
	return nil
}

func (d *demangler) wrap(kind NodeKind) error {
	ty, err := d.popType()
	if err != nil {
		return err
	}
	d.push(newNode(kind, ty))
	return nil
}

func (d *demangler) protocolList() error {
	list := newNode(KindProtocolList)
	if d.popKind(kindEmptyList) != nil {
		d.push(list)
		return nil
	}
	for first := false; !first; {
		first = d.popKind(kindFirstElementMarker) != nil
		proto := d.popKind(KindProtocol)
		if proto == nil {
			return d.fail("protocol composition member is not a protocol")
		}
		list.Children = append(list.Children, proto)
	}
	reverse(list.Children)
	d.push(list)
	return nil
}

func genericParam(depth, index uint64) *Node {
	return newNode(KindDependentGenericParamType,
		&Node{Kind: KindIndex, Index: depth},
		&Node{Kind: KindIndex, Index: index})
}

func (d *demangler) genericParamIndex() error {
	switch d.peek() {
	case 'd':
		d.pos++
		depth, err := d.index()
		if err != nil {
			return err
		}
		index, err := d.index()
		if err != nil {
			return err
		}
		d.push(genericParam(depth+1, index))
	case 'z':
		d.pos++
		d.push(genericParam(0, 0))
	default:
		index, err := d.index()
		if err != nil {
			return err
		}
		d.push(genericParam(0, index+1))
	}
	return nil
}

func (d *demangler) dependentMember() error {
	c, ok := d.next()
	if !ok || (c != 'a' && c != 'z') {
		return d.fail("unsupported dependent type operator")
	}
	assoc := newNode(KindDependentAssociatedTypeRef)
	proto := d.popKind(KindProtocol)
	name := d.popKind(KindIdentifier)
	if name == nil {
		return d.fail("associated type without a name")
	}
	assoc.Text = name.Text
	if proto != nil {
		assoc.Children = append(assoc.Children, proto)
	}

	var base *Node
	if c == 'z' {
		base = genericParam(0, 0)
	} else {
		var err error
		if base, err = d.popType(); err != nil {
			return err
		}
	}
	d.push(newNode(KindDependentMemberType, base, assoc))
	return nil
}

// substitution handles 'A': lowercase letters push and continue, an
// uppercase letter pushes and ends, '<n>_' refers to index n+27.
func (d *demangler) substitution() error {
	repeat := uint64(1)
	for {
		c, ok := d.next()
		if !ok {
			return d.fail("truncated substitution")
		}
		switch {
		case c >= 'a' && c <= 'z':
			if err := d.pushSubstitution(uint64(c-'a'), repeat); err != nil {
				return err
			}
			repeat = 1
		case c >= 'A' && c <= 'Z':
			return d.pushSubstitution(uint64(c-'A'), repeat)
		case c == '_':
			return d.pushSubstitution(26, 1)
		case c >= '0' && c <= '9':
			d.pos--
			n, ok := d.natural()
			if !ok {
				return d.fail("bad substitution")
			}
			if d.peek() == '_' {
				d.pos++
				return d.pushSubstitution(n+27, 1)
			}
			if n > maxRepeatCount {
				return d.fail("repeat count %d exceeds %d", n, maxRepeatCount)
			}
			repeat = n
		default:
			return d.fail("bad substitution %q", c)
		}
	}
}

func (d *demangler) pushSubstitution(idx, repeat uint64) error {
	if idx >= uint64(len(d.subs)) {
		return d.fail("substitution %d out of range (%d known)", idx, len(d.subs))
	}
	for range repeat {
		d.push(d.subs[idx])
	}
	return nil
}

func (d *demangler) builtin() error {
	c, ok := d.next()
	if !ok {
		return d.fail("truncated builtin")
	}
	var name string
	switch c {
	case 'i', 'f':
		bits, ok := d.natural()
		if !ok {
			return d.fail("builtin without a bit width")
		}
		if end, _ := d.next(); end != '_' {
			return d.fail("builtin width not terminated by '_'")
		}
		if c == 'i' {
			name = "Int" + strconv.FormatUint(bits, 10)
		} else {
			name = "FPIEEE" + strconv.FormatUint(bits, 10)
		}
	default:
		var known bool
		if name, known = builtinNames[c]; !known {
			return d.fail("unknown builtin B%c", c)
		}
	}
	d.push(newText(KindBuiltinTypeName, ModuleBuiltin+"."+name))
	return nil
}

func (d *demangler) special() error {
	c, ok := d.next()
	if !ok {
		return d.fail("truncated X operator")
	}
	switch c {
	case 'E':
		return d.function(KindNoEscapeFunctionType)
	case 'B':
		return d.function(KindObjCBlock)
	case 'f':
		return d.function(KindThinFunctionType)
	case 'C':
		return d.function(KindCFunctionPointer)
	case 'p':
		return d.wrap(KindExistentialMetatype)
	case 'w':
		return d.wrap(KindWeak)
	case 'o':
		return d.wrap(KindUnowned)
	case 'u':
		return d.wrap(KindUnmanaged)
	}
	return d.fail("unsupported operator X%c", c)
}

func reverse(nodes []*Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}
