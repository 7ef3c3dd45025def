package demangle

// Module names with dedicated manglings.
const (
	ModuleSwift   = "Swift"
	ModuleObjC    = "__C"
	ModuleBuiltin = "Builtin"
)

type standardType struct {
	kind NodeKind
	name string
}

// standardTypes maps the letter following 'S' to a Swift module type.
var standardTypes = map[byte]standardType{
	'A': {KindStructure, "AutoreleasingUnsafeMutablePointer"},
	'a': {KindStructure, "Array"},
	'b': {KindStructure, "Bool"},
	'D': {KindStructure, "Dictionary"},
	'd': {KindStructure, "Double"},
	'f': {KindStructure, "Float"},
	'h': {KindStructure, "Set"},
	'I': {KindStructure, "DefaultIndices"},
	'i': {KindStructure, "Int"},
	'J': {KindStructure, "Character"},
	'N': {KindStructure, "ClosedRange"},
	'n': {KindStructure, "Range"},
	'O': {KindStructure, "ObjectIdentifier"},
	'P': {KindStructure, "UnsafePointer"},
	'p': {KindStructure, "UnsafeMutablePointer"},
	'R': {KindStructure, "UnsafeBufferPointer"},
	'r': {KindStructure, "UnsafeMutableBufferPointer"},
	'S': {KindStructure, "String"},
	's': {KindStructure, "Substring"},
	'u': {KindStructure, "UInt"},
	'V': {KindStructure, "UnsafeRawPointer"},
	'v': {KindStructure, "UnsafeMutableRawPointer"},
	'q': {KindEnum, "Optional"},
	'B': {KindProtocol, "BinaryFloatingPoint"},
	'E': {KindProtocol, "Encodable"},
	'e': {KindProtocol, "Decodable"},
	'F': {KindProtocol, "FloatingPoint"},
	'G': {KindProtocol, "RandomNumberGenerator"},
	'H': {KindProtocol, "Hashable"},
	'j': {KindProtocol, "Numeric"},
	'K': {KindProtocol, "BidirectionalCollection"},
	'k': {KindProtocol, "RandomAccessCollection"},
	'L': {KindProtocol, "Comparable"},
	'l': {KindProtocol, "Collection"},
	'M': {KindProtocol, "MutableCollection"},
	'm': {KindProtocol, "RangeReplaceableCollection"},
	'Q': {KindProtocol, "Equatable"},
	'T': {KindProtocol, "Sequence"},
	't': {KindProtocol, "IteratorProtocol"},
	'U': {KindProtocol, "UnsignedInteger"},
	'X': {KindProtocol, "RangeExpression"},
	'x': {KindProtocol, "Strideable"},
	'Y': {KindProtocol, "RawRepresentable"},
	'y': {KindProtocol, "StringProtocol"},
	'Z': {KindProtocol, "SignedInteger"},
	'z': {KindProtocol, "BinaryInteger"},
}

var standardLetters = func() map[standardType]byte {
	m := make(map[standardType]byte, len(standardTypes))
	for c, st := range standardTypes {
		m[st] = c
	}
	return m
}()

func standardNode(st standardType) *Node {
	return newNominal(st.kind, newText(KindModule, ModuleSwift), st.name)
}

// standardLetter returns the one-letter mangling of a top-level Swift module
// type, if it has one.
func standardLetter(n *Node) (byte, bool) {
	ctx := n.Child(0)
	if ctx == nil || ctx.Kind != KindModule || ctx.Text != ModuleSwift {
		return 0, false
	}
	c, ok := standardLetters[standardType{n.Kind, n.Name()}]
	return c, ok
}

// isOptional reports whether n is the Swift.Optional declaration.
func isOptional(n *Node) bool {
	c, ok := standardLetter(n)
	return ok && c == 'q'
}

// builtinNames maps single-letter builtin manglings to their names.
var builtinNames = map[byte]string{
	'w': "Word",
	'o': "NativeObject",
	'O': "UnknownObject",
	'p': "RawPointer",
	'b': "BridgeObject",
	'B': "UnsafeValueBuffer",
}

var builtinLetters = func() map[string]byte {
	m := make(map[string]byte, len(builtinNames))
	for c, name := range builtinNames {
		m[name] = c
	}
	return m
}()
