package typeref

// Arena owns every TypeRef node a Factory creates. Nodes live as long as the
// arena; there is no per-node release.
//
// With interning enabled, structurally equal requests return the node that
// was allocated first, so pointer identity implies structural equality.
// Without it, every request allocates.
type Arena struct {
	nodes    []TypeRef
	interned map[string]TypeRef
}

// NewArena creates an empty arena.
func NewArena(intern bool) *Arena {
	a := &Arena{}
	if intern {
		a.interned = make(map[string]TypeRef)
	}
	return a
}

// Len returns the number of nodes the arena owns.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Interning reports whether structurally equal nodes are shared.
func (a *Arena) Interning() bool {
	return a.interned != nil
}

// alloc takes ownership of n, or returns an interned equivalent.
func alloc[T TypeRef](a *Arena, n T) T {
	if a.interned != nil {
		key := Key(n)
		if existing, ok := a.interned[key]; ok {
			if same, ok := existing.(T); ok {
				return same
			}
		}
		a.interned[key] = n
	}
	a.nodes = append(a.nodes, n)
	return n
}
