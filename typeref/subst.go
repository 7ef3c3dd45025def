package typeref

import "fortio.org/safecast"

// GenericParam addresses a generic parameter by depth and index.
type GenericParam struct {
	Depth uint32
	Index uint32
}

// SubstMap binds generic parameters to concrete TypeRefs.
type SubstMap map[GenericParam]TypeRef

// SubstitutionsOf derives the substitution map of a bound generic type.
// Only bound generic levels count towards depth: the outermost one binds
// depth 0 and each nested bound level adds one. Index is the argument
// position. Non-generic types yield an empty map.
func SubstitutionsOf(tr TypeRef) SubstMap {
	var levels [][]TypeRef
	for cur := tr; cur != nil; {
		switch x := cur.(type) {
		case *BoundGeneric:
			levels = append(levels, x.Args)
			cur = x.Parent
		case *Nominal:
			cur = x.Parent
		default:
			cur = nil
		}
	}

	subs := make(SubstMap)
	for level := range levels {
		depth, err := safecast.Conv[uint32](level)
		if err != nil {
			break
		}
		for pos, arg := range levels[len(levels)-1-level] {
			index, err := safecast.Conv[uint32](pos)
			if err != nil {
				break
			}
			subs[GenericParam{Depth: depth, Index: index}] = arg
		}
	}
	return subs
}

// IsConcrete reports whether tr mentions no generic parameter and no
// dependent member.
func IsConcrete(tr TypeRef) bool {
	switch x := tr.(type) {
	case nil:
		return true
	case *GenericTypeParameter, *DependentMember:
		return false
	case *Nominal:
		return IsConcrete(x.Parent)
	case *BoundGeneric:
		return IsConcrete(x.Parent) && allConcrete(x.Args)
	case *Tuple:
		return allConcrete(x.Elements)
	case *Function:
		return IsConcrete(x.Result) && allConcrete(x.Params)
	case *Metatype:
		return IsConcrete(x.Instance)
	case *ExistentialMetatype:
		return IsConcrete(x.Instance)
	case *UnownedStorage:
		return IsConcrete(x.Base)
	case *UnmanagedStorage:
		return IsConcrete(x.Base)
	case *WeakStorage:
		return IsConcrete(x.Base)
	}
	return true
}

func allConcrete(trs []TypeRef) bool {
	for _, tr := range trs {
		if !IsConcrete(tr) {
			return false
		}
	}
	return true
}
