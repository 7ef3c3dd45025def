package reflection

import (
	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/typeref"
)

// Subst rebuilds tr with every generic parameter bound in subs replaced.
// A dependent member whose base becomes a nominal type is resolved through
// the base's associated type witnesses; when no witness is registered it
// stays a dependent member over the substituted base. Nodes that contain
// nothing to substitute are returned as is.
func (b *Builder) Subst(tr typeref.TypeRef, subs typeref.SubstMap) (typeref.TypeRef, error) {
	if len(subs) == 0 || typeref.IsConcrete(tr) {
		return tr, nil
	}
	return b.subst(tr, subs)
}

func (b *Builder) substAll(trs []typeref.TypeRef, subs typeref.SubstMap) ([]typeref.TypeRef, error) {
	out := make([]typeref.TypeRef, len(trs))
	for i, tr := range trs {
		s, err := b.Subst(tr, subs)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (b *Builder) subst(tr typeref.TypeRef, subs typeref.SubstMap) (typeref.TypeRef, error) {
	switch t := tr.(type) {
	case *typeref.GenericTypeParameter:
		if bound, ok := subs[typeref.GenericParam{Depth: t.Depth, Index: t.Index}]; ok {
			return bound, nil
		}
		return t, nil

	case *typeref.Nominal:
		parent, err := b.Subst(t.Parent, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateNominalType(typeref.NominalTypeDeclFromMangled(t.MangledName), parent), nil

	case *typeref.BoundGeneric:
		args, err := b.substAll(t.Args, subs)
		if err != nil {
			return nil, err
		}
		parent, err := b.Subst(t.Parent, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateBoundGenericType(typeref.NominalTypeDeclFromMangled(t.MangledName), args, parent), nil

	case *typeref.Tuple:
		elements, err := b.substAll(t.Elements, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateTupleType(elements, t.Variadic), nil

	case *typeref.Function:
		params, err := b.substAll(t.Params, subs)
		if err != nil {
			return nil, err
		}
		result, err := b.Subst(t.Result, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateFunctionType(params, t.InOut, result, t.Flags), nil

	case *typeref.Metatype:
		instance, err := b.Subst(t.Instance, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateMetatypeType(instance), nil

	case *typeref.ExistentialMetatype:
		instance, err := b.Subst(t.Instance, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateExistentialMetatypeType(instance), nil

	case *typeref.WeakStorage:
		base, err := b.Subst(t.Base, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateWeakStorageType(base), nil

	case *typeref.UnownedStorage:
		base, err := b.Subst(t.Base, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateUnownedStorageType(base), nil

	case *typeref.UnmanagedStorage:
		base, err := b.Subst(t.Base, subs)
		if err != nil {
			return nil, err
		}
		return b.CreateUnmanagedStorageType(base), nil

	case *typeref.DependentMember:
		return b.substDependentMember(t, subs)
	}
	return tr, nil
}

func (b *Builder) substDependentMember(dm *typeref.DependentMember, subs typeref.SubstMap) (typeref.TypeRef, error) {
	base, err := b.Subst(dm.Base, subs)
	if err != nil {
		return nil, err
	}

	var conforming string
	switch t := base.(type) {
	case *typeref.Nominal:
		conforming = t.MangledName
	case *typeref.BoundGeneric:
		conforming = t.MangledName
	}
	if conforming != "" {
		witness, err := b.GetDependentMemberTypeRef(conforming, dm)
		switch {
		case err == nil:
			return b.substWitness(witness, base, conforming, dm)
		case !errors.IsNotFound(err):
			return nil, err
		}
	}

	member, err := b.CreateDependentMemberType(dm.Member, base, dm.Protocol)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// substWitness substitutes a witness with the conforming type's own generic
// arguments. A witness that leads back to a member already being resolved
// on this path is malformed.
func (b *Builder) substWitness(witness, base typeref.TypeRef, conforming string, dm *typeref.DependentMember) (typeref.TypeRef, error) {
	key := typeref.Key(base) + "\x00" + dm.Protocol.Module + "." + dm.Protocol.Name + "\x00" + dm.Member
	if b.resolving[key] {
		return nil, errors.New(errors.PhaseLookup, errors.KindMalformed).
			Type(conforming).
			Path(dm.Protocol.Name, dm.Member).
			Detail("associated type witness refers back to itself").
			Build()
	}
	if b.resolving == nil {
		b.resolving = make(map[string]bool)
	}
	b.resolving[key] = true
	defer delete(b.resolving, key)

	return b.Subst(witness, typeref.SubstitutionsOf(base))
}
