package stablecontainer

import (
	"fmt"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

// ActiveFieldsKey is the special field key exposing a StableContainer's
// active-fields bitvector: gindex RightGindex, type Bitvector[N].
const ActiveFieldsKey = "__active_fields__"

// stableFieldGindex returns the fixed gindex of field i in a
// StableContainer with data-subtree depth D: 2^(D+1) + i. This is
// independent of how many fields are actually declared, so it stays
// stable as a schema gains fields over time.
func stableFieldGindex(depth, i int) merkletree.Gindex {
	return merkletree.Gindex(1<<uint(depth+1)) + merkletree.Gindex(i)
}

// KeyToStaticGindex resolves a field name (or ActiveFieldsKey) to its
// fixed gindex under schema. A Profile over a StableContainer base
// delegates to the base schema's gindices; a Profile
// over a plain Container base has no active-fields bitvector, so
// ActiveFieldsKey is rejected there (open question 3, resolved by
// restricting the key to StableContainer-backed values).
func KeyToStaticGindex(schema BaseSchema, key string) (merkletree.Gindex, error) {
	switch s := schema.(type) {
	case *StableSchema:
		if key == ActiveFieldsKey {
			return merkletree.RightGindex, nil
		}
		i, ok := s.FieldIndex(key)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrField, key)
		}
		return stableFieldGindex(s.Depth(), i), nil
	case PlainBase:
		if key == ActiveFieldsKey {
			return 0, fmt.Errorf("%w: %s is only defined for a StableContainer-backed value", ErrField, ActiveFieldsKey)
		}
		i, ok := s.FieldIndex(key)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrField, key)
		}
		return merkletree.FieldGindex(s.Depth(), i), nil
	default:
		return 0, fmt.Errorf("%w: unrecognized base schema type %T", ErrSchema, schema)
	}
}

// NavigateType resolves key (or ActiveFieldsKey) to a ProfileSchema's
// static gindex, delegating to the base schema.
func NavigateType(schema *ProfileSchema, key string) (merkletree.Gindex, error) {
	return KeyToStaticGindex(schema.Base, key)
}
