package stablecontainer

import (
	"github.com/eth2030/sszstable/pkg/bitvector"
	"github.com/eth2030/sszstable/pkg/merkletree"
)

// StableContainerMinByteLength is ceil(N/8): every field may be
// simultaneously absent.
func StableContainerMinByteLength(schema *StableSchema) int {
	return bitvector.ByteLength(schema.Capacity())
}

// StableContainerMaxByteLength sums the active-fields prefix plus the
// maximum contribution of every declared field, as if all were present.
func StableContainerMaxByteLength(schema *StableSchema) int {
	total := bitvector.ByteLength(schema.Capacity())
	for _, f := range schema.fields {
		if f.Type.IsFixedByteLength() {
			total += f.Type.TypeByteLength()
		} else {
			total += merkletree.OffsetByteLength + f.Type.MaxByteLength()
		}
	}
	return total
}

// ProfileMinByteLength sums the optional-fields prefix (when o > 0)
// plus the minimum contribution of every required field; optional
// fields contribute nothing to the minimum.
func ProfileMinByteLength(schema *ProfileSchema) int {
	total := 0
	if schema.OptionalCount() > 0 {
		total += bitvector.ByteLength(schema.OptionalCount())
	}
	for _, f := range schema.fields {
		if f.Optional {
			continue
		}
		if f.Type.IsFixedByteLength() {
			total += f.Type.TypeByteLength()
		} else {
			total += merkletree.OffsetByteLength + f.Type.MinByteLength()
		}
	}
	return total
}

// ProfileMaxByteLength sums the optional-fields prefix plus the
// maximum contribution of every declared field, required or optional.
func ProfileMaxByteLength(schema *ProfileSchema) int {
	total := 0
	if schema.OptionalCount() > 0 {
		total += bitvector.ByteLength(schema.OptionalCount())
	}
	for _, f := range schema.fields {
		if f.Type.IsFixedByteLength() {
			total += f.Type.TypeByteLength()
		} else {
			total += merkletree.OffsetByteLength + f.Type.MaxByteLength()
		}
	}
	return total
}

// ProfileFixedByteLength is the constant serialized size of a
// fully-required, all-fixed Profile: the sum of each field's fixed
// size, with no prefix. Callers must first check
// schema.IsFixedByteLength().
func ProfileFixedByteLength(schema *ProfileSchema) int {
	total := 0
	for _, f := range schema.fields {
		total += f.Type.TypeByteLength()
	}
	return total
}
