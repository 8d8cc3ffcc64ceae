// Package sszview defines the View contract consumed by
// pkg/stablecontainer and a handful of concrete leaf and
// composite views to exercise StableContainer/Profile fields with:
// booleans, fixed-width unsigned integers, a 256-bit integer backed by
// github.com/holiman/uint256, fixed 32-byte roots, a variable-length
// byte list, and a classic fixed Container (for Profile over a
// non-StableContainer base).
package sszview

import (
	"errors"
	"io"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

// ErrSize is returned when serialized data doesn't match a fixed-size
// type's expected length, or a coercion target can't hold the value.
var ErrSize = errors.New("sszview: invalid size")

// View is the contract StableContainer/Profile fields are built from.
// Concrete leaf/composite types in this package implement it; so does
// anything else with a stable binary encoding and a Merkle backing.
type View interface {
	// TypeByteLength returns the fixed serialized size, and panics (via
	// IsFixedByteLength guarding callers) if the type isn't fixed-size.
	TypeByteLength() int
	// MinByteLength and MaxByteLength bound the serialized size of any
	// value of this type; they're equal for fixed-size types.
	MinByteLength() int
	MaxByteLength() int
	// IsFixedByteLength reports whether every value of this type
	// serializes to the same number of bytes.
	IsFixedByteLength() bool
	// Serialize writes the SSZ encoding to w, returning the byte count.
	Serialize(w io.Writer) (int, error)
	// GetBacking returns the value's Merkle tree backing.
	GetBacking() merkletree.Node
}

// Deserializer is implemented by a type descriptor capable of reading
// scope bytes from r into a View. It's kept separate from View because
// deserialization is a function of the *type*, not an existing value
// (there is nothing to deserialize "into").
type Deserializer interface {
	// Deserialize reads exactly scope bytes from r and returns the
	// decoded View.
	Deserialize(r io.Reader, scope int) (View, error)
	// ViewFromBacking reconstructs a View of this type from a Merkle
	// backing without touching a byte stream.
	ViewFromBacking(root merkletree.Node) (View, error)
	// TypeByteLength, MinByteLength, MaxByteLength, IsFixedByteLength
	// mirror the View methods but as properties of the type itself,
	// needed before any value exists (e.g. during schema validation).
	TypeByteLength() int
	MinByteLength() int
	MaxByteLength() int
	IsFixedByteLength() bool
}
