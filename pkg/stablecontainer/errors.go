// Package stablecontainer implements EIP-7495 StableContainer[N] and
// Profile[B]: forward/backward-compatible fixed-capacity records with
// per-field optionality, and their specializations pinning some fields
// as required. It consumes pkg/merkletree for the persistent tree
// substrate, pkg/bitvector for the active-/optional-fields prefix, and
// pkg/sszview for the field value contract.
package stablecontainer

import "errors"

// ErrSchema is returned for schema construction failures: a
// malformed capacity, an over-full field list, disallowed optionality,
// an unknown base field, incompatible field-type narrowing, or a
// plain-Container base missing a required field declaration.
var ErrSchema = errors.New("stablecontainer: schema error")

// ErrValue is returned when a value fails a precondition: an absent
// value assigned to a required field, or a scope smaller than the
// mandatory prefix.
var ErrValue = errors.New("stablecontainer: value error")

// ErrUnknownField is returned when deserialization observes an active
// bit beyond the declared field count.
var ErrUnknownField = errors.New("stablecontainer: unknown field bit set")

// ErrOffset is returned for a malformed offset table: a first offset
// that doesn't land immediately after the fixed section, non-monotonic
// offsets, an offset past scope, or an implied size outside a field's
// [min, max] byte bounds.
var ErrOffset = errors.New("stablecontainer: offset error")

// ErrField is returned by Get/Set for a field name absent from the
// schema.
var ErrField = errors.New("stablecontainer: unknown field name")

// ErrNavigation is returned when a field access resolves to an absent
// value where presence was required (e.g. a required Profile field
// whose base bit is unset).
var ErrNavigation = errors.New("stablecontainer: field is absent")
