package stablecontainer

import (
	"fmt"

	"github.com/eth2030/sszstable/pkg/merkletree"
	"github.com/eth2030/sszstable/pkg/sszview"
)

// BaseSchema is the shape a Profile can specialize: either a
// StableSchema (the usual case) or a classic sszview.ContainerSchema
// wrapped by PlainBase.
type BaseSchema interface {
	FieldCount() int
	FieldNameAt(i int) (string, bool)
	FieldIndex(name string) (int, bool)
	FieldType(name string) (sszview.Deserializer, bool)
	IsStableContainer() bool
	Depth() int
}

// FieldSpec declares one field of a StableContainer: its declaration
// position is implicit in its place in the schema's field list.
type FieldSpec struct {
	Name string
	Type sszview.Deserializer
}

// StableSchema is the schema of a StableContainer[N]: a fixed capacity
// and an ordered, non-overlapping field list.
type StableSchema struct {
	capacity int
	fields   []FieldSpec
	index    map[string]int
	depth    int
}

// NewStableSchema validates and builds a StableSchema. Fails with
// ErrSchema if capacity <= 0 or the field count exceeds capacity, or a
// field name repeats.
func NewStableSchema(capacity int, fields []FieldSpec) (*StableSchema, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d must be positive", ErrSchema, capacity)
	}
	if len(fields) > capacity {
		return nil, fmt.Errorf("%w: %d fields exceeds capacity %d", ErrSchema, len(fields), capacity)
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrSchema, f.Name)
		}
		index[f.Name] = i
	}
	return &StableSchema{
		capacity: capacity,
		fields:   fields,
		index:    index,
		depth:    merkletree.GetDepth(capacity),
	}, nil
}

// Capacity returns N.
func (s *StableSchema) Capacity() int { return s.capacity }

// FieldCount returns the number of declared fields (<= Capacity).
func (s *StableSchema) FieldCount() int { return len(s.fields) }

// Depth returns ceil(log2(N)), the data subtree's depth.
func (s *StableSchema) Depth() int { return s.depth }

// Fields returns the declared field list in declaration order.
func (s *StableSchema) Fields() []FieldSpec { return s.fields }

func (s *StableSchema) FieldNameAt(i int) (string, bool) {
	if i < 0 || i >= len(s.fields) {
		return "", false
	}
	return s.fields[i].Name, true
}

func (s *StableSchema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *StableSchema) FieldType(name string) (sszview.Deserializer, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i].Type, true
}

func (s *StableSchema) IsStableContainer() bool { return true }

// PlainBase adapts a classic sszview.ContainerSchema (every field
// always present, no active-fields bitvector) to BaseSchema, for a
// Profile whose base is a plain Container.
type PlainBase struct {
	Schema *sszview.ContainerSchema
}

func (p PlainBase) FieldCount() int { return len(p.Schema.Fields) }

func (p PlainBase) FieldNameAt(i int) (string, bool) {
	if i < 0 || i >= len(p.Schema.Fields) {
		return "", false
	}
	return p.Schema.Fields[i].Name, true
}

func (p PlainBase) FieldIndex(name string) (int, bool) { return p.Schema.FieldIndex(name) }

func (p PlainBase) FieldType(name string) (sszview.Deserializer, bool) {
	i, ok := p.Schema.FieldIndex(name)
	if !ok {
		return nil, false
	}
	return p.Schema.Fields[i].Type, true
}

func (p PlainBase) IsStableContainer() bool { return false }

func (p PlainBase) Depth() int { return p.Schema.Depth() }

// ProfileFieldSpec declares one field of a Profile: its name and type
// must resolve against the base schema.
type ProfileFieldSpec struct {
	Name     string
	Type     sszview.Deserializer
	Optional bool
}

// ProfileSchema is the schema of a Profile[B]: a base schema plus an
// ordered, validated field list.
type ProfileSchema struct {
	Base          BaseSchema
	fields        []ProfileFieldSpec
	baseIndex     []int // per profile-field-position, the base field index
	byName        map[string]int
	optionalCount int
}

// NewProfileSchema validates fields against base and builds a
// ProfileSchema. Validation rules:
//  1. every declared name exists in base;
//  2. each declared type equals the base field type exactly, or is a
//     Profile whose own base equals the base field type;
//  3. Optional may be true only if base is a StableContainer;
//  4. if base is a plain Container, every base field must be declared,
//     in the same order.
func NewProfileSchema(base BaseSchema, fields []ProfileFieldSpec) (*ProfileSchema, error) {
	byName := make(map[string]int, len(fields))
	baseIndex := make([]int, len(fields))
	optionalCount := 0

	for pos, f := range fields {
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate profile field %q", ErrSchema, f.Name)
		}
		bi, ok := base.FieldIndex(f.Name)
		if !ok {
			return nil, fmt.Errorf("%w: field %q not declared in base schema", ErrSchema, f.Name)
		}
		baseType, _ := base.FieldType(f.Name)
		if !compatibleFieldType(f.Type, baseType) {
			return nil, fmt.Errorf("%w: field %q type does not match (or narrow) base type", ErrSchema, f.Name)
		}
		if f.Optional && !base.IsStableContainer() {
			return nil, fmt.Errorf("%w: field %q may not be optional over a plain Container base", ErrSchema, f.Name)
		}
		byName[f.Name] = pos
		baseIndex[pos] = bi
		if f.Optional {
			optionalCount++
		}
	}

	if !base.IsStableContainer() {
		if len(fields) != base.FieldCount() {
			return nil, fmt.Errorf("%w: plain-Container Profile must declare every base field, got %d of %d",
				ErrSchema, len(fields), base.FieldCount())
		}
		for pos, f := range fields {
			name, _ := base.FieldNameAt(pos)
			if f.Name != name {
				return nil, fmt.Errorf("%w: plain-Container Profile must declare base fields in order, position %d is %q, want %q",
					ErrSchema, pos, f.Name, name)
			}
		}
	}

	return &ProfileSchema{
		Base:          base,
		fields:        fields,
		baseIndex:     baseIndex,
		byName:        byName,
		optionalCount: optionalCount,
	}, nil
}

// Fields returns the declared field list in Profile declaration order.
func (s *ProfileSchema) Fields() []ProfileFieldSpec { return s.fields }

// OptionalCount returns o, the number of optional fields.
func (s *ProfileSchema) OptionalCount() int { return s.optionalCount }

// FieldIndex returns the Profile-declaration position of name.
func (s *ProfileSchema) FieldIndex(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// BaseIndex returns the base schema's field index for the field at
// Profile-declaration position pos.
func (s *ProfileSchema) BaseIndex(pos int) int { return s.baseIndex[pos] }

// IsFixedByteLength is true only when every field is required and
// fixed-size.
func (s *ProfileSchema) IsFixedByteLength() bool {
	if s.optionalCount > 0 {
		return false
	}
	for _, f := range s.fields {
		if !f.Type.IsFixedByteLength() {
			return false
		}
	}
	return true
}

// compatibleFieldType implements rule 2 of Profile field validation: a
// declared type narrows the base field type either by being identical,
// or by being a Profile whose own base is the base field's
// StableContainer type.
func compatibleFieldType(declared, base sszview.Deserializer) bool {
	if sameDeserializer(declared, base) {
		return true
	}
	if pt, ok := declared.(ProfileType); ok {
		if sc, ok2 := base.(StableContainerType); ok2 {
			if baseOfProfile, ok3 := pt.Schema.Base.(*StableSchema); ok3 {
				return baseOfProfile == sc.Schema
			}
		}
	}
	return false
}

// sameDeserializer compares two type descriptors for identity. All
// Deserializer implementations in this module are comparable (no
// slices or maps), so == is well-defined; a panic here would indicate
// a non-comparable type descriptor was introduced.
func sameDeserializer(a, b sszview.Deserializer) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
