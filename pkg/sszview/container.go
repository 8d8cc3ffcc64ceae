package sszview

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

// ErrUnknownField is returned by Container.Get/Set for a name not in
// the schema.
var ErrUnknownField = errors.New("sszview: unknown field")

// ContainerField describes one field of a classic (non-stable) SSZ
// Container: a fixed declaration position and a type descriptor.
type ContainerField struct {
	Name string
	Type Deserializer
}

// ContainerSchema is the field table of a classic SSZ Container — the
// plain-Container base a Profile can specialize.
type ContainerSchema struct {
	Fields []ContainerField
	index  map[string]int
}

// NewContainerSchema builds a schema from an ordered field list. Field
// names must be unique.
func NewContainerSchema(fields []ContainerField) (*ContainerSchema, error) {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := idx[f.Name]; dup {
			return nil, fmt.Errorf("sszview: duplicate container field %q", f.Name)
		}
		idx[f.Name] = i
	}
	return &ContainerSchema{Fields: fields, index: idx}, nil
}

// Depth is the Merkle tree depth of the container's data subtree.
func (s *ContainerSchema) Depth() int { return merkletree.GetDepth(len(s.Fields)) }

// FieldIndex returns the declaration position of name.
func (s *ContainerSchema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// IsFixedByteLength reports whether every field (and so the whole
// container) has a fixed byte length.
func (s *ContainerSchema) IsFixedByteLength() bool {
	for _, f := range s.Fields {
		if !f.Type.IsFixedByteLength() {
			return false
		}
	}
	return true
}

// MinByteLength sums each field's minimum contribution (offsets count
// as OFFSET_BYTE_LENGTH for variable fields).
func (s *ContainerSchema) MinByteLength() int {
	total := 0
	for _, f := range s.Fields {
		if f.Type.IsFixedByteLength() {
			total += f.Type.TypeByteLength()
		} else {
			total += merkletree.OffsetByteLength + f.Type.MinByteLength()
		}
	}
	return total
}

// MaxByteLength sums each field's maximum contribution.
func (s *ContainerSchema) MaxByteLength() int {
	total := 0
	for _, f := range s.Fields {
		if f.Type.IsFixedByteLength() {
			total += f.Type.TypeByteLength()
		} else {
			total += merkletree.OffsetByteLength + f.Type.MaxByteLength()
		}
	}
	return total
}

// Container is a classic fixed-shape SSZ container value: every
// declared field is always present, at a fixed tree position.
type Container struct {
	schema  *ContainerSchema
	backing merkletree.Node
}

// NewContainer builds a Container from a complete name->value map; every
// schema field must be present.
func NewContainer(schema *ContainerSchema, values map[string]View) (*Container, error) {
	leaves := make([]merkletree.Node, len(schema.Fields))
	for i, f := range schema.Fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("sszview: missing required field %q", f.Name)
		}
		leaves[i] = v.GetBacking()
	}
	backing := merkletree.SubtreeFillToContents(leaves, schema.Depth())
	return &Container{schema: schema, backing: backing}, nil
}

// ContainerFromBacking wraps an existing backing as a Container of the
// given schema, with no value-level validation.
func ContainerFromBacking(schema *ContainerSchema, backing merkletree.Node) *Container {
	return &Container{schema: schema, backing: backing}
}

// Schema returns the container's field schema.
func (c *Container) Schema() *ContainerSchema { return c.schema }

// GetBacking returns the container's Merkle backing.
func (c *Container) GetBacking() merkletree.Node { return c.backing }

// Get returns the value of field name.
func (c *Container) Get(name string) (View, error) {
	i, ok := c.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	node, err := merkletree.Getter(c.backing, merkletree.FieldGindex(c.schema.Depth(), i))
	if err != nil {
		return nil, fmt.Errorf("sszview: container get %q: %w", name, err)
	}
	return c.schema.Fields[i].Type.ViewFromBacking(node)
}

// Set returns a new Container with field name replaced by value; the
// receiver is unchanged (functional update).
func (c *Container) Set(name string, value View) (*Container, error) {
	i, ok := c.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	next, err := merkletree.Setter(c.backing, merkletree.FieldGindex(c.schema.Depth(), i), value.GetBacking())
	if err != nil {
		return nil, fmt.Errorf("sszview: container set %q: %w", name, err)
	}
	return &Container{schema: c.schema, backing: next}, nil
}

// Serialize writes the container's SSZ encoding (fixed parts and
// offsets, followed by variable parts), mirroring
// wyf-ACCEPT-eth2030/pkg/ssz/encode.go's MarshalVariableContainer.
func (c *Container) Serialize(w io.Writer) (int, error) {
	var sideBuf bytes.Buffer
	numDataBytes := 0
	for _, f := range c.schema.Fields {
		if f.Type.IsFixedByteLength() {
			numDataBytes += f.Type.TypeByteLength()
		} else {
			numDataBytes += merkletree.OffsetByteLength
		}
	}

	written := 0
	for i, f := range c.schema.Fields {
		node, err := merkletree.Getter(c.backing, merkletree.FieldGindex(c.schema.Depth(), i))
		if err != nil {
			return written, fmt.Errorf("sszview: container serialize %q: %w", f.Name, err)
		}
		v, err := f.Type.ViewFromBacking(node)
		if err != nil {
			return written, fmt.Errorf("sszview: container serialize %q: %w", f.Name, err)
		}
		if f.Type.IsFixedByteLength() {
			n, err := v.Serialize(w)
			if err != nil {
				return written, err
			}
			written += n
		} else {
			if err := writeOffset(w, numDataBytes); err != nil {
				return written, err
			}
			written += merkletree.OffsetByteLength
			n, err := v.Serialize(&sideBuf)
			if err != nil {
				return written, err
			}
			numDataBytes += n
		}
	}
	n, err := w.Write(sideBuf.Bytes())
	return written + n, err
}

// DeserializeContainer decodes a Container of schema from exactly scope
// bytes of r, validating offsets strictly.
func DeserializeContainer(schema *ContainerSchema, r io.Reader, scope int) (*Container, error) {
	type dynField struct {
		index  int
		typ    Deserializer
		offset int
	}
	values := make(map[string]View, len(schema.Fields))
	var dyn []dynField
	fixedSize := 0
	for i, f := range schema.Fields {
		if f.Type.IsFixedByteLength() {
			fsize := f.Type.TypeByteLength()
			v, err := f.Type.Deserialize(r, fsize)
			if err != nil {
				return nil, err
			}
			values[f.Name] = v
			fixedSize += fsize
		} else {
			off, err := readOffset(r)
			if err != nil {
				return nil, err
			}
			dyn = append(dyn, dynField{index: i, typ: f.Type, offset: off})
			fixedSize += merkletree.OffsetByteLength
		}
	}
	if len(dyn) > 0 {
		if dyn[0].offset != fixedSize {
			return nil, fmt.Errorf("sszview: first offset %d != fixed size %d", dyn[0].offset, fixedSize)
		}
		for i, df := range dyn {
			next := scope
			if i+1 < len(dyn) {
				next = dyn[i+1].offset
			}
			if df.offset > next {
				return nil, fmt.Errorf("sszview: offset %d (%d) exceeds next offset %d", i, df.offset, next)
			}
			size := next - df.offset
			if size < df.typ.MinByteLength() || size > df.typ.MaxByteLength() {
				return nil, fmt.Errorf("sszview: field %q implied size %d out of bounds [%d,%d]",
					schema.Fields[df.index].Name, size, df.typ.MinByteLength(), df.typ.MaxByteLength())
			}
			v, err := df.typ.Deserialize(r, size)
			if err != nil {
				return nil, err
			}
			values[schema.Fields[df.index].Name] = v
		}
	}
	return NewContainer(schema, values)
}

func writeOffset(w io.Writer, offset int) error {
	var buf [4]byte
	buf[0] = byte(offset)
	buf[1] = byte(offset >> 8)
	buf[2] = byte(offset >> 16)
	buf[3] = byte(offset >> 24)
	_, err := w.Write(buf[:])
	return err
}

func readOffset(r io.Reader) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("sszview: read offset: %w", err)
	}
	return int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24, nil
}
