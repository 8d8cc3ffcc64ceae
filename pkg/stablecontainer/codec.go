package stablecontainer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/eth2030/sszstable/pkg/bitvector"
	"github.com/eth2030/sszstable/pkg/merkletree"
	"github.com/eth2030/sszstable/pkg/sszview"
)

// serializeStableContainer writes active_fields_bitvector ||
// fixed_parts_and_offsets || variable_parts.
func serializeStableContainer(c *StableContainer, w io.Writer) (int, error) {
	active, err := c.activeBitvector()
	if err != nil {
		return 0, err
	}
	written := 0
	n, err := active.Serialize(w)
	if err != nil {
		return written, err
	}
	written += n

	numDataBytes := 0
	for i, f := range c.schema.fields {
		if !active.Get(i) {
			continue
		}
		if f.Type.IsFixedByteLength() {
			numDataBytes += f.Type.TypeByteLength()
		} else {
			numDataBytes += merkletree.OffsetByteLength
		}
	}

	var sideBuf bytes.Buffer
	for i, f := range c.schema.fields {
		if !active.Get(i) {
			continue
		}
		node, err := merkletree.Getter(c.backing, stableFieldGindex(c.schema.Depth(), i))
		if err != nil {
			return written, fmt.Errorf("stablecontainer: serialize %q: %w", f.Name, err)
		}
		v, err := f.Type.ViewFromBacking(node)
		if err != nil {
			return written, fmt.Errorf("stablecontainer: serialize %q: %w", f.Name, err)
		}
		if f.Type.IsFixedByteLength() {
			vn, err := v.Serialize(w)
			if err != nil {
				return written, err
			}
			written += vn
		} else {
			if err := writeOffset(w, numDataBytes); err != nil {
				return written, err
			}
			written += merkletree.OffsetByteLength
			vn, err := v.Serialize(&sideBuf)
			if err != nil {
				return written, err
			}
			numDataBytes += vn
		}
	}
	n2, err := w.Write(sideBuf.Bytes())
	return written + n2, err
}

type dynField struct {
	name   string
	typ    sszview.Deserializer
	offset int
}

// decodeFixedOrOffsetSection reads, in declaration order, every field
// for which present(i) is true: fixed fields are decoded immediately
// into values; dynamic fields have their offset recorded into dyn.
// Returns the accumulated fixed-section size.
func decodeFixedOrOffsetSection(r io.Reader, names []string, types []sszview.Deserializer, present func(int) bool, values map[string]sszview.View) ([]dynField, int, error) {
	fixedSize := 0
	var dyn []dynField
	for i, name := range names {
		if !present(i) {
			continue
		}
		typ := types[i]
		if typ.IsFixedByteLength() {
			fsize := typ.TypeByteLength()
			v, err := typ.Deserialize(r, fsize)
			if err != nil {
				return nil, 0, err
			}
			values[name] = v
			fixedSize += fsize
		} else {
			off, err := readOffset(r)
			if err != nil {
				return nil, 0, err
			}
			dyn = append(dyn, dynField{name: name, typ: typ, offset: off})
			fixedSize += merkletree.OffsetByteLength
		}
	}
	return dyn, fixedSize, nil
}

// decodeDynamicSection validates offsets (strict first-offset
// equality, monotonic, in-bounds implied sizes) and decodes each
// dynamic field from its implied subrange.
func decodeDynamicSection(r io.Reader, dyn []dynField, fixedSize, remaining int, values map[string]sszview.View) error {
	if len(dyn) == 0 {
		if fixedSize != remaining {
			return fmt.Errorf("%w: %d trailing byte(s) after fixed section with no dynamic fields", ErrOffset, remaining-fixedSize)
		}
		return nil
	}
	if dyn[0].offset != fixedSize {
		return fmt.Errorf("%w: first offset %d != fixed section size %d", ErrOffset, dyn[0].offset, fixedSize)
	}
	for i, df := range dyn {
		next := remaining
		if i+1 < len(dyn) {
			next = dyn[i+1].offset
		}
		if df.offset > next {
			return fmt.Errorf("%w: offset %d (%d) exceeds next offset %d", ErrOffset, i, df.offset, next)
		}
		size := next - df.offset
		if size < df.typ.MinByteLength() || size > df.typ.MaxByteLength() {
			return fmt.Errorf("%w: field %q implied size %d outside [%d,%d]",
				ErrOffset, df.name, size, df.typ.MinByteLength(), df.typ.MaxByteLength())
		}
		v, err := df.typ.Deserialize(r, size)
		if err != nil {
			return err
		}
		values[df.name] = v
	}
	return nil
}

// DeserializeStableContainer decodes a StableContainer of schema from
// exactly scope bytes of r.
func DeserializeStableContainer(schema *StableSchema, r io.Reader, scope int) (*StableContainer, error) {
	prefixLen := bitvector.ByteLength(schema.Capacity())
	if scope < prefixLen {
		return nil, fmt.Errorf("%w: scope %d smaller than bitvector prefix %d", ErrValue, scope, prefixLen)
	}
	active, err := bitvector.Deserialize(r, schema.Capacity())
	if err != nil {
		return nil, err
	}
	remaining := scope - prefixLen

	for i := schema.FieldCount(); i < schema.Capacity(); i++ {
		if active.Get(i) {
			return nil, fmt.Errorf("%w: bit %d set beyond declared field count %d", ErrUnknownField, i, schema.FieldCount())
		}
	}

	names := make([]string, schema.FieldCount())
	types := make([]sszview.Deserializer, schema.FieldCount())
	for i, f := range schema.fields {
		names[i] = f.Name
		types[i] = f.Type
	}

	values := make(map[string]sszview.View, schema.FieldCount())
	dyn, fixedSize, err := decodeFixedOrOffsetSection(r, names, types, active.Get, values)
	if err != nil {
		return nil, err
	}
	if err := decodeDynamicSection(r, dyn, fixedSize, remaining, values); err != nil {
		return nil, err
	}
	return NewStableContainer(schema, values)
}

// serializeProfile writes optional_fields_bitvector (when o>0) ||
// fixed_parts_and_offsets || variable_parts, iterating Profile's field
// list and skipping optional-absent fields. It writes
// the complete side buffer, not a truncated prefix of it (open
// question 2, resolved toward a faithful full write).
func serializeProfile(p *Profile, w io.Writer) (int, error) {
	fields := p.schema.Fields()
	presentAt := make([]bool, len(fields))

	var optBits bitvector.Bitvector
	if p.schema.OptionalCount() > 0 {
		var err error
		optBits, err = bitvector.New(p.schema.OptionalCount())
		if err != nil {
			return 0, err
		}
	}
	optPos := 0
	for i, f := range fields {
		_, ok, err := p.Get(f.Name)
		if err != nil {
			return 0, err
		}
		presentAt[i] = ok
		if f.Optional {
			if ok {
				if err := optBits.Set(optPos, true); err != nil {
					return 0, err
				}
			}
			optPos++
		}
	}

	written := 0
	if p.schema.OptionalCount() > 0 {
		n, err := optBits.Serialize(w)
		if err != nil {
			return written, err
		}
		written += n
	}

	numDataBytes := 0
	for i, f := range fields {
		if !presentAt[i] {
			continue
		}
		if f.Type.IsFixedByteLength() {
			numDataBytes += f.Type.TypeByteLength()
		} else {
			numDataBytes += merkletree.OffsetByteLength
		}
	}

	var sideBuf bytes.Buffer
	for i, f := range fields {
		if !presentAt[i] {
			continue
		}
		v, _, err := p.Get(f.Name)
		if err != nil {
			return written, err
		}
		if f.Type.IsFixedByteLength() {
			vn, err := v.Serialize(w)
			if err != nil {
				return written, err
			}
			written += vn
		} else {
			if err := writeOffset(w, numDataBytes); err != nil {
				return written, err
			}
			written += merkletree.OffsetByteLength
			vn, err := v.Serialize(&sideBuf)
			if err != nil {
				return written, err
			}
			numDataBytes += vn
		}
	}
	n2, err := w.Write(sideBuf.Bytes())
	return written + n2, err
}

// DeserializeProfile decodes a Profile of schema from exactly scope
// bytes of r.
func DeserializeProfile(schema *ProfileSchema, r io.Reader, scope int) (*Profile, error) {
	fields := schema.Fields()
	prefixLen := 0
	var optBits bitvector.Bitvector
	if schema.OptionalCount() > 0 {
		prefixLen = bitvector.ByteLength(schema.OptionalCount())
		if scope < prefixLen {
			return nil, fmt.Errorf("%w: scope %d smaller than optional-fields prefix %d", ErrValue, scope, prefixLen)
		}
		var err error
		optBits, err = bitvector.Deserialize(r, schema.OptionalCount())
		if err != nil {
			return nil, err
		}
	}
	remaining := scope - prefixLen

	names := make([]string, len(fields))
	types := make([]sszview.Deserializer, len(fields))
	optPos := make([]int, len(fields))
	pos := 0
	for i, f := range fields {
		names[i] = f.Name
		types[i] = f.Type
		if f.Optional {
			optPos[i] = pos
			pos++
		} else {
			optPos[i] = -1
		}
	}
	present := func(i int) bool {
		if !fields[i].Optional {
			return true
		}
		return optBits.Get(optPos[i])
	}

	values := make(map[string]sszview.View, len(fields))
	dyn, fixedSize, err := decodeFixedOrOffsetSection(r, names, types, present, values)
	if err != nil {
		return nil, err
	}
	if err := decodeDynamicSection(r, dyn, fixedSize, remaining, values); err != nil {
		return nil, err
	}
	return NewProfile(schema, values)
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
		return 0, fmt.Errorf("%w: read offset: %v", ErrOffset, err)
	}
	return int(buf[0]) | int(buf[1])<<8 | int(buf[2])<<16 | int(buf[3])<<24, nil
}

