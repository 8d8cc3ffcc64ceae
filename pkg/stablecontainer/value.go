package stablecontainer

import (
	"fmt"
	"io"

	"github.com/eth2030/sszstable/pkg/bitvector"
	"github.com/eth2030/sszstable/pkg/merkletree"
	"github.com/eth2030/sszstable/pkg/sszview"
)

// StableContainer is a value conforming to a StableSchema: a PairNode
// of a data subtree and an active-fields Bitvector[N].
type StableContainer struct {
	schema  *StableSchema
	backing merkletree.Node
}

// NewStableContainer builds a value from a name->value map. A name
// absent from values, or mapped to a nil View, leaves that field
// inactive.
func NewStableContainer(schema *StableSchema, values map[string]sszview.View) (*StableContainer, error) {
	depth := schema.Depth()
	slots := 1 << uint(depth)
	leaves := make([]merkletree.Node, slots)
	for i := range leaves {
		leaves[i] = merkletree.ZeroNode(0)
	}
	active, err := bitvector.New(schema.Capacity())
	if err != nil {
		return nil, err
	}
	for name, v := range values {
		if v == nil {
			continue
		}
		i, ok := schema.FieldIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrField, name)
		}
		leaves[i] = v.GetBacking()
		if err := active.Set(i, true); err != nil {
			return nil, err
		}
	}
	dataRoot := merkletree.SubtreeFillToContents(leaves, depth)
	backing := merkletree.PairNode(dataRoot, active.GetBacking())
	return &StableContainer{schema: schema, backing: backing}, nil
}

// StableContainerFromBacking wraps an existing backing with no
// validation beyond what structural navigation requires.
func StableContainerFromBacking(schema *StableSchema, backing merkletree.Node) *StableContainer {
	return &StableContainer{schema: schema, backing: backing}
}

// Schema returns the value's schema.
func (c *StableContainer) Schema() *StableSchema { return c.schema }

// GetBacking returns the value's Merkle backing.
func (c *StableContainer) GetBacking() merkletree.Node { return c.backing }

func (c *StableContainer) TypeByteLength() int {
	panic("stablecontainer: StableContainer has no fixed byte length")
}
func (c *StableContainer) MinByteLength() int      { return StableContainerMinByteLength(c.schema) }
func (c *StableContainer) MaxByteLength() int      { return StableContainerMaxByteLength(c.schema) }
func (c *StableContainer) IsFixedByteLength() bool { return false }

func (c *StableContainer) Serialize(w io.Writer) (int, error) {
	return serializeStableContainer(c, w)
}

func (c *StableContainer) activeBitvector() (bitvector.Bitvector, error) {
	return bitvector.ViewFromBacking(c.backing.Right(), c.schema.Capacity())
}

// Get consults the active-fields bitvector for name; if the bit is
// unset it returns (nil, false, nil). Otherwise it materializes the
// field's view from the data subtree.
func (c *StableContainer) Get(name string) (sszview.View, bool, error) {
	i, ok := c.schema.FieldIndex(name)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrField, name)
	}
	active, err := c.activeBitvector()
	if err != nil {
		return nil, false, err
	}
	if !active.Get(i) {
		return nil, false, nil
	}
	node, err := merkletree.Getter(c.backing, stableFieldGindex(c.schema.Depth(), i))
	if err != nil {
		return nil, false, fmt.Errorf("stablecontainer: get %q: %w", name, err)
	}
	v, err := c.schema.fields[i].Type.ViewFromBacking(node)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set returns a new StableContainer with field name set to v (present)
// or cleared (v == nil). The receiver is unchanged; mutation replaces
// the backing wholesale.
func (c *StableContainer) Set(name string, v sszview.View) (*StableContainer, error) {
	i, ok := c.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrField, name)
	}
	active, err := c.activeBitvector()
	if err != nil {
		return nil, err
	}

	var leaf merkletree.Node
	if v != nil {
		leaf = v.GetBacking()
	} else {
		leaf = merkletree.ZeroNode(0)
	}
	if err := active.Set(i, v != nil); err != nil {
		return nil, err
	}

	newData, err := merkletree.Setter(c.backing, stableFieldGindex(c.schema.Depth(), i), leaf)
	if err != nil {
		return nil, fmt.Errorf("stablecontainer: set %q: %w", name, err)
	}
	final, err := merkletree.Setter(newData, merkletree.RightGindex, active.GetBacking())
	if err != nil {
		return nil, fmt.Errorf("stablecontainer: set %q: %w", name, err)
	}
	return &StableContainer{schema: c.schema, backing: final}, nil
}

// StableContainerType is the Deserializer (type descriptor) for a
// StableSchema, used both at the package API boundary and to let one
// StableContainer/Profile nest another as a field type.
type StableContainerType struct {
	Schema *StableSchema
}

func (t StableContainerType) TypeByteLength() int {
	panic("stablecontainer: StableContainer has no fixed byte length")
}
func (t StableContainerType) MinByteLength() int      { return StableContainerMinByteLength(t.Schema) }
func (t StableContainerType) MaxByteLength() int      { return StableContainerMaxByteLength(t.Schema) }
func (t StableContainerType) IsFixedByteLength() bool { return false }

func (t StableContainerType) Deserialize(r io.Reader, scope int) (sszview.View, error) {
	return DeserializeStableContainer(t.Schema, r, scope)
}

func (t StableContainerType) ViewFromBacking(root merkletree.Node) (sszview.View, error) {
	return StableContainerFromBacking(t.Schema, root), nil
}

// --- Profile ---

// Profile is a value conforming to a ProfileSchema: a StableContainer-
// shaped backing when the base is a StableContainer, or a bare data
// subtree when the base is a plain Container.
type Profile struct {
	schema  *ProfileSchema
	backing merkletree.Node
}

// NewProfile builds a value from a name->value map keyed by Profile
// field names. Required fields must be present (non-nil); a nil value
// for a required field fails with ErrValue.
func NewProfile(schema *ProfileSchema, values map[string]sszview.View) (*Profile, error) {
	for _, f := range schema.Fields() {
		if !f.Optional {
			if v, ok := values[f.Name]; !ok || v == nil {
				return nil, fmt.Errorf("%w: required field %q is absent", ErrValue, f.Name)
			}
		}
	}

	depth := schema.Base.Depth()
	slots := 1 << uint(depth)
	leaves := make([]merkletree.Node, slots)
	for i := range leaves {
		leaves[i] = merkletree.ZeroNode(0)
	}

	if stableBase, ok := schema.Base.(*StableSchema); ok {
		active, err := bitvector.New(stableBase.Capacity())
		if err != nil {
			return nil, err
		}
		for pos, f := range schema.Fields() {
			v, ok := values[f.Name]
			if !ok || v == nil {
				continue
			}
			bi := schema.BaseIndex(pos)
			leaves[bi] = v.GetBacking()
			if err := active.Set(bi, true); err != nil {
				return nil, err
			}
		}
		dataRoot := merkletree.SubtreeFillToContents(leaves, depth)
		backing := merkletree.PairNode(dataRoot, active.GetBacking())
		return &Profile{schema: schema, backing: backing}, nil
	}

	for pos, f := range schema.Fields() {
		v := values[f.Name]
		if v == nil {
			return nil, fmt.Errorf("%w: field %q is required over a plain-Container base", ErrValue, f.Name)
		}
		bi := schema.BaseIndex(pos)
		leaves[bi] = v.GetBacking()
	}
	backing := merkletree.SubtreeFillToContents(leaves, depth)
	return &Profile{schema: schema, backing: backing}, nil
}

// ProfileFromBacking wraps an existing backing with no value-level
// validation.
func ProfileFromBacking(schema *ProfileSchema, backing merkletree.Node) *Profile {
	return &Profile{schema: schema, backing: backing}
}

// Schema returns the value's schema.
func (p *Profile) Schema() *ProfileSchema { return p.schema }

// GetBacking returns the value's Merkle backing.
func (p *Profile) GetBacking() merkletree.Node { return p.backing }

func (p *Profile) TypeByteLength() int {
	if !p.schema.IsFixedByteLength() {
		panic("stablecontainer: Profile has no fixed byte length")
	}
	return ProfileFixedByteLength(p.schema)
}
func (p *Profile) MinByteLength() int      { return ProfileMinByteLength(p.schema) }
func (p *Profile) MaxByteLength() int      { return ProfileMaxByteLength(p.schema) }
func (p *Profile) IsFixedByteLength() bool { return p.schema.IsFixedByteLength() }

func (p *Profile) Serialize(w io.Writer) (int, error) {
	return serializeProfile(p, w)
}

// Get resolves name to its value. Over a StableContainer base, an
// absent required field is a NavigationError (precondition violation);
// an absent optional field returns (nil, false, nil). Over a plain
// Container base, every declared field is always present.
func (p *Profile) Get(name string) (sszview.View, bool, error) {
	pos, ok := p.schema.FieldIndex(name)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrField, name)
	}
	f := p.schema.Fields()[pos]
	bi := p.schema.BaseIndex(pos)

	if stableBase, ok := p.schema.Base.(*StableSchema); ok {
		active, err := bitvector.ViewFromBacking(p.backing.Right(), stableBase.Capacity())
		if err != nil {
			return nil, false, err
		}
		if !active.Get(bi) {
			if !f.Optional {
				return nil, false, fmt.Errorf("%w: required field %q", ErrNavigation, name)
			}
			return nil, false, nil
		}
		node, err := merkletree.Getter(p.backing, stableFieldGindex(stableBase.Depth(), bi))
		if err != nil {
			return nil, false, fmt.Errorf("stablecontainer: profile get %q: %w", name, err)
		}
		v, err := f.Type.ViewFromBacking(node)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}

	plainBase := p.schema.Base.(PlainBase)
	node, err := merkletree.Getter(p.backing, merkletree.FieldGindex(plainBase.Depth(), bi))
	if err != nil {
		return nil, false, fmt.Errorf("stablecontainer: profile get %q: %w", name, err)
	}
	v, err := f.Type.ViewFromBacking(node)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set returns a new Profile with field name set to v. v == nil clears
// an optional field; it is an error for a required field.
func (p *Profile) Set(name string, v sszview.View) (*Profile, error) {
	pos, ok := p.schema.FieldIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrField, name)
	}
	f := p.schema.Fields()[pos]
	if !f.Optional && v == nil {
		return nil, fmt.Errorf("%w: field %q is required", ErrValue, name)
	}
	bi := p.schema.BaseIndex(pos)

	if stableBase, ok := p.schema.Base.(*StableSchema); ok {
		active, err := bitvector.ViewFromBacking(p.backing.Right(), stableBase.Capacity())
		if err != nil {
			return nil, err
		}
		var leaf merkletree.Node
		if v != nil {
			leaf = v.GetBacking()
		} else {
			leaf = merkletree.ZeroNode(0)
		}
		if err := active.Set(bi, v != nil); err != nil {
			return nil, err
		}
		newData, err := merkletree.Setter(p.backing, stableFieldGindex(stableBase.Depth(), bi), leaf)
		if err != nil {
			return nil, fmt.Errorf("stablecontainer: profile set %q: %w", name, err)
		}
		final, err := merkletree.Setter(newData, merkletree.RightGindex, active.GetBacking())
		if err != nil {
			return nil, fmt.Errorf("stablecontainer: profile set %q: %w", name, err)
		}
		return &Profile{schema: p.schema, backing: final}, nil
	}

	plainBase := p.schema.Base.(PlainBase)
	final, err := merkletree.Setter(p.backing, merkletree.FieldGindex(plainBase.Depth(), bi), v.GetBacking())
	if err != nil {
		return nil, fmt.Errorf("stablecontainer: profile set %q: %w", name, err)
	}
	return &Profile{schema: p.schema, backing: final}, nil
}

// ProfileType is the Deserializer (type descriptor) for a
// ProfileSchema.
type ProfileType struct {
	Schema *ProfileSchema
}

func (t ProfileType) TypeByteLength() int {
	if !t.Schema.IsFixedByteLength() {
		panic("stablecontainer: Profile has no fixed byte length")
	}
	return ProfileFixedByteLength(t.Schema)
}
func (t ProfileType) MinByteLength() int      { return ProfileMinByteLength(t.Schema) }
func (t ProfileType) MaxByteLength() int      { return ProfileMaxByteLength(t.Schema) }
func (t ProfileType) IsFixedByteLength() bool { return t.Schema.IsFixedByteLength() }

func (t ProfileType) Deserialize(r io.Reader, scope int) (sszview.View, error) {
	return DeserializeProfile(t.Schema, r, scope)
}

func (t ProfileType) ViewFromBacking(root merkletree.Node) (sszview.View, error) {
	return ProfileFromBacking(t.Schema, root), nil
}
