package stablecontainer

import (
	"bytes"
	"testing"

	"github.com/eth2030/sszstable/pkg/sszview"
)

// P4: min_byte_length <= len(encode(v)) <= max_byte_length, for a
// StableContainer with both of its fields set.
func TestSizeBoundsHoldForEncodedValues(t *testing.T) {
	schema, err := NewStableSchema(4, []FieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.ByteListType{MaxLen: 8}},
	})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}
	bl, _ := sszview.NewByteList([]byte{1, 2}, 8)
	c, err := NewStableContainer(schema, map[string]sszview.View{"a": sszview.Uint16(1), "b": bl})
	if err != nil {
		t.Fatalf("NewStableContainer: %v", err)
	}
	var buf bytes.Buffer
	n, err := c.Serialize(&buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	min := StableContainerMinByteLength(schema)
	max := StableContainerMaxByteLength(schema)
	if n < min || n > max {
		t.Fatalf("encoded length %d outside [%d, %d]", n, min, max)
	}
}

// P6: viewing a Profile's backing as the base StableContainer yields a
// value equal (for overlapping fields) to what the Profile started from.
func TestProfileEquivalenceWithBase(t *testing.T) {
	base, err := NewStableSchema(4, []FieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type},
	})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}
	profileSchema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type, Optional: true},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}
	p, err := NewProfile(profileSchema, map[string]sszview.View{
		"a": sszview.Uint16(11),
		"b": sszview.Uint32(22),
	})
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}

	decoded, err := StableContainerType{Schema: base}.ViewFromBacking(p.GetBacking())
	if err != nil {
		t.Fatalf("ViewFromBacking: %v", err)
	}
	sc := decoded.(*StableContainer)

	av, ok, err := sc.Get("a")
	if err != nil || !ok || av.(sszview.Uint16) != 11 {
		t.Fatalf("a = %v, %v, %v", av, ok, err)
	}
	bv, ok, err := sc.Get("b")
	if err != nil || !ok || bv.(sszview.Uint32) != 22 {
		t.Fatalf("b = %v, %v, %v", bv, ok, err)
	}
}

// P7: the hash tree root of a Profile value equals the root of its
// equivalent base StableContainer value, since a Profile over a
// StableContainer base shares the identical PairNode layout.
func TestMerkleizationEqualityProfileAndBase(t *testing.T) {
	base, err := NewStableSchema(4, []FieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type},
	})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}
	profileSchema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}

	values := map[string]sszview.View{"a": sszview.Uint16(3), "b": sszview.Uint32(4)}
	sc, err := NewStableContainer(base, values)
	if err != nil {
		t.Fatalf("NewStableContainer: %v", err)
	}
	p, err := NewProfile(profileSchema, values)
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}

	if sc.GetBacking().Root() != p.GetBacking().Root() {
		t.Fatal("Profile and equivalent base StableContainer roots differ")
	}
}

// Boundary: N=1 yields depth 0 with no power-of-two rounding surprises.
func TestCapacityOneHasDepthZero(t *testing.T) {
	schema, err := NewStableSchema(1, []FieldSpec{{Name: "a", Type: sszview.Uint8Type}})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}
	if schema.Depth() != 0 {
		t.Fatalf("depth = %d, want 0", schema.Depth())
	}
	c, err := NewStableContainer(schema, map[string]sszview.View{"a": sszview.Uint8(5)})
	if err != nil {
		t.Fatalf("NewStableContainer: %v", err)
	}
	v, ok, err := c.Get("a")
	if err != nil || !ok || v.(sszview.Uint8) != 5 {
		t.Fatalf("Get(a) = %v, %v, %v", v, ok, err)
	}
}

// Boundary: an empty active bitvector decodes to an all-absent value
// of length ceil(N/8).
func TestEmptyActiveBitvectorDecodesAllAbsent(t *testing.T) {
	schema := abSchema(t)
	wire := []byte{0x00}
	c, err := DeserializeStableContainer(schema, bytes.NewReader(wire), len(wire))
	if err != nil {
		t.Fatalf("DeserializeStableContainer: %v", err)
	}
	if _, ok, _ := c.Get("a"); ok {
		t.Fatal("expected a absent")
	}
	if _, ok, _ := c.Get("b"); ok {
		t.Fatal("expected b absent")
	}
}
