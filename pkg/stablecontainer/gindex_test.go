package stablecontainer

import (
	"testing"

	"github.com/eth2030/sszstable/pkg/merkletree"
	"github.com/eth2030/sszstable/pkg/sszview"
)

// A field declared at the same position in two StableContainer
// schemas of the same capacity shares the same gindex, regardless of
// how many other fields are declared.
func TestGindexStabilityAcrossSchemaGrowth(t *testing.T) {
	small, err := NewStableSchema(8, []FieldSpec{
		{Name: "a", Type: sszview.Uint8Type},
	})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}
	grown, err := NewStableSchema(8, []FieldSpec{
		{Name: "a", Type: sszview.Uint8Type},
		{Name: "b", Type: sszview.Uint8Type},
		{Name: "c", Type: sszview.Uint8Type},
	})
	if err != nil {
		t.Fatalf("NewStableSchema: %v", err)
	}

	g1, err := KeyToStaticGindex(small, "a")
	if err != nil {
		t.Fatalf("KeyToStaticGindex: %v", err)
	}
	g2, err := KeyToStaticGindex(grown, "a")
	if err != nil {
		t.Fatalf("KeyToStaticGindex: %v", err)
	}
	if g1 != g2 {
		t.Fatalf("gindex for field 'a' changed: %d != %d", g1, g2)
	}
}

func TestActiveFieldsKeyResolvesToRightGindex(t *testing.T) {
	schema := abSchema(t)
	g, err := KeyToStaticGindex(schema, ActiveFieldsKey)
	if err != nil {
		t.Fatalf("KeyToStaticGindex: %v", err)
	}
	if g != merkletree.RightGindex {
		t.Fatalf("got gindex %d, want %d", g, merkletree.RightGindex)
	}
}

func TestActiveFieldsKeyRejectedForPlainContainerBase(t *testing.T) {
	cs, err := sszview.NewContainerSchema([]sszview.ContainerField{
		{Name: "a", Type: sszview.Uint8Type},
	})
	if err != nil {
		t.Fatalf("NewContainerSchema: %v", err)
	}
	base := PlainBase{Schema: cs}
	if _, err := KeyToStaticGindex(base, ActiveFieldsKey); err == nil {
		t.Fatal("expected error: __active_fields__ is undefined over a plain Container base")
	}
}

func TestNavigateTypeDelegatesToBase(t *testing.T) {
	base := abSchema(t)
	schema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}
	g, err := NavigateType(schema, "a")
	if err != nil {
		t.Fatalf("NavigateType: %v", err)
	}
	want, _ := KeyToStaticGindex(base, "a")
	if g != want {
		t.Fatalf("got %d, want %d", g, want)
	}
}
