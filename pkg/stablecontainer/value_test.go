package stablecontainer

import (
	"testing"

	"github.com/eth2030/sszstable/pkg/sszview"
)

func TestStableContainerGetSetRoundTrip(t *testing.T) {
	schema := abSchema(t)
	c, err := NewStableContainer(schema, map[string]sszview.View{"a": sszview.Uint16(7)})
	if err != nil {
		t.Fatalf("NewStableContainer: %v", err)
	}

	v, ok, err := c.Get("a")
	if err != nil || !ok {
		t.Fatalf("Get(a): v=%v ok=%v err=%v", v, ok, err)
	}
	if v.(sszview.Uint16) != 7 {
		t.Fatalf("a = %v, want 7", v)
	}

	_, ok, err = c.Get("b")
	if err != nil {
		t.Fatalf("Get(b): %v", err)
	}
	if ok {
		t.Fatal("b should be absent")
	}
}

func TestStableContainerSetIsFunctional(t *testing.T) {
	schema := abSchema(t)
	orig, err := NewStableContainer(schema, map[string]sszview.View{"a": sszview.Uint16(7)})
	if err != nil {
		t.Fatalf("NewStableContainer: %v", err)
	}

	updated, err := orig.Set("b", sszview.Uint32(99))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, _ := orig.Get("b"); ok {
		t.Fatal("Set mutated the receiver")
	}
	v, ok, err := updated.Get("b")
	if err != nil || !ok || v.(sszview.Uint32) != 99 {
		t.Fatalf("updated.Get(b) = %v, %v, %v; want 99, true, nil", v, ok, err)
	}
}

func TestStableContainerPresenceCoherenceAfterClear(t *testing.T) {
	schema := abSchema(t)
	c, _ := NewStableContainer(schema, map[string]sszview.View{
		"a": sszview.Uint16(7),
		"b": sszview.Uint32(99),
	})
	cleared, err := c.Set("a", nil)
	if err != nil {
		t.Fatalf("Set(nil): %v", err)
	}
	if _, ok, _ := cleared.Get("a"); ok {
		t.Fatal("cleared field should be absent")
	}
	if _, ok, _ := cleared.Get("b"); !ok {
		t.Fatal("untouched field should remain present")
	}
}

func TestStableContainerUnknownFieldName(t *testing.T) {
	schema := abSchema(t)
	c, _ := NewStableContainer(schema, nil)
	if _, _, err := c.Get("nope"); err == nil {
		t.Fatal("expected ErrField")
	}
	if _, err := c.Set("nope", sszview.Uint8(1)); err == nil {
		t.Fatal("expected ErrField")
	}
}

func TestProfileRequiredFieldMustBePresent(t *testing.T) {
	base := abSchema(t)
	schema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type, Optional: true},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}
	if _, err := NewProfile(schema, map[string]sszview.View{"b": sszview.Uint32(1)}); err == nil {
		t.Fatal("expected ErrValue for missing required field")
	}
}

func TestProfileGetSetOverStableContainerBase(t *testing.T) {
	base := abSchema(t)
	schema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type, Optional: true},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}
	p, err := NewProfile(schema, map[string]sszview.View{"a": sszview.Uint16(7)})
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}

	v, ok, err := p.Get("a")
	if err != nil || !ok || v.(sszview.Uint16) != 7 {
		t.Fatalf("Get(a) = %v, %v, %v", v, ok, err)
	}
	if _, ok, _ := p.Get("b"); ok {
		t.Fatal("optional field b should be absent")
	}

	updated, err := p.Set("b", sszview.Uint32(5))
	if err != nil {
		t.Fatalf("Set(b): %v", err)
	}
	if v, ok, _ := updated.Get("b"); !ok || v.(sszview.Uint32) != 5 {
		t.Fatalf("updated.Get(b) = %v, %v", v, ok)
	}
	if _, err := updated.Set("a", nil); err == nil {
		t.Fatal("expected ErrValue clearing a required field")
	}
}

func TestProfileOverPlainContainerBase(t *testing.T) {
	cs, err := sszview.NewContainerSchema([]sszview.ContainerField{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type},
	})
	if err != nil {
		t.Fatalf("NewContainerSchema: %v", err)
	}
	base := PlainBase{Schema: cs}
	schema, err := NewProfileSchema(base, []ProfileFieldSpec{
		{Name: "a", Type: sszview.Uint16Type},
		{Name: "b", Type: sszview.Uint32Type},
	})
	if err != nil {
		t.Fatalf("NewProfileSchema: %v", err)
	}
	p, err := NewProfile(schema, map[string]sszview.View{
		"a": sszview.Uint16(1),
		"b": sszview.Uint32(2),
	})
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	v, ok, err := p.Get("b")
	if err != nil || !ok || v.(sszview.Uint32) != 2 {
		t.Fatalf("Get(b) = %v, %v, %v", v, ok, err)
	}
}
