package sszview

import (
	"bytes"
	"testing"
)

func demoSchema(t *testing.T) *ContainerSchema {
	t.Helper()
	schema, err := NewContainerSchema([]ContainerField{
		{Name: "a", Type: Uint8Type},
		{Name: "b", Type: Uint32Type},
		{Name: "data", Type: ByteListType{MaxLen: 64}},
	})
	if err != nil {
		t.Fatalf("NewContainerSchema: %v", err)
	}
	return schema
}

func demoValues(t *testing.T) map[string]View {
	t.Helper()
	data, err := NewByteList([]byte("payload"), 64)
	if err != nil {
		t.Fatalf("NewByteList: %v", err)
	}
	return map[string]View{
		"a":    Uint8(7),
		"b":    Uint32(99),
		"data": data,
	}
}

func TestContainerDuplicateFieldRejected(t *testing.T) {
	_, err := NewContainerSchema([]ContainerField{
		{Name: "a", Type: Uint8Type},
		{Name: "a", Type: Uint8Type},
	})
	if err == nil {
		t.Fatal("expected error for duplicate field name")
	}
}

func TestContainerMissingFieldRejected(t *testing.T) {
	schema := demoSchema(t)
	values := demoValues(t)
	delete(values, "b")
	if _, err := NewContainer(schema, values); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestContainerGet(t *testing.T) {
	schema := demoSchema(t)
	c, err := NewContainer(schema, demoValues(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	v, err := c.Get("b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.(Uint32) != 99 {
		t.Fatalf("got %v, want 99", v)
	}
}

func TestContainerGetUnknownField(t *testing.T) {
	schema := demoSchema(t)
	c, _ := NewContainer(schema, demoValues(t))
	if _, err := c.Get("nope"); err == nil {
		t.Fatal("expected ErrUnknownField")
	}
}

func TestContainerSetIsFunctional(t *testing.T) {
	schema := demoSchema(t)
	orig, _ := NewContainer(schema, demoValues(t))

	updated, err := orig.Set("a", Uint8(200))
	if err != nil {
		t.Fatalf("Set: %v", err)
	}

	origVal, _ := orig.Get("a")
	if origVal.(Uint8) != 7 {
		t.Fatal("Set mutated the receiver")
	}
	updatedVal, _ := updated.Get("a")
	if updatedVal.(Uint8) != 200 {
		t.Fatal("Set did not apply to the new container")
	}
}

func TestContainerSerializeDeserializeRoundTrip(t *testing.T) {
	schema := demoSchema(t)
	c, err := NewContainer(schema, demoValues(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	var buf bytes.Buffer
	if _, err := c.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := DeserializeContainer(schema, &buf, buf.Len())
	if err != nil {
		t.Fatalf("DeserializeContainer: %v", err)
	}

	aVal, _ := got.Get("a")
	bVal, _ := got.Get("b")
	dataVal, _ := got.Get("data")
	if aVal.(Uint8) != 7 || bVal.(Uint32) != 99 || string(dataVal.(ByteList).Bytes()) != "payload" {
		t.Fatalf("round trip mismatch: a=%v b=%v data=%q", aVal, bVal, dataVal.(ByteList).Bytes())
	}
}

func TestContainerDeserializeRejectsBadFirstOffset(t *testing.T) {
	schema := demoSchema(t)
	var buf bytes.Buffer
	buf.WriteByte(7)                       // a
	buf.Write([]byte{99, 0, 0, 0})         // b
	buf.Write([]byte{0xff, 0, 0, 0})       // bogus offset for data
	if _, err := DeserializeContainer(schema, &buf, buf.Len()); err == nil {
		t.Fatal("expected error for first offset mismatch")
	}
}

func TestContainerFixedOnlyHasNoSideBuffer(t *testing.T) {
	schema, err := NewContainerSchema([]ContainerField{
		{Name: "a", Type: Uint8Type},
		{Name: "b", Type: Uint16Type},
	})
	if err != nil {
		t.Fatalf("NewContainerSchema: %v", err)
	}
	c, err := NewContainer(schema, map[string]View{"a": Uint8(1), "b": Uint16(2)})
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if !schema.IsFixedByteLength() {
		t.Fatal("expected fixed-size schema")
	}
	var buf bytes.Buffer
	n, err := c.Serialize(&buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if n != 3 {
		t.Fatalf("serialized %d bytes, want 3", n)
	}
}

func TestContainerGetBackingDeterministic(t *testing.T) {
	schema := demoSchema(t)
	a, _ := NewContainer(schema, demoValues(t))
	b, _ := NewContainer(schema, demoValues(t))
	if a.GetBacking().Root() != b.GetBacking().Root() {
		t.Fatal("identical containers should have identical backings")
	}
}
