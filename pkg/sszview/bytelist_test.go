package sszview

import (
	"bytes"
	"testing"
)

func TestByteListSerializeIsRawBytes(t *testing.T) {
	l, err := NewByteList([]byte("hello"), 64)
	if err != nil {
		t.Fatalf("NewByteList: %v", err)
	}
	var buf bytes.Buffer
	n, err := l.Serialize(&buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if n != 5 || buf.String() != "hello" {
		t.Fatalf("got %q (%d bytes), want \"hello\" (5 bytes)", buf.String(), n)
	}
}

func TestByteListExceedsMaxLen(t *testing.T) {
	if _, err := NewByteList(make([]byte, 10), 4); err == nil {
		t.Fatal("expected ErrSize for over-length data")
	}
}

func TestByteListDeserializeRoundTrip(t *testing.T) {
	typ := ByteListType{MaxLen: 100}
	var buf bytes.Buffer
	buf.WriteString("the quick brown fox")
	v, err := typ.Deserialize(&buf, 19)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if string(v.(ByteList).Bytes()) != "the quick brown fox" {
		t.Fatalf("got %q", v.(ByteList).Bytes())
	}
}

func TestByteListDeserializeScopeExceedsMax(t *testing.T) {
	typ := ByteListType{MaxLen: 4}
	buf := bytes.NewReader(make([]byte, 10))
	if _, err := typ.Deserialize(buf, 10); err == nil {
		t.Fatal("expected ErrSize for scope exceeding max length")
	}
}

func TestByteListEmpty(t *testing.T) {
	typ := ByteListType{MaxLen: 32}
	v, err := typ.Deserialize(bytes.NewReader(nil), 0)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(v.(ByteList).Bytes()) != 0 {
		t.Fatal("expected empty ByteList")
	}
}

func TestByteListGetBackingViewFromBackingRoundTrip(t *testing.T) {
	typ := ByteListType{MaxLen: 100}
	orig, err := NewByteList([]byte("abcdefghij0123456789XYZ"), 100)
	if err != nil {
		t.Fatalf("NewByteList: %v", err)
	}

	backing := orig.GetBacking()
	got, err := typ.ViewFromBacking(backing)
	if err != nil {
		t.Fatalf("ViewFromBacking: %v", err)
	}
	if !bytes.Equal(got.(ByteList).Bytes(), orig.Bytes()) {
		t.Fatalf("got %q, want %q", got.(ByteList).Bytes(), orig.Bytes())
	}
}

func TestByteListGetBackingViewFromBackingEmpty(t *testing.T) {
	typ := ByteListType{MaxLen: 32}
	orig, _ := NewByteList(nil, 32)
	got, err := typ.ViewFromBacking(orig.GetBacking())
	if err != nil {
		t.Fatalf("ViewFromBacking: %v", err)
	}
	if len(got.(ByteList).Bytes()) != 0 {
		t.Fatal("expected empty round trip")
	}
}

func TestByteListGetBackingViewFromBackingMultiChunk(t *testing.T) {
	typ := ByteListType{MaxLen: 200}
	data := make([]byte, 70)
	for i := range data {
		data[i] = byte(i)
	}
	orig, err := NewByteList(data, 200)
	if err != nil {
		t.Fatalf("NewByteList: %v", err)
	}
	got, err := typ.ViewFromBacking(orig.GetBacking())
	if err != nil {
		t.Fatalf("ViewFromBacking: %v", err)
	}
	if !bytes.Equal(got.(ByteList).Bytes(), data) {
		t.Fatal("multi-chunk round trip mismatch")
	}
}

func TestByteListViewFromBackingRejectsLeaf(t *testing.T) {
	typ := ByteListType{MaxLen: 32}
	leaf, _ := NewByteList([]byte("x"), 32)
	_, err := typ.ViewFromBacking(leaf.GetBacking().Left())
	if err == nil {
		t.Fatal("expected error for non-pair backing")
	}
}

func TestByteListGetBackingDeterministic(t *testing.T) {
	a, _ := NewByteList([]byte("same"), 32)
	b, _ := NewByteList([]byte("same"), 32)
	if a.GetBacking().Root() != b.GetBacking().Root() {
		t.Fatal("identical byte lists should have identical backings")
	}
}
