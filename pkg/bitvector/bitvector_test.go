package bitvector

import (
	"bytes"
	"testing"
)

func TestNewAndByteLength(t *testing.T) {
	cases := []struct {
		k    int
		want int
	}{{1, 1}, {8, 1}, {9, 2}, {16, 2}, {17, 3}}
	for _, c := range cases {
		bv, err := New(c.k)
		if err != nil {
			t.Fatalf("New(%d): %v", c.k, err)
		}
		if len(bv.Bytes()) != c.want {
			t.Errorf("K=%d: byte length = %d, want %d", c.k, len(bv.Bytes()), c.want)
		}
	}
}

func TestNewZeroLength(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for K=0")
	}
}

func TestGetSet(t *testing.T) {
	bv, _ := New(10)
	if bv.Get(3) {
		t.Fatal("bit 3 should start unset")
	}
	if err := bv.Set(3, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !bv.Get(3) {
		t.Fatal("bit 3 should be set")
	}
	if err := bv.Set(3, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if bv.Get(3) {
		t.Fatal("bit 3 should be unset again")
	}
}

func TestSetOutOfRange(t *testing.T) {
	bv, _ := New(4)
	if err := bv.Set(4, true); err == nil {
		t.Fatal("expected ErrIndexRange")
	}
	if err := bv.Set(-1, true); err == nil {
		t.Fatal("expected ErrIndexRange")
	}
}

func TestGetOutOfRangeIsFalse(t *testing.T) {
	bv, _ := New(4)
	if bv.Get(99) {
		t.Fatal("out-of-range Get should return false")
	}
}

func TestPackingLSBFirst(t *testing.T) {
	bv, _ := New(4)
	bv.Set(0, true)
	bv.Set(2, true)
	// bits 0 and 2 set -> byte 0b00000101 = 0x05.
	if bv.Bytes()[0] != 0x05 {
		t.Fatalf("packed byte = 0x%02x, want 0x05", bv.Bytes()[0])
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	bv, _ := New(20)
	bv.Set(0, true)
	bv.Set(19, true)

	var buf bytes.Buffer
	n, err := bv.Serialize(&buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if n != ByteLength(20) {
		t.Fatalf("serialized %d bytes, want %d", n, ByteLength(20))
	}

	got, err := Deserialize(&buf, 20)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !got.Get(0) || !got.Get(19) || got.Get(1) {
		t.Fatal("round-trip did not preserve bits")
	}
}

func TestFromBytesWrongLength(t *testing.T) {
	if _, err := FromBytes([]byte{0x00}, 16); err == nil {
		t.Fatal("expected ErrLength for short buffer")
	}
}

func TestGetBackingViewFromBackingRoundTrip(t *testing.T) {
	bv, _ := New(40)
	bv.Set(0, true)
	bv.Set(33, true)

	backing := bv.GetBacking()
	got, err := ViewFromBacking(backing, 40)
	if err != nil {
		t.Fatalf("ViewFromBacking: %v", err)
	}
	if !got.Get(0) || !got.Get(33) {
		t.Fatal("ViewFromBacking lost set bits")
	}
	if got.Get(1) || got.Get(32) {
		t.Fatal("ViewFromBacking introduced spurious set bits")
	}
}

func TestGetBackingDeterministic(t *testing.T) {
	a, _ := New(9)
	a.Set(8, true)
	b, _ := New(9)
	b.Set(8, true)
	if a.GetBacking().Root() != b.GetBacking().Root() {
		t.Fatal("identical bitvectors should have identical backings")
	}
}
