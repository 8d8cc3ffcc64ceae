package sszview

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/holiman/uint256"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

// --- Bool ---

// Bool is a one-byte SSZ boolean view.
type Bool bool

func (Bool) TypeByteLength() int    { return 1 }
func (Bool) MinByteLength() int     { return 1 }
func (Bool) MaxByteLength() int     { return 1 }
func (Bool) IsFixedByteLength() bool { return true }

func (b Bool) Serialize(w io.Writer) (int, error) {
	v := byte(0)
	if b {
		v = 1
	}
	return w.Write([]byte{v})
}

func (b Bool) GetBacking() merkletree.Node {
	var chunk [32]byte
	if b {
		chunk[0] = 1
	}
	return merkletree.RootNode(chunk)
}

// BoolType is the Deserializer for Bool.
var BoolType boolType

type boolType struct{}

func (boolType) TypeByteLength() int     { return 1 }
func (boolType) MinByteLength() int      { return 1 }
func (boolType) MaxByteLength() int      { return 1 }
func (boolType) IsFixedByteLength() bool { return true }

func (boolType) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 1 {
		return nil, fmt.Errorf("%w: Bool scope %d, want 1", ErrSize, scope)
	}
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sszview: Bool deserialize: %w", err)
	}
	switch buf[0] {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(true), nil
	default:
		return nil, fmt.Errorf("%w: invalid bool byte 0x%02x", ErrSize, buf[0])
	}
}

func (boolType) ViewFromBacking(root merkletree.Node) (View, error) {
	r := root.Root()
	return Bool(r[0] != 0), nil
}

// --- Unsigned integers ---

// Uint8 is a one-byte SSZ unsigned integer view.
type Uint8 uint8

func (Uint8) TypeByteLength() int     { return 1 }
func (Uint8) MinByteLength() int      { return 1 }
func (Uint8) MaxByteLength() int      { return 1 }
func (Uint8) IsFixedByteLength() bool { return true }

func (v Uint8) Serialize(w io.Writer) (int, error) { return w.Write([]byte{byte(v)}) }

func (v Uint8) GetBacking() merkletree.Node {
	var chunk [32]byte
	chunk[0] = byte(v)
	return merkletree.RootNode(chunk)
}

var Uint8Type uint8Type

type uint8Type struct{}

func (uint8Type) TypeByteLength() int     { return 1 }
func (uint8Type) MinByteLength() int      { return 1 }
func (uint8Type) MaxByteLength() int      { return 1 }
func (uint8Type) IsFixedByteLength() bool { return true }

func (uint8Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 1 {
		return nil, fmt.Errorf("%w: Uint8 scope %d, want 1", ErrSize, scope)
	}
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sszview: Uint8 deserialize: %w", err)
	}
	return Uint8(buf[0]), nil
}

func (uint8Type) ViewFromBacking(root merkletree.Node) (View, error) {
	r := root.Root()
	return Uint8(r[0]), nil
}

// Uint16 is a two-byte little-endian SSZ unsigned integer view.
type Uint16 uint16

func (Uint16) TypeByteLength() int     { return 2 }
func (Uint16) MinByteLength() int      { return 2 }
func (Uint16) MaxByteLength() int      { return 2 }
func (Uint16) IsFixedByteLength() bool { return true }

func (v Uint16) Serialize(w io.Writer) (int, error) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	return w.Write(buf[:])
}

func (v Uint16) GetBacking() merkletree.Node {
	var chunk [32]byte
	binary.LittleEndian.PutUint16(chunk[:2], uint16(v))
	return merkletree.RootNode(chunk)
}

var Uint16Type uint16Type

type uint16Type struct{}

func (uint16Type) TypeByteLength() int     { return 2 }
func (uint16Type) MinByteLength() int      { return 2 }
func (uint16Type) MaxByteLength() int      { return 2 }
func (uint16Type) IsFixedByteLength() bool { return true }

func (uint16Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 2 {
		return nil, fmt.Errorf("%w: Uint16 scope %d, want 2", ErrSize, scope)
	}
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sszview: Uint16 deserialize: %w", err)
	}
	return Uint16(binary.LittleEndian.Uint16(buf[:])), nil
}

func (uint16Type) ViewFromBacking(root merkletree.Node) (View, error) {
	r := root.Root()
	return Uint16(binary.LittleEndian.Uint16(r[:2])), nil
}

// Uint32 is a four-byte little-endian SSZ unsigned integer view.
type Uint32 uint32

func (Uint32) TypeByteLength() int     { return 4 }
func (Uint32) MinByteLength() int      { return 4 }
func (Uint32) MaxByteLength() int      { return 4 }
func (Uint32) IsFixedByteLength() bool { return true }

func (v Uint32) Serialize(w io.Writer) (int, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return w.Write(buf[:])
}

func (v Uint32) GetBacking() merkletree.Node {
	var chunk [32]byte
	binary.LittleEndian.PutUint32(chunk[:4], uint32(v))
	return merkletree.RootNode(chunk)
}

var Uint32Type uint32Type

type uint32Type struct{}

func (uint32Type) TypeByteLength() int     { return 4 }
func (uint32Type) MinByteLength() int      { return 4 }
func (uint32Type) MaxByteLength() int      { return 4 }
func (uint32Type) IsFixedByteLength() bool { return true }

func (uint32Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 4 {
		return nil, fmt.Errorf("%w: Uint32 scope %d, want 4", ErrSize, scope)
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sszview: Uint32 deserialize: %w", err)
	}
	return Uint32(binary.LittleEndian.Uint32(buf[:])), nil
}

func (uint32Type) ViewFromBacking(root merkletree.Node) (View, error) {
	r := root.Root()
	return Uint32(binary.LittleEndian.Uint32(r[:4])), nil
}

// Uint64 is an eight-byte little-endian SSZ unsigned integer view.
type Uint64 uint64

func (Uint64) TypeByteLength() int     { return 8 }
func (Uint64) MinByteLength() int      { return 8 }
func (Uint64) MaxByteLength() int      { return 8 }
func (Uint64) IsFixedByteLength() bool { return true }

func (v Uint64) Serialize(w io.Writer) (int, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return w.Write(buf[:])
}

func (v Uint64) GetBacking() merkletree.Node {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], uint64(v))
	return merkletree.RootNode(chunk)
}

var Uint64Type uint64Type

type uint64Type struct{}

func (uint64Type) TypeByteLength() int     { return 8 }
func (uint64Type) MinByteLength() int      { return 8 }
func (uint64Type) MaxByteLength() int      { return 8 }
func (uint64Type) IsFixedByteLength() bool { return true }

func (uint64Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 8 {
		return nil, fmt.Errorf("%w: Uint64 scope %d, want 8", ErrSize, scope)
	}
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("sszview: Uint64 deserialize: %w", err)
	}
	return Uint64(binary.LittleEndian.Uint64(buf[:])), nil
}

func (uint64Type) ViewFromBacking(root merkletree.Node) (View, error) {
	r := root.Root()
	return Uint64(binary.LittleEndian.Uint64(r[:8])), nil
}

// --- Uint256, backed by github.com/holiman/uint256 ---

// Uint256 is a 32-byte little-endian SSZ unsigned integer view, used
// for Ethereum-scale quantities (balances, amounts) where Uint64 would
// overflow. Mirrors the ToUint256/FromUint256 conversion pattern in
// wyf-ACCEPT-eth2030/pkg/geth/types.go.
type Uint256 struct {
	v *uint256.Int
}

// NewUint256 wraps a *uint256.Int as a view. A nil v is treated as zero.
func NewUint256(v *uint256.Int) Uint256 {
	if v == nil {
		return Uint256{v: new(uint256.Int)}
	}
	return Uint256{v: v}
}

// Int returns the wrapped *uint256.Int.
func (u Uint256) Int() *uint256.Int {
	if u.v == nil {
		return new(uint256.Int)
	}
	return u.v
}

func (Uint256) TypeByteLength() int     { return 32 }
func (Uint256) MinByteLength() int      { return 32 }
func (Uint256) MaxByteLength() int      { return 32 }
func (Uint256) IsFixedByteLength() bool { return true }

func (u Uint256) Serialize(w io.Writer) (int, error) {
	b := u.Int().Bytes32() // big-endian
	var le [32]byte
	reverse32(&le, &b)
	return w.Write(le[:])
}

func (u Uint256) GetBacking() merkletree.Node {
	b := u.Int().Bytes32()
	var le [32]byte
	reverse32(&le, &b)
	return merkletree.RootNode(le)
}

var Uint256Type uint256Type

type uint256Type struct{}

func (uint256Type) TypeByteLength() int     { return 32 }
func (uint256Type) MinByteLength() int      { return 32 }
func (uint256Type) MaxByteLength() int      { return 32 }
func (uint256Type) IsFixedByteLength() bool { return true }

func (uint256Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 32 {
		return nil, fmt.Errorf("%w: Uint256 scope %d, want 32", ErrSize, scope)
	}
	var le [32]byte
	if _, err := io.ReadFull(r, le[:]); err != nil {
		return nil, fmt.Errorf("sszview: Uint256 deserialize: %w", err)
	}
	var be [32]byte
	reverse32(&be, &le)
	return NewUint256(new(uint256.Int).SetBytes32(be[:])), nil
}

func (uint256Type) ViewFromBacking(root merkletree.Node) (View, error) {
	le := root.Root()
	var be [32]byte
	reverse32(&be, &le)
	return NewUint256(new(uint256.Int).SetBytes32(be[:])), nil
}

func reverse32(dst, src *[32]byte) {
	for i := 0; i < 32; i++ {
		dst[i] = src[31-i]
	}
}

// --- Bytes32 ---

// Bytes32 is a fixed 32-byte vector view (e.g. a hash or root field).
type Bytes32 [32]byte

func (Bytes32) TypeByteLength() int     { return 32 }
func (Bytes32) MinByteLength() int      { return 32 }
func (Bytes32) MaxByteLength() int      { return 32 }
func (Bytes32) IsFixedByteLength() bool { return true }

func (b Bytes32) Serialize(w io.Writer) (int, error) { return w.Write(b[:]) }
func (b Bytes32) GetBacking() merkletree.Node        { return merkletree.RootNode([32]byte(b)) }

var Bytes32Type bytes32Type

type bytes32Type struct{}

func (bytes32Type) TypeByteLength() int     { return 32 }
func (bytes32Type) MinByteLength() int      { return 32 }
func (bytes32Type) MaxByteLength() int      { return 32 }
func (bytes32Type) IsFixedByteLength() bool { return true }

func (bytes32Type) Deserialize(r io.Reader, scope int) (View, error) {
	if scope != 32 {
		return nil, fmt.Errorf("%w: Bytes32 scope %d, want 32", ErrSize, scope)
	}
	var b Bytes32
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("sszview: Bytes32 deserialize: %w", err)
	}
	return b, nil
}

func (bytes32Type) ViewFromBacking(root merkletree.Node) (View, error) {
	return Bytes32(root.Root()), nil
}
