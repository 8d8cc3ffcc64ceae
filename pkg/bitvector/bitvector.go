// Package bitvector implements SSZ Bitvector[K]: a fixed-length bit
// sequence backed by a merkletree.Node. Bits are packed little-endian,
// least significant bit first within each byte, into ceil(K/8) bytes.
//
// Packing and indexing follow wyf-ACCEPT-eth2030/pkg/ssz/bitfield.go's
// Bitvector type; this version additionally carries a tree backing so
// it can be embedded as the right child of a StableContainer's PairNode
// and merkleized like any other view.
package bitvector

import (
	"errors"
	"fmt"
	"io"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

var (
	// ErrLength is returned when K is not positive, or serialized data
	// does not have exactly ceil(K/8) bytes.
	ErrLength = errors.New("bitvector: invalid length")
	// ErrIndexRange is returned by Set for an out-of-range bit index.
	ErrIndexRange = errors.New("bitvector: bit index out of range")
)

// Bitvector is a fixed-length (K bits) bit sequence.
type Bitvector struct {
	k    int
	data []byte // ceil(k/8) bytes, packed LSB-first
}

// New creates a Bitvector[k] with all bits unset. k must be positive.
func New(k int) (Bitvector, error) {
	if k <= 0 {
		return Bitvector{}, fmt.Errorf("%w: K=%d", ErrLength, k)
	}
	return Bitvector{k: k, data: make([]byte, ByteLength(k))}, nil
}

// ByteLength returns ceil(k/8), the packed encoding size of Bitvector[k].
func ByteLength(k int) int {
	return (k + 7) / 8
}

// K returns the fixed bit length.
func (b Bitvector) K() int { return b.k }

// Get returns the bit at index i.
func (b Bitvector) Get(i int) bool {
	if i < 0 || i >= b.k {
		return false
	}
	return b.data[i/8]&(1<<uint(i%8)) != 0
}

// Set sets (or clears) the bit at index i.
func (b Bitvector) Set(i int, v bool) error {
	if i < 0 || i >= b.k {
		return fmt.Errorf("%w: index %d, K=%d", ErrIndexRange, i, b.k)
	}
	if v {
		b.data[i/8] |= 1 << uint(i%8)
	} else {
		b.data[i/8] &^= 1 << uint(i%8)
	}
	return nil
}

// Bytes returns a copy of the packed byte encoding.
func (b Bitvector) Bytes() []byte {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

// FromBytes builds a Bitvector[k] from exactly ByteLength(k) packed bytes.
func FromBytes(data []byte, k int) (Bitvector, error) {
	if k <= 0 {
		return Bitvector{}, fmt.Errorf("%w: K=%d", ErrLength, k)
	}
	want := ByteLength(k)
	if len(data) != want {
		return Bitvector{}, fmt.Errorf("%w: got %d bytes, want %d", ErrLength, len(data), want)
	}
	cp := make([]byte, want)
	copy(cp, data)
	return Bitvector{k: k, data: cp}, nil
}

// Serialize writes the packed encoding to w and returns the number of
// bytes written.
func (b Bitvector) Serialize(w io.Writer) (int, error) {
	n, err := w.Write(b.data)
	if err != nil {
		return n, fmt.Errorf("bitvector: serialize: %w", err)
	}
	return n, nil
}

// Deserialize reads exactly ByteLength(k) bytes from r.
func Deserialize(r io.Reader, k int) (Bitvector, error) {
	n := ByteLength(k)
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Bitvector{}, fmt.Errorf("bitvector: deserialize K=%d: %w", k, err)
	}
	return FromBytes(buf, k)
}

// GetBacking returns the Merkle backing of the bitvector: its packed
// bytes, chunked into 32-byte leaves and Merkleized (padded to the next
// power of two, per standard SSZ packing rules for non-composite data).
func (b Bitvector) GetBacking() merkletree.Node {
	chunks := packChunks(b.data)
	depth := merkletree.GetDepth(len(chunks))
	return merkletree.SubtreeFillToContents(chunks, depth)
}

// ViewFromBacking reconstructs a Bitvector[k] from its tree backing by
// reading back the packed chunk leaves.
func ViewFromBacking(root merkletree.Node, k int) (Bitvector, error) {
	numBytes := ByteLength(k)
	numChunks := (numBytes + 31) / 32
	if numChunks == 0 {
		numChunks = 1
	}
	depth := merkletree.GetDepth(numChunks)
	data := make([]byte, 0, numChunks*32)
	for i := 0; i < numChunks; i++ {
		leaf, err := merkletree.Getter(root, merkletree.FieldGindex(depth, i))
		if err != nil {
			return Bitvector{}, fmt.Errorf("bitvector: view_from_backing: %w", err)
		}
		r := leaf.Root()
		data = append(data, r[:]...)
	}
	return FromBytes(data[:numBytes], k)
}

func packChunks(data []byte) []merkletree.Node {
	if len(data) == 0 {
		return []merkletree.Node{merkletree.ZeroNode(0)}
	}
	numChunks := (len(data) + 31) / 32
	chunks := make([]merkletree.Node, numChunks)
	for i := 0; i < numChunks; i++ {
		var chunk [32]byte
		start := i * 32
		end := start + 32
		if end > len(data) {
			end = len(data)
		}
		copy(chunk[:], data[start:end])
		chunks[i] = merkletree.RootNode(chunk)
	}
	return chunks
}
