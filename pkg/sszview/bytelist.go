package sszview

import (
	"fmt"
	"io"

	"github.com/eth2030/sszstable/pkg/merkletree"
)

// ByteList is a variable-length SSZ ByteList[maxLen] view: raw bytes,
// serialized as-is, bounded by a maximum length. This is the workhorse
// variable-length field type used to exercise StableContainer's
// offset-table codec.
type ByteList struct {
	maxLen int
	data   []byte
}

// NewByteList wraps data as a ByteList bounded by maxLen. data is
// copied.
func NewByteList(data []byte, maxLen int) (ByteList, error) {
	if len(data) > maxLen {
		return ByteList{}, fmt.Errorf("%w: %d bytes exceeds max length %d", ErrSize, len(data), maxLen)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return ByteList{maxLen: maxLen, data: cp}, nil
}

// Bytes returns a copy of the underlying data.
func (l ByteList) Bytes() []byte {
	cp := make([]byte, len(l.data))
	copy(cp, l.data)
	return cp
}

func (l ByteList) TypeByteLength() int {
	panic("sszview: ByteList has no fixed byte length")
}
func (l ByteList) MinByteLength() int      { return 0 }
func (l ByteList) MaxByteLength() int      { return l.maxLen }
func (ByteList) IsFixedByteLength() bool   { return false }

func (l ByteList) Serialize(w io.Writer) (int, error) { return w.Write(l.data) }

func (l ByteList) GetBacking() merkletree.Node {
	chunks := packChunks(l.data)
	limit := merkletree.GetDepth((l.maxLen + 31) / 32)
	if limit == 0 && l.maxLen > 0 {
		limit = merkletree.GetDepth(1)
	}
	dataRoot := merkletree.SubtreeFillToContents(chunks, limit)
	return mixInLength(dataRoot, uint64(len(l.data)))
}

// ByteListType is the Deserializer for ByteList[maxLen].
type ByteListType struct {
	MaxLen int
}

func (t ByteListType) TypeByteLength() int {
	panic("sszview: ByteList has no fixed byte length")
}
func (t ByteListType) MinByteLength() int      { return 0 }
func (t ByteListType) MaxByteLength() int      { return t.MaxLen }
func (t ByteListType) IsFixedByteLength() bool { return false }

func (t ByteListType) Deserialize(r io.Reader, scope int) (View, error) {
	if scope < 0 || scope > t.MaxLen {
		return nil, fmt.Errorf("%w: ByteList scope %d exceeds max length %d", ErrSize, scope, t.MaxLen)
	}
	buf := make([]byte, scope)
	if scope > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("sszview: ByteList deserialize: %w", err)
		}
	}
	return NewByteList(buf, t.MaxLen)
}

// ViewFromBacking reconstructs a ByteList from a live backing node.
// Unlike a re-hashed 32-byte root, the merkletree.Node graph retains its
// Left()/Right() children, so the length (the right child of the
// mix-in-length pair) and the data chunks (the leaves under the left
// child) are both still readable without a byte stream.
func (t ByteListType) ViewFromBacking(root merkletree.Node) (View, error) {
	if root.IsLeaf() {
		return nil, fmt.Errorf("sszview: ByteList backing must be a mix-in-length pair node")
	}
	dataRoot := root.Left()
	lengthRoot := root.Right().Root()
	var length uint64
	for i := 0; i < 8; i++ {
		length |= uint64(lengthRoot[i]) << (8 * uint(i))
	}
	if length > uint64(t.MaxLen) {
		return nil, fmt.Errorf("%w: ByteList backing length %d exceeds max length %d", ErrSize, length, t.MaxLen)
	}

	limit := merkletree.GetDepth((t.MaxLen + 31) / 32)
	numChunks := int((length + 31) / 32)
	data := make([]byte, 0, length)
	for i := 0; i < numChunks; i++ {
		chunkNode, err := merkletree.Getter(dataRoot, merkletree.FieldGindex(limit, i))
		if err != nil {
			return nil, fmt.Errorf("sszview: ByteList backing chunk %d: %w", i, err)
		}
		chunkRoot := chunkNode.Root()
		remaining := int(length) - len(data)
		if remaining > 32 {
			remaining = 32
		}
		data = append(data, chunkRoot[:remaining]...)
	}
	return NewByteList(data, t.MaxLen)
}

func packChunks(data []byte) []merkletree.Node {
	if len(data) == 0 {
		return nil
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

// mixInLength combines a data root with a little-endian length chunk,
// the standard SSZ mix_in_length used by every variable-length type.
func mixInLength(root merkletree.Node, length uint64) merkletree.Node {
	var chunk [32]byte
	for i := 0; i < 8; i++ {
		chunk[i] = byte(length >> (8 * uint(i)))
	}
	return merkletree.PairNode(root, merkletree.RootNode(chunk))
}
