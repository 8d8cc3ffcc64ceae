// Package merkletree implements a persistent perfect-binary-tree of
// 32-byte nodes addressed by generalized index (gindex), the substrate
// that StableContainer and Profile values are built on top of.
//
// Updates are functional: Setter returns a new root, the previous tree
// is left untouched, and unaffected subtrees are shared between the
// two generations. This makes concurrent readers of different
// generations of a value trivially safe.
package merkletree

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Gindex is a generalized index: root=1, left child of n=2n, right
// child of n=2n+1.
type Gindex = uint64

// RightGindex is the gindex of the right child of the root — where a
// StableContainer's active-fields bitvector lives.
const RightGindex Gindex = 3

// OffsetByteLength is the width, in bytes, of an SSZ variable-length
// field offset.
const OffsetByteLength = 4

var (
	// ErrNavigation is returned when a gindex cannot be resolved against
	// a tree, e.g. because it descends past a leaf.
	ErrNavigation = errors.New("merkletree: gindex does not resolve against this tree")
	// ErrInvalidGindex is returned for a gindex of 0.
	ErrInvalidGindex = errors.New("merkletree: gindex must be >= 1")
)

// Node is a node in the tree: either a leaf (Root) or an internal pair.
type Node interface {
	// Root returns this node's 32-byte Merkle root.
	Root() [32]byte
	// Left returns the left child, or nil if this is a leaf.
	Left() Node
	// Right returns the right child, or nil if this is a leaf.
	Right() Node
	// IsLeaf reports whether this node has no children.
	IsLeaf() bool
}

// leafNode is a Node with no children; its root is its own content.
type leafNode struct {
	root [32]byte
}

func (l *leafNode) Root() [32]byte { return l.root }
func (l *leafNode) Left() Node     { return nil }
func (l *leafNode) Right() Node    { return nil }
func (l *leafNode) IsLeaf() bool   { return true }

// pairNode is an internal node whose root is hash(left.Root(), right.Root()).
type pairNode struct {
	left, right Node
	root        [32]byte
}

func (p *pairNode) Root() [32]byte { return p.root }
func (p *pairNode) Left() Node     { return p.left }
func (p *pairNode) Right() Node    { return p.right }
func (p *pairNode) IsLeaf() bool   { return false }

// RootNode wraps a 32-byte value as a leaf Node.
func RootNode(root [32]byte) Node {
	return &leafNode{root: root}
}

// PairNode combines two children into a new internal node.
func PairNode(left, right Node) Node {
	var buf [64]byte
	lr := left.Root()
	rr := right.Root()
	copy(buf[:32], lr[:])
	copy(buf[32:], rr[:])
	return &pairNode{left: left, right: right, root: sha256.Sum256(buf[:])}
}

// zeroNodeCache memoizes ZeroNode(depth) results; depth 0 is the zero
// leaf, depth d>0 is PairNode(ZeroNode(d-1), ZeroNode(d-1)).
var zeroNodeCache = []Node{RootNode([32]byte{})}

// ZeroNode returns the canonical all-zero subtree of the given depth.
func ZeroNode(depth int) Node {
	for len(zeroNodeCache) <= depth {
		prev := zeroNodeCache[len(zeroNodeCache)-1]
		zeroNodeCache = append(zeroNodeCache, PairNode(prev, prev))
	}
	return zeroNodeCache[depth]
}

// IsZero reports whether n is the canonical zero leaf (depth 0).
func IsZero(n Node) bool {
	return n.IsLeaf() && n.Root() == ZeroNode(0).Root()
}

// GetDepth returns ceil(log2(n)) for n > 0, i.e. the number of levels
// needed for a perfect binary tree with n leaf slots. GetDepth(1) == 0.
func GetDepth(n int) int {
	depth := 0
	for (1 << uint(depth)) < n {
		depth++
	}
	return depth
}

// SubtreeFillToContents builds a perfect binary tree of the given depth
// with leaves filled from leaves (left to right), padding any remaining
// slots with the zero leaf.
func SubtreeFillToContents(leaves []Node, depth int) Node {
	capacity := 1 << uint(depth)
	if len(leaves) > capacity {
		panic(fmt.Sprintf("merkletree: %d leaves exceed capacity %d at depth %d", len(leaves), capacity, depth))
	}
	if depth == 0 {
		if len(leaves) == 1 {
			return leaves[0]
		}
		return ZeroNode(0)
	}
	mid := capacity / 2
	var leftLeaves, rightLeaves []Node
	if len(leaves) > mid {
		leftLeaves = leaves[:mid]
		rightLeaves = leaves[mid:]
	} else {
		leftLeaves = leaves
		rightLeaves = nil
	}
	return PairNode(
		SubtreeFillToContents(leftLeaves, depth-1),
		SubtreeFillToContents(rightLeaves, depth-1),
	)
}

// Getter navigates from root to the node at gindex, per the standard
// generalized-index bit-path convention (each bit below the leading 1
// selects left=0/right=1, read most-significant-bit-first after the
// leading bit).
func Getter(root Node, gindex Gindex) (Node, error) {
	if gindex == 0 {
		return nil, ErrInvalidGindex
	}
	for _, bit := range pathBits(gindex) {
		if root.IsLeaf() {
			return nil, fmt.Errorf("%w: gindex %d", ErrNavigation, gindex)
		}
		if bit {
			root = root.Right()
		} else {
			root = root.Left()
		}
	}
	return root, nil
}

// Setter returns a new tree, structurally sharing everything but the
// path from root to gindex, with the node at gindex replaced by
// newNode. The input tree is never mutated.
func Setter(root Node, gindex Gindex, newNode Node) (Node, error) {
	if gindex == 0 {
		return nil, ErrInvalidGindex
	}
	bits := pathBits(gindex)
	return setAt(root, bits, newNode)
}

func setAt(node Node, bits []bool, newNode Node) (Node, error) {
	if len(bits) == 0 {
		return newNode, nil
	}
	if node.IsLeaf() {
		return nil, fmt.Errorf("%w: path descends past a leaf", ErrNavigation)
	}
	if bits[0] {
		right, err := setAt(node.Right(), bits[1:], newNode)
		if err != nil {
			return nil, err
		}
		return PairNode(node.Left(), right), nil
	}
	left, err := setAt(node.Left(), bits[1:], newNode)
	if err != nil {
		return nil, err
	}
	return PairNode(left, node.Right()), nil
}

// pathBits returns the sequence of left(false)/right(true) turns from
// the root to gindex, most significant turn first.
func pathBits(gindex Gindex) []bool {
	// bitLen(gindex) - 1 turns below the leading 1 bit.
	n := 0
	for g := gindex; g > 1; g >>= 1 {
		n++
	}
	bits := make([]bool, n)
	for i := n - 1; i >= 0; i-- {
		bits[i] = gindex&1 == 1
		gindex >>= 1
	}
	return bits
}

// FieldGindex returns the gindex of leaf findex in a perfect binary
// tree of depth depth, i.e. 2^depth + findex.
func FieldGindex(depth, findex int) Gindex {
	return Gindex(1<<uint(depth)) + Gindex(findex)
}
