// Package merkle implements the binary Merkle tree decds uses to commit
// to a chunkset's erasure-coded shares and to a blob's chunkset roots.
package merkle

import (
	"github.com/itzmeanjan/decds/pkg/decdserr"
	"github.com/itzmeanjan/decds/pkg/digest"
)

// Tree is a binary Merkle tree built over a fixed set of leaf hashes.
// Odd-width levels are padded on the right with a level-specific zero
// hash rather than duplicating the last real node.
type Tree struct {
	root   digest.Hash
	leaves []digest.Hash
}

// Build constructs a Tree over leaves. It fails if leaves is empty.
func Build(leaves []digest.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, decdserr.NoLeafNodesToBuildMerkleTreeOn()
	}

	owned := make([]digest.Hash, len(leaves))
	copy(owned, leaves)

	var zeroHash digest.Hash
	current := append([]digest.Hash(nil), owned...)

	for len(current) > 1 {
		parentLevel := make([]digest.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			left := current[i]
			right := zeroHash
			if i+1 < len(current) {
				right = current[i+1]
			}
			parentLevel = append(parentLevel, parentHash(left, right))
		}
		zeroHash = parentHash(zeroHash, zeroHash)
		current = parentLevel
	}

	return &Tree{root: current[0], leaves: owned}, nil
}

// RootCommitment returns the tree's root hash.
func (t *Tree) RootCommitment() digest.Hash {
	return t.root
}

// GenerateProof returns the sibling hashes required to reconstruct the
// path from leaf leafIndex to the root, bottom-up.
func (t *Tree) GenerateProof(leafIndex int) ([]digest.Hash, error) {
	if leafIndex < 0 || leafIndex >= len(t.leaves) {
		return nil, decdserr.InvalidLeafNodeIndex(leafIndex, len(t.leaves))
	}

	proofSize := proofLength(len(t.leaves))
	proof := make([]digest.Hash, 0, proofSize)

	current := append([]digest.Hash(nil), t.leaves...)
	currentIndex := leafIndex
	var zeroHash digest.Hash

	for len(current) > 1 {
		parentLevel := make([]digest.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			left := current[i]
			right := zeroHash
			if i+1 < len(current) {
				right = current[i+1]
			}

			if currentIndex == i {
				proof = append(proof, right)
			} else if currentIndex == i+1 {
				proof = append(proof, left)
			}

			parentLevel = append(parentLevel, parentHash(left, right))
		}

		currentIndex /= 2
		current = parentLevel
		zeroHash = parentHash(zeroHash, zeroHash)
	}

	return proof, nil
}

// VerifyProof reports whether proof authenticates leaf at leafIndex
// against rootHash. It needs no Tree instance: a verifier only ever
// holds a leaf, a proof, and a root.
func VerifyProof(leafIndex int, leaf digest.Hash, proof []digest.Hash, rootHash digest.Hash) bool {
	current := leaf
	index := leafIndex

	for _, sibling := range proof {
		if index&1 == 0 {
			current = parentHash(current, sibling)
		} else {
			current = parentHash(sibling, current)
		}
		index /= 2
	}

	return current == rootHash
}

func parentHash(left, right digest.Hash) digest.Hash {
	buf := make([]byte, 0, 2*digest.Size)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return digest.Sum(buf)
}

// proofLength returns ceil(log2(n)) for n >= 1, the number of levels
// between a leaf and the root in a tree with n leaves.
func proofLength(n int) int {
	length := 0
	for size := 1; size < n; size *= 2 {
		length++
	}
	return length
}
