// Package merkle implements the Keccak-256 ordered binary Merkle tree used
// to commit to authority sets and parachain heads (C1).
//
// Grounded on original_source/beefy-merkle-root/src/lib.rs for the shape of
// the algorithm (merkelize/merkle_proof/verify_proof, the row-doubling rule
// for odd-width levels) and on
// Layr-Labs-eigenx-kms-go/pkg/merkle/merkle.go for the idiomatic Go/
// go-ethereum-crypto translation. Unlike the upstream Rust crate — which
// explicitly does not sort leaves or pairs — this tree reorders every pair
// so the numerically smaller hash is hashed first; see the package doc on
// hashPair.
package merkle

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// Hash is a 32-byte Keccak-256 digest.
type Hash [32]byte

// ErrIndexOutOfBounds is returned instead of panicking when a leaf index
// exceeds the number of leaves, where the original Rust implementation
// panics via `.expect(...)` — idiomatic Go callers get an explicit error.
var ErrIndexOutOfBounds = errors.New("merkle: leaf index out of bounds")

// hashLeaf hashes a single leaf's raw bytes.
func hashLeaf(leaf []byte) Hash {
	return Hash(crypto.Keccak256Hash(leaf))
}

// hashPair combines two node hashes into their parent, first reordering
// them so the lexicographically smaller hash is hashed first. This is the
// "ordered" rule in §4.1: it makes pair order a pure function of the two
// hash values, so a verifier can recover orientation from (leaf_index,
// number_of_leaves) alone, without a sibling-side bitmap.
func hashPair(a, b Hash) Hash {
	var data [64]byte
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(data[0:32], a[:])
		copy(data[32:64], b[:])
	} else {
		copy(data[0:32], b[:])
		copy(data[32:64], a[:])
	}
	return Hash(crypto.Keccak256Hash(data[:]))
}

// Root computes the Merkle root over leaves. An empty input yields the
// all-zero hash. Leaves are hashed individually first; each subsequent
// level folds adjacent pairs with hashPair, promoting an unpaired trailing
// node unchanged.
func Root(leaves [][]byte) Hash {
	if len(leaves) == 0 {
		return Hash{}
	}

	level := make([]Hash, len(leaves))
	for i, l := range leaves {
		level[i] = hashLeaf(l)
	}

	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}

	return level[0]
}

// Proof is a Merkle inclusion proof for one leaf.
type Proof struct {
	Root           Hash
	Proof          []Hash
	NumberOfLeaves int
	LeafIndex      int
	Leaf           []byte
}

// GenerateProof builds the inclusion proof for leaves[leafIndex]: the
// sequence of sibling hashes encountered walking from the leaf to the root,
// in bottom-up order.
func GenerateProof(leaves [][]byte, leafIndex int) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= len(leaves) {
		return nil, ErrIndexOutOfBounds
	}

	level := make([]Hash, len(leaves))
	for i, l := range leaves {
		level[i] = hashLeaf(l)
	}

	var siblings []Hash
	index := leafIndex

	for len(level) > 1 {
		next := make([]Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				if i == index || i+1 == index {
					if i == index {
						siblings = append(siblings, level[i+1])
					} else {
						siblings = append(siblings, level[i])
					}
				}
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				// unpaired trailing node, promoted unchanged, no sibling recorded
				next = append(next, level[i])
			}
		}
		index = index / 2
		level = next
	}

	return &Proof{
		Root:           level[0],
		Proof:          siblings,
		NumberOfLeaves: len(leaves),
		LeafIndex:      leafIndex,
		Leaf:           leaves[leafIndex],
	}, nil
}

// VerifyProof rehashes leaf and folds proof against it, recovering pair
// orientation from the ordered-pair rule and the working index/width alone
// — no sibling-side bitmap is consulted, matching the deployed verifier's
// contract (§4.1).
func VerifyProof(root Hash, proof []Hash, numberOfLeaves, leafIndex int, leaf []byte) bool {
	if leafIndex < 0 || leafIndex >= numberOfLeaves {
		return false
	}

	current := hashLeaf(leaf)
	index := leafIndex
	width := numberOfLeaves
	next := 0

	for width > 1 {
		unpaired := index == width-1 && width%2 == 1
		if !unpaired {
			if next >= len(proof) {
				return false
			}
			current = hashPair(current, proof[next])
			next++
		}
		index = index / 2
		width = (width + 1) / 2
	}

	if next != len(proof) {
		return false
	}

	return current == root
}
