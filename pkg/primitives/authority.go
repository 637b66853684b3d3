// Package primitives holds the core data model shared by every component of
// the bridging gadget: authority identities, validator sets, commitments,
// signed commitments, vote messages and MMR leaves.
//
// Grounded on original_source/primitives/src/commitment.rs and
// original_source/beefy-mmr-pallet/src/lib.rs (the Rust BEEFY primitives
// crate), translated into plain Go value types instead of SCALE-codec
// derive macros.
package primitives

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// AuthorityID is a compressed secp256k1 public key identifying an authority.
type AuthorityID [33]byte

// String returns the hex encoding of the compressed key, 0x-prefixed.
func (a AuthorityID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Signature is a 65-byte recoverable ECDSA signature (r || s || v).
type Signature [65]byte

// String returns the hex encoding of the signature, 0x-prefixed.
func (s Signature) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// EthereumAddress returns the 20-byte Ethereum-style address for a: the low
// 20 bytes of Keccak-256 over the 64-byte uncompressed public key. This is
// the "Merkle-tree form" used to commit to authority sets (§3).
func (a AuthorityID) EthereumAddress() ([20]byte, error) {
	var addr [20]byte

	pub, err := crypto.DecompressPubkey(a[:])
	if err != nil {
		return addr, fmt.Errorf("decompress authority id %s: %w", a, err)
	}

	// FromECDSAPub is the 0x04-prefixed 65-byte uncompressed form, already
	// zero-padded to 32 bytes per coordinate; strip the prefix before
	// hashing (big.Int.Bytes() alone would drop leading zero bytes on
	// small coordinates and misalign the hash input).
	uncompressed := crypto.FromECDSAPub(pub)[1:]

	hash := crypto.Keccak256(uncompressed)
	copy(addr[:], hash[12:])

	return addr, nil
}

// ValidatorSet is an ordered sequence of authority identities together with
// a monotonically increasing set id. Order is significant: a round's
// signature result is a positional vector aligned to this order.
type ValidatorSet struct {
	Authorities []AuthorityID
	ID          uint64
}

// GenesisAuthoritySetID is the id of the first validator set a chain starts
// with.
const GenesisAuthoritySetID uint64 = 0

// Len returns the number of authorities in the set.
func (vs ValidatorSet) Len() int {
	return len(vs.Authorities)
}

// IndexOf returns the position of id within the set, or -1 if absent.
func (vs ValidatorSet) IndexOf(id AuthorityID) int {
	for i, a := range vs.Authorities {
		if a == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is a member of the set.
func (vs ValidatorSet) Contains(id AuthorityID) bool {
	return vs.IndexOf(id) >= 0
}

// Threshold returns n - floor((n-1)/3), the number of distinct signatures
// required for a round to be considered done.
func Threshold(n int) int {
	if n == 0 {
		return 0
	}
	faulty := (n - 1) / 3
	return n - faulty
}
