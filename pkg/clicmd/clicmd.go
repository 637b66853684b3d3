// Package clicmd implements the pure-function CLI proof utilities (C8):
// uncompressing authority ids, generating/verifying Merkle proofs over
// authority addresses or parachain heads, and decoding MMR leaves. Each
// function here is a pure transform over byte/hex inputs; cmd/beefy-cli
// wires them into an actual command-line surface.
//
// Grounded on original_source/beefy-cli/src/cli/{uncompress_authorities,
// merkle_tree,mmr,utils}.rs, reimplemented against go-ethereum/crypto and
// this module's own RLP-based leaf codec instead of secp256k1+SCALE.
package clicmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/oceanbridge/beefy-gadget/pkg/merkle"
	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

// DecodeHex accepts both 0x-prefixed and bare hex strings, matching
// original_source/beefy-cli/src/cli/utils.rs's parse_hex.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}

// UncompressedAuthority pairs a compressed authority id with its
// uncompressed public-key form.
type UncompressedAuthority struct {
	ID           primitives.AuthorityID
	Uncompressed []byte
}

// UncompressAuthorityIDs decompresses each of ids into its 65-byte
// uncompressed secp256k1 public key form (0x04 prefix || X || Y).
func UncompressAuthorityIDs(ids []primitives.AuthorityID) ([]UncompressedAuthority, error) {
	out := make([]UncompressedAuthority, 0, len(ids))
	for _, id := range ids {
		pub, err := gethcrypto.DecompressPubkey(id[:])
		if err != nil {
			return nil, fmt.Errorf("clicmd: uncompress authority %s: %w", id, err)
		}
		out = append(out, UncompressedAuthority{ID: id, Uncompressed: gethcrypto.FromECDSAPub(pub)})
	}
	return out, nil
}

// AuthorityAddressLeaves derives the Ethereum-address ("Merkle-tree form")
// leaves for a slice of authority ids, suitable for feeding to
// GenerateProof / merkle.Root.
func AuthorityAddressLeaves(ids []primitives.AuthorityID) ([][]byte, error) {
	leaves := make([][]byte, len(ids))
	for i, id := range ids {
		addr, err := id.EthereumAddress()
		if err != nil {
			return nil, fmt.Errorf("clicmd: ethereum address for %s: %w", id, err)
		}
		cp := addr
		leaves[i] = cp[:]
	}
	return leaves, nil
}

// GenerateProof builds a Merkle proof for leafIndex over leaves — the
// shared implementation behind both `beefy-id-merkle-tree generate-proof`
// and `para-heads-merkle-tree generate-proof`.
func GenerateProof(leaves [][]byte, leafIndex int) (*merkle.Proof, error) {
	return merkle.GenerateProof(leaves, leafIndex)
}

// VerifyProof checks a Merkle proof against an expected root — the shared
// implementation behind both `...-merkle-tree verify-proof` subcommands.
func VerifyProof(rootHex string, proofHex []string, numberOfLeaves, leafIndex int, leaf []byte) (bool, error) {
	rootBytes, err := DecodeHex(rootHex)
	if err != nil {
		return false, fmt.Errorf("clicmd: decode root: %w", err)
	}
	if len(rootBytes) != 32 {
		return false, errors.New("clicmd: root must be 32 bytes")
	}
	var root merkle.Hash
	copy(root[:], rootBytes)

	proof := make([]merkle.Hash, len(proofHex))
	for i, ph := range proofHex {
		b, err := DecodeHex(ph)
		if err != nil {
			return false, fmt.Errorf("clicmd: decode proof element %d: %w", i, err)
		}
		if len(b) != 32 {
			return false, fmt.Errorf("clicmd: proof element %d must be 32 bytes", i)
		}
		copy(proof[i][:], b)
	}

	return merkle.VerifyProof(root, proof, numberOfLeaves, leafIndex, leaf), nil
}

// DecodeMMRLeaf decodes the wire form produced by EncodeMMRLeaf. A leading
// 0x00 byte is taken as an outer Data wrapper tag and stripped; no outer
// length prefix is read. The heuristic is fragile: a bare leaf whose
// version byte is 0x00 (as CurrentLeafVersion is) is indistinguishable from
// a wrapped one and loses its version byte. A minor-version warning from
// DecodeLeafVersion is not returned to the caller.
func DecodeMMRLeaf(raw []byte) (primitives.Leaf, error) {
	if len(raw) == 0 {
		return primitives.Leaf{}, errors.New("clicmd: empty leaf bytes")
	}

	payload := raw
	if raw[0] == 0x00 {
		payload = raw[1:]
	}

	return decodeLeafPayload(payload)
}

// decodeLeafPayload decodes the inner (unwrapped) leaf bytes: a one-byte
// LeafVersion followed by the RLP-encoded remainder.
func decodeLeafPayload(payload []byte) (primitives.Leaf, error) {
	if len(payload) < 1 {
		return primitives.Leaf{}, errors.New("clicmd: leaf payload too short")
	}

	version, _, err := primitives.DecodeLeafVersion(payload[0], primitives.CurrentLeafVersion.Major())
	if err != nil {
		return primitives.Leaf{}, fmt.Errorf("clicmd: decode leaf version: %w", err)
	}

	rest, err := primitives.DecodeLeafFields(payload[1:])
	if err != nil {
		return primitives.Leaf{}, fmt.Errorf("clicmd: decode leaf fields: %w", err)
	}
	rest.Version = version
	return rest, nil
}

// EncodeMMRLeaf produces the double-wrapped wire form of l: a leading
// 0x00 Data-wrapper tag, the version byte, then the RLP-encoded remainder.
func EncodeMMRLeaf(l primitives.Leaf) ([]byte, error) {
	fields, err := primitives.EncodeLeaf(l)
	if err != nil {
		return nil, fmt.Errorf("clicmd: encode leaf fields: %w", err)
	}
	out := make([]byte, 0, 2+len(fields))
	out = append(out, 0x00, byte(l.Version))
	out = append(out, fields...)
	return out, nil
}

// MMRStorageKey constructs the offchain storage key for MMR node position
// pos under the given indexing prefix: the raw prefix bytes followed by pos
// as 8 big-endian bytes. No length prefix or other codec framing is written.
func MMRStorageKey(prefix string, pos uint64) []byte {
	out := make([]byte, 0, len(prefix)+8)
	out = append(out, []byte(prefix)...)
	var posBytes [8]byte
	for i := 0; i < 8; i++ {
		posBytes[i] = byte(pos >> (8 * (7 - i)))
	}
	return append(out, posBytes[:]...)
}

// ParseUint64 is a small convenience wrapper used by the CLI layer to parse
// decimal block/position arguments with a clicmd-flavored error message.
func ParseUint64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("clicmd: parse uint64 %q: %w", s, err)
	}
	return v, nil
}
