// Package keystore adapts a local set of secp256k1 private keys to the
// signing contract the voter worker and light client rely on (C3).
//
// Grounded on original_source/beefy-gadget/src/keystore.rs (the
// `BeefyKeystore` contract: `authority_id`, `sign`, `verify`, all operating
// on Keccak-256-prehashed messages) reimplemented against
// github.com/ethereum/go-ethereum/crypto instead of Substrate's
// SyncCryptoStore, in the style of
// certenIO-certen-validator/pkg/crypto/bls/bls.go (sized constants, a
// small typed error taxonomy instead of bare fmt.Errorf).
package keystore

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

// SignatureSize is the length in bytes of a recoverable ECDSA signature
// (r || s || v).
const SignatureSize = 65

// CryptoError is the taxonomy of failures a Keystore operation can return,
// mirroring original_source/beefy-gadget/src/error.rs's `Error::CannotSign`
// and `Error::InvalidSignature` variants.
type CryptoError struct {
	Kind    string
	Detail  string
	Wrapped error
}

func (e *CryptoError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("keystore: %s: %s: %v", e.Kind, e.Detail, e.Wrapped)
	}
	return fmt.Sprintf("keystore: %s: %s", e.Kind, e.Detail)
}

func (e *CryptoError) Unwrap() error { return e.Wrapped }

// ErrNoKey is returned by Sign when the keystore holds no private key for
// the requested authority id.
var ErrNoKey = errors.New("keystore: no key for requested authority id")

func cannotSign(id primitives.AuthorityID, detail string, wrapped error) error {
	return &CryptoError{Kind: "CannotSign", Detail: fmt.Sprintf("id=%s %s", id, detail), Wrapped: wrapped}
}

func invalidSignature(detail string, wrapped error) error {
	return &CryptoError{Kind: "InvalidSignature", Detail: detail, Wrapped: wrapped}
}

// Keystore is a local, in-memory keystore adapter. It is safe to call from
// multiple goroutines: the key map is never mutated after construction.
type Keystore struct {
	byID map[primitives.AuthorityID]*ecdsa.PrivateKey
}

// New builds a Keystore holding the given private keys, indexed by their
// derived compressed-public-key authority id.
func New(keys []*ecdsa.PrivateKey) (*Keystore, error) {
	byID := make(map[primitives.AuthorityID]*ecdsa.PrivateKey, len(keys))
	for _, k := range keys {
		id, err := authorityIDFromKey(k)
		if err != nil {
			return nil, err
		}
		byID[id] = k
	}
	return &Keystore{byID: byID}, nil
}

func authorityIDFromKey(k *ecdsa.PrivateKey) (primitives.AuthorityID, error) {
	var id primitives.AuthorityID
	compressed := gethcrypto.CompressPubkey(&k.PublicKey)
	if len(compressed) != len(id) {
		return id, invalidSignature("unexpected compressed public key length", nil)
	}
	copy(id[:], compressed)
	return id, nil
}

// LocalID returns the first candidate in candidates for which this keystore
// holds a private key, or false if none match. Mirrors
// BeefyKeystore::authority_id's "first match" semantics.
func (ks *Keystore) LocalID(candidates []primitives.AuthorityID) (primitives.AuthorityID, bool) {
	for _, c := range candidates {
		if _, ok := ks.byID[c]; ok {
			return c, true
		}
	}
	return primitives.AuthorityID{}, false
}

// Sign Keccak-256-hashes message and produces a recoverable ECDSA signature
// under id's key. Fails with CannotSign if the keystore holds no such key,
// or InvalidSignature if the raw signer output does not fit the expected
// 65-byte layout.
func (ks *Keystore) Sign(id primitives.AuthorityID, message []byte) (primitives.Signature, error) {
	var sig primitives.Signature

	key, ok := ks.byID[id]
	if !ok {
		return sig, cannotSign(id, "not present in keystore", ErrNoKey)
	}

	digest := gethcrypto.Keccak256(message)
	raw, err := gethcrypto.Sign(digest, key)
	if err != nil {
		return sig, cannotSign(id, "signer rejected digest", err)
	}
	if len(raw) != SignatureSize {
		return sig, invalidSignature(fmt.Sprintf("signer returned %d bytes, want %d", len(raw), SignatureSize), nil)
	}

	copy(sig[:], raw)
	return sig, nil
}

// Verify reports whether sig is a valid recoverable ECDSA signature by id
// over Keccak-256(message).
func Verify(id primitives.AuthorityID, sig primitives.Signature, message []byte) bool {
	digest := gethcrypto.Keccak256(message)

	recovered, err := gethcrypto.SigToPub(digest, sig[:])
	if err != nil {
		return false
	}

	compressed := gethcrypto.CompressPubkey(recovered)
	var recoveredID primitives.AuthorityID
	if len(compressed) != len(recoveredID) {
		return false
	}
	copy(recoveredID[:], compressed)

	return recoveredID == id
}
