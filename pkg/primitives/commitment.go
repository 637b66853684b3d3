package primitives

import "fmt"

// Commitment is the payload a round of voting agrees on: an MMR root (or any
// 32-byte payload) anchored to a block number, tagged with the validator set
// that is expected to sign it.
//
// Grounded on original_source/primitives/src/commitment.rs's `Commitment`
// struct and its custom `Ord` impl (validator_set_id first, then
// block_number).
type Commitment struct {
	Payload         [32]byte
	BlockNumber     uint64
	ValidatorSetID  uint64
	IsSetTransition bool
}

// Compare orders commitments by validator_set_id first, then block_number,
// matching the Rust `Ord` impl exactly: two commitments from different set
// ids are never compared by block number alone.
func (c Commitment) Compare(other Commitment) int {
	if c.ValidatorSetID != other.ValidatorSetID {
		if c.ValidatorSetID < other.ValidatorSetID {
			return -1
		}
		return 1
	}
	if c.BlockNumber != other.BlockNumber {
		if c.BlockNumber < other.BlockNumber {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether c sorts before other.
func (c Commitment) Less(other Commitment) bool {
	return c.Compare(other) < 0
}

// RoundKey identifies a round of voting: the commitment minus its
// signatures. Rounds are keyed by (payload, block_number) — see
// original_source/beefy-gadget/src/round.rs's `Rounds<Hash, Number, ...>`
// BTreeMap key.
type RoundKey struct {
	Payload     [32]byte
	BlockNumber uint64
}

// Key derives the round key this commitment belongs to.
func (c Commitment) Key() RoundKey {
	return RoundKey{Payload: c.Payload, BlockNumber: c.BlockNumber}
}

// SignedCommitment pairs a commitment with a positional vector of optional
// signatures, aligned to the validator set's authority order. A nil entry
// means that authority has not (yet) signed.
type SignedCommitment struct {
	Commitment Commitment
	Signatures []*Signature
}

// NoOfSignatures counts the non-nil entries in Signatures.
func (sc SignedCommitment) NoOfSignatures() int {
	n := 0
	for _, s := range sc.Signatures {
		if s != nil {
			n++
		}
	}
	return n
}

// VoteMessage is what a single authority gossips: its signature over a
// commitment, together with the id that produced it.
type VoteMessage struct {
	Commitment Commitment
	ID         AuthorityID
	Signature  Signature
}

func (c Commitment) String() string {
	return fmt.Sprintf("Commitment{payload=%x, block=%d, set=%d, transition=%t}",
		c.Payload, c.BlockNumber, c.ValidatorSetID, c.IsSetTransition)
}
