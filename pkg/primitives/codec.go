package primitives

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// rlpCommitment mirrors Commitment with RLP-friendly field types. go-ethereum's
// rlp package encodes bool natively, so IsSetTransition needs no wrapping.
type rlpCommitment struct {
	Payload         [32]byte
	BlockNumber     uint64
	ValidatorSetID  uint64
	IsSetTransition bool
}

// EncodeCommitment returns the canonical wire encoding of c, the exact bytes
// the keystore signs over (after Keccak-256 prehashing) and that are
// gossiped alongside a vote (§6 "canonical variable-length encoding").
func EncodeCommitment(c Commitment) ([]byte, error) {
	return rlp.EncodeToBytes(rlpCommitment{
		Payload:         c.Payload,
		BlockNumber:     c.BlockNumber,
		ValidatorSetID:  c.ValidatorSetID,
		IsSetTransition: c.IsSetTransition,
	})
}

// DecodeCommitment reverses EncodeCommitment.
func DecodeCommitment(data []byte) (Commitment, error) {
	var r rlpCommitment
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return Commitment{}, err
	}
	return Commitment{
		Payload:         r.Payload,
		BlockNumber:     r.BlockNumber,
		ValidatorSetID:  r.ValidatorSetID,
		IsSetTransition: r.IsSetTransition,
	}, nil
}

// rlpSignedCommitment mirrors SignedCommitment; nil signature slots encode
// as a zero-length byte slice so the positional alignment with the
// validator set survives the wire.
type rlpSignedCommitment struct {
	Commitment rlpCommitment
	Signatures [][]byte
}

// EncodeSignedCommitment returns the canonical wire encoding of sc.
func EncodeSignedCommitment(sc SignedCommitment) ([]byte, error) {
	sigs := make([][]byte, len(sc.Signatures))
	for i, s := range sc.Signatures {
		if s == nil {
			sigs[i] = nil
			continue
		}
		sigs[i] = append([]byte(nil), s[:]...)
	}
	return rlp.EncodeToBytes(rlpSignedCommitment{
		Commitment: rlpCommitment{
			Payload:         sc.Commitment.Payload,
			BlockNumber:     sc.Commitment.BlockNumber,
			ValidatorSetID:  sc.Commitment.ValidatorSetID,
			IsSetTransition: sc.Commitment.IsSetTransition,
		},
		Signatures: sigs,
	})
}

// DecodeSignedCommitment reverses EncodeSignedCommitment.
func DecodeSignedCommitment(data []byte) (SignedCommitment, error) {
	var r rlpSignedCommitment
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return SignedCommitment{}, err
	}
	sigs := make([]*Signature, len(r.Signatures))
	for i, raw := range r.Signatures {
		if len(raw) == 0 {
			continue
		}
		var s Signature
		copy(s[:], raw)
		sigs[i] = &s
	}
	return SignedCommitment{
		Commitment: Commitment{
			Payload:         r.Commitment.Payload,
			BlockNumber:     r.Commitment.BlockNumber,
			ValidatorSetID:  r.Commitment.ValidatorSetID,
			IsSetTransition: r.Commitment.IsSetTransition,
		},
		Signatures: sigs,
	}, nil
}

// rlpLeaf mirrors Leaf's fields below the version byte (the version is
// handled separately by the caller, since its major/minor split governs
// whether the remainder is even decodable).
type rlpLeaf struct {
	ParentNumber         uint64
	ParentHash           [32]byte
	NextAuthoritySetID   uint64
	NextAuthoritySetLen  uint32
	NextAuthoritySetRoot [32]byte
	ParachainHeadsRoot   [32]byte
	Extended             []byte
}

// EncodeLeaf returns the RLP encoding of l's fields below the version byte.
// Callers that need the full wire form (§6 "double-wrapped... outer
// variable-length byte vector") prepend the version byte and, if they want
// the outer Data wrapper, a leading 0x00.
func EncodeLeaf(l Leaf) ([]byte, error) {
	return rlp.EncodeToBytes(rlpLeaf{
		ParentNumber:         l.ParentNumber,
		ParentHash:           l.ParentHash,
		NextAuthoritySetID:   l.NextAuthoritySet.ID,
		NextAuthoritySetLen:  l.NextAuthoritySet.Len,
		NextAuthoritySetRoot: l.NextAuthoritySet.Root,
		ParachainHeadsRoot:   l.ParachainHeadsRoot,
		Extended:             l.Extended,
	})
}

// DecodeLeafFields reverses EncodeLeaf; the caller is responsible for
// setting the returned Leaf's Version field from the byte that preceded
// this payload.
func DecodeLeafFields(data []byte) (Leaf, error) {
	var r rlpLeaf
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return Leaf{}, err
	}
	return Leaf{
		ParentNumber: r.ParentNumber,
		ParentHash:   r.ParentHash,
		NextAuthoritySet: NextAuthoritySetDescriptor{
			ID:   r.NextAuthoritySetID,
			Len:  r.NextAuthoritySetLen,
			Root: r.NextAuthoritySetRoot,
		},
		ParachainHeadsRoot: r.ParachainHeadsRoot,
		Extended:           r.Extended,
	}, nil
}

// rlpVoteMessage mirrors VoteMessage for the wire.
type rlpVoteMessage struct {
	Commitment rlpCommitment
	ID         []byte
	Signature  []byte
}

// EncodeVoteMessage returns the canonical wire encoding of a gossiped vote.
func EncodeVoteMessage(vm VoteMessage) ([]byte, error) {
	return rlp.EncodeToBytes(rlpVoteMessage{
		Commitment: rlpCommitment{
			Payload:         vm.Commitment.Payload,
			BlockNumber:     vm.Commitment.BlockNumber,
			ValidatorSetID:  vm.Commitment.ValidatorSetID,
			IsSetTransition: vm.Commitment.IsSetTransition,
		},
		ID:        vm.ID[:],
		Signature: vm.Signature[:],
	})
}

// DecodeVoteMessage reverses EncodeVoteMessage.
func DecodeVoteMessage(data []byte) (VoteMessage, error) {
	var r rlpVoteMessage
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return VoteMessage{}, err
	}
	var vm VoteMessage
	vm.Commitment = Commitment{
		Payload:         r.Commitment.Payload,
		BlockNumber:     r.Commitment.BlockNumber,
		ValidatorSetID:  r.Commitment.ValidatorSetID,
		IsSetTransition: r.Commitment.IsSetTransition,
	}
	copy(vm.ID[:], r.ID)
	copy(vm.Signature[:], r.Signature)
	return vm, nil
}
