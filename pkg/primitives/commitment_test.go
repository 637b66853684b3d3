package primitives

import "testing"

// TestCommitmentOrdering mirrors the `commitment_ordering` test in
// original_source/primitives/src/commitment.rs: ordering is by
// validator_set_id first, block_number second, never the reverse.
func TestCommitmentOrdering(t *testing.T) {
	mk := func(block, set uint64) Commitment {
		return Commitment{BlockNumber: block, ValidatorSetID: set}
	}

	a := mk(1, 0)
	b := mk(2, 1)
	c := mk(10, 0)
	d := mk(10, 1)

	cases := []struct {
		name     string
		x, y     Commitment
		wantLess bool
	}{
		{"a<b", a, b, true},
		{"a<c", a, c, true},
		{"c<b", c, b, true},
		{"c<d", c, d, true},
		{"b<d", b, d, true},
	}

	for _, tc := range cases {
		if got := tc.x.Less(tc.y); got != tc.wantLess {
			t.Errorf("%s: Less() = %v, want %v", tc.name, got, tc.wantLess)
		}
	}
}

func TestCommitmentKey(t *testing.T) {
	c1 := Commitment{Payload: [32]byte{1}, BlockNumber: 5, ValidatorSetID: 0}
	c2 := Commitment{Payload: [32]byte{1}, BlockNumber: 5, ValidatorSetID: 1}

	if c1.Key() != c2.Key() {
		t.Fatalf("round key must ignore validator set id, got %v != %v", c1.Key(), c2.Key())
	}
}

func TestSignedCommitmentNoOfSignatures(t *testing.T) {
	sig := Signature{1}
	sc := SignedCommitment{Signatures: []*Signature{&sig, nil, &sig, nil}}
	if got := sc.NoOfSignatures(); got != 2 {
		t.Fatalf("NoOfSignatures() = %d, want 2", got)
	}
}

func TestEncodeDecodeSignedCommitmentRoundTrip(t *testing.T) {
	sig := Signature{0xaa}
	want := SignedCommitment{
		Commitment: Commitment{Payload: [32]byte{1, 2, 3}, BlockNumber: 42, ValidatorSetID: 7},
		Signatures: []*Signature{nil, &sig},
	}

	data, err := EncodeSignedCommitment(want)
	if err != nil {
		t.Fatalf("EncodeSignedCommitment: %v", err)
	}

	got, err := DecodeSignedCommitment(data)
	if err != nil {
		t.Fatalf("DecodeSignedCommitment: %v", err)
	}

	if got.Commitment != want.Commitment {
		t.Fatalf("commitment round-trip mismatch: got %+v, want %+v", got.Commitment, want.Commitment)
	}
	if len(got.Signatures) != len(want.Signatures) || got.Signatures[0] != nil || *got.Signatures[1] != *want.Signatures[1] {
		t.Fatalf("signatures round-trip mismatch: got %+v", got.Signatures)
	}
}

func TestThreshold(t *testing.T) {
	cases := map[int]int{
		0:  0,
		1:  1,
		3:  3,
		4:  3,
		7:  5,
		10: 7,
	}
	for n, want := range cases {
		if got := Threshold(n); got != want {
			t.Errorf("Threshold(%d) = %d, want %d", n, got, want)
		}
	}
}
