package round

import (
	"testing"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

func mkSet(n int) primitives.ValidatorSet {
	ids := make([]primitives.AuthorityID, n)
	for i := range ids {
		ids[i][0] = byte(i + 1)
	}
	return primitives.ValidatorSet{Authorities: ids, ID: 0}
}

// TestThresholdForThreeAndFourAuthorities is S7.
func TestThresholdForThreeAndFourAuthorities(t *testing.T) {
	if got := primitives.Threshold(3); got != 3 {
		t.Fatalf("threshold(3) = %d, want 3", got)
	}
	if got := primitives.Threshold(4); got != 3 {
		t.Fatalf("threshold(4) = %d, want 3", got)
	}
}

// TestDropYieldsPositionalVector is S8: set [A,B,C], votes fed in order
// (C,sigC),(A,sigA) -> drop returns [Some(sigA), None, Some(sigC)].
func TestDropYieldsPositionalVector(t *testing.T) {
	set := mkSet(3)
	a, b, c := set.Authorities[0], set.Authorities[1], set.Authorities[2]
	_ = b

	r := New(set)
	key := primitives.RoundKey{BlockNumber: 1}

	sigC := primitives.Signature{0xc}
	sigA := primitives.Signature{0xa}

	r.AddVote(key, c, sigC)
	r.AddVote(key, a, sigA)

	got, ok := r.Drop(key)
	if !ok {
		t.Fatal("expected round to exist")
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0] == nil || *got[0] != sigA {
		t.Fatalf("got[0] = %v, want sigA", got[0])
	}
	if got[1] != nil {
		t.Fatalf("got[1] = %v, want nil", got[1])
	}
	if got[2] == nil || *got[2] != sigC {
		t.Fatalf("got[2] = %v, want sigC", got[2])
	}
}

func TestAddVoteDedups(t *testing.T) {
	set := mkSet(3)
	r := New(set)
	key := primitives.RoundKey{BlockNumber: 1}
	sig := primitives.Signature{1}

	if !r.AddVote(key, set.Authorities[0], sig) {
		t.Fatal("expected first add to report newly added")
	}
	if r.AddVote(key, set.Authorities[0], sig) {
		t.Fatal("expected duplicate add to report not newly added")
	}
}

func TestAddVoteAcceptsEquivocation(t *testing.T) {
	set := mkSet(3)
	r := New(set)
	key := primitives.RoundKey{BlockNumber: 1}

	sig1 := primitives.Signature{1}
	sig2 := primitives.Signature{2}

	if !r.AddVote(key, set.Authorities[0], sig1) {
		t.Fatal("expected first vote to be added")
	}
	if !r.AddVote(key, set.Authorities[0], sig2) {
		t.Fatal("expected a second, differing signature from the same id to be accepted")
	}
}

func TestIsDoneTracksThreshold(t *testing.T) {
	set := mkSet(4) // threshold(4) = 3
	r := New(set)
	key := primitives.RoundKey{BlockNumber: 1}

	if r.IsDone(key) {
		t.Fatal("a never-created round must not be done")
	}

	r.AddVote(key, set.Authorities[0], primitives.Signature{1})
	r.AddVote(key, set.Authorities[1], primitives.Signature{2})
	if r.IsDone(key) {
		t.Fatal("round with 2 votes of 4 (threshold 3) should not be done")
	}

	r.AddVote(key, set.Authorities[2], primitives.Signature{3})
	if !r.IsDone(key) {
		t.Fatal("round with 3 votes of 4 (threshold 3) should be done")
	}
}

func TestDropMissingRound(t *testing.T) {
	r := New(mkSet(3))
	if _, ok := r.Drop(primitives.RoundKey{BlockNumber: 99}); ok {
		t.Fatal("expected Drop on an unknown key to report false")
	}
}
