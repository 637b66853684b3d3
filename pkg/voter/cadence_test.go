package voter

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[uint64]uint64{
		0:   1,
		1:   1,
		2:   2,
		3:   4,
		4:   4,
		5:   8,
		17:  32,
		256: 256,
	}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

// TestVoteCadenceCaughtUp is S6's first scenario: with min_delta=4,
// best_committed=0, successive best_primary_finalized values 1,2,3,4 all
// yield candidate 4.
func TestVoteCadenceCaughtUp(t *testing.T) {
	for _, finalized := range []uint64{1, 2, 3, 4} {
		if got := voteCandidate(finalized, 0, 4); got != 4 {
			t.Errorf("voteCandidate(%d, 0, 4) = %d, want 4", finalized, got)
		}
	}
}

// TestVoteCadenceBackoff is S6's second scenario.
func TestVoteCadenceBackoff(t *testing.T) {
	if got := voteCandidate(13, 10, 4); got != 14 {
		t.Fatalf("voteCandidate(13, 10, 4) = %d, want 14", got)
	}
}

func TestVoteCadenceLargeOutrun(t *testing.T) {
	// diff = 100 - 0 = 100, next_power_of_two(100) = 128, min_delta=4 loses.
	if got := voteCandidate(100, 0, 4); got != 128 {
		t.Fatalf("voteCandidate(100, 0, 4) = %d, want 128", got)
	}
}
