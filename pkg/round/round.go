// Package round implements per-round vote accumulation, deduplication,
// threshold detection, and positional-signature extraction (C2).
//
// Grounded on original_source/beefy-gadget/src/round.rs's RoundTracker and
// Rounds types, translated from a BTreeMap keyed by (Hash, Number) into a
// Go map guarded by a mutex, in the style of
// certenIO-certen-validator/pkg/consensus/health_monitor.go's use of
// sync.RWMutex around plain maps.
package round

import (
	"sync"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

// vote is one (authority, signature) contribution to a round.
type vote struct {
	id  primitives.AuthorityID
	sig primitives.Signature
}

// tracker accumulates votes for a single round key.
type tracker struct {
	votes []vote
}

// addVote inserts (id, sig) if the exact pair is not already present.
// Returns true iff newly added. Two votes with the same id but different
// signatures (equivocation) are both kept — see DESIGN.md's open-question
// decision.
func (t *tracker) addVote(id primitives.AuthorityID, sig primitives.Signature) bool {
	for _, v := range t.votes {
		if v.id == id && v.sig == sig {
			return false
		}
	}
	t.votes = append(t.votes, vote{id: id, sig: sig})
	return true
}

func (t *tracker) isDone(threshold int) bool {
	return len(t.votes) >= threshold
}

// Rounds tracks one or more in-flight rounds for a single validator set.
// A Rounds instance is scoped to exactly one ValidatorSet for its whole
// lifetime (§3 invariant); on an authority-set change the caller discards
// this instance and constructs a fresh one.
type Rounds struct {
	mu     sync.Mutex
	set    primitives.ValidatorSet
	tracks map[primitives.RoundKey]*tracker
}

// New creates an empty Rounds scoped to set.
func New(set primitives.ValidatorSet) *Rounds {
	return &Rounds{
		set:    set,
		tracks: make(map[primitives.RoundKey]*tracker),
	}
}

// ValidatorSet returns the validator set this Rounds instance is scoped to.
func (r *Rounds) ValidatorSet() primitives.ValidatorSet {
	return r.set
}

// AddVote records (id, sig) for key, creating the round lazily on first
// vote. Returns true iff the pair was newly added.
func (r *Rounds) AddVote(key primitives.RoundKey, id primitives.AuthorityID, sig primitives.Signature) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tracks[key]
	if !ok {
		t = &tracker{}
		r.tracks[key] = t
	}
	return t.addVote(id, sig)
}

// IsDone reports whether key has accumulated at least threshold(n) distinct
// (id, sig) pairs, where n is the size of the scoped validator set. A round
// that was never created is not done.
func (r *Rounds) IsDone(key primitives.RoundKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tracks[key]
	if !ok {
		return false
	}
	return t.isDone(primitives.Threshold(r.set.Len()))
}

// Drop removes key's round and returns its votes rearranged into the
// canonical positional vector aligned with the scoped set's authority
// order; non-voters get a nil slot. Returns (nil, false) if the round was
// never created.
func (r *Rounds) Drop(key primitives.RoundKey) ([]*primitives.Signature, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tracks[key]
	if !ok {
		return nil, false
	}
	delete(r.tracks, key)

	out := make([]*primitives.Signature, r.set.Len())
	for _, v := range t.votes {
		idx := r.set.IndexOf(v.id)
		if idx < 0 {
			continue
		}
		sig := v.sig
		out[idx] = &sig
	}
	return out, true
}
