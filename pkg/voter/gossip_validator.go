package voter

import "sync"

// GossipValidator implements §4.4's "Gossip validation": a pure, I/O-free
// filter that drops incoming votes whose embedded block number falls more
// than a configurable window behind the current best round. It is informed
// of the best round seen via NoteRound (vote-handling step 1) and consulted
// by Run before a gossiped vote ever reaches handleVote.
//
// Grounded on original_source/beefy-gadget/src/worker.rs's
// GossipValidator::note_round/validate pair, translated from a libp2p
// MessageId accept/reject table into a mutex-guarded block-number window.
type GossipValidator struct {
	mu        sync.Mutex
	window    uint64
	bestRound uint64
}

// NewGossipValidator constructs a validator that accepts votes no more
// than window blocks behind the best round it has been told about.
func NewGossipValidator(window uint64) *GossipValidator {
	return &GossipValidator{window: window}
}

// NoteRound records that round is the best (highest) block number the
// worker has observed a vote for, so older rounds can subsequently be
// pruned. Mirrors §4.4 vote-handling step 1.
func (v *GossipValidator) NoteRound(blockNumber uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if blockNumber > v.bestRound {
		v.bestRound = blockNumber
	}
}

// Validate reports whether blockNumber is within the staleness window of
// the best round seen so far. Pure and side-effect free, per §4.4
// "Validation is pure (no I/O)".
func (v *GossipValidator) Validate(blockNumber uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if blockNumber >= v.bestRound {
		return true
	}
	return v.bestRound-blockNumber <= v.window
}
