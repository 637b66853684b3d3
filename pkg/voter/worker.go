// Package voter implements the voter worker (C4): it consumes finality
// events and gossiped votes, enforces vote cadence, signs, broadcasts,
// concludes rounds, and emits signed commitments.
//
// Grounded on original_source/beefy-gadget/src/worker.rs's `BeefyWorker`
// (`should_vote_on`, `handle_finality_notification`, `handle_vote`, the
// `futures::select!`-based `run` loop), translated to a goroutine plus a
// `select` over channels in the style of
// certenIO-certen-validator/pkg/consensus/health_monitor.go and
// pkg/anchor/event_watcher.go.
package voter

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
	"github.com/oceanbridge/beefy-gadget/pkg/round"
)

// FinalityNotification carries everything the worker needs out of a
// primary-engine finality event for header h: its number, the decoded
// MMR-root payload (nil if the digest carries none), and an optional
// authority-set change (nil if no change was detected in h's digest or via
// the runtime query — both are the external collaborator's job, not the
// worker's, per §1's out-of-scope boundary).
type FinalityNotification struct {
	Number    uint64
	Hash      [32]byte
	MMRRoot   *[32]byte
	SetChange *primitives.ValidatorSet
}

// FinalitySource is the primary finality engine's contract with the
// worker: a stream of finality notifications. Modeled as an interface
// because the primary engine is an out-of-scope external collaborator
// (§1, §5 expansion).
type FinalitySource interface {
	Notifications() <-chan FinalityNotification
}

// GossipEngine is the gossip transport's contract with the worker: a
// stream of decoded incoming votes, a way to broadcast an outgoing one,
// and a signal for when the engine itself has terminated.
type GossipEngine interface {
	Votes() <-chan primitives.VoteMessage
	Broadcast(vm primitives.VoteMessage) error
	Done() <-chan struct{}
}

// Signer is the subset of pkg/keystore.Keystore the worker needs.
type Signer interface {
	LocalID(candidates []primitives.AuthorityID) (primitives.AuthorityID, bool)
	Sign(id primitives.AuthorityID, message []byte) (primitives.Signature, error)
}

// Metrics is the worker's view of C9's instrumentation — defined here, by
// the consumer, so pkg/metrics needs no dependency on pkg/voter (the
// concrete metrics.Set and a no-op test double both satisfy it
// structurally).
type Metrics interface {
	SetShouldVoteOn(blockNumber uint64)
	IncVotesSent()
	SetRoundConcluded(blockNumber uint64)
	SetBestBlock(blockNumber uint64)
	SetValidatorSetID(id uint64)
	IncSkippedSessions(n int)
}

// NoopMetrics discards every call; useful in tests that don't care about
// instrumentation.
type NoopMetrics struct{}

func (NoopMetrics) SetShouldVoteOn(uint64)   {}
func (NoopMetrics) IncVotesSent()            {}
func (NoopMetrics) SetRoundConcluded(uint64) {}
func (NoopMetrics) SetBestBlock(uint64)      {}
func (NoopMetrics) SetValidatorSetID(uint64) {}
func (NoopMetrics) IncSkippedSessions(int)   {}

// Publisher is the subset of pkg/notification.Stream the worker needs.
type Publisher interface {
	Publish(sc primitives.SignedCommitment)
}

// Config bundles the worker's tunables.
type Config struct {
	MinBlockDelta uint64

	// GossipStaleWindow is how many blocks behind the best round seen so
	// far an incoming vote may still be before the gossip validator
	// drops it (§4.4 "Gossip validation").
	GossipStaleWindow uint64

	// Clock is consulted for log timestamps instead of time.Now, so
	// tests can control timing without sleeping. Defaults to the real
	// wall clock when nil.
	Clock Clock
}

// Worker is the voter worker task described by C4. One Worker instance
// owns one node's voting lifecycle for a single primary chain.
type Worker struct {
	log *log.Logger

	keystore  Signer
	finality  FinalitySource
	gossip    GossipEngine
	publisher Publisher
	metrics   Metrics

	minBlockDelta uint64
	gossipValid   *GossipValidator
	clock         Clock

	// gossipMu guards calls into the shared gossip engine, held only
	// across individual Broadcast calls (§5 "short-hold mutex").
	gossipMu sync.Mutex

	// mutated only from within Run's single logical thread.
	bestPrimaryFinalized uint64
	bestCommitted        *uint64
	set                  primitives.ValidatorSet
	rounds               *round.Rounds
	lastSignedSetID      uint64
}

// New constructs a Worker over the initial validator set.
func New(logger *log.Logger, keystore Signer, finality FinalitySource, gossip GossipEngine, publisher Publisher, metrics Metrics, set primitives.ValidatorSet, cfg Config) *Worker {
	if logger == nil {
		logger = log.Default()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Worker{
		log:             logger,
		keystore:        keystore,
		finality:        finality,
		gossip:          gossip,
		publisher:       publisher,
		metrics:         metrics,
		minBlockDelta:   cfg.MinBlockDelta,
		gossipValid:     NewGossipValidator(cfg.GossipStaleWindow),
		clock:           clock,
		set:             set,
		rounds:          round.New(set),
		lastSignedSetID: set.ID,
	}
}

// Run drives the worker's main loop until ctx's Done channel is closed or
// either input stream closes (§5: "closing any input stream terminates the
// worker"; "the gossip engine terminating also terminates the worker").
func (w *Worker) Run(done <-chan struct{}) {
	votes := w.gossip.Votes()
	finality := w.finality.Notifications()
	engineDone := w.gossip.Done()

	for {
		select {
		case <-done:
			return
		case <-engineDone:
			w.log.Printf("[voter] gossip engine terminated, stopping")
			return
		case n, ok := <-finality:
			if !ok {
				w.log.Printf("[voter] finality stream closed, stopping")
				return
			}
			w.handleFinalityNotification(n)
		case vm, ok := <-votes:
			if !ok {
				w.log.Printf("[voter] vote stream closed, stopping")
				return
			}
			if !w.gossipValid.Validate(vm.Commitment.BlockNumber) {
				w.log.Printf("[voter] dropping stale gossiped vote for block %d", vm.Commitment.BlockNumber)
				continue
			}
			w.handleVote(vm)
		}
	}
}

// handleFinalityNotification implements §4.4's "voting procedure on
// finality event for header h".
func (w *Worker) handleFinalityNotification(n FinalityNotification) {
	w.bestPrimaryFinalized = n.Number
	w.metrics.SetBestBlock(n.Number)

	if n.SetChange != nil && n.SetChange.ID != w.set.ID {
		oldID := w.set.ID
		newSet := *n.SetChange
		w.set = newSet
		w.rounds = round.New(newSet)

		// TODO: this resets best_committed to the transition block
		// unconditionally, which can cause the gadget to skip voting on
		// blocks between the old and new set's last round if the switch
		// lands mid-cadence. Carried over from the upstream worker
		// verbatim pending a redesign of round lifecycle across set
		// changes.
		committed := n.Number
		w.bestCommitted = &committed

		w.metrics.SetValidatorSetID(newSet.ID)
		if newSet.ID > oldID+1 {
			skipped := int(newSet.ID - oldID - 1)
			w.metrics.IncSkippedSessions(skipped)
		}
	}

	if w.bestCommitted == nil {
		zero := uint64(0)
		w.bestCommitted = &zero
	}

	candidate := voteCandidate(w.bestPrimaryFinalized, *w.bestCommitted, w.minBlockDelta)
	w.metrics.SetShouldVoteOn(candidate)

	if n.Number != candidate {
		return
	}

	localID, present := w.keystore.LocalID(w.set.Authorities)
	if !present {
		return
	}

	if n.MMRRoot == nil {
		w.log.Printf("[voter] block %d is the candidate but carries no MMR root digest, skipping", n.Number)
		return
	}

	commitment := primitives.Commitment{
		Payload:        *n.MMRRoot,
		BlockNumber:    n.Number,
		ValidatorSetID: w.set.ID,
	}

	encoded, err := primitives.EncodeCommitment(commitment)
	if err != nil {
		w.log.Printf("[voter] encode commitment for block %d: %v", n.Number, err)
		return
	}

	sig, err := w.keystore.Sign(localID, encoded)
	if err != nil {
		w.log.Printf("[voter] sign commitment for block %d: %v", n.Number, err)
		return
	}

	vm := primitives.VoteMessage{Commitment: commitment, ID: localID, Signature: sig}

	w.gossipMu.Lock()
	broadcastErr := w.gossip.Broadcast(vm)
	w.gossipMu.Unlock()
	if broadcastErr != nil {
		w.log.Printf("[voter] broadcast vote for block %d: %v", n.Number, broadcastErr)
	}
	w.metrics.IncVotesSent()

	correlationID := uuid.New()
	w.log.Printf("[voter] %s cast vote for block %d under set %d at %s", correlationID, n.Number, w.set.ID, w.clock.Now().Format(time.RFC3339))

	w.handleVote(vm)
}

// handleVote implements §4.4's "vote handling".
func (w *Worker) handleVote(vm primitives.VoteMessage) {
	// Step 1: inform the gossip validator of this round's block number so
	// stale votes for earlier rounds can be pruned (§4.4).
	w.gossipValid.NoteRound(vm.Commitment.BlockNumber)

	if vm.Commitment.ValidatorSetID != w.set.ID {
		return
	}

	key := vm.Commitment.Key()
	newlyAdded := w.rounds.AddVote(key, vm.ID, vm.Signature)
	if !newlyAdded {
		return
	}
	if !w.rounds.IsDone(key) {
		return
	}

	sigs, ok := w.rounds.Drop(key)
	if !ok {
		return
	}

	sc := primitives.SignedCommitment{Commitment: vm.Commitment, Signatures: sigs}

	committed := vm.Commitment.BlockNumber
	w.bestCommitted = &committed
	w.lastSignedSetID = w.set.ID
	w.metrics.SetRoundConcluded(committed)

	w.publisher.Publish(sc)
}
