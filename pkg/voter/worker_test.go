package voter

import (
	"crypto/ecdsa"
	"log"
	"testing"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/oceanbridge/beefy-gadget/pkg/keystore"
	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

type fakeFinality struct {
	ch chan FinalityNotification
}

func newFakeFinality() *fakeFinality {
	return &fakeFinality{ch: make(chan FinalityNotification, 16)}
}
func (f *fakeFinality) Notifications() <-chan FinalityNotification { return f.ch }

type fakeGossip struct {
	votesCh chan primitives.VoteMessage
	doneCh  chan struct{}
	sent    []primitives.VoteMessage
}

func newFakeGossip() *fakeGossip {
	return &fakeGossip{
		votesCh: make(chan primitives.VoteMessage, 16),
		doneCh:  make(chan struct{}),
	}
}
func (g *fakeGossip) Votes() <-chan primitives.VoteMessage { return g.votesCh }
func (g *fakeGossip) Done() <-chan struct{}                { return g.doneCh }
func (g *fakeGossip) Broadcast(vm primitives.VoteMessage) error {
	g.sent = append(g.sent, vm)
	// the vote is only recorded, not looped back into the vote stream; tests
	// that need it delivered feed it in manually.
	return nil
}

type fakePublisher struct {
	published []primitives.SignedCommitment
}

func (p *fakePublisher) Publish(sc primitives.SignedCommitment) {
	p.published = append(p.published, sc)
}

func buildSingleAuthorityKeystore(t *testing.T) (*keystore.Keystore, primitives.AuthorityID, primitives.ValidatorSet) {
	t.Helper()

	priv, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	ks, err := keystore.New([]*ecdsa.PrivateKey{priv})
	if err != nil {
		t.Fatalf("keystore.New: %v", err)
	}

	var id primitives.AuthorityID
	copy(id[:], gethcrypto.CompressPubkey(&priv.PublicKey))

	set := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{id}, ID: 0}
	return ks, id, set
}

func TestHandleFinalityNotificationVotesOnCandidateBlock(t *testing.T) {
	ks, id, set := buildSingleAuthorityKeystore(t)

	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1})

	root := [32]byte{0xaa}
	w.handleFinalityNotification(FinalityNotification{Number: 1, MMRRoot: &root})

	if len(gossip.sent) != 1 {
		t.Fatalf("expected 1 vote broadcast, got %d", len(gossip.sent))
	}
	if gossip.sent[0].ID != id {
		t.Fatalf("vote id = %s, want %s", gossip.sent[0].ID, id)
	}

	// single authority: round concludes immediately with threshold 1
	if len(pub.published) != 1 {
		t.Fatalf("expected round to conclude and publish once, got %d", len(pub.published))
	}
	if pub.published[0].Commitment.BlockNumber != 1 {
		t.Fatalf("published block = %d, want 1", pub.published[0].Commitment.BlockNumber)
	}
}

func TestHandleFinalityNotificationSkipsNonCandidateBlock(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)

	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	// min_block_delta=4, best_committed=0 => candidate is 4; block 2 must not vote.
	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 4})

	root := [32]byte{0xbb}
	w.handleFinalityNotification(FinalityNotification{Number: 2, MMRRoot: &root})

	if len(gossip.sent) != 0 {
		t.Fatalf("expected no vote for non-candidate block, got %d", len(gossip.sent))
	}
}

func TestHandleFinalityNotificationSkipsWithoutMMRRoot(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)

	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1})
	w.handleFinalityNotification(FinalityNotification{Number: 1, MMRRoot: nil})

	if len(gossip.sent) != 0 {
		t.Fatalf("expected no vote when MMR root digest is absent, got %d", len(gossip.sent))
	}
}

func TestHandleVoteIgnoresDifferentSet(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)
	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1})

	vm := primitives.VoteMessage{
		Commitment: primitives.Commitment{BlockNumber: 1, ValidatorSetID: set.ID + 1},
	}
	w.handleVote(vm)

	if len(pub.published) != 0 {
		t.Fatal("expected vote for a foreign validator set id to be ignored")
	}
}

func TestRunDropsStaleGossipedVotesBeforeHandleVote(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)
	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1, GossipStaleWindow: 2})
	w.gossipValid.NoteRound(100)

	runDone := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(done)
		close(runDone)
	}()

	// Far behind the noted best round (100) with a window of 2: must be
	// dropped before it ever reaches handleVote/round accumulation.
	gossip.votesCh <- primitives.VoteMessage{
		Commitment: primitives.Commitment{BlockNumber: 1, ValidatorSetID: set.ID},
	}

	close(done)
	<-runDone

	if len(pub.published) != 0 {
		t.Fatal("expected a stale gossiped vote to be dropped, not concluded and published")
	}
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func TestWorkerUsesInjectedClockForVoteLogging(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)
	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1, Clock: fakeClock{now: fixed}})

	if w.clock.Now() != fixed {
		t.Fatalf("clock.Now() = %v, want %v", w.clock.Now(), fixed)
	}

	root := [32]byte{0xcc}
	w.handleFinalityNotification(FinalityNotification{Number: 1, MMRRoot: &root})

	if len(gossip.sent) != 1 {
		t.Fatalf("expected 1 vote broadcast, got %d", len(gossip.sent))
	}
}

func TestRunStopsOnDoneSignal(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)
	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1})

	doneCh := make(chan struct{})
	runDone := make(chan struct{})
	go func() {
		w.Run(doneCh)
		close(runDone)
	}()

	close(doneCh)

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after done signal")
	}
}

func TestRunStopsWhenGossipEngineTerminates(t *testing.T) {
	ks, _, set := buildSingleAuthorityKeystore(t)
	finality := newFakeFinality()
	gossip := newFakeGossip()
	pub := &fakePublisher{}

	w := New(log.New(testWriter{t}, "", 0), ks, finality, gossip, pub, nil, set, Config{MinBlockDelta: 1})

	runDone := make(chan struct{})
	go func() {
		w.Run(make(chan struct{}))
		close(runDone)
	}()

	close(gossip.doneCh)

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after gossip engine terminated")
	}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
