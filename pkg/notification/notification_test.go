package notification

import (
	"testing"
	"time"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	st := NewStream()
	a := st.Subscribe()
	b := st.Subscribe()

	sc := primitives.SignedCommitment{Commitment: primitives.Commitment{BlockNumber: 7}}
	st.Publish(sc)

	select {
	case got := <-a.Commitments():
		if got.Commitment.BlockNumber != 7 {
			t.Fatalf("a got block %d, want 7", got.Commitment.BlockNumber)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive the notification")
	}

	select {
	case got := <-b.Commitments():
		if got.Commitment.BlockNumber != 7 {
			t.Fatalf("b got block %d, want 7", got.Commitment.BlockNumber)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive the notification")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	st := NewStream()
	sub := st.Subscribe()
	sub.Unsubscribe()

	_, ok := <-sub.Commitments()
	if ok {
		t.Fatal("expected channel to be closed after Unsubscribe")
	}

	// publishing after unsubscribe must not panic or block
	st.Publish(primitives.SignedCommitment{})
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	st := NewStream()
	sub := st.Subscribe()

	for i := 0; i < channelBufferSize+5; i++ {
		st.Publish(primitives.SignedCommitment{Commitment: primitives.Commitment{BlockNumber: uint64(i)}})
	}

	if len(sub.Commitments()) != channelBufferSize {
		t.Fatalf("buffered count = %d, want %d", len(sub.Commitments()), channelBufferSize)
	}
}

func TestCloseClosesAllSubscriptions(t *testing.T) {
	st := NewStream()
	a := st.Subscribe()
	b := st.Subscribe()

	st.Close()

	if _, ok := <-a.Commitments(); ok {
		t.Fatal("expected a's channel closed")
	}
	if _, ok := <-b.Commitments(); ok {
		t.Fatal("expected b's channel closed")
	}
}
