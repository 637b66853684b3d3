// Package notification implements a multi-subscriber, best-effort
// broadcast of successfully concluded signed commitments (C7).
//
// Grounded on the single-consumer Events()/Errors() channel pattern in
// certenIO-certen-validator/pkg/anchor/event_watcher.go, generalized here
// to fan out to any number of subscribers instead of one.
package notification

import (
	"sync"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

// channelBufferSize is how many pending commitments a slow subscriber may
// fall behind by before further sends to it are dropped.
const channelBufferSize = 8

// Stream fans out concluded signed commitments to any number of
// subscribers. Delivery is best-effort: a subscriber that does not drain
// its channel fast enough silently misses notifications rather than
// stalling the publisher.
type Stream struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewStream constructs an empty notification stream.
func NewStream() *Stream {
	return &Stream{subs: make(map[*Subscription]struct{})}
}

// Subscription is a single subscriber's view of the stream. Receive from
// Commitments() until Unsubscribe is called or the stream is closed, at
// which point the channel is closed.
type Subscription struct {
	ch     chan primitives.SignedCommitment
	stream *Stream
}

// Commitments returns the channel this subscription receives concluded
// commitments on.
func (s *Subscription) Commitments() <-chan primitives.SignedCommitment {
	return s.ch
}

// Unsubscribe detaches this subscription from the stream and closes its
// channel. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.stream.mu.Lock()
	defer s.stream.mu.Unlock()

	if _, ok := s.stream.subs[s]; !ok {
		return
	}
	delete(s.stream.subs, s)
	close(s.ch)
}

// Subscribe registers a new subscriber and returns its handle.
func (st *Stream) Subscribe() *Subscription {
	st.mu.Lock()
	defer st.mu.Unlock()

	sub := &Subscription{
		ch:     make(chan primitives.SignedCommitment, channelBufferSize),
		stream: st,
	}
	st.subs[sub] = struct{}{}
	return sub
}

// Publish delivers sc to every current subscriber. A subscriber whose
// buffer is full is skipped for this notification rather than blocking the
// publisher or the other subscribers.
func (st *Stream) Publish(sc primitives.SignedCommitment) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for sub := range st.subs {
		select {
		case sub.ch <- sc:
		default:
		}
	}
}

// Close unsubscribes and closes every outstanding subscription.
func (st *Stream) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for sub := range st.subs {
		delete(st.subs, sub)
		close(sub.ch)
	}
}
