// Package metrics implements the ambient Prometheus instrumentation (C9):
// one gauge/counter per metric_inc!/metric_set! call site named in
// original_source/beefy-gadget/src/worker.rs.
//
// Grounded on certenIO-certen-validator/pkg/consensus's constructor-
// injected-collaborator style and the prometheus/client_golang dependency
// carried by luxfi-consensus's go.mod; registered on a caller-supplied
// prometheus.Registerer rather than the global default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set bundles the six counters/gauges the voter worker reports against,
// and structurally satisfies pkg/voter.Metrics.
type Set struct {
	shouldVoteOn    prometheus.Gauge
	votesSent       prometheus.Counter
	roundConcluded  prometheus.Gauge
	bestBlock       prometheus.Gauge
	validatorSetID  prometheus.Gauge
	skippedSessions prometheus.Counter
}

// NewSet constructs and registers a Set of metrics on reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		shouldVoteOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beefy_should_vote_on",
			Help: "Block number the voter worker is currently targeting as its vote candidate.",
		}),
		votesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beefy_votes_sent",
			Help: "Number of votes this node has broadcast.",
		}),
		roundConcluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beefy_round_concluded",
			Help: "Block number of the most recently concluded round.",
		}),
		bestBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beefy_best_block",
			Help: "Highest block number seen finalized by the primary engine.",
		}),
		validatorSetID: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beefy_validator_set_id",
			Help: "Currently active validator set id.",
		}),
		skippedSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "beefy_skipped_sessions",
			Help: "Number of validator-set id values skipped over during a set change.",
		}),
	}

	reg.MustRegister(
		s.shouldVoteOn,
		s.votesSent,
		s.roundConcluded,
		s.bestBlock,
		s.validatorSetID,
		s.skippedSessions,
	)

	return s
}

func (s *Set) SetShouldVoteOn(blockNumber uint64)   { s.shouldVoteOn.Set(float64(blockNumber)) }
func (s *Set) IncVotesSent()                        { s.votesSent.Inc() }
func (s *Set) SetRoundConcluded(blockNumber uint64) { s.roundConcluded.Set(float64(blockNumber)) }
func (s *Set) SetBestBlock(blockNumber uint64)      { s.bestBlock.Set(float64(blockNumber)) }
func (s *Set) SetValidatorSetID(id uint64)          { s.validatorSetID.Set(float64(id)) }
func (s *Set) IncSkippedSessions(n int) {
	if n > 0 {
		s.skippedSessions.Add(float64(n))
	}
}
