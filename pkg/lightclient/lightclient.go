// Package lightclient implements the stateful light-client verifier (C5):
// it checks imported signed commitments against the active validator set,
// strict monotonicity, and a signature threshold.
//
// Grounded on original_source/beefy-light-client/src/client.rs's `Client`
// (`verify_signed`, `verify_signatures`, `signature_threshold`), translated
// from the Rust `Result<(), Error>` style into Go structured errors.
package lightclient

import (
	"fmt"

	"github.com/oceanbridge/beefy-gadget/pkg/keystore"
	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

// InvalidValidatorSetError is returned when a signed commitment's
// validator_set_id does not match the client's active set.
type InvalidValidatorSetError struct {
	Got, Want uint64
}

func (e *InvalidValidatorSetError) Error() string {
	return fmt.Sprintf("lightclient: invalid validator set: got %d, want %d", e.Got, e.Want)
}

// StaleBlockError is returned when an imported commitment's block number
// does not strictly advance on the previously imported one.
type StaleBlockError struct {
	Got, BestKnown uint64
}

func (e *StaleBlockError) Error() string {
	return fmt.Sprintf("lightclient: stale block: got %d, best known %d", e.Got, e.BestKnown)
}

// InsufficientSignaturesError is returned when the signature vector's
// length doesn't match the active set's size, or too few slots are
// present, to even attempt threshold verification.
type InsufficientSignaturesError struct {
	Got, Want int
}

func (e *InsufficientSignaturesError) Error() string {
	return fmt.Sprintf("lightclient: insufficient signatures: got %d, want at least %d", e.Got, e.Want)
}

// InsufficientValidSignaturesError is returned when enough signature slots
// are present but too few actually verify against their claimed authority.
type InsufficientValidSignaturesError struct {
	Got, Want int
}

func (e *InsufficientValidSignaturesError) Error() string {
	return fmt.Sprintf("lightclient: insufficient valid signatures: got %d, want at least %d", e.Got, e.Want)
}

// SignatureThreshold returns floor(2n/3) + 1, the number of valid
// signatures a signed commitment needs over an n-authority set.
func SignatureThreshold(n int) int {
	return (2*n)/3 + 1
}

// Client is a stateful light-client verifier for one chain. The zero value
// is not usable; construct with New.
type Client struct {
	active           primitives.ValidatorSet
	latestCommitment *primitives.Commitment
}

// New constructs a Client tracking active as its initial validator set.
func New(active primitives.ValidatorSet) *Client {
	return &Client{active: active}
}

// ActiveSet returns the client's current validator set.
func (c *Client) ActiveSet() primitives.ValidatorSet {
	return c.active
}

// LatestCommitment returns the most recently imported commitment, or false
// if none has been imported yet.
func (c *Client) LatestCommitment() (primitives.Commitment, bool) {
	if c.latestCommitment == nil {
		return primitives.Commitment{}, false
	}
	return *c.latestCommitment, true
}

// Import verifies signed against the client's active set and monotonicity
// requirement, and — on success — advances LatestCommitment. Mirrors
// Client::verify_signed's exact check ordering.
func (c *Client) Import(signed primitives.SignedCommitment) error {
	if signed.Commitment.ValidatorSetID != c.active.ID {
		return &InvalidValidatorSetError{Got: signed.Commitment.ValidatorSetID, Want: c.active.ID}
	}

	if c.latestCommitment != nil && signed.Commitment.BlockNumber <= c.latestCommitment.BlockNumber {
		return &StaleBlockError{Got: signed.Commitment.BlockNumber, BestKnown: c.latestCommitment.BlockNumber}
	}

	if err := c.verifySignatures(signed); err != nil {
		return err
	}

	commitment := signed.Commitment
	c.latestCommitment = &commitment
	return nil
}

// verifySignatures implements Client::verify_signatures: a length check,
// a present-count check against the threshold, then a valid-count check.
func (c *Client) verifySignatures(signed primitives.SignedCommitment) error {
	n := c.active.Len()
	threshold := SignatureThreshold(n)

	if len(signed.Signatures) != n {
		return &InsufficientSignaturesError{Got: len(signed.Signatures), Want: n}
	}

	present := signed.NoOfSignatures()
	if present < threshold {
		return &InsufficientSignaturesError{Got: present, Want: threshold}
	}

	encoded, err := primitives.EncodeCommitment(signed.Commitment)
	if err != nil {
		return fmt.Errorf("lightclient: encode commitment: %w", err)
	}

	valid := 0
	for i, sig := range signed.Signatures {
		if sig == nil {
			continue
		}
		if keystore.Verify(c.active.Authorities[i], *sig, encoded) {
			valid++
		}
	}
	if valid < threshold {
		return &InsufficientValidSignaturesError{Got: valid, Want: threshold}
	}

	return nil
}

// ImportAuthoritySetChange replaces the active validator set, e.g. after a
// verified "epoch import" carrying a Merkle proof of the next authority set
// (§4.5's "separate epoch import call", deferred wire format to §6 — the
// proof verification itself is pkg/merkle.VerifyProof over the new set's
// Ethereum-address leaves against NextAuthoritySetDescriptor.Root).
func (c *Client) ImportAuthoritySetChange(next primitives.ValidatorSet) {
	c.active = next
}
