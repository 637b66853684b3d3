package primitives

import "errors"

// LeafVersion packs a major (3-bit) and minor (5-bit) version number into a
// single byte: the high 3 bits are the major version, the low 5 bits the
// minor version. Grounded on original_source/beefy-mmr-pallet/src/lib.rs's
// `MmrLeafVersion` bitfield.
type LeafVersion uint8

// NewLeafVersion packs major and minor into a LeafVersion. major must fit in
// 3 bits (0-7) and minor in 5 bits (0-31); out-of-range values are masked.
func NewLeafVersion(major, minor uint8) LeafVersion {
	return LeafVersion((major&0x07)<<5 | (minor & 0x1f))
}

// Major returns the 3-bit major version.
func (v LeafVersion) Major() uint8 {
	return uint8(v) >> 5
}

// Minor returns the 5-bit minor version.
func (v LeafVersion) Minor() uint8 {
	return uint8(v) & 0x1f
}

// CurrentLeafVersion is the major.minor version this implementation emits
// and expects by default.
var CurrentLeafVersion = NewLeafVersion(0, 0)

// ErrLeafMajorVersionMismatch is returned by DecodeLeafVersion when the
// encoded major version differs from the one the caller expects — a hard
// incompatibility, since the major version gates the leaf's field layout.
var ErrLeafMajorVersionMismatch = errors.New("primitives: leaf major version mismatch")

// DecodeLeafVersion validates an on-the-wire LeafVersion byte against the
// major version this build understands. A minor-version difference is not
// fatal: it decodes successfully and the caller gets back a non-empty
// warning describing the skew, since minor versions only add optional
// trailing fields (§3, §9 "undocumented" forward-compatibility note).
func DecodeLeafVersion(raw uint8, expectedMajor uint8) (v LeafVersion, warning string, err error) {
	v = LeafVersion(raw)
	if v.Major() != expectedMajor {
		return v, "", ErrLeafMajorVersionMismatch
	}
	if v.Minor() != CurrentLeafVersion.Minor() {
		warning = "leaf minor version differs from expected; unknown trailing fields may be present"
	}
	return v, warning, nil
}

// NextAuthoritySetDescriptor commits to the authority set that will become
// active after the current one, so light clients can verify the handover
// without waiting for it to activate.
type NextAuthoritySetDescriptor struct {
	ID   uint64
	Len  uint32
	Root [32]byte
}

// Leaf is a single MMR leaf: enough data for a light client to track both
// chain state and the upcoming authority set, plus a commitment to
// parachain heads.
type Leaf struct {
	Version            LeafVersion
	ParentNumber       uint64
	ParentHash         [32]byte
	NextAuthoritySet   NextAuthoritySetDescriptor
	ParachainHeadsRoot [32]byte
	Extended           []byte
}
