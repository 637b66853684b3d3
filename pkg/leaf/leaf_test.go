package leaf

import (
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/oceanbridge/beefy-gadget/pkg/primitives"
)

func genAuthority(t *testing.T) primitives.AuthorityID {
	t.Helper()
	priv, err := gethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var id primitives.AuthorityID
	copy(id[:], gethcrypto.CompressPubkey(&priv.PublicKey))
	return id
}

func TestNextAuthoritySetDescriptorCaching(t *testing.T) {
	p := NewProvider(0)
	next := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{genAuthority(t), genAuthority(t)}, ID: 1}

	first, err := p.nextAuthoritySetDescriptor(next)
	if err != nil {
		t.Fatalf("nextAuthoritySetDescriptor: %v", err)
	}
	if first.ID != 1 || first.Len != 2 {
		t.Fatalf("unexpected descriptor: %+v", first)
	}

	// same next id: must be served from cache (identical root byte-for-byte)
	second, err := p.nextAuthoritySetDescriptor(next)
	if err != nil {
		t.Fatalf("nextAuthoritySetDescriptor: %v", err)
	}
	if second.Root != first.Root {
		t.Fatal("expected cached descriptor to be returned unchanged")
	}

	// different next id: must recompute
	changed := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{genAuthority(t)}, ID: 2}
	third, err := p.nextAuthoritySetDescriptor(changed)
	if err != nil {
		t.Fatalf("nextAuthoritySetDescriptor: %v", err)
	}
	if third.ID != 2 || third.Len != 1 {
		t.Fatalf("expected recomputed descriptor for new set id, got %+v", third)
	}
}

func TestNextAuthoritySetDescriptorRejectsMalformedAuthority(t *testing.T) {
	p := NewProvider(0)
	var malformed primitives.AuthorityID // all-zero bytes do not decompress to a valid point
	next := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{malformed}, ID: 1}

	if _, err := p.nextAuthoritySetDescriptor(next); err == nil {
		t.Fatal("expected an error for a malformed authority id instead of silently dropping it")
	}
}

func TestBuildProducesVersionedLeaf(t *testing.T) {
	p := NewProvider(0)
	next := primitives.ValidatorSet{Authorities: []primitives.AuthorityID{genAuthority(t)}, ID: 1}
	heads := []ParachainHead{
		{ParaID: 2, Head: []byte("parachain-2-head")},
		{ParaID: 1, Head: []byte("parachain-1-head")},
	}

	l, err := p.Build(10, [32]byte{1, 2, 3}, heads, next)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if l.Version != primitives.CurrentLeafVersion {
		t.Fatalf("version = %v, want %v", l.Version, primitives.CurrentLeafVersion)
	}
	if l.ParentNumber != 10 {
		t.Fatalf("parent number = %d, want 10", l.ParentNumber)
	}
	if l.NextAuthoritySet.ID != 1 {
		t.Fatalf("next authority set id = %d, want 1", l.NextAuthoritySet.ID)
	}
	if l.ParachainHeadsRoot == ([32]byte{}) {
		t.Fatal("expected a non-zero parachain heads root for non-empty heads")
	}
}

func TestParachainHeadsRootIsOrderIndependent(t *testing.T) {
	a := []ParachainHead{{ParaID: 1, Head: []byte("x")}, {ParaID: 2, Head: []byte("y")}}
	b := []ParachainHead{{ParaID: 2, Head: []byte("y")}, {ParaID: 1, Head: []byte("x")}}

	if parachainHeadsRoot(a) != parachainHeadsRoot(b) {
		t.Fatal("expected parachain heads root to be independent of input order")
	}
}
