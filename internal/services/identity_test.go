package services

import "testing"

func TestResolveIdentityHashesOrigin(t *testing.T) {
	id := ResolveIdentity("203.0.113.7", "token-abc")

	if id.OriginFingerprint == "203.0.113.7" {
		t.Error("Origin must not appear in the fingerprint")
	}
	if len(id.OriginFingerprint) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(id.OriginFingerprint))
	}
	if id.ClientToken != "token-abc" {
		t.Errorf("Token should pass through unchanged, got %q", id.ClientToken)
	}
}

func TestResolveIdentityStable(t *testing.T) {
	a := ResolveIdentity("203.0.113.7", "t")
	b := ResolveIdentity("203.0.113.7", "t")
	if a.OriginFingerprint != b.OriginFingerprint {
		t.Error("Same origin must produce the same fingerprint")
	}

	c := ResolveIdentity("203.0.113.8", "t")
	if a.OriginFingerprint == c.OriginFingerprint {
		t.Error("Different origins must produce different fingerprints")
	}
}
