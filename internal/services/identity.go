package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// Identity carries the two dedup fingerprints for a vote attempt.
type Identity struct {
	OriginFingerprint string
	ClientToken       string
}

// ResolveIdentity derives the participant identity from the inbound
// request. The origin fingerprint is a one-way digest of the caller's
// network origin; it is abuse deterrence, not authentication. The client
// token is an opaque random value the caller persists, so it is used
// as-is.
func ResolveIdentity(requestOrigin, suppliedToken string) Identity {
	sum := sha256.Sum256([]byte(requestOrigin))
	return Identity{
		OriginFingerprint: hex.EncodeToString(sum[:]),
		ClientToken:       suppliedToken,
	}
}
