package booking

import (
	"crypto/rand"
	"fmt"
)

// referenceAlphabet omits 0/O, 1/I and lookalike letters so a code read
// over the phone or typed from a printed ticket cannot be ambiguous.
const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferenceLength is the fixed length of a booking reference.
const ReferenceLength = 8

// NewReference returns a random 8-character booking reference drawn
// from the unambiguous alphabet.  Uniqueness is enforced by the store;
// the ledger retries on collision.
func NewReference() (string, error) {
	buf := make([]byte, ReferenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate booking reference: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(buf), nil
}
