// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash for passwords longer than MaxLength.
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hasher produces and checks salted bcrypt hashes.
type Hasher struct {
	// Cost is the bcrypt work factor.
	Cost int
}

// New returns a Hasher with the given cost. Values outside bcrypt's
// accepted range fall back to bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns a bcrypt hash of raw with a fresh random salt, so hashing the
// same input twice yields different strings.
func (h *Hasher) Hash(raw string) (string, error) {
	if len(raw) > MaxLength {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether candidate matches hash. The comparison is constant
// time; a malformed hash simply yields false. Candidates longer than
// MaxLength never match since bcrypt would only compare their prefix.
func (h *Hasher) Verify(hash, candidate string) bool {
	if len(candidate) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
