package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// Length is the size of a rendered tracking token in hex characters.
// 32 random bytes give 256 bits of entropy, enough that enumeration or
// collision is not a practical concern.
const Length = 64

// MinLength is the shortest token the tracking endpoint accepts before
// touching storage. Anything shorter is rejected as malformed input.
const MinLength = 10

var ErrMalformed = errors.New("malformed tracking token")

// Generate returns a fresh tracking token from a cryptographically secure
// random source. Tokens embed no information: they cannot be derived from
// time, recipient or campaign.
func Generate() string {
	b := make([]byte, Length/2)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is broken,
		// there is nothing sensible to fall back to.
		panic("token: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// Validate checks the shape of an inbound token before any storage lookup.
func Validate(t string) error {
	if len(t) < MinLength {
		return ErrMalformed
	}
	return nil
}
