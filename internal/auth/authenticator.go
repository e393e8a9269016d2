// Package auth decides whether an ingested body is accepted.
//
// The secured path runs a fixed sequence: the signature must be present, it
// must equal the lowercase hex HMAC-SHA256 of the raw body under the shared
// key, and only then is the body parsed as JSON. A body with a bad signature
// is never parsed.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/mattjoyce/sensorgate/internal/payload"
)

// Authenticator verifies signed bodies against one shared secret.
// It holds no mutable state and is safe for concurrent use.
type Authenticator struct {
	key []byte
}

// New returns an Authenticator keyed by a private copy of key.
func New(key []byte) (*Authenticator, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Authenticator{key: k}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of body.
func (a *Authenticator) Sign(body []byte) string {
	mac := hmac.New(sha256.New, a.key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate checks signature against body and parses the body if it matches.
// An empty signature is treated the same as an absent one.
func (a *Authenticator) Authenticate(body []byte, signature string) Outcome {
	if signature == "" {
		return rejected(MissingSignature, ErrMissingSignature)
	}

	if !constantTimeEqual(signature, a.Sign(body)) {
		return rejected(InvalidSignature, ErrInvalidSignature)
	}

	return parse(body)
}

// ParseUnauthenticated parses body without any signature check.
func (a *Authenticator) ParseUnauthenticated(body []byte) Outcome {
	return parse(body)
}

func parse(body []byte) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rejected(InternalError, fmt.Errorf("%w: %v", ErrInternal, r))
		}
	}()

	v, err := payload.Parse(body)
	if err != nil {
		if payload.IsMalformed(err) {
			return rejected(MalformedPayload, fmt.Errorf("%w: %w", ErrMalformedPayload, err))
		}
		return rejected(InternalError, fmt.Errorf("%w: %w", ErrInternal, err))
	}
	return accepted(v)
}

// constantTimeEqual compares lengths first (lengths are public) and then the
// content in time independent of where the inputs differ.
func constantTimeEqual(provided, expected string) bool {
	if len(provided) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
