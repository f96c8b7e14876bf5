// Package identity turns an opaque caller credential into a trusted
// email/name pair. Cryptographic trust lives in the verifier implementations;
// the rest of the API only sees the verified Identity.
package identity

import (
	"context"
	"errors"
)

// ErrVerificationFailed indicates the credential could not be verified.
var ErrVerificationFailed = errors.New("identity verification failed")

// Identity is a verified email and display name.
type Identity struct {
	Email string
	Name  string
}

// Verifier validates an opaque credential and extracts the identity it asserts.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}
