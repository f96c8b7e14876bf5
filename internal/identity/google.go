package identity

import (
	"context"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// GoogleVerifier checks Google ID tokens against the configured OAuth client ID.
type GoogleVerifier struct {
	audience []string
}

// NewGoogleVerifier constructs a verifier trusting tokens issued for clientID.
func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id must not be empty")
	}

	return &GoogleVerifier{audience: []string{clientID}}, nil
}

// Verify validates the ID token signature and audience, then decodes the claims.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(credential, v.audience); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	claims, err := googleAuthIDTokenVerifier.Decode(credential)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	if claims.Email == "" {
		return Identity{}, fmt.Errorf("%w: token carries no email claim", ErrVerificationFailed)
	}

	return Identity{Email: claims.Email, Name: claims.Name}, nil
}
