package identity

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestClaimsVerifierExtractsIdentity(t *testing.T) {
	verifier := NewClaimsVerifier()

	credential := makeToken(t, jwt.MapClaims{
		"email": "prof@example.edu",
		"name":  "Prof Example",
	})

	id, err := verifier.Verify(context.Background(), credential)
	require.NoError(t, err)
	require.Equal(t, "prof@example.edu", id.Email)
	require.Equal(t, "Prof Example", id.Name)
}

func TestClaimsVerifierRequiresEmail(t *testing.T) {
	verifier := NewClaimsVerifier()

	credential := makeToken(t, jwt.MapClaims{"name": "No Email"})

	_, err := verifier.Verify(context.Background(), credential)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestClaimsVerifierRejectsGarbage(t *testing.T) {
	verifier := NewClaimsVerifier()

	_, err := verifier.Verify(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestGoogleVerifierRequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier("")
	require.Error(t, err)

	verifier, err := NewGoogleVerifier("client-id.apps.googleusercontent.com")
	require.NoError(t, err)
	require.NotNil(t, verifier)
}
