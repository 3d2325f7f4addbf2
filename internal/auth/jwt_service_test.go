package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	svc, err := NewTokenService(Config{Secret: "test-secret", Issuer: "hackmate"})
	require.NoError(t, err)

	token, err := svc.Issue("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "hackmate", claims.Issuer)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(Config{})
	require.Error(t, err)
}

func TestIssueRequiresUserID(t *testing.T) {
	svc, err := NewTokenService(Config{Secret: "test-secret"})
	require.NoError(t, err)

	_, err = svc.Issue("", "alice")
	require.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	issuer, err := NewTokenService(Config{
		Secret:   "test-secret",
		TokenTTL: time.Minute,
		Clock:    func() time.Time { return issuedAt },
	})
	require.NoError(t, err)

	token, err := issuer.Issue("user-1", "alice")
	require.NoError(t, err)

	verifier, err := NewTokenService(Config{
		Secret: "test-secret",
		Clock:  func() time.Time { return issuedAt.Add(2 * time.Minute) },
	})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsWrongSecretAndIssuer(t *testing.T) {
	issuer, err := NewTokenService(Config{Secret: "test-secret", Issuer: "hackmate"})
	require.NoError(t, err)

	token, err := issuer.Issue("user-1", "alice")
	require.NoError(t, err)

	other, err := NewTokenService(Config{Secret: "different-secret"})
	require.NoError(t, err)
	_, err = other.Validate(token)
	require.Error(t, err)

	wrongIssuer, err := NewTokenService(Config{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)
	_, err = wrongIssuer.Validate(token)
	require.Error(t, err)
}
