package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	raw, err := issuer.Issue("12345", false)
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "12345", claims.Subject)
	assert.False(t, claims.Admin)
}

func TestVerifyCarriesAdminFlag(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	raw, err := issuer.Issue("42", true)
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	other := NewIssuer("different", time.Hour)

	raw, err := issuer.Issue("42", false)
	require.NoError(t, err)

	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("secret", -time.Minute)

	raw, err := issuer.Issue("42", false)
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
