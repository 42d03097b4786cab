package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v, err := HashVerifier("secret123", "ada@example.com", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotContains(t, v, "secret123")
	assert.True(t, CompareVerifier(v, "secret123", "ada@example.com"))
	assert.False(t, CompareVerifier(v, "secret124", "ada@example.com"))
}

func TestVerifier_BoundToEmail(t *testing.T) {
	v, err := HashVerifier("secret123", "ada@example.com", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, CompareVerifier(v, "secret123", "grace@example.com"))
}

func TestVerifier_LongInputs(t *testing.T) {
	email := strings.Repeat("a", 80) + "@example.com"
	pwd := strings.Repeat("p", 100)
	v, err := HashVerifier(pwd, email, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CompareVerifier(v, pwd, email))
	assert.False(t, CompareVerifier(v, pwd+"x", email))
}

func TestVerifier_GarbageStored(t *testing.T) {
	assert.False(t, CompareVerifier("not-a-bcrypt-hash", "x", "y"))
	assert.NotPanics(t, func() { BurnVerifierCompare("whatever") })
}
