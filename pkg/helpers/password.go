package helpers

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// dummyVerifier is compared against when no user exists, so an unknown
// email costs the same bcrypt work as a wrong password.
var dummyVerifier, _ = bcrypt.GenerateFromPassword([]byte("learnflow-dummy-verifier"), bcrypt.DefaultCost)

// verifierInput binds the password to the normalized email. The SHA-256 step
// keeps the bcrypt input under its 72 byte limit for long emails.
func verifierInput(plain, normalizedEmail string) []byte {
	sum := sha256.Sum256([]byte(plain + ":" + normalizedEmail))
	return []byte(hex.EncodeToString(sum[:]))
}

// HashVerifier derives the stored verifier for password+email using bcrypt.
func HashVerifier(plain, normalizedEmail string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(verifierInput(plain, normalizedEmail), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareVerifier reports whether plain+email matches the stored verifier.
func CompareVerifier(verifier, plain, normalizedEmail string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifier), verifierInput(plain, normalizedEmail)) == nil
}

// BurnVerifierCompare performs a comparison that always fails.
func BurnVerifierCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyVerifier, verifierInput(plain, ""))
}
