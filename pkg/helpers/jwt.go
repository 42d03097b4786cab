package helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionPayload is the identity asserted by a session token.
type SessionPayload struct {
	ID        string
	Name      string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
// The output is header.body.signature in unpadded base64url.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

type CodecOption func(*TokenCodec)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret string, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{secret: []byte(secret), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c
}

// Sign stamps the payload with iat=now and exp=now+ttl.
// Any IssuedAt/ExpiresAt already present on p are ignored.
func (c *TokenCodec) Sign(p SessionPayload, ttl time.Duration) (string, error) {
	if p.ID == "" {
		return "", errors.New("session payload has no subject")
	}
	now := c.now()
	claims := &sessionClaims{
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify returns the payload of a well-formed, correctly signed, unexpired
// token and nil for anything else. Callers cannot tell failure causes apart.
func (c *TokenCodec) Verify(token string) *SessionPayload {
	if strings.Count(token, ".") != 2 {
		return nil
	}
	claims := &sessionClaims{}
	tkn, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil
	}
	p := &SessionPayload{
		ID:    claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p
}
