// Package session holds the credentials of a logged in user and the file
// browsing sessions they open.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredentials is returned when a request carries no session cookie
	ErrNoCredentials = errors.New("no access token")
	// ErrInvalidCookie is returned for tampered, expired or foreign cookies
	ErrInvalidCookie = errors.New("invalid session cookie")
)

const issuer = "postlog-dashboard"

// Credentials carries the backend bearer token of one user and the login it
// was issued for. It is passed explicitly to every component that calls the
// backend.
type Credentials struct {
	AccessToken string
	Username    string
}

// Empty reports whether no token is present
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// Owner returns a stable identifier for the token holder that does not
// expose the token itself.
func (c Credentials) Owner() string {
	sum := sha256.Sum256([]byte(c.AccessToken))
	return hex.EncodeToString(sum[:])
}

type cookieClaims struct {
	AccessToken string `json:"tok"`
	Username    string `json:"usr,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs credentials into a cookie value and verifies them back
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec creates an HS256 codec. Cookies expire after ttl.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns how long an encoded cookie stays valid
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode returns the signed cookie value for creds
func (c *Codec) Encode(creds Credentials) (string, error) {
	if creds.Empty() {
		return "", ErrNoCredentials
	}
	now := c.now()
	claims := cookieClaims{
		AccessToken: creds.AccessToken,
		Username:    creds.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies a cookie value and returns the credentials it carries
func (c *Codec) Decode(value string) (Credentials, error) {
	if value == "" {
		return Credentials{}, ErrNoCredentials
	}
	claims := &cookieClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if claims.AccessToken == "" {
		return Credentials{}, fmt.Errorf("%w: missing token", ErrInvalidCookie)
	}
	return Credentials{AccessToken: claims.AccessToken, Username: claims.Username}, nil
}
