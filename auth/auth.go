// Package auth verifies the bearer tokens issued by the identity provider.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

// Role is the userType claim.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carried by a library token. The user is identified by Email when
// present, otherwise by the subject.
type Claims struct {
	Email    string `json:"email,omitempty"`
	UserType Role   `json:"userType,omitempty"`
	jwt.RegisteredClaims
}

// UserEmail returns the email that owns loans, reviews and messages.
func (c *Claims) UserEmail() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func (c *Claims) IsAdmin() bool { return c.UserType == RoleAdmin }

// Verifier turns a raw token into trusted claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Config selects the verification key. Exactly one of Secret (HS256) or
// PublicKeyPEM (RS256) must be set.
type Config struct {
	Secret       string
	PublicKeyPEM string
	Issuer       string
	Audience     string
}

// JWTVerifier checks signature, expiry and the optional issuer and audience.
type JWTVerifier struct {
	method   string
	key      any
	issuer   string
	audience string
}

var _ Verifier = (*JWTVerifier)(nil)

func NewVerifier(cfg Config) (*JWTVerifier, error) {
	v := &JWTVerifier{issuer: cfg.Issuer, audience: cfg.Audience}
	switch {
	case cfg.Secret != "" && cfg.PublicKeyPEM != "":
		return nil, errors.New("auth: configure either a secret or a public key, not both")
	case cfg.Secret != "":
		v.method, v.key = jwt.SigningMethodHS256.Alg(), []byte(cfg.Secret)
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, errors.Wrap(err, "auth: parse public key")
		}
		v.method, v.key = jwt.SigningMethodRS256.Alg(), pub
	default:
		return nil, errors.New("auth: no verification key configured")
	}
	return v, nil
}

func (v *JWTVerifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.method {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, errors.Wrap(ErrInvalidToken, "issuer mismatch")
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, errors.Wrap(ErrInvalidToken, "audience mismatch")
	}
	if claims.UserEmail() == "" {
		return nil, errors.Wrap(ErrInvalidToken, "no subject")
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// NewClaims builds claims for email valid for ttl from now.
func NewClaims(email string, role Role, issuer string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		Email:    email,
		UserType: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Sign mints an HS256 token, used for local development and tests.
func Sign(secret []byte, claims *Claims) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: empty signing secret")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
