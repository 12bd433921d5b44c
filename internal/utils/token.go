package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned by ParseSessionToken for any malformed,
// mis-signed or expired token.  Callers never learn which of those it was;
// every failure collapses into the same value so that nothing about the
// token's state leaks to the client.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the identity claims embedded in a session token.  They
// mirror the signed payload: user ID as the JWT subject plus the email and
// display name, so that the dashboard can render a greeting without a
// database round trip.
type SessionClaims struct {
	UserID uint64 // numeric user identifier (JWT "sub")
	Email  string // account email at issue time
	Name   string // display name at issue time
}

// SessionToken represents a signed session JWT along with its expiry.  The
// Token field contains the serialized JWT string that is placed into the
// session cookie.  Exp stores the UTC expiration timestamp.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a user session.  It
// takes the signing secret, the identity claims and a TTL in days.  The JWT
// carries standard claims: subject (sub), email, name, expiration (exp) and
// issued at (iat).  Sessions are stateless: validity is determined purely
// by signature and expiry, there is no server-side revocation list.
func NewSessionToken(secret string, claims SessionClaims, ttlDays int) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.UserID,
		"email": claims.Email,
		"name":  claims.Name,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates the signature and expiry of a session JWT and
// returns the embedded claims.  The signing method must be HMAC; tokens
// signed with any other algorithm are rejected.  Expiry is enforced by the
// jwt library during Parse.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	// Numeric JSON values decode as float64.
	sub, ok := mc["sub"].(float64)
	if !ok || sub <= 0 {
		return SessionClaims{}, ErrInvalidToken
	}
	claims := SessionClaims{UserID: uint64(sub)}
	if v, ok := mc["email"].(string); ok {
		claims.Email = v
	}
	if v, ok := mc["name"].(string); ok {
		claims.Name = v
	}
	return claims, nil
}
