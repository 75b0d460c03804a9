// Package auth mints and verifies the HS256 access tokens carrying the
// caller's identity and role claims.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity extracted from a verified token.
type Claims struct {
	UserID string
	Name   string
	Role   string
}

// Token is a signed JWT and its expiry.
type Token struct {
	Value string
	Exp   time.Time
}

// NewToken signs an HS256 JWT for the user with sub, name, role, iss, exp
// and iat claims.
func NewToken(secret, issuer, userID, name, role string, ttl time.Duration) (Token, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"iss":  issuer,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// Verify parses and validates a raw token, rejecting any signing method
// other than HMAC, and returns its identity claims.
func Verify(secret, raw string) (*Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing subject claim")
	}
	name, _ := mc["name"].(string)
	role, _ := mc["role"].(string)

	return &Claims{UserID: sub, Name: name, Role: role}, nil
}
