// Package claims decodes the payload segment of an access token into a
// typed, optional set of claims. Tokens are issued and signed by the
// platform API; the client never verifies signatures, it only reads the
// payload to schedule expiry and to detect step-up tokens.
package claims

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TypeSecondFactor marks an intermediate token issued after password
// validation but before the one-time code has been submitted.
const TypeSecondFactor = "second_factor"

// Claims holds the subset of token claims the client acts on. Pointer
// fields are nil when the claim is absent from the payload.
type Claims struct {
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Subject   string
	Role      string
	Type      string
}

// SecondFactor reports whether the token requires a step-up code before a
// full session is issued.
func (c Claims) SecondFactor() bool {
	return c.Type == TypeSecondFactor
}

// Parse decodes rawToken without verifying its signature and extracts the
// claims the client understands. A malformed token returns an error;
// callers treat that as "no usable claims", never as a fatal condition.
func Parse(rawToken string) (Claims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, err
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.New("error extracting claims")
	}

	var c Claims
	if iat, ok := mapClaims["iat"].(float64); ok {
		t := time.Unix(int64(iat), 0)
		c.IssuedAt = &t
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		t := time.Unix(int64(exp), 0)
		c.ExpiresAt = &t
	}
	c.Subject, _ = mapClaims["sub"].(string)
	c.Role, _ = mapClaims["role"].(string)
	c.Type, _ = mapClaims["type"].(string)

	return c, nil
}
