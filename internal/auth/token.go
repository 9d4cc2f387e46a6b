package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued device token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer signs and verifies HS256 device tokens.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates an issuer; an empty secret disables nothing here,
// callers decide whether auth is enabled at all.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue returns a signed token for the device and its expiry time.
func (t *TokenIssuer) Issue(deviceID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	expires := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"device_id": deviceID,
		"exp":       expires.Unix(),
		"iat":       time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses the token and returns the device ID it was issued to.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	deviceID, ok := claims["device_id"].(string)
	if !ok {
		return "", errors.New("missing device_id claim")
	}
	return deviceID, nil
}
