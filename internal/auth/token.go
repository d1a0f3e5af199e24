package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the owner id of an anonymous session.
type Claims struct {
	jwt.RegisteredClaims
	UID string `json:"uid"`
}

// IssueToken signs an HS256 token for uid that expires after ttl.
func IssueToken(uid string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if uid == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty uid", shared.ErrInvalidInput)
	}
	expires := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UID: uid,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken verifies an HS256 token and returns its uid.
func ParseToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", shared.ErrTokenExpired
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if !token.Valid || claims.UID == "" {
		return "", shared.ErrAuthFailed
	}
	return claims.UID, nil
}

// ParseExpiredToken verifies the signature of a token whose claims may have expired and returns
// its uid. Used to renew anonymous sessions without changing owner.
func ParseExpiredToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}
	if claims.UID == "" {
		return "", shared.ErrAuthFailed
	}
	return claims.UID, nil
}
