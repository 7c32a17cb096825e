// Package auth signs and parses session tokens and keeps the registry of
// live sessions that makes logout take effect before a token expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session owner (uid) and the session id (jti).
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// SessionID returns the jti claim.
func (c *Claims) SessionID() string { return c.ID }

// GenerateToken signs an HS256 token for userID bound to sessionID that
// expires at expiresAt.
func GenerateToken(userID int64, sessionID string, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates signature, algorithm and expiry and returns the
// claims. Every failure is reported as common.ErrInvalidToken wrapping the
// cause.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.UserID <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
