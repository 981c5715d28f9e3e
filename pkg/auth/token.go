package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sisterblooms/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintGuestToken issues a signed JWT for sessionID using the configured TTL.
// A zero sessionID gets a fresh random id.
func MintGuestToken(cfg config.SessionConfig, now time.Time, sessionID uuid.UUID) (string, *GuestClaims, error) {
	if cfg.Secret == "" {
		return "", nil, fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", nil, fmt.Errorf("session issuer is required")
	}
	if cfg.TTL <= 0 {
		return "", nil, fmt.Errorf("session ttl must be positive")
	}
	if sessionID == uuid.Nil {
		sessionID = uuid.New()
	}

	claims := &GuestClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}
	return signed, claims, nil
}

// ParseGuestToken validates the token string and returns its claims.
func ParseGuestToken(cfg config.SessionConfig, tokenString string) (*GuestClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	claims := &GuestClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("session token missing session id")
	}
	return claims, nil
}

// ShouldRenew reports whether less than half the token lifetime remains.
func ShouldRenew(claims *GuestClaims, now time.Time) bool {
	if claims == nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return true
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	return claims.ExpiresAt.Sub(now) < lifetime/2
}
