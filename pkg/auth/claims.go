package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GuestClaims is the token handed to an anonymous shopper. The session id scopes
// the cart and delivery selection in storage.
type GuestClaims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}
