package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the authenticated user descriptor the auth service
// embeds in identity tokens. The collaboration server only verifies the
// signature; it never issues tokens.
type IdentityClaims struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	IsAnonymous bool   `json:"isAnonymous"`
	ProviderID  string `json:"providerId,omitempty"`
	jwt.RegisteredClaims
}

// Resolved per call so tests can swap the secret with t.Setenv. Unset
// means token auth is disabled; there is no built-in fallback secret.
func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return nil
}

func ValidateIdentityToken(tokenStr string) (*IdentityClaims, error) {
	secret := jwtSecret()
	if secret == nil {
		return nil, errors.New("identity token auth disabled: JWT_SECRET not set")
	}
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid identity token")
	}
	return claims, nil
}

func ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("authorization header must be of the form 'Bearer <token>'")
	}
	return parts[1], nil
}
