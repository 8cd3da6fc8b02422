package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStatus describes a stored bearer token as seen by the client.
// Tokens are only decoded here, never verified: the backend remains the authority.
type TokenStatus int

const (
	TokenMissing TokenStatus = iota
	TokenInvalid
	TokenExpired
	TokenValid
)

var tokenStatusNames = []string{"TokenMissing", "TokenInvalid", "TokenExpired", "TokenValid"}

func (t TokenStatus) String() string {
	if t < 0 || int(t) >= len(tokenStatusNames) {
		return fmt.Sprintf("TokenStatus(%d)", int(t))
	}
	return tokenStatusNames[t]
}

// Claims are the fields the storefront backend puts in its tokens
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ParseClaims decodes token without checking its signature
func ParseClaims(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// CheckTokenStatus reports whether token is present, decodable and unexpired at now.
// Opaque tokens without an expiry claim are reported valid.
func CheckTokenStatus(token string, now time.Time) TokenStatus {
	if token == "" {
		return TokenMissing
	}
	claims, err := ParseClaims(token)
	if err != nil {
		return TokenInvalid
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return TokenExpired
	}
	return TokenValid
}
