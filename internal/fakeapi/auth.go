package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "storefront-api"

var (
	errInvalidCredentials = errors.New("invalid email or password")
	bearerPattern         = regexp.MustCompile(`^\s*(?i)\bbearer\b\s*([^\s]+)\s*$`)
)

// Claims are carried in the tokens issued by the development API
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthService issues and checks HS256 access tokens and holds the back office credentials
type AuthService struct {
	secret     []byte
	ttl        time.Duration
	adminEmail string
	adminHash  []byte
	now        func() time.Time
}

// NewAuthService hashes the admin password once at startup
func NewAuthService(secret string, ttl time.Duration, adminEmail, adminPassword string, bcryptCost int) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	return &AuthService{
		secret:     []byte(secret),
		ttl:        ttl,
		adminEmail: adminEmail,
		adminHash:  hash,
		now:        time.Now,
	}, nil
}

// CheckAdminCredentials compares against the configured back office account
func (a *AuthService) CheckAdminCredentials(email, password string) error {
	if !strings.EqualFold(strings.TrimSpace(email), a.adminEmail) {
		// still compare so that unknown emails take as long as wrong passwords
		_ = bcrypt.CompareHashAndPassword(a.adminHash, []byte(password))
		return errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)); err != nil {
		return errInvalidCredentials
	}
	return nil
}

func (a *AuthService) CreateToken(u *user) (string, error) {
	issuedAt := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(a.ttl)),
		},
		Email: u.Email,
		Role:  u.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks the signature and expiry of tokenString and returns its claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerTokenFromHeader returns the token from Authorization: Bearer {token}
func BearerTokenFromHeader(headers http.Header) (string, error) {
	value := headers.Get("Authorization")
	if value == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	token := bearerPattern.ReplaceAllString(value, "$1")
	if token == value {
		return "", fmt.Errorf("authorization header format must be Bearer {token}")
	}
	return token, nil
}

type contextKey struct {
	name string
}

var claimsKey = contextKey{"claims"}

func ContextClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// RequireUser rejects requests without a valid access token with 401
func (s *Server) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerTokenFromHeader(r.Header)
		if err != nil {
			s.respondWithError(w, r, http.StatusUnauthorized, ErrCodeAuthenticationFailure, "Not authorized, no token")
			return
		}

		claims, err := s.auth.ValidateToken(token)
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.respondWithError(w, r, http.StatusUnauthorized, ErrCodeTokenExpired, "Token expired")
			return
		}
		if err != nil {
			s.respondWithError(w, r, http.StatusUnauthorized, ErrCodeAuthenticationFailure, "Not authorized, token failed")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must follow RequireUser. Customer tokens on admin routes are
// rejected with 401 so that the client treats them as a lost admin session.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ContextClaims(r.Context())
		if !ok || claims.Role != roleAdmin {
			s.respondWithError(w, r, http.StatusUnauthorized, ErrCodeAuthorizationFailure, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
