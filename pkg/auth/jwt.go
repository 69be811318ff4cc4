// Package auth provides JWT authentication functionality
package auth

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appstack-io/appstack/core/types"
	"github.com/appstack-io/appstack/middleware"
)

// ClaimsContextKey is the context key the authenticator stores claims under.
const ClaimsContextKey = "auth_claims"

// JWTService handles JWT token generation and validation
type JWTService struct {
	secretKey       string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	issuer          string
}

// Claims represents the JWT claims structure
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// NewJWTService creates a new JWT service instance
func NewJWTService(secretKey string, accessTTL, refreshTTL time.Duration, issuer string) *JWTService {
	return &JWTService{
		secretKey:       secretKey,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		issuer:          issuer,
	}
}

// GenerateAccessToken generates a new access token
func (s *JWTService) GenerateAccessToken(userID, username, email string, roles []string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Subject:   userID,
		},
		UserID:   userID,
		Username: username,
		Email:    email,
		Roles:    roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// GenerateRefreshToken generates a new refresh token
func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	claims := &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.refreshTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    s.issuer,
		Subject:   userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *JWTService) RefreshAccessToken(refreshToken string, getUserInfo func(userID string) (username, email string, roles []string, err error)) (string, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})

	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid refresh token")
	}

	username, email, roles, err := getUserInfo(claims.Subject)
	if err != nil {
		return "", err
	}

	return s.GenerateAccessToken(claims.Subject, username, email, roles)
}

// JWTAuthenticator is the bearer-token authentication capability. It accepts
// a request when a valid token is present, the configured scheme matches,
// and the claims carry at least one of the required roles.
type JWTAuthenticator struct {
	service *JWTService
}

// NewJWTAuthenticator creates an authenticator backed by the given service
func NewJWTAuthenticator(service *JWTService) *JWTAuthenticator {
	return &JWTAuthenticator{service: service}
}

// Authenticate implements middleware.Authenticator. On success the parsed
// claims are stored in the request context under ClaimsContextKey.
func (a *JWTAuthenticator) Authenticate(c types.Context, opts *middleware.AuthOptions) bool {
	scheme := "Bearer"
	if opts != nil && opts.Scheme != "" {
		scheme = opts.Scheme
	}

	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return false
	}

	prefix := scheme + " "
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	claims, err := a.service.ValidateToken(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}

	if opts != nil && len(opts.Roles) > 0 {
		matched := false
		for _, role := range opts.Roles {
			if slices.Contains(claims.Roles, role) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	c.Set(ClaimsContextKey, claims)
	return true
}
